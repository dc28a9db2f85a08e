package builder

import (
	"fmt"
	"os"
	"strings"

	"github.com/infraguys/genesis-devtools/internal/config"
)

// Environment variable carrying the image profile into provisioning scripts.
const profileEnv = "GEN_IMAGE_PROFILE"

// Implicit builder defaults per profile. Override entries from the image
// declaration replace these values leaf-by-leaf; they are never deep-merged.
var profileDefaults = map[string]map[string]any{
	"ubuntu_22": {
		"disk_size":    "15G",
		"ssh_username": "ubuntu",
		"headless":     true,
	},
	"ubuntu_24": {
		"disk_size":    "15G",
		"ssh_username": "ubuntu",
		"headless":     true,
	},
}

// File extension per output image format.
var formatExtensions = map[string]string{
	"raw":   "raw",
	"qcow2": "qcow2",
}

// Immutable snapshot of the invoking process environment.
//
// Captured once per run and passed explicitly, so parameter merging stays a
// pure function of its inputs.
type EnvSnapshot map[string]string

// Captures the current process environment.
func CaptureEnv() EnvSnapshot {
	snap := make(EnvSnapshot)
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok {
			snap[k] = v
		}
	}
	return snap
}

// Final parameter bag handed to the external builder for one image.
type Params struct {
	SourceName string            // Builder source the image builds from (e.g. "qemu.ubuntu-24").
	Vars       map[string]any    // Builder variables: profile defaults with overrides applied.
	Env        map[string]string // Environment forwarded into the provisioning script.
}

// Merges an image declaration into the final builder parameters.
//
// Starts from the implicit defaults for the declared profile, applies
// override entries as leaf replacements, and forwards the declared
// environment variable names from the snapshot. Absent variables forward as
// empty strings; validity checks are deferred to the external builder. The
// merge reads nothing beyond its arguments.
func MergeParams(img config.Image, env EnvSnapshot) (Params, error) {
	defaults, ok := profileDefaults[img.Profile]
	if !ok {
		return Params{}, fmt.Errorf("%w: profile %q", ErrUnsupportedImage, img.Profile)
	}
	if _, ok := formatExtensions[img.Format]; !ok {
		return Params{}, fmt.Errorf("%w: format %q", ErrUnsupportedImage, img.Format)
	}

	vars := make(map[string]any, len(defaults)+len(img.Override)+1)
	for k, v := range defaults {
		vars[k] = v
	}
	for k, v := range img.Override {
		vars[k] = v
	}
	vars["img_format"] = img.Format

	forwarded := make(map[string]string, len(img.Envs)+1)
	forwarded[profileEnv] = img.Profile
	for _, name := range img.Envs {
		forwarded[name] = env[name]
	}

	return Params{
		SourceName: sourceName(img.Profile),
		Vars:       vars,
		Env:        forwarded,
	}, nil
}

// Returns the output file extension for a format.
func FormatExtension(format string) (string, bool) {
	ext, ok := formatExtensions[format]
	return ext, ok
}

// Maps a profile tag to its builder source name.
func sourceName(profile string) string {
	return "qemu." + profileSlug(profile)
}

// Converts a profile tag to its filesystem and source naming form
// ("ubuntu_24" becomes "ubuntu-24").
func profileSlug(profile string) string {
	return strings.ReplaceAll(profile, "_", "-")
}
