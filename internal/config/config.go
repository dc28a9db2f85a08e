package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (

	// Name of the project configuration file.
	FileName = "genesis.yaml"

	// Directory under the project root holding the configuration file and
	// the files it references (scripts, manifests, artifacts).
	WorkDirName = "genesis"
)

// OS profiles understood by the image builder.
//
// Profiles form a closed set so that an unsupported profile fails when the
// configuration is loaded, not halfway through a build.
var KnownProfiles = []string{"ubuntu_22", "ubuntu_24"}

// Output image formats understood by the image builder.
var KnownFormats = []string{"raw", "qcow2"}

// Declares a build-time dependency to be staged into the build context.
type Dependency struct {
	Dst     string   `yaml:"dst"`               // Destination path inside the image.
	Src     string   `yaml:"src"`               // Local source path, relative to the config directory.
	Exclude []string `yaml:"exclude,omitempty"` // Glob patterns excluded from the copy, relative to the source root.
}

// Declares a single buildable image.
type Image struct {
	Name     string         `yaml:"name"`               // Unique identifier, used for output file naming.
	Format   string         `yaml:"format"`             // Output image format (raw, qcow2).
	Profile  string         `yaml:"profile"`            // Named OS profile (ubuntu_22, ubuntu_24).
	Script   string         `yaml:"script"`             // Provisioning script supplied to the builder.
	Envs     []string       `yaml:"envs,omitempty"`     // Environment variable names forwarded to the builder.
	Override map[string]any `yaml:"override,omitempty"` // Builder parameter replacements applied over profile defaults.
}

// Groups one or more images plus deployment metadata.
type Element struct {
	Name      string   `yaml:"name,omitempty"`      // Output directory name. Defaults to the element index.
	Manifest  string   `yaml:"manifest,omitempty"`  // Deployment manifest copied into the element output.
	Artifacts []string `yaml:"artifacts,omitempty"` // Extra files copied verbatim into the element output.
	Images    []Image  `yaml:"images"`              // Images built for this element.
}

// Typed representation of the parsed project configuration.
//
// The model is immutable after Load returns. Paths referencing files next to
// the configuration (scripts, manifests, artifacts) are resolved to absolute
// paths during loading; dependency sources stay as declared and are resolved
// by the stager.
type Config struct {
	Deps     []Dependency `yaml:"deps,omitempty"`
	Elements []Element    `yaml:"elements"`

	dir string // Directory containing the configuration file.
}

// Returns the directory containing the configuration file.
//
// Dependency sources and other relative paths in the configuration are
// resolved against this directory, so configurations stay relocatable.
func (c *Config) Dir() string {
	return c.dir
}

// Loads the project configuration from genesis/genesis.yaml under the
// project root.
//
// Returns [ErrNotFound] if the file is absent and [ErrMalformed] if the
// document cannot be parsed or fails validation. Unknown fields are ignored
// for forward compatibility.
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, WorkDirName, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	cfg.dir = dir

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	resolvePaths(&cfg)

	return &cfg, nil
}

// Checks the structural invariants of a parsed configuration.
func validate(cfg *Config) error {
	if len(cfg.Elements) == 0 {
		return fmt.Errorf("no elements declared")
	}

	for i, dep := range cfg.Deps {
		if dep.Dst == "" {
			return fmt.Errorf("dep %d: dst is required", i+1)
		}
		if dep.Src == "" {
			return fmt.Errorf("dep %d: src is required", i+1)
		}
	}

	names := make(map[string]struct{})
	for i, elem := range cfg.Elements {
		if len(elem.Images) == 0 {
			return fmt.Errorf("element %d: no images declared", i+1)
		}
		for _, img := range elem.Images {
			if err := validateImage(img); err != nil {
				return fmt.Errorf("element %d: %w", i+1, err)
			}
			if _, ok := names[img.Name]; ok {
				return fmt.Errorf("element %d: duplicate image name %q", i+1, img.Name)
			}
			names[img.Name] = struct{}{}
		}
	}

	return nil
}

// Checks the required fields of an image declaration.
func validateImage(img Image) error {
	if img.Name == "" {
		return fmt.Errorf("image name is required")
	}
	if img.Script == "" {
		return fmt.Errorf("image %q: script is required", img.Name)
	}
	if !contains(KnownProfiles, img.Profile) {
		return fmt.Errorf("image %q: unsupported profile %q", img.Name, img.Profile)
	}
	if !contains(KnownFormats, img.Format) {
		return fmt.Errorf("image %q: unsupported format %q", img.Name, img.Format)
	}
	return nil
}

// Resolves script, manifest, and artifact paths against the configuration
// directory so later stages never depend on the working directory.
func resolvePaths(cfg *Config) {
	for ei := range cfg.Elements {
		elem := &cfg.Elements[ei]
		if elem.Manifest != "" {
			elem.Manifest = absolute(cfg.dir, elem.Manifest)
		}
		for ai, artifact := range elem.Artifacts {
			elem.Artifacts[ai] = absolute(cfg.dir, artifact)
		}
		for ii := range elem.Images {
			elem.Images[ii].Script = absolute(cfg.dir, elem.Images[ii].Script)
		}
	}
}

// Joins a relative path with the base directory. Absolute paths pass through.
func absolute(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
