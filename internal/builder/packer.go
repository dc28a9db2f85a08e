package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/infraguys/genesis-devtools/internal/config"
	"github.com/infraguys/genesis-devtools/internal/deps"
	"github.com/infraguys/genesis-devtools/internal/paths"
)

const (

	// Name of the generated main build file.
	buildFileName = "main.pkr.hcl"

	// Name of the generated variable override file. The .auto.pkrvars
	// suffix makes Packer load it without an explicit -var-file flag.
	varsFileName = "overrides.auto.pkrvars.hcl"

	// Name of the developer key file shipped into the image.
	devKeysFileName = "__dev_keys"

	// Builder binary invoked as a subprocess.
	packerBinary = "packer"
)

// Everything the external builder needs to produce one image.
type Invocation struct {
	Image         config.Image  // Image declaration.
	Params        Params        // Merged builder parameters.
	Deps          []deps.Staged // Staged dependencies, read-only.
	DeveloperKeys string        // Developer key material, empty for none.
	WorkDir       string        // Exclusive scratch directory for generated files.
	OutputDir     string        // Exclusive directory the builder writes the image into.
}

// Builds one image from an invocation.
//
// Build returns the path of the produced image file. Implementations must
// treat the staged dependency tree as read-only and confine all writes to
// the invocation's WorkDir and OutputDir.
type ImageBuilder interface {
	Build(ctx context.Context, inv Invocation) (string, error)
}

// Builds images by invoking HashiCorp Packer as a subprocess.
//
// The working directory is populated with a generated main build file, the
// embedded profile source definition, and an auto-loaded variable override
// file, then "packer init" and "packer build" run against it.
type PackerBuilder struct {
	Timeout time.Duration // Time limit per invocation. Zero means no limit.
}

// Compile-time verification that PackerBuilder implements ImageBuilder.
var _ ImageBuilder = (*PackerBuilder)(nil)

// Builds the image and returns the produced artifact path.
//
// A non-zero Packer exit status is reported as [ErrBuildFailed] naming the
// image. On success exactly one image file must exist at
// OutputDir/<name>.<format-extension>.
func (b *PackerBuilder) Build(ctx context.Context, inv Invocation) (string, error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	if err := prepare(inv); err != nil {
		return "", fmt.Errorf("image %s: %w", inv.Image.Name, err)
	}

	if err := run(ctx, inv.Image.Name, "init", inv.WorkDir); err != nil {
		return "", err
	}

	slog.Info("building image",
		"image", inv.Image.Name,
		"profile", inv.Image.Profile,
		"format", inv.Image.Format,
	)

	if err := run(ctx, inv.Image.Name, "build", "-parallel-builds=1", inv.WorkDir); err != nil {
		return "", err
	}

	ext, _ := FormatExtension(inv.Image.Format)
	artifact := filepath.Join(inv.OutputDir, inv.Image.Name+"."+ext)
	if _, err := os.Stat(artifact); err != nil {
		return "", fmt.Errorf("%w: image %s: no artifact at %s", ErrBuildFailed, inv.Image.Name, artifact)
	}

	return artifact, nil
}

// Populates the invocation's working directory with everything Packer needs.
func prepare(inv Invocation) error {
	for _, dir := range []string{inv.WorkDir, inv.OutputDir} {
		if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
			return err
		}
	}

	if err := writeProfile(inv.Image.Profile, inv.WorkDir); err != nil {
		return err
	}

	if inv.DeveloperKeys != "" {
		keyPath := filepath.Join(inv.WorkDir, devKeysFileName)
		if err := os.WriteFile(keyPath, []byte(inv.DeveloperKeys), 0600); err != nil {
			return err
		}
	}

	buildFile := renderBuildFile(inv)
	if err := os.WriteFile(filepath.Join(inv.WorkDir, buildFileName), buildFile, paths.DefaultFileMode); err != nil {
		return err
	}

	varsFile, err := renderVarsFile(inv.Params.Vars)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(inv.WorkDir, varsFileName), varsFile, paths.DefaultFileMode)
}

// Runs a packer subcommand, capturing its combined output.
//
// Context cancellation terminates the subprocess and is returned as the
// context's error so the orchestrator can tell a cancelled build from a
// failed one. Any other non-zero exit is [ErrBuildFailed] naming the image.
func run(ctx context.Context, image string, args ...string) error {
	cmd := exec.CommandContext(ctx, packerBinary, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	slog.Debug("packer", "image", image, "args", args)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: image %s: packer %s exited with %d: %s",
			ErrBuildFailed, image, args[0], exitErr.ExitCode(), tail(output.Bytes()))
	}

	return fmt.Errorf("%w: image %s: %v", ErrBuildFailed, image, err)
}

// Returns the last part of builder output for error messages.
func tail(out []byte) string {
	const max = 2048
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return string(bytes.TrimSpace(out))
}
