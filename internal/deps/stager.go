package deps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/infraguys/genesis-devtools/internal/config"
	"github.com/infraguys/genesis-devtools/internal/paths"
)

// Describes one staged dependency.
type Staged struct {
	Dst   string // Destination path inside the image, as declared.
	Local string // Path to the staged copy under the staging directory.
}

// Stages all declared dependencies into the staging directory.
//
// Each source is resolved relative to the configuration directory, so
// configurations stay relocatable. The staging directory is removed and
// recreated first; staging the same inputs twice produces byte-identical
// trees. Returns [ErrMissing] naming the unresolved source if a dependency
// cannot be found.
func Stage(ctx context.Context, cfgDir string, deps []config.Dependency, stagingDir string) ([]Staged, error) {
	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, fmt.Errorf("clear staging directory: %w", err)
	}
	if err := os.MkdirAll(stagingDir, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	staged := make([]Staged, 0, len(deps))

	for _, dep := range deps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := dep.Src
		if !filepath.IsAbs(src) {
			src = filepath.Join(cfgDir, src)
		}

		info, err := os.Lstat(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissing, dep.Src)
		}

		local := filepath.Join(stagingDir, destSlug(dep.Dst))
		slog.Debug("staging dependency", "src", src, "dst", dep.Dst, "local", local)

		if err := os.MkdirAll(filepath.Dir(local), paths.DefaultDirMode); err != nil {
			return nil, fmt.Errorf("stage %s: %w", dep.Src, err)
		}

		if info.IsDir() {
			err = copyTree(src, local, dep.Exclude)
		} else {
			err = copyEntry(src, local, info)
		}
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", dep.Src, err)
		}

		staged = append(staged, Staged{Dst: dep.Dst, Local: local})
	}

	return staged, nil
}

// Converts an in-image destination path to a path relative to the staging
// root. Destinations are typically absolute ("/opt/app"); the leading
// separator is stripped so every dependency lands inside the staging tree.
func destSlug(dst string) string {
	return filepath.FromSlash(strings.TrimLeft(filepath.ToSlash(dst), "/"))
}
