package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "genesis"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the root cache directory for build state.
//
//	Linux:   ~/.cache/genesis
//	macOS:   ~/Library/Caches/genesis
func Cache() string {
	return filepath.Join(xdg.CacheHome, toolName)
}

// Default staging directory for the dependencies of a project.
//
// The staged tree is rebuilt from scratch on every run, so it lives under the
// cache directory rather than the project tree.
//
//	Linux:   ~/.cache/genesis/staging/<project>
func Staging(project string) string {
	return filepath.Join(Cache(), "staging", project)
}

// Default scratch directory for intermediate build artifacts of a project.
//
// Each build unit claims its own subdirectory, so concurrent units never
// share a scratch path.
//
//	Linux:   ~/.cache/genesis/build/<project>
func Scratch(project string) string {
	return filepath.Join(Cache(), "build", project)
}
