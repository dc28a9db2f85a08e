package builder

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/infraguys/genesis-devtools/internal/paths"
)

// Source definitions shipped with the tool, one file per profile.
//
//go:embed profiles/*.pkr.hcl
var profileFS embed.FS

// Copies the embedded source definition for a profile into the working
// directory, next to the generated build file.
func writeProfile(profile, dir string) error {
	name := profileSlug(profile) + ".pkr.hcl"

	data, err := profileFS.ReadFile("profiles/" + name)
	if err != nil {
		return fmt.Errorf("%w: profile %q has no source definition", ErrUnsupportedImage, profile)
	}

	return os.WriteFile(filepath.Join(dir, name), data, paths.DefaultFileMode)
}
