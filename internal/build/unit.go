package build

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/infraguys/genesis-devtools/internal/builder"
	"github.com/infraguys/genesis-devtools/internal/config"
)

// Final state of one build unit.
type Status string

const (
	StatusBuilt     Status = "built"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// One independent build unit: a single image of a single element together
// with everything its builder invocation needs.
//
// Units are created once at orchestration start, consumed by exactly one
// builder invocation, and discarded after their result is collected. Each
// unit exclusively owns its scratch and output directories; the staged
// dependency tree is shared read-only.
type unit struct {
	element    int            // Element index in the configuration.
	elementDir string         // Element output directory name.
	image      config.Image   // Image declaration.
	params     builder.Params // Merged builder parameters.
	scratch    string         // Exclusive scratch directory.
	out        string         // Exclusive builder output directory.
	artifact   string         // Final artifact path in the output tree.

	produced string // Path of the built artifact, set after a successful build.
}

// Key identifying the unit in the result ledger.
func (u *unit) key() string {
	return u.elementDir + "/" + u.image.Name
}

// Expands the configuration into one build unit per element image.
//
// Parameter merging happens here, before any unit starts, so an unsupported
// declaration fails the run fast with no partial side effects.
func resolveUnits(opts Options) ([]*unit, error) {
	var units []*unit

	for ei, elem := range opts.Config.Elements {
		dir := elem.Name
		if dir == "" {
			dir = strconv.Itoa(ei)
		}

		for _, img := range elem.Images {
			params, err := builder.MergeParams(img, opts.Env)
			if err != nil {
				return nil, err
			}

			ext, ok := builder.FormatExtension(img.Format)
			if !ok {
				return nil, fmt.Errorf("image %q: unknown format %q", img.Name, img.Format)
			}

			scratch := filepath.Join(opts.ScratchRoot, dir, img.Name)
			units = append(units, &unit{
				element:    ei,
				elementDir: dir,
				image:      img,
				params:     params,
				scratch:    scratch,
				out:        filepath.Join(scratch, "output"),
				artifact:   filepath.Join(opts.OutputRoot, dir, img.Name+"."+ext),
			})
		}
	}

	return units, nil
}
