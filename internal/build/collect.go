package build

import (
	"io"
	"os"
	"path/filepath"

	"github.com/infraguys/genesis-devtools/internal/paths"
)

// Assembles the final output tree after all units have terminated.
//
// Each element's directory is populated only once every image of that
// element has finished, so an external observer never sees it half-built.
// Built images land via write-to-temporary-then-rename; the element's
// manifest and declared artifact files are copied verbatim alongside them.
// Failed and cancelled images are omitted. Elements with no successful or
// skipped image get no output directory at all.
func collect(opts Options, units []*unit, led *ledger) error {
	for ei, elem := range opts.Config.Elements {
		var elemUnits []*unit
		for _, u := range units {
			if u.element == ei {
				elemUnits = append(elemUnits, u)
			}
		}

		present := false
		for _, u := range elemUnits {
			r, ok := led.get(u)
			if ok && (r.Status == StatusBuilt || r.Status == StatusSkipped) {
				present = true
			}
		}
		if !present {
			continue
		}

		dir := filepath.Join(opts.OutputRoot, elemUnits[0].elementDir)
		if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
			return err
		}

		for _, u := range elemUnits {
			r, _ := led.get(u)
			if r.Status != StatusBuilt {
				continue
			}
			if err := installFile(u.produced, u.artifact, opts.Force); err != nil {
				return err
			}
		}

		if elem.Manifest != "" {
			dst := filepath.Join(dir, filepath.Base(elem.Manifest))
			if err := installFile(elem.Manifest, dst, opts.Force); err != nil {
				return err
			}
		}
		for _, artifact := range elem.Artifacts {
			dst := filepath.Join(dir, filepath.Base(artifact))
			if err := installFile(artifact, dst, opts.Force); err != nil {
				return err
			}
		}
	}

	return nil
}

// Installs a file into the output tree.
//
// An existing destination is left untouched unless force is set, so repeated
// collection never rewrites already-correct files. The content is written to
// a temporary file in the destination directory and renamed into place, so
// the final path appears only once fully written.
func installFile(src, dst string, force bool) error {
	if !force {
		if _, err := os.Stat(dst); err == nil {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), paths.DefaultDirMode); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), dst)
}
