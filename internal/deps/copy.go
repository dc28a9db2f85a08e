package deps

import (
	"io"
	"os"
	"path/filepath"

	"github.com/infraguys/genesis-devtools/internal/paths"
)

// Copies a directory tree, preserving symlinks and applying exclude patterns.
//
// Symlinks are recreated as symlinks rather than followed, so cyclic or
// self-referential links in a dependency tree cannot cause unbounded
// recursion. Patterns are matched against the path of each entry relative to
// the source root; a matched directory prunes its whole subtree.
func copyTree(src, dst string, exclude []string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if rel != "." && excluded(rel, exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, paths.DefaultDirMode)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyEntry(path, target, info)
	})
}

// Copies a single filesystem entry: a regular file byte-for-byte with its
// mode bits, or a symlink as a symlink.
func copyEntry(src, dst string, info os.FileInfo) error {
	if info.Mode()&os.ModeSymlink != 0 {
		link, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(link, dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Reports whether a path relative to the source root matches any exclude
// pattern.
//
// A bare pattern ("build2") matches first-level entries only; a pattern with
// separators ("nested/build2") matches that relative path. Leading slashes
// anchor patterns at the source root and are stripped. Glob metacharacters
// follow [filepath.Match] rules.
func excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		p := filepath.ToSlash(pattern)
		p = trimLeadingSlash(p)
		if ok, err := filepath.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func trimLeadingSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}
