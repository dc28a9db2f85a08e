package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Globs handed to git to restrict tag lookups to stable-looking tags, with
// and without the "v" prefix the resolver accepts.
var stableTagGlobs = []string{"[0-9]*.[0-9]*.[0-9]*", "v[0-9]*.[0-9]*.[0-9]*"}

// Git-backed [StateProvider] shelling out to the git CLI.
type GitProvider struct {
	Dir string // Repository directory.
}

// Creates a provider for the repository at the given directory.
func NewGitProvider(dir string) *GitProvider {
	return &GitProvider{Dir: dir}
}

// Returns the current commit, branch, and dirty flag.
//
// Fails when the repository has no commits (rev-parse cannot resolve HEAD),
// which the resolver reports as an undetermined version.
func (g *GitProvider) Head(ctx context.Context) (string, string, bool, error) {
	commit, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", "", false, err
	}

	branch, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", "", false, err
	}

	status, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return "", "", false, err
	}

	return commit, branch, status != "", nil
}

// Returns the nearest ancestor stable tag.
//
// Tags pointing at HEAD are checked first; when one matches the stable
// format the tag is exact. Otherwise the nearest ancestor tag is looked up
// with git-describe. A repository with no reachable stable tag returns an
// empty tag without error; any other describe failure (cancellation, a
// broken repository) propagates.
func (g *GitProvider) NearestTag(ctx context.Context) (string, bool, error) {
	args := append([]string{"tag", "--points-at", "HEAD", "--list"}, stableTagGlobs...)
	out, err := g.run(ctx, args...)
	if err != nil {
		return "", false, err
	}
	if tags := strings.Fields(out); len(tags) > 0 {
		return tags[0], true, nil
	}

	describe := []string{"describe", "--tags", "--abbrev=0"}
	for _, glob := range stableTagGlobs {
		describe = append(describe, "--match", glob)
	}
	tag, err := g.run(ctx, describe...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		// Describe fails both when no stable tag is reachable and when the
		// repository itself is broken. A tag listing separates the two: it
		// succeeds on any healthy repository.
		list := append([]string{"tag", "--list"}, stableTagGlobs...)
		if _, listErr := g.run(ctx, list...); listErr != nil {
			return "", false, err
		}
		return "", false, nil
	}

	return tag, false, nil
}

// Runs a git command in the repository directory and returns trimmed stdout.
func (g *GitProvider) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.Dir}, args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}
