package version

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Timestamp layout used in rc and dev version suffixes (UTC).
const timestampLayout = "20060102150405"

// Number of commit identifier characters carried in version suffixes.
const commitLen = 8

// Matches a stable X.Y.Z tag, with an optional "v" prefix.
var stableTagRe = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// Classifies a resolved version.
type Kind string

const (
	KindStable Kind = "stable"
	KindRC     Kind = "rc"
	KindDev    Kind = "dev"
)

// A resolved project version.
//
// Stable tags never carry a timestamp or commit suffix; rc and dev tags
// always do.
type Tag struct {
	Kind      Kind
	Major     int
	Minor     int
	Patch     int
	Timestamp time.Time // Zero for stable tags.
	Commit    string    // Abbreviated commit identifier, empty for stable tags.
}

// Formats the tag as a version string.
//
//	stable:  1.2.3
//	rc:      1.2.3-rc+20250101120000.a1b2c3d4
//	dev:     1.2.3-dev+20250101120000.a1b2c3d4
func (t Tag) String() string {
	base := fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
	if t.Kind == KindStable {
		return base
	}
	return fmt.Sprintf("%s-%s+%s.%s", base, t.Kind, t.Timestamp.UTC().Format(timestampLayout), t.Commit)
}

// Exposes the repository state needed for version resolution.
//
// The two operations keep the resolver testable against a fake provider
// instead of a real checkout.
type StateProvider interface {

	// Returns the current commit identifier, the current branch name, and
	// whether the working tree has uncommitted changes.
	Head(ctx context.Context) (commit, branch string, dirty bool, err error)

	// Returns the nearest ancestor stable tag and whether the current commit
	// is the tagged commit itself. Returns an empty tag when no stable tag
	// exists in the history.
	NearestTag(ctx context.Context) (tag string, exact bool, err error)
}

// Decides whether a branch produces release-candidate builds.
type ReleasePolicy func(branch string) bool

// Returns a policy treating the given branches as release-candidate branches.
func BranchPolicy(branches ...string) ReleasePolicy {
	return func(branch string) bool {
		for _, b := range branches {
			if b == branch {
				return true
			}
		}
		return false
	}
}

// Default release policy: builds on master or main are release candidates.
var DefaultPolicy = BranchPolicy("master", "main")

// Derives a semantic version from repository state.
type Resolver struct {
	Provider StateProvider
	Policy   ReleasePolicy    // Defaults to [DefaultPolicy].
	Now      func() time.Time // Defaults to time.Now. Injectable for tests.
}

// Resolves the version for the current build.
//
// A clean tree exactly at a stable tag resolves to that tag. Otherwise the
// base is the nearest ancestor stable tag (0.0.0 when none exists), suffixed
// with -rc or -dev per the release policy, the resolution-time UTC timestamp,
// and the abbreviated commit. Returns [ErrUndetermined] when the repository
// has no commits at all.
func (r *Resolver) Resolve(ctx context.Context) (Tag, error) {
	commit, branch, dirty, err := r.Provider.Head(ctx)
	if err != nil {
		return Tag{}, fmt.Errorf("%w: %v", ErrUndetermined, err)
	}

	tag, exact, err := r.Provider.NearestTag(ctx)
	if err != nil {
		return Tag{}, fmt.Errorf("%w: %v", ErrUndetermined, err)
	}

	var major, minor, patch int
	if tag != "" {
		major, minor, patch, err = parseStableTag(tag)
		if err != nil {
			return Tag{}, fmt.Errorf("%w: %v", ErrUndetermined, err)
		}
	}

	if exact && !dirty {
		return Tag{Kind: KindStable, Major: major, Minor: minor, Patch: patch}, nil
	}

	kind := KindDev
	policy := r.Policy
	if policy == nil {
		policy = DefaultPolicy
	}
	if policy(branch) {
		kind = KindRC
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	if len(commit) > commitLen {
		commit = commit[:commitLen]
	}

	return Tag{
		Kind:      kind,
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Timestamp: now().UTC(),
		Commit:    commit,
	}, nil
}

// Parses a stable X.Y.Z tag into its numeric components.
func parseStableTag(tag string) (major, minor, patch int, err error) {
	m := stableTagRe.FindStringSubmatch(tag)
	if m == nil {
		return 0, 0, 0, fmt.Errorf("tag %q is not a major.minor.patch version", tag)
	}

	major, _ = strconv.Atoi(m[1])
	minor, _ = strconv.Atoi(m[2])
	patch, _ = strconv.Atoi(m[3])
	return major, minor, patch, nil
}
