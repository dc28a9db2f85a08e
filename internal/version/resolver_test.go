package version

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

// A canned repository state for resolver tests.
type fakeProvider struct {
	commit string
	branch string
	dirty  bool
	tag    string
	exact  bool

	headErr error
	tagErr  error
}

func (f *fakeProvider) Head(ctx context.Context) (string, string, bool, error) {
	return f.commit, f.branch, f.dirty, f.headErr
}

func (f *fakeProvider) NearestTag(ctx context.Context) (string, bool, error) {
	return f.tag, f.exact, f.tagErr
}

func TestResolveStable(t *testing.T) {
	r := Resolver{Provider: &fakeProvider{
		commit: "a1b2c3d4e5f60718",
		branch: "master",
		tag:    "1.2.3",
		exact:  true,
	}}

	tag, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag.Kind != KindStable {
		t.Fatalf("kind = %s, want stable", tag.Kind)
	}
	if got := tag.String(); got != "1.2.3" {
		t.Fatalf("version = %s, want 1.2.3", got)
	}
}

func TestResolveStableVPrefix(t *testing.T) {
	r := Resolver{Provider: &fakeProvider{
		commit: "a1b2c3d4e5f60718",
		branch: "master",
		tag:    "v2.0.1",
		exact:  true,
	}}

	tag, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := tag.String(); got != "2.0.1" {
		t.Fatalf("version = %s, want 2.0.1", got)
	}
}

// A dirty tree never produces a stable version, even exactly at a tag.
func TestResolveDirtyAtTag(t *testing.T) {
	r := Resolver{Provider: &fakeProvider{
		commit: "a1b2c3d4e5f60718",
		branch: "feature/x",
		dirty:  true,
		tag:    "1.2.3",
		exact:  true,
	}}

	tag, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag.Kind != KindDev {
		t.Fatalf("kind = %s, want dev", tag.Kind)
	}

	want := regexp.MustCompile(`^1\.2\.3-dev\+\d{14}\.a1b2c3d4$`)
	if got := tag.String(); !want.MatchString(got) {
		t.Fatalf("version = %s, want match for %s", got, want)
	}
}

func TestResolveReleaseCandidate(t *testing.T) {
	r := Resolver{Provider: &fakeProvider{
		commit: "deadbeefcafe0123",
		branch: "main",
		tag:    "1.2.3",
	}}

	tag, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag.Kind != KindRC {
		t.Fatalf("kind = %s, want rc", tag.Kind)
	}

	want := regexp.MustCompile(`^1\.2\.3-rc\+\d{14}\.deadbeef$`)
	if got := tag.String(); !want.MatchString(got) {
		t.Fatalf("version = %s, want match for %s", got, want)
	}
}

func TestResolveCustomPolicy(t *testing.T) {
	provider := &fakeProvider{
		commit: "deadbeefcafe0123",
		branch: "release",
		tag:    "1.2.3",
	}

	r := Resolver{Provider: provider, Policy: BranchPolicy("release")}
	tag, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag.Kind != KindRC {
		t.Fatalf("kind = %s, want rc", tag.Kind)
	}

	provider.branch = "main"
	tag, err = r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag.Kind != KindDev {
		t.Fatalf("kind = %s, want dev under custom policy", tag.Kind)
	}
}

// With no stable tag in the history the version base is 0.0.0.
func TestResolveNoTags(t *testing.T) {
	r := Resolver{Provider: &fakeProvider{
		commit: "a1b2c3d4e5f60718",
		branch: "feature/x",
	}}

	tag, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := regexp.MustCompile(`^0\.0\.0-dev\+\d{14}\.a1b2c3d4$`)
	if got := tag.String(); !want.MatchString(got) {
		t.Fatalf("version = %s, want match for %s", got, want)
	}
}

func TestResolveEmptyRepository(t *testing.T) {
	r := Resolver{Provider: &fakeProvider{headErr: errors.New("no commits")}}

	_, err := r.Resolve(context.Background())
	if !errors.Is(err, ErrUndetermined) {
		t.Fatalf("err = %v, want ErrUndetermined", err)
	}
}

func TestResolveBadTag(t *testing.T) {
	r := Resolver{Provider: &fakeProvider{
		commit: "a1b2c3d4e5f60718",
		branch: "master",
		tag:    "banana",
	}}

	_, err := r.Resolve(context.Background())
	if !errors.Is(err, ErrUndetermined) {
		t.Fatalf("err = %v, want ErrUndetermined", err)
	}
}

// Two resolutions of the same state differ only in their timestamps.
func TestResolveTimestamp(t *testing.T) {
	provider := &fakeProvider{
		commit: "a1b2c3d4e5f60718",
		branch: "feature/x",
		tag:    "1.2.3",
	}

	times := []time.Time{
		time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 12, 0, 1, 0, time.UTC),
	}
	i := 0
	r := Resolver{Provider: provider, Now: func() time.Time {
		now := times[i]
		i++
		return now
	}}

	first, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if first.String() != "1.2.3-dev+20250101120000.a1b2c3d4" {
		t.Fatalf("first = %s", first)
	}
	if second.String() != "1.2.3-dev+20250101120001.a1b2c3d4" {
		t.Fatalf("second = %s", second)
	}
	if first.Commit != second.Commit || first.Kind != second.Kind {
		t.Fatal("resolutions differ beyond the timestamp")
	}
}

func TestParseStableTag(t *testing.T) {
	tests := []struct {
		tag     string
		major   int
		minor   int
		patch   int
		wantErr bool
	}{
		{tag: "1.2.3", major: 1, minor: 2, patch: 3},
		{tag: "v10.0.42", major: 10, minor: 0, patch: 42},
		{tag: "1.2", wantErr: true},
		{tag: "1.2.3-rc1", wantErr: true},
		{tag: "release-1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		major, minor, patch, err := parseStableTag(tt.tag)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseStableTag(%q) succeeded, want error", tt.tag)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseStableTag(%q): %v", tt.tag, err)
			continue
		}
		if major != tt.major || minor != tt.minor || patch != tt.patch {
			t.Errorf("parseStableTag(%q) = %d.%d.%d, want %d.%d.%d",
				tt.tag, major, minor, patch, tt.major, tt.minor, tt.patch)
		}
	}
}
