// Derives a project version from repository state.
//
// A clean checkout exactly at a stable X.Y.Z tag resolves to that tag.
// Anything else resolves to X.Y.Z-rc+<timestamp>.<commit8> on a release
// branch or X.Y.Z-dev+<timestamp>.<commit8> everywhere else, where X.Y.Z is
// the nearest ancestor stable tag (0.0.0 when the history has none). The
// timestamp is taken in UTC at resolution time, so two builds moments apart
// differ.
//
// Repository access sits behind the narrow StateProvider interface; the
// default implementation shells out to the git CLI. The rc/dev distinction
// is an injectable ReleasePolicy rather than a hardcoded branch convention.
package version
