// Stages declared build dependencies into a shared build context.
//
// Staging materializes every dependency source under the staging directory,
// keyed by its declared in-image destination path. The staging directory is
// fully cleared before it is repopulated, so re-running staging for the same
// inputs always produces a byte-identical tree with no stale files from a
// previous partial run.
//
// From the point staging completes the tree is read-only: every build unit
// reads the same staged dependencies and none writes into them.
package deps
