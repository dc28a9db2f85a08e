// Orchestrates the build of every declared image.
//
// A run expands the configuration into independent build units, one per
// element image, each owning an isolated scratch and output directory. Units
// execute on a bounded worker pool against the shared read-only staged
// dependency tree. The first unit failure prevents new units from starting
// but lets in-flight builds finish; cancelling the run context terminates
// in-flight builder subprocesses. Completions land in an append-only result
// ledger keyed by element and image.
//
// After every unit has terminated, the output tree is assembled: an
// element's directory appears only once all of its images have finished,
// and each file lands via write-to-temporary-then-rename. The run summary
// enumerates every declared image as built, skipped, failed, or cancelled.
package build
