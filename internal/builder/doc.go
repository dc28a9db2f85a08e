// Merges image parameters and drives the external image builder.
//
// For each image the merger combines the implicit defaults of its profile
// with the declared overrides (leaf replacement, never deep merge) and an
// explicit snapshot of the invoking environment, producing the final
// parameter bag. The merge is a pure function: the same declaration and
// snapshot always produce the same bag.
//
// The Packer backend turns one invocation into a self-contained template
// directory: a generated main build file (hclwrite), the embedded source
// definition for the image's profile, and an auto-loaded variable override
// file. It then runs "packer init" and "packer build" as subprocesses and
// verifies that exactly one image file appeared at the destination path.
// The orchestrator consumes the ImageBuilder interface, so tests substitute
// a fake instead of a real Packer installation.
package builder
