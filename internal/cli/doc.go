// Parses flags and dispatches the genesis subcommands.
//
// The tool exposes three commands:
//
//	build        Build every image declared by the project configuration.
//	get-version  Print the version derived from the project repository state.
//	version      Print the version of the genesis binary itself.
//
// Global flags (-q, -v, -d) override build-time defaults set via linker
// flags. After parsing, the global logger is reconfigured to reflect the
// final level before any command runs. The bound context is cancelled on
// SIGINT or SIGTERM, which terminates in-flight builder subprocesses.
package cli
