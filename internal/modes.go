package internal

import (
	"strconv"
	"sync/atomic"
)

// Output modes of the genesis tool.
//
// Each mode starts from its linker-flag default and can only be raised at
// runtime: the CLI promotes a mode when its flag is passed, never lowers
// one. Command code reads the accessors and stays unaware of where a mode
// was set.
var (
	quietMode   atomic.Bool // Suppress informational output.
	debugMode   atomic.Bool // Emit debug output.
	verboseMode atomic.Bool // Annotate log records with their source.
)

// Seeds the modes from the rawQuiet, rawDebug, and rawVerbose linker flags.
// Unset or unparsable flags leave the mode disabled.
func init() {
	seedMode(&quietMode, rawQuiet)
	seedMode(&debugMode, rawDebug)
	seedMode(&verboseMode, rawVerbose)
}

func seedMode(mode *atomic.Bool, raw string) {
	if v, err := strconv.ParseBool(raw); err == nil {
		mode.Store(v)
	}
}

// Enables quiet mode.
func SetQuiet() {
	quietMode.Store(true)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables debug mode.
func SetDebug() {
	debugMode.Store(true)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables verbose logging.
func SetVerbose() {
	verboseMode.Store(true)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}
