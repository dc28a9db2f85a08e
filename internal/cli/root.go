package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/infraguys/genesis-devtools/internal"
)

// Represents the root command for the genesis tool.
var RootCmd struct {
	Quiet   bool          `short:"q" help:"Suppress informational output."`
	Verbose bool          `short:"v" help:"Enable verbose output."`
	Debug   bool          `short:"d" help:"Enable debug output."`
	Build   BuildCmd      `cmd:"" help:"Build the project images."`
	Get     GetVersionCmd `cmd:"" name:"get-version" help:"Print the resolved project version."`
	Version VersionCmd    `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Genesis project build tool.\n\nBuilds deployable machine images from a declarative genesis.yaml configuration."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags promote the corresponding output modes, so code reading the mode
// accessors sees the same state the logger was built from.
func configureLogger() {
	if RootCmd.Quiet {
		internal.SetQuiet()
	}
	if RootCmd.Debug {
		internal.SetDebug()
	}
	if RootCmd.Verbose {
		internal.SetVerbose()
	}

	level := slog.LevelInfo
	if internal.IsDebug() {
		level = slog.LevelDebug
	} else if internal.IsQuiet() {
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: internal.IsVerbose(),
	})
	slog.SetDefault(slog.New(handler).With("app", internal.Name))
}
