package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/infraguys/genesis-devtools/internal/build"
	"github.com/infraguys/genesis-devtools/internal/builder"
	"github.com/infraguys/genesis-devtools/internal/config"
	"github.com/infraguys/genesis-devtools/internal/deps"
	"github.com/infraguys/genesis-devtools/internal/paths"
	"github.com/infraguys/genesis-devtools/internal/version"
)

// Name of the output directory created under the project root.
const outputDirName = "output"

// Represents the 'genesis build' command.
type BuildCmd struct {
	ProjectDir string        `arg:"" help:"Project root directory." type:"existingdir"`
	DevKeyPath string        `short:"i" help:"Path to a developer public key." placeholder:"PATH"`
	Force      bool          `short:"f" help:"Rebuild images and overwrite existing artifacts."`
	Jobs       int           `short:"j" default:"1" help:"Maximum number of images built concurrently."`
	Timeout    time.Duration `help:"Time limit applied to each builder invocation." placeholder:"DURATION"`
	OutputDir  string        `help:"Override the output directory." placeholder:"DIR"`
	DepsDir    string        `help:"Override the dependency staging directory." placeholder:"DIR"`
	BuildDir   string        `help:"Override the scratch build directory." placeholder:"DIR"`
	RC         bool          `name:"rc" help:"Treat this build as a release candidate."`
}

// Executes the build command.
//
// Configuration, version resolution, and dependency staging happen before
// any build unit starts, so their failures abort the run with no partial
// side effects. Per-image build failures are reported in the summary and
// through a non-zero exit status without interrupting sibling builds.
func (c *BuildCmd) Run(ctx context.Context) error {
	root, err := filepath.Abs(c.ProjectDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	keys, err := builder.LoadDeveloperKeys(c.DevKeyPath)
	if err != nil {
		return err
	}

	tag, err := c.resolveVersion(ctx, root)
	if err != nil {
		return err
	}

	project := filepath.Base(root)

	stagingDir := c.DepsDir
	if stagingDir == "" {
		stagingDir = paths.Staging(project)
	}
	staged, err := deps.Stage(ctx, cfg.Dir(), cfg.Deps, stagingDir)
	if err != nil {
		return err
	}

	outputRoot := c.OutputDir
	if outputRoot == "" {
		outputRoot = filepath.Join(root, outputDirName)
	}
	scratchRoot := c.BuildDir
	if scratchRoot == "" {
		scratchRoot = paths.Scratch(project)
	}

	summary, err := build.Run(ctx, build.Options{
		Config:        cfg,
		Staged:        staged,
		OutputRoot:    outputRoot,
		ScratchRoot:   scratchRoot,
		Version:       tag.String(),
		Env:           builder.CaptureEnv(),
		Builder:       &builder.PackerBuilder{Timeout: c.Timeout},
		DeveloperKeys: keys,
		Force:         c.Force,
		Jobs:          c.Jobs,
	})
	if err != nil {
		return err
	}

	printSummary(summary)

	if summary.Failed() {
		return fmt.Errorf("build finished with failures")
	}
	return nil
}

// Resolves the project version, honoring the explicit release-candidate flag.
func (c *BuildCmd) resolveVersion(ctx context.Context, root string) (version.Tag, error) {
	resolver := version.Resolver{Provider: version.NewGitProvider(root)}
	if c.RC {
		resolver.Policy = func(string) bool { return true }
	}
	return resolver.Resolve(ctx)
}

// Prints the per-image status summary.
func printSummary(summary *build.Summary) {
	fmt.Printf("Build %s\n", summary.Version)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENT\tIMAGE\tSTATUS")
	for _, r := range summary.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Element, r.Image, r.Status)
	}
	w.Flush()
}
