package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/infraguys/genesis-devtools/internal/builder"
	"github.com/infraguys/genesis-devtools/internal/config"
	"github.com/infraguys/genesis-devtools/internal/deps"
)

// Recorded as the cause for units never started because a sibling failed.
var errSiblingFailed = errors.New("not started: an earlier image build failed")

// Controls a build run.
type Options struct {
	Config        *config.Config       // Parsed project configuration.
	Staged        []deps.Staged        // Staged dependencies, read-only for every unit.
	OutputRoot    string               // Root of the output tree.
	ScratchRoot   string               // Root under which units claim scratch directories.
	Version       string               // Resolved project version.
	Env           builder.EnvSnapshot  // Environment snapshot for parameter merging.
	Builder       builder.ImageBuilder // External builder backend.
	DeveloperKeys string               // Developer key material, empty for none.
	Force         bool                 // Rebuild and overwrite existing artifacts.
	Jobs          int                  // Maximum concurrent units. Values below 1 mean 1.
}

// Outcome of a build run: one result per declared image.
type Summary struct {
	Version string
	Results []Result
}

// Reports whether any unit failed or was cancelled.
func (s *Summary) Failed() bool {
	for _, r := range s.Results {
		if r.Status == StatusFailed || r.Status == StatusCancelled {
			return true
		}
	}
	return false
}

// Executes every build unit of the configuration and assembles the output
// tree.
//
// Units run on a bounded worker pool. The first unit failure stops new units
// from starting but never interrupts units already in flight; cancelling ctx
// terminates in-flight builder subprocesses. The summary enumerates every
// declared image with its final status. Run itself returns an error only for
// whole-run problems (unresolvable units, output assembly); per-image
// failures are reported through the summary.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	units, err := resolveUnits(opts)
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	slog.Info("starting build",
		"version", opts.Version,
		"units", len(units),
		"jobs", jobs,
		"force", opts.Force,
	)

	led := newLedger()
	var failed atomic.Bool

	var g errgroup.Group
	g.SetLimit(jobs)

	for _, u := range units {
		u := u
		g.Go(func() error {
			runUnit(ctx, opts, u, led, &failed)
			return nil
		})
	}
	g.Wait()

	if err := collect(opts, units, led); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollect, err)
	}

	results := make([]Result, 0, len(units))
	for _, u := range units {
		r, ok := led.get(u)
		if !ok {
			// Every started or skipped unit records exactly once; a missing
			// entry means the scheduling loop has a bug.
			return nil, fmt.Errorf("unit %s has no recorded result", u.key())
		}
		results = append(results, r)
	}

	return &Summary{Version: opts.Version, Results: results}, nil
}

// Executes a single build unit and records its outcome.
func runUnit(ctx context.Context, opts Options, u *unit, led *ledger, failed *atomic.Bool) {
	if ctx.Err() != nil {
		led.record(u, StatusCancelled, ctx.Err())
		return
	}
	if failed.Load() {
		led.record(u, StatusCancelled, errSiblingFailed)
		return
	}

	if !opts.Force {
		if _, err := os.Stat(u.artifact); err == nil {
			slog.Info("skipping image, artifact exists", "image", u.image.Name, "artifact", u.artifact)
			led.record(u, StatusSkipped, nil)
			return
		}
	}

	// The scratch directory is exclusively owned by this unit; clear any
	// leftovers from a previous partial run.
	if err := os.RemoveAll(u.scratch); err != nil {
		failed.Store(true)
		led.record(u, StatusFailed, err)
		return
	}

	produced, err := opts.Builder.Build(ctx, builder.Invocation{
		Image:         u.image,
		Params:        u.params,
		Deps:          opts.Staged,
		DeveloperKeys: opts.DeveloperKeys,
		WorkDir:       u.scratch,
		OutputDir:     u.out,
	})
	if err != nil {
		failed.Store(true)
		if ctx.Err() != nil {
			led.record(u, StatusCancelled, err)
			return
		}
		slog.Error("image build failed", "image", u.image.Name, "error", err)
		led.record(u, StatusFailed, err)
		return
	}

	u.produced = produced
	slog.Info("image built", "image", u.image.Name, "artifact", u.artifact)
	led.record(u, StatusBuilt, nil)
}
