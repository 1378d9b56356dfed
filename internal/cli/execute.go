package cli

import (
	"context"
	"fmt"

	"github.com/genoscope/genoscope/internal/agents"
	"github.com/genoscope/genoscope/internal/logging"
	"github.com/genoscope/genoscope/internal/plan"
	"github.com/genoscope/genoscope/internal/scheduler"
	"github.com/genoscope/genoscope/internal/tui"
)

// executePlan drives one plan to completion. Agents and the stop-on-error
// policy come from the plan's config snapshot, never from current
// configuration.
func executePlan(ctx context.Context, p *plan.Plan, log *logging.Logger, withTUI bool) error {
	snapshot := p.Metadata.ConfigSnapshot
	registry, err := agents.BuildRegistry(snapshot)
	if err != nil {
		return err
	}
	sched := scheduler.New(registry).
		WithLogger(log).
		WithStopOnError(snapshot.Execution.Stop())

	var result *scheduler.RunResult
	if withTUI {
		result, err = tui.Run(ctx, sched, p)
		if err != nil {
			return err
		}
	} else {
		result = sched.ExecutePlan(ctx, p)
	}

	// The summary is printed even when the run stops early; it reflects
	// exactly the attempted prefix.
	printSummary(p, result)
	if result.Failed() {
		return fmt.Errorf("run finished with failures: %d/%d tasks succeeded", result.Succeeded(), len(p.Tasks))
	}
	return nil
}
