// Package scheduler drives execution of a compiled plan: it walks the tasks
// in declared order, resolves each task's dependency references against the
// outputs accumulated so far, dispatches to the bound agent, and records
// per-task outcomes under the configured stop-on-error policy.
package scheduler

import (
	"context"
	"time"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/logging"
	"github.com/genoscope/genoscope/internal/plan"
)

// Scheduler executes plans sequentially, one task at a time. It trusts the
// plan's declared order (validation already rejects plans whose order
// violates the dependency partial order) and never retries a task.
type Scheduler struct {
	registry    *agent.Registry
	log         *logging.Logger
	events      Events
	stopOnError bool
}

// New builds a scheduler over an explicit agent registry. The default policy
// is stop-on-error.
func New(registry *agent.Registry) *Scheduler {
	return &Scheduler{registry: registry, stopOnError: true}
}

// WithLogger attaches a run logger.
func (s *Scheduler) WithLogger(log *logging.Logger) *Scheduler {
	s.log = log
	return s
}

// WithEvents attaches an execution observer.
func (s *Scheduler) WithEvents(events Events) *Scheduler {
	s.events = events
	return s
}

// WithStopOnError overrides the stop-on-error policy.
func (s *Scheduler) WithStopOnError(stop bool) *Scheduler {
	s.stopOnError = stop
	return s
}

// ExecutePlan runs the plan's tasks in ascending step order and returns the
// per-task record. The returned result always reflects exactly the tasks
// attempted; under stop-on-error that is a prefix of the plan. The plan
// itself is never modified.
func (s *Scheduler) ExecutePlan(ctx context.Context, p *plan.Plan) *RunResult {
	result := NewRunResult()
	ordered := p.Ordered()
	total := len(ordered)
	s.log.Printf("executing plan: %d tasks, stop_on_error=%v", total, s.stopOnError)

	for i, task := range ordered {
		if s.events != nil {
			s.events.TaskStarted(i, total, task)
		}
		outcome := s.runTask(ctx, task, result.outputs())
		result.record(outcome)

		if outcome.Status == TaskStatusSuccess {
			s.log.Printf("[step %d] %s: success", task.Step, task.Name)
			s.validate(task)
			if s.events != nil {
				s.events.TaskSucceeded(task, outcome)
			}
			continue
		}

		s.log.Printf("[step %d] %s: failed: %s", task.Step, task.Name, outcome.Error)
		if s.events != nil {
			s.events.TaskFailed(task, outcome)
		}
		if s.stopOnError {
			s.log.Printf("stop-on-error: aborting remaining tasks")
			break
		}
	}

	s.log.Printf("plan finished: %d/%d tasks succeeded", result.Succeeded(), total)
	if s.events != nil {
		s.events.PlanFinished(result)
	}
	return result
}

// runTask resolves, dispatches, and classifies one task attempt. All failure
// classes (unresolved dependency, unknown agent, agent execution error) are
// recorded the same way; the policy decision belongs to the caller.
func (s *Scheduler) runTask(ctx context.Context, task plan.Task, outputs Accumulated) Outcome {
	outcome := Outcome{Name: task.Name, Step: task.Step, Started: time.Now()}
	fail := func(err error) Outcome {
		outcome.Status = TaskStatusFailed
		outcome.Error = err.Error()
		outcome.Finished = time.Now()
		return outcome
	}

	resolved, err := Resolve(task.Input, outputs)
	if err != nil {
		return fail(err)
	}
	impl, err := s.registry.Lookup(task.Agent)
	if err != nil {
		return fail(err)
	}
	res, err := impl.Execute(ctx, agent.Task{
		Name:   task.Name,
		Step:   task.Step,
		Input:  resolved,
		Output: cloneOutputs(task.Output),
	})
	if err != nil {
		return fail(err)
	}

	outcome.Status = TaskStatusSuccess
	outcome.Outputs = cloneOutputs(task.Output)
	outcome.Result = res.Data
	outcome.Finished = time.Now()
	return outcome
}

func cloneOutputs(out map[string]string) map[string]string {
	if out == nil {
		return nil
	}
	clone := make(map[string]string, len(out))
	for k, v := range out {
		clone[k] = v
	}
	return clone
}
