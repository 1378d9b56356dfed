package scheduler

import "github.com/genoscope/genoscope/internal/plan"

// Events receives callbacks during plan execution. Implementations observe
// progress (the TUI, a progress printer); they cannot influence the run. A
// nil Events is ignored.
type Events interface {
	// TaskStarted fires before a task is resolved and dispatched.
	TaskStarted(index, total int, task plan.Task)
	// TaskSucceeded fires after a successful agent call.
	TaskSucceeded(task plan.Task, outcome Outcome)
	// TaskFailed fires when the task is recorded as failed, whatever the
	// failure class.
	TaskFailed(task plan.Task, outcome Outcome)
	// PlanFinished fires once, after the last attempted task.
	PlanFinished(result *RunResult)
}
