package scheduler

import "time"

// TaskStatus is the recorded outcome of one task attempt.
type TaskStatus string

const (
	TaskStatusSuccess TaskStatus = "success"
	TaskStatusFailed  TaskStatus = "failed"
)

// Outcome records one task attempt. On success Outputs mirrors the task's
// declared output map and Result carries the agent's structured data; on
// failure Error describes what went wrong.
type Outcome struct {
	Name     string
	Step     int
	Status   TaskStatus
	Outputs  map[string]string
	Result   map[string]any
	Error    string
	Started  time.Time
	Finished time.Time
}

// RunResult accumulates per-task outcomes for one execution pass over a
// plan. It is created empty, appended to after every attempt, and never
// retroactively rewritten. The attempted sequence is always a prefix of the
// plan's step-ordered task names.
type RunResult struct {
	outcomes []Outcome
	byName   map[string]int
}

// NewRunResult returns an empty run record.
func NewRunResult() *RunResult {
	return &RunResult{byName: map[string]int{}}
}

func (r *RunResult) record(o Outcome) {
	r.byName[o.Name] = len(r.outcomes)
	r.outcomes = append(r.outcomes, o)
}

// Outcomes returns the recorded outcomes in attempt order.
func (r *RunResult) Outcomes() []Outcome {
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// Outcome looks up a task's outcome by name.
func (r *RunResult) Outcome(name string) (Outcome, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Outcome{}, false
	}
	return r.outcomes[idx], true
}

// Attempted returns the names of the tasks attempted, in order.
func (r *RunResult) Attempted() []string {
	names := make([]string, len(r.outcomes))
	for i, o := range r.outcomes {
		names[i] = o.Name
	}
	return names
}

// Failed reports whether any attempted task failed.
func (r *RunResult) Failed() bool {
	for _, o := range r.outcomes {
		if o.Status != TaskStatusSuccess {
			return true
		}
	}
	return false
}

// Succeeded counts successful tasks.
func (r *RunResult) Succeeded() int {
	n := 0
	for _, o := range r.outcomes {
		if o.Status == TaskStatusSuccess {
			n++
		}
	}
	return n
}

// Accumulated is the namespace dependency references resolve against: for
// every successfully completed task, its declared output map. It has exactly
// one writer (the scheduler) between sequential dispatches.
type Accumulated map[string]map[string]string

// outputs builds the resolution namespace from the successes recorded so
// far.
func (r *RunResult) outputs() Accumulated {
	acc := make(Accumulated, len(r.outcomes))
	for _, o := range r.outcomes {
		if o.Status == TaskStatusSuccess {
			acc[o.Name] = o.Outputs
		}
	}
	return acc
}
