package scheduler

import (
	"os"

	"github.com/genoscope/genoscope/internal/plan"
)

// validate evaluates a task's declared post-condition checks after a
// successful agent call. Checks are advisory: a miss is logged, never
// promoted to a task failure. The core only interprets artifact existence;
// content-level checks belong to the agents themselves and are noted here so
// the log records that they were declared.
func (s *Scheduler) validate(task plan.Task) {
	if len(task.Validation) == 0 {
		return
	}
	if wantExists, _ := task.Validation["check_file_exists"].(bool); wantExists {
		for key, path := range task.Output {
			if _, err := os.Stat(path); err != nil {
				s.log.Printf("validation: %s: declared output %s (%s) is missing", task.Name, key, path)
			}
		}
	}
	for check := range task.Validation {
		if check == "check_file_exists" {
			continue
		}
		s.log.Printf("validation: %s: %s is agent-level, not checked by the scheduler", task.Name, check)
	}
}
