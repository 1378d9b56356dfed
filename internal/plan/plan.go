// Package plan defines the compiled task graph for one pipeline run: an
// ordered task list plus run metadata, including a frozen snapshot of the
// configuration the plan was built from. Plans are immutable once execution
// begins; the scheduler only reads them.
package plan

import (
	"fmt"
	"sort"
	"time"

	"github.com/genoscope/genoscope/internal/config"
)

// Metadata captures the identity and provenance of a run.
type Metadata struct {
	SampleName string    `yaml:"sample_name"`
	InputVCF   string    `yaml:"input_vcf"`
	Phenotype  string    `yaml:"phenotype,omitempty"`
	OutputDir  string    `yaml:"output_dir"`
	CreatedAt  time.Time `yaml:"created_at"`
	// ConfigSnapshot freezes the configuration active when the plan was
	// built. Replaying a saved plan uses this snapshot, never the current
	// on-disk configuration.
	ConfigSnapshot config.Config `yaml:"config_snapshot"`
}

// Task is one named step in a plan, bound to one agent.
type Task struct {
	Step        int               `yaml:"step"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Agent       string            `yaml:"agent"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Input       InputMap          `yaml:"input"`
	Output      map[string]string `yaml:"output"`
	// Validation holds advisory post-condition checks. They are evaluated
	// after a successful run and logged; they never fail the task.
	Validation map[string]any `yaml:"validation,omitempty"`
}

// Plan is the compiled, ordered task graph for one run.
type Plan struct {
	Metadata Metadata `yaml:"metadata"`
	Tasks    []Task   `yaml:"tasks"`
}

// Ordered returns the tasks sorted by execution rank. The receiver is not
// modified.
func (p *Plan) Ordered() []Task {
	out := make([]Task, len(p.Tasks))
	copy(out, p.Tasks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}

// TaskNames returns task names in execution order.
func (p *Plan) TaskNames() []string {
	ordered := p.Ordered()
	names := make([]string, len(ordered))
	for i, t := range ordered {
		names[i] = t.Name
	}
	return names
}

// Validate checks the plan's structural invariants: required metadata, a
// non-empty task list, unique names and steps, referential integrity of
// every depends_on entry, and declared order consistent with the dependency
// partial order (a dependency's step must precede its dependent's).
func (p *Plan) Validate() error {
	if p.Metadata.SampleName == "" {
		return fmt.Errorf("plan: metadata sample_name is required")
	}
	if p.Metadata.InputVCF == "" {
		return fmt.Errorf("plan: metadata input_vcf is required")
	}
	if p.Metadata.OutputDir == "" {
		return fmt.Errorf("plan: metadata output_dir is required")
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("plan: at least one task is required")
	}
	steps := make(map[int]string, len(p.Tasks))
	byName := make(map[string]Task, len(p.Tasks))
	for idx, task := range p.Tasks {
		if task.Name == "" {
			return fmt.Errorf("plan: task[%d] name is required", idx)
		}
		if task.Agent == "" {
			return fmt.Errorf("plan: task %s: agent is required", task.Name)
		}
		if task.Step <= 0 {
			return fmt.Errorf("plan: task %s: step must be positive, got %d", task.Name, task.Step)
		}
		if prev, exists := steps[task.Step]; exists {
			return fmt.Errorf("plan: tasks %s and %s share step %d", prev, task.Name, task.Step)
		}
		if _, exists := byName[task.Name]; exists {
			return fmt.Errorf("plan: duplicate task name %s", task.Name)
		}
		steps[task.Step] = task.Name
		byName[task.Name] = task
	}
	for _, task := range p.Tasks {
		for _, dep := range task.DependsOn {
			target, ok := byName[dep]
			if !ok {
				return fmt.Errorf("plan: task %s depends on unknown task %s", task.Name, dep)
			}
			if target.Step >= task.Step {
				return fmt.Errorf("plan: task %s (step %d) depends on %s (step %d) which does not precede it", task.Name, task.Step, dep, target.Step)
			}
		}
	}
	return nil
}
