package scheduler

import (
	"fmt"

	"github.com/genoscope/genoscope/internal/plan"
)

// UnresolvedError reports a dependency reference that could not be satisfied
// at dispatch time: the referenced task has no recorded output (not yet run,
// or failed), or it never declared the referenced key.
type UnresolvedError struct {
	Ref    plan.Reference
	Reason string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved dependency %s: %s", e.Ref, e.Reason)
}

// Resolve substitutes every dependency reference in the input map with the
// concrete value from outputs, recursing into nested mappings. Resolution is
// eager and total: any reference without a value is an error, never a nil.
// The input map and outputs are not modified; a new map is returned.
func Resolve(in plan.InputMap, outputs Accumulated) (map[string]any, error) {
	resolved := make(map[string]any, len(in))
	for key, value := range in {
		v, err := resolveValue(value, outputs)
		if err != nil {
			return nil, err
		}
		resolved[key] = v
	}
	return resolved, nil
}

func resolveValue(v plan.Value, outputs Accumulated) (any, error) {
	if ref, ok := v.Reference(); ok {
		taskOutputs, ok := outputs[ref.Task]
		if !ok {
			return nil, &UnresolvedError{Ref: ref, Reason: fmt.Sprintf("task %s has not produced outputs", ref.Task)}
		}
		value, ok := taskOutputs[ref.Key]
		if !ok {
			return nil, &UnresolvedError{Ref: ref, Reason: fmt.Sprintf("task %s declares no output %q", ref.Task, ref.Key)}
		}
		return value, nil
	}
	if nested, ok := v.Nested(); ok {
		return Resolve(nested, outputs)
	}
	return v.Literal(), nil
}
