// Package agent defines the contract every pipeline stage implementation
// satisfies, plus the registry the scheduler looks agents up in. Agents are
// the external collaborators of the orchestration core: they receive a task
// with already-resolved inputs, write the files named in the task's output
// map, and report failure by returning an error.
package agent

import (
	"context"
	"fmt"
)

// StatusSuccess is the status every agent reports on a successful run.
const StatusSuccess = "success"

// Task is the dispatch view of one plan task: its resolved inputs and the
// destinations its artifacts must be written to. The orchestration core
// never interprets artifact contents.
type Task struct {
	Name   string
	Step   int
	Input  map[string]any
	Output map[string]string
}

// Result is an agent's structured contribution to the run record.
type Result struct {
	Status string
	Data   map[string]any
}

// Success builds a success result carrying optional structured data.
func Success(data map[string]any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// Agent is implemented by every pipeline stage.
type Agent interface {
	Execute(ctx context.Context, task Task) (Result, error)
}

// OutputPath returns the destination path declared under key, or an error
// when the plan did not declare it.
func (t Task) OutputPath(key string) (string, error) {
	path, ok := t.Output[key]
	if !ok || path == "" {
		return "", fmt.Errorf("agent: task %s declares no output %q", t.Name, key)
	}
	return path, nil
}

// String reads a required string input.
func (t Task) String(key string) (string, error) {
	raw, ok := t.Input[key]
	if !ok {
		return "", fmt.Errorf("agent: task %s is missing input %q", t.Name, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("agent: task %s input %q is %T, expected string", t.Name, key, raw)
	}
	return s, nil
}

// Float reads a required numeric input, accepting the numeric types YAML
// decoding produces.
func (t Task) Float(key string) (float64, error) {
	raw, ok := t.Input[key]
	if !ok {
		return 0, fmt.Errorf("agent: task %s is missing input %q", t.Name, key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("agent: task %s input %q is %T, expected number", t.Name, key, raw)
	}
}

// Int reads a required integer input.
func (t Task) Int(key string) (int, error) {
	f, err := t.Float(key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Bool reads an optional boolean input, defaulting to false when absent.
func (t Task) Bool(key string) bool {
	v, _ := t.Input[key].(bool)
	return v
}

// Strings reads a required string-list input.
func (t Task) Strings(key string) ([]string, error) {
	raw, ok := t.Input[key]
	if !ok {
		return nil, fmt.Errorf("agent: task %s is missing input %q", t.Name, key)
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("agent: task %s input %q contains %T, expected string", t.Name, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("agent: task %s input %q is %T, expected list", t.Name, key, raw)
	}
}

// StringMap reads a required nested string-valued mapping input.
func (t Task) StringMap(key string) (map[string]string, error) {
	raw, ok := t.Input[key]
	if !ok {
		return nil, fmt.Errorf("agent: task %s is missing input %q", t.Name, key)
	}
	nested, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("agent: task %s input %q is %T, expected mapping", t.Name, key, raw)
	}
	out := make(map[string]string, len(nested))
	for k, item := range nested {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("agent: task %s input %q key %q is %T, expected string", t.Name, key, k, item)
		}
		out[k] = s
	}
	return out, nil
}
