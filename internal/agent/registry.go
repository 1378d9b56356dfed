package agent

import (
	"fmt"
	"sort"
)

// Registry maps agent names to initialized agent instances. It is built once
// during wiring, before the scheduler is constructed, and is read-only from
// then on; lookup of an unknown name is an error, never a fallback.
type Registry struct {
	agents map[string]Agent
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: map[string]Agent{}}
}

// Register installs an agent instance. Returns an error if the name is empty
// or already taken.
func (r *Registry) Register(name string, a Agent) error {
	if name == "" {
		return fmt.Errorf("agent: name is required")
	}
	if a == nil {
		return fmt.Errorf("agent: instance is required for %s", name)
	}
	if _, exists := r.agents[name]; exists {
		return fmt.Errorf("agent: %s already registered", name)
	}
	r.agents[name] = a
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(name string, a Agent) {
	if err := r.Register(name, a); err != nil {
		panic(err)
	}
}

// Lookup returns the agent bound to name.
func (r *Registry) Lookup(name string) (Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("agent: unknown agent %s", name)
	}
	return a, nil
}

// Names returns the registered agent names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
