package plan

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the conventional name of a persisted plan inside its
// run directory.
const DefaultFileName = "plan.yaml"

// Save writes the plan to path as YAML. The document is lossless, including
// the configuration snapshot, so it can be replayed later without consulting
// current configuration.
func Save(p *Plan, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("plan: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("plan: write %s: %w", path, err)
	}
	return nil
}

// Load reads a previously saved plan.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a plan document from YAML bytes.
func Parse(data []byte) (*Plan, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("plan: document is empty")
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("plan: decode: %w", err)
	}
	return &p, nil
}
