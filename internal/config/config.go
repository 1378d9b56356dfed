// internal/config/config.go
//
// Pipeline configuration. A run is parameterized from a YAML file; when a
// plan is built the active configuration is frozen into the plan document so
// the run can be replayed later with identical parameters.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the conventional location of the pipeline configuration.
const DefaultPath = "configs/run.yaml"

// VariantFilter controls the candidate variant selection stage.
type VariantFilter struct {
	MinQuality        float64  `yaml:"min_quality"`
	MaxPopulationFreq float64  `yaml:"max_population_freq"`
	ConsequenceTypes  []string `yaml:"consequence_types"`
}

// Genos configures the remote embedding service.
type Genos struct {
	ServerURL    string `yaml:"server_url,omitempty"`
	ModelName    string `yaml:"model_name"`
	Pooling      string `yaml:"pooling"`
	TimeoutSecs  int    `yaml:"timeout"`
	MockMode     bool   `yaml:"mock_mode,omitempty"`
	EmbeddingDim int    `yaml:"embedding_dim"`
}

// Performance holds batching knobs shared by remote-calling stages.
type Performance struct {
	BatchSize int `yaml:"batch_size"`
}

// Execution controls orchestration-level behavior.
type Execution struct {
	// StopOnError halts the remaining plan when a task fails. nil means the
	// default policy (stop).
	StopOnError *bool `yaml:"stop_on_error,omitempty"`
}

// Stop reports the effective stop-on-error policy.
func (e Execution) Stop() bool {
	if e.StopOnError == nil {
		return true
	}
	return *e.StopOnError
}

// Knowledge configures evidence retrieval sources.
type Knowledge struct {
	IndexPath string `yaml:"index_path,omitempty"`
	RemoteURL string `yaml:"remote_url,omitempty"`
}

// LLM configures the report-generation language model client.
type LLM struct {
	APIURL    string `yaml:"api_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	Model     string `yaml:"model,omitempty"`
}

// Report controls report sizing.
type Report struct {
	TopN int `yaml:"top_n"`
}

// Config is the full pipeline configuration. The zero value is not usable;
// start from Default and overlay a file with Load.
type Config struct {
	VariantFilter VariantFilter `yaml:"variant_filter"`
	Genos         Genos         `yaml:"genos"`
	Performance   Performance   `yaml:"performance"`
	Execution     Execution     `yaml:"execution"`
	Knowledge     Knowledge     `yaml:"knowledge,omitempty"`
	LLM           LLM           `yaml:"llm,omitempty"`
	Report        Report        `yaml:"report"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		VariantFilter: VariantFilter{
			MinQuality:        30,
			MaxPopulationFreq: 0.01,
			ConsequenceTypes:  []string{"missense_variant", "stop_gained", "frameshift_variant", "splice_donor_variant", "splice_acceptor_variant"},
		},
		Genos: Genos{
			ModelName:    "genos-base",
			Pooling:      "mean",
			TimeoutSecs:  120,
			MockMode:     true,
			EmbeddingDim: 256,
		},
		Performance: Performance{BatchSize: 32},
		Report:      Report{TopN: 10},
	}
}

// Load reads the configuration at path, overlaying it onto the defaults. A
// missing file is not an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
