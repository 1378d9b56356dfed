package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/genoscope/genoscope/internal/config"
	"github.com/genoscope/genoscope/internal/logging"
)

// Planner expands the fixed seven-stage pipeline template into a concrete
// plan, binding stage inputs and outputs from the active configuration and
// wiring downstream stages to upstream outputs through dependency
// references.
type Planner struct {
	cfg config.Config
	log *logging.Logger
}

// NewPlanner builds a planner over the given configuration. The logger may
// be nil.
func NewPlanner(cfg config.Config, log *logging.Logger) *Planner {
	return &Planner{cfg: cfg, log: log}
}

// CreatePlan builds the plan for one run. The output directory is created if
// absent. phenotype may be empty.
func (p *Planner) CreatePlan(inputVCF, outputDir, sampleName, phenotype string) (*Plan, error) {
	if inputVCF == "" {
		return nil, fmt.Errorf("plan: input VCF path is required")
	}
	if outputDir == "" {
		return nil, fmt.Errorf("plan: output directory is required")
	}
	if sampleName == "" {
		sampleName = "sample"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("plan: create output dir: %w", err)
	}
	p.log.Printf("creating plan for sample %s", sampleName)

	out := func(name string) string { return filepath.Join(outputDir, name) }
	cfg := p.cfg

	plan := &Plan{
		Metadata: Metadata{
			SampleName:     sampleName,
			InputVCF:       inputVCF,
			Phenotype:      phenotype,
			OutputDir:      outputDir,
			CreatedAt:      time.Now().UTC().Truncate(time.Second),
			ConfigSnapshot: cfg,
		},
		Tasks: []Task{
			{
				Step:        1,
				Name:        "variant_filter",
				Description: "candidate variant selection (quality, frequency, consequence)",
				Agent:       "VariantFilterAgent",
				Input: InputMap{
					"vcf_file":          Lit(inputVCF),
					"min_quality":       Lit(cfg.VariantFilter.MinQuality),
					"max_pop_freq":      Lit(cfg.VariantFilter.MaxPopulationFreq),
					"consequence_types": Lit(cfg.VariantFilter.ConsequenceTypes),
				},
				Output: map[string]string{
					"filtered_vcf": out("variants.filtered.vcf"),
					"filter_stats": out("filter_stats.json"),
				},
				Validation: map[string]any{
					"check_file_exists": true,
					"min_variants":      0,
				},
			},
			{
				Step:        2,
				Name:        "sequence_context",
				Description: "ref/alt sequence window construction",
				Agent:       "SequenceContextAgent",
				DependsOn:   []string{"variant_filter"},
				Input: InputMap{
					"variants_file": Ref("variant_filter", "filtered_vcf"),
				},
				Output: map[string]string{
					"contexts_file": out("contexts.jsonl"),
				},
				Validation: map[string]any{
					"check_file_exists":    true,
					"check_ref_validation": true,
				},
			},
			{
				Step:        3,
				Name:        "genos_embedding",
				Description: "Genos embedding generation",
				Agent:       "GenosAgent",
				DependsOn:   []string{"sequence_context"},
				Input: InputMap{
					"contexts_file": Ref("sequence_context", "contexts_file"),
					"server_url":    Lit(cfg.Genos.ServerURL),
					"model_name":    Lit(cfg.Genos.ModelName),
					"pooling":       Lit(cfg.Genos.Pooling),
					"timeout":       Lit(cfg.Genos.TimeoutSecs),
					"batch_size":    Lit(cfg.Performance.BatchSize),
					"mock_mode":     Lit(cfg.Genos.MockMode),
				},
				Output: map[string]string{
					"embeddings_file": out("genos_embeddings.json"),
				},
				Validation: map[string]any{
					"check_file_exists":   true,
					"check_embedding_dim": true,
				},
			},
			{
				Step:        4,
				Name:        "scoring",
				Description: "variant effect scoring",
				Agent:       "ScoringAgent",
				DependsOn:   []string{"genos_embedding", "sequence_context"},
				Input: InputMap{
					"embeddings_file": Ref("genos_embedding", "embeddings_file"),
					"contexts_file":   Ref("sequence_context", "contexts_file"),
				},
				Output: map[string]string{
					"scores_file": out("scores.tsv"),
				},
				Validation: map[string]any{
					"check_file_exists": true,
					"check_score_range": []any{0, 1},
				},
			},
			{
				Step:        5,
				Name:        "evidence_rag",
				Description: "evidence retrieval and grounding",
				Agent:       "EvidenceRAGAgent",
				DependsOn:   []string{"scoring"},
				Input: InputMap{
					"scores_file": Ref("scoring", "scores_file"),
				},
				Output: map[string]string{
					"evidence_file": out("evidence.json"),
				},
				Validation: map[string]any{
					"check_file_exists":        true,
					"check_evidence_grounding": true,
				},
			},
			{
				Step:        6,
				Name:        "report_generation",
				Description: "report generation",
				Agent:       "ReportAgent",
				DependsOn:   []string{"scoring", "evidence_rag"},
				Input: InputMap{
					"scores_file":   Ref("scoring", "scores_file"),
					"evidence_file": Ref("evidence_rag", "evidence_file"),
					"sample_name":   Lit(sampleName),
					"phenotype":     Lit(phenotype),
				},
				Output: map[string]string{
					"report_file": out("report.md"),
				},
				Validation: map[string]any{
					"check_file_exists": true,
				},
			},
			{
				Step:        7,
				Name:        "critic_review",
				Description: "consistency review of all artifacts",
				Agent:       "ConsistencyAgent",
				DependsOn:   []string{"scoring", "evidence_rag", "report_generation"},
				Input: InputMap{
					"all_artifacts": Nested(InputMap{
						"scores":   Ref("scoring", "scores_file"),
						"evidence": Ref("evidence_rag", "evidence_file"),
						"report":   Ref("report_generation", "report_file"),
					}),
				},
				Output: map[string]string{
					"critic_report": out("critic_report.json"),
				},
				Validation: map[string]any{
					"check_file_exists": true,
					"check_consistency": true,
				},
			},
		},
	}

	p.log.Printf("plan created with %d tasks", len(plan.Tasks))
	return plan, nil
}

// ValidatePlan reports whether the plan is executable, logging the failure
// detail instead of returning it so callers can decide how to proceed.
func (p *Planner) ValidatePlan(plan *Plan) bool {
	if plan == nil {
		p.log.Printf("plan validation failed: no plan")
		return false
	}
	if err := plan.Validate(); err != nil {
		p.log.Printf("plan validation failed: %v", err)
		return false
	}
	p.log.Printf("plan validation passed")
	return true
}

// ExecutionOrder returns the task names in the order the scheduler will run
// them.
func (p *Planner) ExecutionOrder(plan *Plan) []string {
	return plan.TaskNames()
}
