// Package variantfilter implements the candidate-selection stage: it keeps
// variants that pass quality, population-frequency, and consequence-type
// thresholds and writes the surviving records plus filter statistics.
package variantfilter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/vcf"
)

// Name is the agent's registry key.
const Name = "VariantFilterAgent"

// Agent filters an input VCF against the thresholds carried in the task
// input. Thresholds travel in the plan, not the agent, so a replayed plan
// filters identically even after configuration changes.
type Agent struct{}

// New returns a filter agent.
func New() *Agent { return &Agent{} }

// Stats summarizes one filter pass.
type Stats struct {
	Total             int `json:"total"`
	Passed            int `json:"passed"`
	FailedQuality     int `json:"failed_quality"`
	FailedFrequency   int `json:"failed_frequency"`
	FailedConsequence int `json:"failed_consequence"`
}

// Execute reads the VCF named by vcf_file, applies the thresholds, and
// writes filtered_vcf and filter_stats.
func (a *Agent) Execute(ctx context.Context, task agent.Task) (agent.Result, error) {
	vcfPath, err := task.String("vcf_file")
	if err != nil {
		return agent.Result{}, err
	}
	minQuality, err := task.Float("min_quality")
	if err != nil {
		return agent.Result{}, err
	}
	maxPopFreq, err := task.Float("max_pop_freq")
	if err != nil {
		return agent.Result{}, err
	}
	consequences, err := task.Strings("consequence_types")
	if err != nil {
		return agent.Result{}, err
	}
	outVCF, err := task.OutputPath("filtered_vcf")
	if err != nil {
		return agent.Result{}, err
	}
	outStats, err := task.OutputPath("filter_stats")
	if err != nil {
		return agent.Result{}, err
	}

	headers, records, err := vcf.ReadFile(vcfPath)
	if err != nil {
		return agent.Result{}, err
	}

	wanted := make(map[string]bool, len(consequences))
	for _, c := range consequences {
		wanted[c] = true
	}

	stats := Stats{Total: len(records)}
	var kept []vcf.Record
	for _, rec := range records {
		if rec.Qual < minQuality {
			stats.FailedQuality++
			continue
		}
		if freq := rec.PopulationFreq(); freq >= 0 && freq > maxPopFreq {
			stats.FailedFrequency++
			continue
		}
		// Unannotated records are kept; only a known, unwanted consequence
		// excludes a variant.
		if cons := rec.Consequence(); cons != "" && len(wanted) > 0 && !wanted[cons] {
			stats.FailedConsequence++
			continue
		}
		kept = append(kept, rec)
	}
	stats.Passed = len(kept)

	if err := vcf.WriteFile(outVCF, headers, kept); err != nil {
		return agent.Result{}, err
	}
	statsData, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return agent.Result{}, fmt.Errorf("variantfilter: encode stats: %w", err)
	}
	if err := os.WriteFile(outStats, statsData, 0o644); err != nil {
		return agent.Result{}, fmt.Errorf("variantfilter: write stats: %w", err)
	}

	return agent.Success(map[string]any{
		"variants_total":  stats.Total,
		"variants_passed": stats.Passed,
	}), nil
}
