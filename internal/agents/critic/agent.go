// Package critic implements the consistency-review stage: cross-artifact
// checks over the scores, evidence, and report produced by earlier stages.
// Its findings are recorded in critic_report.json; they do not fail the run.
package critic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/evidence"
	"github.com/genoscope/genoscope/internal/agents/scoring"
)

// Name is the agent's registry key.
const Name = "ConsistencyAgent"

// Check is one consistency finding.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Report is the critic_report.json payload.
type Report struct {
	Consistent bool    `json:"consistent"`
	Checks     []Check `json:"checks"`
}

// Agent reviews the pipeline's artifacts for internal consistency.
type Agent struct{}

// New returns a critic agent.
func New() *Agent { return &Agent{} }

// Execute reads the all_artifacts mapping (scores, evidence, report paths)
// and writes critic_report.
func (a *Agent) Execute(ctx context.Context, task agent.Task) (agent.Result, error) {
	artifacts, err := task.StringMap("all_artifacts")
	if err != nil {
		return agent.Result{}, err
	}
	outPath, err := task.OutputPath("critic_report")
	if err != nil {
		return agent.Result{}, err
	}
	for _, key := range []string{"scores", "evidence", "report"} {
		if artifacts[key] == "" {
			return agent.Result{}, fmt.Errorf("critic: all_artifacts is missing %q", key)
		}
	}

	scores, err := scoring.ReadScores(artifacts["scores"])
	if err != nil {
		return agent.Result{}, err
	}
	doc, err := evidence.ReadDocument(artifacts["evidence"])
	if err != nil {
		return agent.Result{}, err
	}
	reportText, err := os.ReadFile(artifacts["report"])
	if err != nil {
		return agent.Result{}, fmt.Errorf("critic: read report: %w", err)
	}

	report := Report{Consistent: true}
	add := func(c Check) {
		if !c.Passed {
			report.Consistent = false
		}
		report.Checks = append(report.Checks, c)
	}

	add(checkScoreRange(scores))
	add(checkEvidenceGrounding(scores, doc))
	add(checkReportCoverage(doc, string(reportText)))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return agent.Result{}, fmt.Errorf("critic: encode: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return agent.Result{}, fmt.Errorf("critic: write %s: %w", outPath, err)
	}

	return agent.Success(map[string]any{
		"consistent": report.Consistent,
		"checks":     len(report.Checks),
	}), nil
}

func checkScoreRange(scores []scoring.Score) Check {
	for _, s := range scores {
		if s.Value < 0 || s.Value > 1 {
			return Check{Name: "score_range", Detail: fmt.Sprintf("%s has score %.3f outside [0,1]", s.ID, s.Value)}
		}
	}
	return Check{Name: "score_range", Passed: true}
}

// checkEvidenceGrounding verifies every evidence entry refers to a variant
// that was actually scored.
func checkEvidenceGrounding(scores []scoring.Score, doc evidence.Document) Check {
	known := make(map[string]bool, len(scores))
	for _, s := range scores {
		known[s.ID] = true
	}
	for _, v := range doc.Variants {
		if !known[v.VariantID] {
			return Check{Name: "evidence_grounding", Detail: fmt.Sprintf("evidence cites unscored variant %s", v.VariantID)}
		}
	}
	return Check{Name: "evidence_grounding", Passed: true}
}

// checkReportCoverage verifies every evidence-backed variant is mentioned in
// the report text.
func checkReportCoverage(doc evidence.Document, report string) Check {
	for _, v := range doc.Variants {
		if len(v.Entries) == 0 {
			continue
		}
		if !strings.Contains(report, v.VariantID) {
			return Check{Name: "report_coverage", Detail: fmt.Sprintf("report omits evidence-backed variant %s", v.VariantID)}
		}
	}
	return Check{Name: "report_coverage", Passed: true}
}
