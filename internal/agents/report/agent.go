// Package report implements the report-generation stage: a Markdown summary
// of the scored variants and their evidence. When a language model is
// configured its narrative is used; otherwise a deterministic template
// produces the same structure without prose.
package report

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/evidence"
	"github.com/genoscope/genoscope/internal/agents/scoring"
	"github.com/genoscope/genoscope/internal/llm"
)

// Name is the agent's registry key.
const Name = "ReportAgent"

const systemPrompt = "You are a clinical genomics assistant. Summarize variant findings cautiously; every claim must cite the provided evidence."

// Agent renders the analysis report.
type Agent struct {
	llm  *llm.Client
	topN int
}

// New builds a report agent. client may be nil or unconfigured; the fallback
// template is used in that case.
func New(client *llm.Client, topN int) *Agent {
	if topN <= 0 {
		topN = 10
	}
	return &Agent{llm: client, topN: topN}
}

// Execute reads scores_file and evidence_file and writes report_file.
func (a *Agent) Execute(ctx context.Context, task agent.Task) (agent.Result, error) {
	scoresPath, err := task.String("scores_file")
	if err != nil {
		return agent.Result{}, err
	}
	evidencePath, err := task.String("evidence_file")
	if err != nil {
		return agent.Result{}, err
	}
	outPath, err := task.OutputPath("report_file")
	if err != nil {
		return agent.Result{}, err
	}
	sampleName, _ := task.String("sample_name")
	phenotype, _ := task.String("phenotype")

	scores, err := scoring.ReadScores(scoresPath)
	if err != nil {
		return agent.Result{}, err
	}
	doc, err := evidence.ReadDocument(evidencePath)
	if err != nil {
		return agent.Result{}, err
	}
	if len(scores) > a.topN {
		scores = scores[:a.topN]
	}

	body := a.narrative(ctx, sampleName, phenotype, scores, doc)
	content := render(sampleName, phenotype, scores, doc, body)
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return agent.Result{}, fmt.Errorf("report: write %s: %w", outPath, err)
	}
	return agent.Success(map[string]any{"variants_reported": len(scores)}), nil
}

// narrative asks the language model for a summary paragraph, falling back to
// deterministic text on any failure.
func (a *Agent) narrative(ctx context.Context, sample, phenotype string, scores []scoring.Score, doc evidence.Document) string {
	if a.llm.Enabled() {
		prompt := buildPrompt(sample, phenotype, scores, doc)
		if text, err := a.llm.Generate(ctx, systemPrompt, prompt); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	grounded := 0
	for _, v := range doc.Variants {
		if len(v.Entries) > 0 {
			grounded++
		}
	}
	return fmt.Sprintf("%d candidate variants were scored; the top %d are listed below. %d of them have supporting knowledge-base evidence. Scores reflect predicted functional shift and are not a clinical diagnosis.",
		len(scores), len(scores), grounded)
}

func buildPrompt(sample, phenotype string, scores []scoring.Score, doc evidence.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sample: %s\n", sample)
	if phenotype != "" {
		fmt.Fprintf(&b, "Phenotype: %s\n", phenotype)
	}
	b.WriteString("Top variants (id, gene, score):\n")
	for _, s := range scores {
		fmt.Fprintf(&b, "- %s %s %.3f\n", s.ID, s.Gene, s.Value)
	}
	b.WriteString("Evidence:\n")
	for _, v := range doc.Variants {
		for _, e := range v.Entries {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", v.VariantID, e.Source, e.Summary)
		}
	}
	return b.String()
}

func render(sample, phenotype string, scores []scoring.Score, doc evidence.Document, narrative string) string {
	evidenceByID := make(map[string][]string, len(doc.Variants))
	for _, v := range doc.Variants {
		for _, e := range v.Entries {
			evidenceByID[v.VariantID] = append(evidenceByID[v.VariantID], fmt.Sprintf("%s: %s", e.Source, e.Summary))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Variant Interpretation Report: %s\n\n", sample)
	if phenotype != "" {
		fmt.Fprintf(&b, "**Phenotype:** %s\n\n", phenotype)
	}
	b.WriteString("## Summary\n\n")
	b.WriteString(narrative)
	b.WriteString("\n\n## Ranked Variants\n\n")
	b.WriteString("| Rank | Variant | Gene | Score |\n|---|---|---|---|\n")
	for i, s := range scores {
		fmt.Fprintf(&b, "| %d | %s | %s | %.3f |\n", i+1, s.ID, s.Gene, s.Value)
	}
	b.WriteString("\n## Evidence\n\n")
	for _, s := range scores {
		fmt.Fprintf(&b, "### %s\n\n", s.ID)
		entries := evidenceByID[s.ID]
		if len(entries) == 0 {
			b.WriteString("No knowledge-base evidence found.\n\n")
			continue
		}
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		b.WriteString("\n")
	}
	return b.String()
}
