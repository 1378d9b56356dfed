package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/evidence"
	"github.com/genoscope/genoscope/internal/knowledge"
)

const scoresTSV = `variant_id	chrom	pos	ref	alt	gene	score
chr1:100:A>G	chr1	100	A	G	BRCA1	0.900000
chr2:200:C>T	chr2	200	C	T	TP53	0.400000
`

func reportFixture(t *testing.T) agent.Task {
	t.Helper()
	dir := t.TempDir()
	scoresPath := filepath.Join(dir, "scores.tsv")
	if err := os.WriteFile(scoresPath, []byte(scoresTSV), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := evidence.Document{Variants: []evidence.VariantEvidence{
		{VariantID: "chr1:100:A>G", Gene: "BRCA1", Score: 0.9, Entries: []knowledge.Entry{
			{Source: "clinvar", Summary: "pathogenic missense cluster"},
		}},
		{VariantID: "chr2:200:C>T", Gene: "TP53", Score: 0.4, Entries: []knowledge.Entry{}},
	}}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	evidencePath := filepath.Join(dir, "evidence.json")
	if err := os.WriteFile(evidencePath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return agent.Task{
		Name: "report_generation",
		Input: map[string]any{
			"scores_file":   scoresPath,
			"evidence_file": evidencePath,
			"sample_name":   "NA12878",
			"phenotype":     "hereditary breast cancer",
		},
		Output: map[string]string{"report_file": filepath.Join(dir, "report.md")},
	}
}

func TestExecuteRendersFallbackReport(t *testing.T) {
	task := reportFixture(t)

	result, err := New(nil, 10).Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Data["variants_reported"] != 2 {
		t.Fatalf("result data = %v", result.Data)
	}

	data, err := os.ReadFile(task.Output["report_file"])
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "# Variant Interpretation Report: NA12878") {
		t.Fatalf("missing title:\n%s", text)
	}
	for _, want := range []string{
		"**Phenotype:** hereditary breast cancer",
		"## Summary",
		"## Ranked Variants",
		"| 1 | chr1:100:A>G | BRCA1 | 0.900 |",
		"### chr2:200:C>T",
		"No knowledge-base evidence found.",
		"clinvar: pathogenic missense cluster",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}

func TestExecuteLimitsRankedVariants(t *testing.T) {
	task := reportFixture(t)

	result, err := New(nil, 1).Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Data["variants_reported"] != 1 {
		t.Fatalf("result data = %v", result.Data)
	}
	data, err := os.ReadFile(task.Output["report_file"])
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "| 2 |") {
		t.Fatal("report ranks more variants than requested")
	}
}

func TestBuildPromptCitesEvidence(t *testing.T) {
	doc := evidence.Document{Variants: []evidence.VariantEvidence{
		{VariantID: "chr1:100:A>G", Entries: []knowledge.Entry{{Source: "clinvar", Summary: "known pathogenic"}}},
	}}
	prompt := buildPrompt("NA12878", "", nil, doc)
	if !strings.Contains(prompt, "[chr1:100:A>G] clinvar: known pathogenic") {
		t.Fatalf("prompt missing evidence line:\n%s", prompt)
	}
}
