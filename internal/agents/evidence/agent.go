// Package evidence implements the evidence-retrieval stage: for the highest
// scored variants it gathers knowledge-base entries keyed by gene and writes
// a grounded evidence document.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/scoring"
	"github.com/genoscope/genoscope/internal/knowledge"
)

// Name is the agent's registry key.
const Name = "EvidenceRAGAgent"

// VariantEvidence groups the retrieved entries for one variant.
type VariantEvidence struct {
	VariantID string            `json:"variant_id"`
	Gene      string            `json:"gene,omitempty"`
	Score     float64           `json:"score"`
	Entries   []knowledge.Entry `json:"entries"`
}

// Document is the evidence.json payload.
type Document struct {
	Variants []VariantEvidence `json:"variants"`
}

// Agent retrieves evidence for scored variants.
type Agent struct {
	store knowledge.Store
	topN  int
}

// New builds an evidence agent over the configured knowledge sources.
func New(store knowledge.Store, topN int) *Agent {
	if topN <= 0 {
		topN = 10
	}
	return &Agent{store: store, topN: topN}
}

// Execute reads scores_file and writes evidence_file for the top variants.
func (a *Agent) Execute(ctx context.Context, task agent.Task) (agent.Result, error) {
	scoresPath, err := task.String("scores_file")
	if err != nil {
		return agent.Result{}, err
	}
	outPath, err := task.OutputPath("evidence_file")
	if err != nil {
		return agent.Result{}, err
	}

	scores, err := scoring.ReadScores(scoresPath)
	if err != nil {
		return agent.Result{}, err
	}
	if len(scores) > a.topN {
		scores = scores[:a.topN]
	}

	doc := Document{Variants: make([]VariantEvidence, 0, len(scores))}
	grounded := 0
	for _, s := range scores {
		entries, err := a.store.Lookup(ctx, s.Gene)
		if err != nil {
			return agent.Result{}, fmt.Errorf("evidence: lookup %s: %w", s.Gene, err)
		}
		if entries == nil {
			entries = []knowledge.Entry{}
		}
		if len(entries) > 0 {
			grounded++
		}
		doc.Variants = append(doc.Variants, VariantEvidence{
			VariantID: s.ID,
			Gene:      s.Gene,
			Score:     s.Value,
			Entries:   entries,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return agent.Result{}, fmt.Errorf("evidence: encode: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return agent.Result{}, fmt.Errorf("evidence: write %s: %w", outPath, err)
	}

	return agent.Success(map[string]any{
		"variants_considered": len(doc.Variants),
		"variants_grounded":   grounded,
	}), nil
}

// ReadDocument loads an evidence.json written by this agent. Shared with the
// report and critic stages.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("evidence: read %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("evidence: parse %s: %w", path, err)
	}
	return doc, nil
}
