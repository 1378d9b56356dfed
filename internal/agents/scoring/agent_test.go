package scoring

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/embedding"
	"github.com/genoscope/genoscope/internal/agents/seqcontext"
)

func TestEffectScoreBounds(t *testing.T) {
	same := []float64{1, 0, 0}
	opposite := []float64{-1, 0, 0}
	orthogonal := []float64{0, 1, 0}

	if got := effectScore(same, same); got != 0 {
		t.Fatalf("identical vectors score %v, want 0", got)
	}
	if got := effectScore(same, opposite); got != 1 {
		t.Fatalf("opposite vectors score %v, want 1", got)
	}
	if got := effectScore(same, orthogonal); got != 0.5 {
		t.Fatalf("orthogonal vectors score %v, want 0.5", got)
	}
	if got := effectScore(nil, nil); got != 0 {
		t.Fatalf("empty vectors score %v, want 0", got)
	}
	if got := effectScore(same, []float64{1, 0}); got != 0 {
		t.Fatalf("mismatched lengths score %v, want 0", got)
	}
}

func writeStageInputs(t *testing.T, dir string, contexts []seqcontext.Context, embeddings []embedding.Embedding) (string, string) {
	t.Helper()
	contextsPath := filepath.Join(dir, "contexts.jsonl")
	f, err := os.Create(contextsPath)
	if err != nil {
		t.Fatal(err)
	}
	enc := json.NewEncoder(f)
	for _, c := range contexts {
		if err := enc.Encode(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	embeddingsPath := filepath.Join(dir, "genos_embeddings.json")
	data, err := json.Marshal(embeddings)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(embeddingsPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return embeddingsPath, contextsPath
}

func TestExecuteRanksHighestFirst(t *testing.T) {
	dir := t.TempDir()
	contexts := []seqcontext.Context{
		{Chrom: "chr1", Pos: 100, Ref: "A", Alt: "G", Gene: "BRCA1", RefContext: "NAN", AltContext: "NGN"},
		{Chrom: "chr2", Pos: 200, Ref: "C", Alt: "T", Gene: "TP53", RefContext: "NCN", AltContext: "NTN"},
	}
	embeddings := []embedding.Embedding{
		{ID: "chr1:100:A>G", Ref: []float64{1, 0}, Alt: []float64{1, 0}},
		{ID: "chr2:200:C>T", Ref: []float64{1, 0}, Alt: []float64{-1, 0}},
	}
	embeddingsPath, contextsPath := writeStageInputs(t, dir, contexts, embeddings)
	outPath := filepath.Join(dir, "scores.tsv")

	result, err := New().Execute(context.Background(), agent.Task{
		Name: "scoring",
		Input: map[string]any{
			"embeddings_file": embeddingsPath,
			"contexts_file":   contextsPath,
		},
		Output: map[string]string{"scores_file": outPath},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Data["variants_scored"] != 2 {
		t.Fatalf("variants_scored = %v", result.Data["variants_scored"])
	}

	scores, err := ReadScores(outPath)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d scores", len(scores))
	}
	if scores[0].ID != "chr2:200:C>T" || scores[0].Value != 1 {
		t.Fatalf("top score = %+v", scores[0])
	}
	if scores[1].Gene != "BRCA1" || scores[1].Value != 0 {
		t.Fatalf("second score = %+v", scores[1])
	}
}

func TestExecuteFailsOnUnmatchedEmbedding(t *testing.T) {
	dir := t.TempDir()
	embeddingsPath, contextsPath := writeStageInputs(t, dir,
		[]seqcontext.Context{{Chrom: "chr1", Pos: 100, Ref: "A", Alt: "G", RefContext: "NAN", AltContext: "NGN"}},
		[]embedding.Embedding{{ID: "chr9:999:G>C", Ref: []float64{1}, Alt: []float64{1}}},
	)
	_, err := New().Execute(context.Background(), agent.Task{
		Name: "scoring",
		Input: map[string]any{
			"embeddings_file": embeddingsPath,
			"contexts_file":   contextsPath,
		},
		Output: map[string]string{"scores_file": filepath.Join(dir, "scores.tsv")},
	})
	if err == nil {
		t.Fatal("expected error for embedding without a matching context")
	}
}
