package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/seqcontext"
)

func TestMockVectorsAreDeterministic(t *testing.T) {
	client := NewClient("", "genos-base", "mean", 8, true, time.Second)
	first, err := client.Embed(context.Background(), []string{"NACGT", "NTGCA"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.Embed(context.Background(), []string{"NACGT", "NTGCA"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same sequences embedded differently across calls")
	}
	if reflect.DeepEqual(first[0], first[1]) {
		t.Fatal("different sequences produced identical vectors")
	}
}

func TestMockVectorsAreUnitNorm(t *testing.T) {
	vec := mockVector("NACGTN", 16)
	if len(vec) != 16 {
		t.Fatalf("dim = %d", len(vec))
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
		t.Fatalf("norm = %v", math.Sqrt(norm))
	}
}

func TestEmbedCallsServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req struct {
			Model     string   `json:"model"`
			Sequences []string `json:"sequences"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		vectors := make([][]float64, len(req.Sequences))
		for i := range vectors {
			vectors[i] = []float64{float64(i), 1}
		}
		json.NewEncoder(w).Encode(map[string]any{"embeddings": vectors})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "genos-base", "mean", 2, false, time.Second)
	vectors, err := client.Embed(context.Background(), []string{"NAN", "NGN"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedRejectsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "genos-base", "mean", 2, false, time.Second)
	if _, err := client.Embed(context.Background(), []string{"NAN"}); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestExecuteEmbedsEveryContext(t *testing.T) {
	dir := t.TempDir()
	contextsPath := filepath.Join(dir, "contexts.jsonl")
	f, err := os.Create(contextsPath)
	if err != nil {
		t.Fatal(err)
	}
	enc := json.NewEncoder(f)
	contexts := []seqcontext.Context{
		{Chrom: "chr1", Pos: 100, Ref: "A", Alt: "G", RefContext: "NAN", AltContext: "NGN"},
		{Chrom: "chr2", Pos: 200, Ref: "C", Alt: "T", RefContext: "NCN", AltContext: "NTN"},
		{Chrom: "chr3", Pos: 300, Ref: "G", Alt: "A", RefContext: "NGN", AltContext: "NAN"},
	}
	for _, c := range contexts {
		if err := enc.Encode(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "genos_embeddings.json")

	// batch_size 2 forces a partial final batch.
	result, err := New(8).Execute(context.Background(), agent.Task{
		Name: "genos_embedding",
		Input: map[string]any{
			"contexts_file": contextsPath,
			"model_name":    "genos-base",
			"pooling":       "mean",
			"timeout":       5,
			"batch_size":    2,
			"mock_mode":     true,
		},
		Output: map[string]string{"embeddings_file": outPath},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Data["variants"] != 3 || result.Data["dim"] != 8 {
		t.Fatalf("result data = %v", result.Data)
	}

	embeddings, err := ReadEmbeddings(outPath)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(embeddings) != 3 {
		t.Fatalf("got %d embeddings", len(embeddings))
	}
	if embeddings[0].ID != "chr1:100:A>G" {
		t.Fatalf("id = %q", embeddings[0].ID)
	}
	// chr1 alt context and chr3 ref context are the same sequence, so the
	// mock must embed them identically.
	if !reflect.DeepEqual(embeddings[0].Alt, embeddings[2].Ref) {
		t.Fatal("identical sequences embedded differently")
	}
}
