// Package embedding implements the embedding-generation stage: batched
// calls against a Genos embedding server (or a deterministic mock) for the
// ref and alt context of every variant.
package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/seqcontext"
)

// Name is the agent's registry key.
const Name = "GenosAgent"

// Embedding pairs a variant with its ref/alt vectors.
type Embedding struct {
	ID  string    `json:"id"`
	Ref []float64 `json:"ref_embedding"`
	Alt []float64 `json:"alt_embedding"`
}

// Agent generates embeddings for sequence contexts. Connection parameters
// travel in the task input so replayed plans reach the same server with the
// same batching.
type Agent struct {
	dim int
}

// New returns an embedding agent; dim is the expected vector width (used in
// mock mode).
func New(dim int) *Agent { return &Agent{dim: dim} }

// Execute reads contexts_file, embeds ref and alt windows in batches, and
// writes embeddings_file as a JSON array.
func (a *Agent) Execute(ctx context.Context, task agent.Task) (agent.Result, error) {
	contextsPath, err := task.String("contexts_file")
	if err != nil {
		return agent.Result{}, err
	}
	outPath, err := task.OutputPath("embeddings_file")
	if err != nil {
		return agent.Result{}, err
	}
	serverURL, _ := task.String("server_url")
	model, err := task.String("model_name")
	if err != nil {
		return agent.Result{}, err
	}
	pooling, err := task.String("pooling")
	if err != nil {
		return agent.Result{}, err
	}
	timeoutSecs, err := task.Int("timeout")
	if err != nil {
		return agent.Result{}, err
	}
	batchSize, err := task.Int("batch_size")
	if err != nil {
		return agent.Result{}, err
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	mock := task.Bool("mock_mode")

	contexts, err := seqcontext.ReadContexts(contextsPath)
	if err != nil {
		return agent.Result{}, err
	}

	client := NewClient(serverURL, model, pooling, a.dim, mock, time.Duration(timeoutSecs)*time.Second)
	embeddings := make([]Embedding, 0, len(contexts))
	for start := 0; start < len(contexts); start += batchSize {
		end := start + batchSize
		if end > len(contexts) {
			end = len(contexts)
		}
		batch := contexts[start:end]
		sequences := make([]string, 0, 2*len(batch))
		for _, c := range batch {
			sequences = append(sequences, c.RefContext, c.AltContext)
		}
		vectors, err := client.Embed(ctx, sequences)
		if err != nil {
			return agent.Result{}, err
		}
		for i, c := range batch {
			embeddings = append(embeddings, Embedding{
				ID:  c.ID(),
				Ref: vectors[2*i],
				Alt: vectors[2*i+1],
			})
		}
	}

	data, err := json.Marshal(embeddings)
	if err != nil {
		return agent.Result{}, fmt.Errorf("embedding: encode output: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return agent.Result{}, fmt.Errorf("embedding: write %s: %w", outPath, err)
	}

	dim := a.dim
	if len(embeddings) > 0 {
		dim = len(embeddings[0].Ref)
	}
	return agent.Success(map[string]any{
		"variants": len(embeddings),
		"dim":      dim,
	}), nil
}

// ReadEmbeddings loads an embeddings file written by this agent. Shared with
// the scoring stage.
func ReadEmbeddings(path string) ([]Embedding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("embedding: read %s: %w", path, err)
	}
	var out []Embedding
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("embedding: parse %s: %w", path, err)
	}
	return out, nil
}
