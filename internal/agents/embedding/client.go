package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"time"
)

// Client talks to a Genos embedding server. A nil-URL client in mock mode
// produces deterministic vectors instead, which keeps the pipeline runnable
// without the model deployed.
type Client struct {
	baseURL string
	model   string
	pooling string
	dim     int
	mock    bool
	http    *http.Client
}

// NewClient builds an embedding client. timeout applies per batch request.
func NewClient(baseURL, model, pooling string, dim int, mock bool, timeout time.Duration) *Client {
	if dim <= 0 {
		dim = 256
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		pooling: pooling,
		dim:     dim,
		mock:    mock || baseURL == "",
		http:    &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Model     string   `json:"model"`
	Pooling   string   `json:"pooling"`
	Sequences []string `json:"sequences"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed returns one vector per input sequence.
func (c *Client) Embed(ctx context.Context, sequences []string) ([][]float64, error) {
	if len(sequences) == 0 {
		return nil, nil
	}
	if c.mock {
		out := make([][]float64, len(sequences))
		for i, seq := range sequences {
			out[i] = mockVector(seq, c.dim)
		}
		return out, nil
	}

	payload, err := json.Marshal(embedRequest{Model: c.model, Pooling: c.pooling, Sequences: sequences})
	if err != nil {
		return nil, fmt.Errorf("embedding: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: call %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding: server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(decoded.Embeddings) != len(sequences) {
		return nil, fmt.Errorf("embedding: server returned %d vectors for %d sequences", len(decoded.Embeddings), len(sequences))
	}
	return decoded.Embeddings, nil
}

// mockVector derives a unit-norm vector from the sequence content alone, so
// the same sequence always embeds identically across runs.
func mockVector(seq string, dim int) []float64 {
	h := fnv.New64a()
	h.Write([]byte(seq))
	state := h.Sum64()
	vec := make([]float64, dim)
	var norm float64
	for i := range vec {
		// xorshift64 keeps the stream deterministic per seed.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		vec[i] = float64(int64(state%2000)-1000) / 1000
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
