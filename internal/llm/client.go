// Package llm is a small chat-completions client used by the report stage.
// When the client is unconfigured or the service is unreachable the caller
// is expected to fall back to deterministic text; the pipeline never depends
// on the model being available.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiURL string
	apiKey string
	model  string
	http   *http.Client
}

// New builds a client from configuration. The API key is read from the
// named environment variable so it never lands in a config snapshot.
func New(apiURL, apiKeyEnv, model string) *Client {
	key := ""
	if apiKeyEnv != "" {
		key = os.Getenv(apiKeyEnv)
	}
	return &Client{
		apiURL: apiURL,
		apiKey: key,
		model:  model,
		http:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Enabled reports whether the client is configured well enough to try a
// request.
func (c *Client) Enabled() bool {
	return c != nil && c.apiURL != "" && c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a system and user prompt and returns the model's reply.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("llm: client is not configured")
	}
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: call %s: %w", c.apiURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm: server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}
