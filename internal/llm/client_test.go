package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnabled(t *testing.T) {
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client reports enabled")
	}
	if New("", "UNSET_ENV", "m").Enabled() {
		t.Fatal("client without URL reports enabled")
	}
	t.Setenv("GENOSCOPE_TEST_LLM_KEY", "secret")
	if !New("http://localhost/v1/chat/completions", "GENOSCOPE_TEST_LLM_KEY", "m").Enabled() {
		t.Fatal("configured client reports disabled")
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "two variants stand out"}},
			},
		})
	}))
	defer srv.Close()

	t.Setenv("GENOSCOPE_TEST_LLM_KEY", "secret")
	client := New(srv.URL, "GENOSCOPE_TEST_LLM_KEY", "interp-large")
	text, err := client.Generate(context.Background(), "be careful", "summarize")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "two variants stand out" {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	t.Setenv("GENOSCOPE_TEST_LLM_KEY", "secret")
	client := New(srv.URL, "GENOSCOPE_TEST_LLM_KEY", "interp-large")
	if _, err := client.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGenerateUnconfiguredIsError(t *testing.T) {
	if _, err := New("", "", "").Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error from unconfigured client")
	}
}
