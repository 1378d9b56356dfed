// Package knowledge answers gene-level evidence lookups for the evidence
// retrieval stage. It consults a local JSON index first and, when
// configured, falls back to a remote knowledge API.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Entry is one piece of evidence attached to a gene.
type Entry struct {
	Source  string `json:"source"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary"`
	URL     string `json:"url,omitempty"`
}

// Index is an in-memory gene-to-evidence map loaded from a JSON file
// (produced by the knowledge-base build tooling).
type Index struct {
	entries map[string][]Entry
}

// LoadIndex reads a local knowledge index. An empty path yields an empty
// index, not an error; remote lookup can still serve queries.
func LoadIndex(path string) (*Index, error) {
	idx := &Index{entries: map[string][]Entry{}}
	if path == "" {
		return idx, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read index %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &idx.entries); err != nil {
		return nil, fmt.Errorf("knowledge: parse index %s: %w", path, err)
	}
	return idx, nil
}

// Lookup returns the local evidence for a gene, if any.
func (i *Index) Lookup(gene string) []Entry {
	if i == nil || gene == "" {
		return nil
	}
	return i.entries[gene]
}

// Remote queries a knowledge API over HTTP.
type Remote struct {
	baseURL string
	http    *http.Client
}

// NewRemote builds a remote knowledge client. An empty URL disables it.
func NewRemote(baseURL string) *Remote {
	if baseURL == "" {
		return nil
	}
	return &Remote{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

// Lookup fetches evidence for a gene from the remote API.
func (r *Remote) Lookup(ctx context.Context, gene string) ([]Entry, error) {
	if r == nil {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/evidence?gene=%s", r.baseURL, url.QueryEscape(gene))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("knowledge: build request: %w", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge: call %s: %w", r.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("knowledge: server returned %d: %s", resp.StatusCode, body)
	}
	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("knowledge: decode response: %w", err)
	}
	return entries, nil
}

// Store combines the local index with the optional remote API. Local hits
// win; the remote is only consulted on a local miss.
type Store struct {
	Index  *Index
	Remote *Remote
}

// Lookup resolves evidence for a gene through the configured sources.
func (s Store) Lookup(ctx context.Context, gene string) ([]Entry, error) {
	if entries := s.Index.Lookup(gene); len(entries) > 0 {
		return entries, nil
	}
	return s.Remote.Lookup(ctx, gene)
}
