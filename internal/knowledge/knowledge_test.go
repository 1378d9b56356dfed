package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeIndex(t *testing.T, entries map[string][]Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kb.json")
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadIndexAndLookup(t *testing.T) {
	path := writeIndex(t, map[string][]Entry{
		"BRCA1": {{Source: "clinvar", Summary: "pathogenic missense cluster"}},
	})
	idx, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if entries := idx.Lookup("BRCA1"); len(entries) != 1 || entries[0].Source != "clinvar" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries := idx.Lookup("TP53"); entries != nil {
		t.Fatalf("expected miss, got %+v", entries)
	}
}

func TestLoadIndexEmptyPathIsEmptyIndex(t *testing.T) {
	idx, err := LoadIndex("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if entries := idx.Lookup("BRCA1"); entries != nil {
		t.Fatalf("expected empty index, got %+v", entries)
	}
}

func TestRemoteLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("gene") {
		case "TP53":
			json.NewEncoder(w).Encode([]Entry{{Source: "pubmed", Summary: "tumor suppressor"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL)
	entries, err := remote.Lookup(context.Background(), "TP53")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(entries) != 1 || entries[0].Source != "pubmed" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	entries, err = remote.Lookup(context.Background(), "UNKNOWN")
	if err != nil {
		t.Fatalf("404 should not be an error: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected nil for 404, got %+v", entries)
	}
}

func TestStorePrefersLocalHits(t *testing.T) {
	var remoteCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		json.NewEncoder(w).Encode([]Entry{{Source: "remote", Summary: "fallback"}})
	}))
	defer srv.Close()

	idx, err := LoadIndex(writeIndex(t, map[string][]Entry{
		"BRCA1": {{Source: "local", Summary: "indexed"}},
	}))
	if err != nil {
		t.Fatal(err)
	}
	store := Store{Index: idx, Remote: NewRemote(srv.URL)}

	entries, err := store.Lookup(context.Background(), "BRCA1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Source != "local" {
		t.Fatalf("local hit not preferred: %+v", entries)
	}
	if remoteCalls != 0 {
		t.Fatalf("remote consulted %d times on a local hit", remoteCalls)
	}

	if _, err := store.Lookup(context.Background(), "TP53"); err != nil {
		t.Fatal(err)
	}
	if remoteCalls != 1 {
		t.Fatalf("remote calls = %d, want 1", remoteCalls)
	}
}

func TestStoreWithoutRemoteReturnsNilOnMiss(t *testing.T) {
	idx, err := LoadIndex("")
	if err != nil {
		t.Fatal(err)
	}
	store := Store{Index: idx, Remote: NewRemote("")}
	entries, err := store.Lookup(context.Background(), "BRCA1")
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Fatalf("expected nil, got %+v", entries)
	}
}
