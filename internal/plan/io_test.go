package plan

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/genoscope/genoscope/internal/config"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.VariantFilter.MinQuality = 55
	cfg.Genos.ServerURL = "http://genos.internal:9000"
	planner := NewPlanner(cfg, nil)

	original, err := planner.CreatePlan("sample.vcf", filepath.Join(dir, "run"), "case42", "epilepsy")
	if err != nil {
		t.Fatalf("CreatePlan returned error: %v", err)
	}

	path := filepath.Join(dir, "plan.yaml")
	if err := Save(original, path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !original.Metadata.CreatedAt.Equal(loaded.Metadata.CreatedAt) {
		t.Fatalf("created_at mismatch: was %v, now %v", original.Metadata.CreatedAt, loaded.Metadata.CreatedAt)
	}
	origMeta, loadedMeta := original.Metadata, loaded.Metadata
	origMeta.CreatedAt, loadedMeta.CreatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(origMeta, loadedMeta) {
		t.Fatalf("metadata mismatch after round trip:\n was %#v\n now %#v", origMeta, loadedMeta)
	}
	if !reflect.DeepEqual(original.Tasks, loaded.Tasks) {
		t.Fatalf("task list mismatch after round trip")
	}
	if loaded.Metadata.ConfigSnapshot.VariantFilter.MinQuality != 55 {
		t.Fatal("config snapshot lost in round trip")
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("loaded plan failed validation: %v", err)
	}
}

func TestLoadRejectsEmptyDocument(t *testing.T) {
	if _, err := Parse([]byte("   \n")); err == nil {
		t.Fatal("expected empty document to be rejected")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing plan file")
	}
}
