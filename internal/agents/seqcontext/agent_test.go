package seqcontext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genoscope/genoscope/internal/agent"
)

const filteredVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
chr1	100	.	A	G	80	PASS	GENE=BRCA1
chr2	200	.	C	T	80	PASS	.
`

func TestExecuteWritesOneContextPerVariant(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "variants.filtered.vcf")
	if err := os.WriteFile(in, []byte(filteredVCF), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "contexts.jsonl")

	result, err := New().Execute(context.Background(), agent.Task{
		Name:   "sequence_context",
		Input:  map[string]any{"variants_file": in},
		Output: map[string]string{"contexts_file": out},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Data["contexts"] != 2 {
		t.Fatalf("contexts = %v", result.Data["contexts"])
	}

	contexts, err := ReadContexts(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(contexts) != 2 {
		t.Fatalf("got %d contexts", len(contexts))
	}
	first := contexts[0]
	if first.ID() != "chr1:100:A>G" {
		t.Fatalf("id = %q", first.ID())
	}
	if first.Gene != "BRCA1" {
		t.Fatalf("gene = %q", first.Gene)
	}
	if len(first.RefContext) != 2*FlankSize+1 {
		t.Fatalf("ref context length = %d", len(first.RefContext))
	}
	if !strings.Contains(first.AltContext, "G") {
		t.Fatal("alt context does not contain the alt allele")
	}
}

func TestReadContextsSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contexts.jsonl")
	body := `{"chrom":"chr1","pos":1,"ref":"A","alt":"T","ref_context":"NAN","alt_context":"NTN"}

{"chrom":"chr2","pos":2,"ref":"C","alt":"G","ref_context":"NCN","alt_context":"NGN"}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	contexts, err := ReadContexts(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(contexts) != 2 {
		t.Fatalf("got %d contexts", len(contexts))
	}
}
