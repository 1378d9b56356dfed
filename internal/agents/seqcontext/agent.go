// Package seqcontext implements the context-extraction stage: for each
// filtered variant it emits a JSONL record with the reference and alternate
// sequence windows the embedding stage consumes.
package seqcontext

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/vcf"
)

// Name is the agent's registry key.
const Name = "SequenceContextAgent"

// FlankSize is the number of neutral bases padded on each side of the
// variant allele. Without a reference genome mounted the flanks are padding;
// the window shape still matches what the embedding service expects.
const FlankSize = 64

// Context is one line of contexts.jsonl.
type Context struct {
	Chrom      string `json:"chrom"`
	Pos        int    `json:"pos"`
	Ref        string `json:"ref"`
	Alt        string `json:"alt"`
	Gene       string `json:"gene,omitempty"`
	RefContext string `json:"ref_context"`
	AltContext string `json:"alt_context"`
}

// ID returns the stable variant identifier used to join artifacts across
// stages.
func (c Context) ID() string {
	return fmt.Sprintf("%s:%d:%s>%s", c.Chrom, c.Pos, c.Ref, c.Alt)
}

// Agent builds sequence contexts from a filtered VCF.
type Agent struct{}

// New returns a context agent.
func New() *Agent { return &Agent{} }

// Execute reads variants_file and writes contexts_file as JSONL.
func (a *Agent) Execute(ctx context.Context, task agent.Task) (agent.Result, error) {
	variantsPath, err := task.String("variants_file")
	if err != nil {
		return agent.Result{}, err
	}
	outPath, err := task.OutputPath("contexts_file")
	if err != nil {
		return agent.Result{}, err
	}

	_, records, err := vcf.ReadFile(variantsPath)
	if err != nil {
		return agent.Result{}, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return agent.Result{}, fmt.Errorf("seqcontext: create %s: %w", outPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		c := buildContext(rec)
		if err := enc.Encode(c); err != nil {
			return agent.Result{}, fmt.Errorf("seqcontext: encode %s: %w", c.ID(), err)
		}
	}
	if err := w.Flush(); err != nil {
		return agent.Result{}, fmt.Errorf("seqcontext: flush %s: %w", outPath, err)
	}

	return agent.Success(map[string]any{"contexts": len(records)}), nil
}

func buildContext(rec vcf.Record) Context {
	flank := strings.Repeat("N", FlankSize)
	return Context{
		Chrom:      rec.Chrom,
		Pos:        rec.Pos,
		Ref:        rec.Ref,
		Alt:        rec.Alt,
		Gene:       rec.Gene(),
		RefContext: flank + strings.ToUpper(rec.Ref) + flank,
		AltContext: flank + strings.ToUpper(rec.Alt) + flank,
	}
}

// ReadContexts loads a contexts.jsonl file. Shared by the scoring and
// embedding stages.
func ReadContexts(path string) ([]Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seqcontext: open %s: %w", path, err)
	}
	defer f.Close()

	var out []Context
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c Context
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("seqcontext: parse %s: %w", path, err)
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("seqcontext: read %s: %w", path, err)
	}
	return out, nil
}
