// Package scoring implements the effect-scoring stage: it turns the
// distance between a variant's ref and alt embeddings into a score in
// [0, 1], higher meaning a larger predicted functional shift.
package scoring

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/embedding"
	"github.com/genoscope/genoscope/internal/agents/seqcontext"
)

// Name is the agent's registry key.
const Name = "ScoringAgent"

// Score is one row of scores.tsv.
type Score struct {
	ID    string
	Chrom string
	Pos   int
	Ref   string
	Alt   string
	Gene  string
	Value float64
}

// Agent scores variants from their embeddings.
type Agent struct{}

// New returns a scoring agent.
func New() *Agent { return &Agent{} }

// Execute joins embeddings_file with contexts_file and writes scores_file as
// TSV, highest score first.
func (a *Agent) Execute(ctx context.Context, task agent.Task) (agent.Result, error) {
	embeddingsPath, err := task.String("embeddings_file")
	if err != nil {
		return agent.Result{}, err
	}
	contextsPath, err := task.String("contexts_file")
	if err != nil {
		return agent.Result{}, err
	}
	outPath, err := task.OutputPath("scores_file")
	if err != nil {
		return agent.Result{}, err
	}

	embeddings, err := embedding.ReadEmbeddings(embeddingsPath)
	if err != nil {
		return agent.Result{}, err
	}
	contexts, err := seqcontext.ReadContexts(contextsPath)
	if err != nil {
		return agent.Result{}, err
	}
	byID := make(map[string]seqcontext.Context, len(contexts))
	for _, c := range contexts {
		byID[c.ID()] = c
	}

	scores := make([]Score, 0, len(embeddings))
	for _, emb := range embeddings {
		c, ok := byID[emb.ID]
		if !ok {
			return agent.Result{}, fmt.Errorf("scoring: embedding %s has no matching context", emb.ID)
		}
		scores = append(scores, Score{
			ID:    emb.ID,
			Chrom: c.Chrom,
			Pos:   c.Pos,
			Ref:   c.Ref,
			Alt:   c.Alt,
			Gene:  c.Gene,
			Value: effectScore(emb.Ref, emb.Alt),
		})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Value > scores[j].Value })

	if err := writeScores(outPath, scores); err != nil {
		return agent.Result{}, err
	}
	return agent.Success(map[string]any{"variants_scored": len(scores)}), nil
}

// effectScore maps cosine similarity between ref and alt vectors onto
// [0, 1]: identical embeddings score 0, opposite embeddings score 1.
func effectScore(ref, alt []float64) float64 {
	if len(ref) == 0 || len(ref) != len(alt) {
		return 0
	}
	var dot, normRef, normAlt float64
	for i := range ref {
		dot += ref[i] * alt[i]
		normRef += ref[i] * ref[i]
		normAlt += alt[i] * alt[i]
	}
	if normRef == 0 || normAlt == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normRef) * math.Sqrt(normAlt))
	score := (1 - cos) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func writeScores(path string, scores []Score) error {
	var b strings.Builder
	b.WriteString("variant_id\tchrom\tpos\tref\talt\tgene\tscore\n")
	for _, s := range scores {
		fmt.Fprintf(&b, "%s\t%s\t%d\t%s\t%s\t%s\t%.6f\n", s.ID, s.Chrom, s.Pos, s.Ref, s.Alt, s.Gene, s.Value)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("scoring: write %s: %w", path, err)
	}
	return nil
}

// ReadScores loads a scores.tsv written by this agent. Shared with the
// evidence, report, and critic stages.
func ReadScores(path string) ([]Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scoring: open %s: %w", path, err)
	}
	defer f.Close()

	var out []Score
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("scoring: %s: expected 7 columns, got %d", path, len(fields))
		}
		pos, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("scoring: %s: bad pos %q: %w", path, fields[2], err)
		}
		value, err := strconv.ParseFloat(fields[6], 64)
		if err != nil {
			return nil, fmt.Errorf("scoring: %s: bad score %q: %w", path, fields[6], err)
		}
		out = append(out, Score{
			ID: fields[0], Chrom: fields[1], Pos: pos,
			Ref: fields[3], Alt: fields[4], Gene: fields[5], Value: value,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scoring: read %s: %w", path, err)
	}
	return out, nil
}
