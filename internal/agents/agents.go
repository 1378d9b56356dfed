// Package agents wires the pipeline's agent implementations into a registry
// from one configuration. Plan execution (fresh or replayed) builds the
// registry from the plan's config snapshot, so a replayed run constructs the
// same collaborators the original run would have.
package agents

import (
	"fmt"

	"github.com/genoscope/genoscope/internal/agent"
	"github.com/genoscope/genoscope/internal/agents/critic"
	"github.com/genoscope/genoscope/internal/agents/embedding"
	"github.com/genoscope/genoscope/internal/agents/evidence"
	"github.com/genoscope/genoscope/internal/agents/report"
	"github.com/genoscope/genoscope/internal/agents/scoring"
	"github.com/genoscope/genoscope/internal/agents/seqcontext"
	"github.com/genoscope/genoscope/internal/agents/variantfilter"
	"github.com/genoscope/genoscope/internal/config"
	"github.com/genoscope/genoscope/internal/knowledge"
	"github.com/genoscope/genoscope/internal/llm"
)

// BuildRegistry constructs and registers all seven pipeline agents.
func BuildRegistry(cfg config.Config) (*agent.Registry, error) {
	index, err := knowledge.LoadIndex(cfg.Knowledge.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}
	store := knowledge.Store{
		Index:  index,
		Remote: knowledge.NewRemote(cfg.Knowledge.RemoteURL),
	}
	llmClient := llm.New(cfg.LLM.APIURL, cfg.LLM.APIKeyEnv, cfg.LLM.Model)

	registry := agent.NewRegistry()
	registry.MustRegister(variantfilter.Name, variantfilter.New())
	registry.MustRegister(seqcontext.Name, seqcontext.New())
	registry.MustRegister(embedding.Name, embedding.New(cfg.Genos.EmbeddingDim))
	registry.MustRegister(scoring.Name, scoring.New())
	registry.MustRegister(evidence.Name, evidence.New(store, cfg.Report.TopN))
	registry.MustRegister(report.Name, report.New(llmClient, cfg.Report.TopN))
	registry.MustRegister(critic.Name, critic.New())
	return registry, nil
}
