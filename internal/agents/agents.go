// Package agents implements the specialized evaluation agents that run
// behind the interview: the Brain (conversational interviewer), the Code
// Judge, the Communication Evaluator, the Reasoning Analyzer and the final
// report Aggregator. Each agent owns its master prompt, feeds the model a
// structured JSON payload, and falls back to a deterministic result when
// the provider fails so the interview never stalls on an evaluator.
package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/llm"
)

// Runner executes agents against one LLM provider.
type Runner struct {
	provider llm.Provider
	logger   *zap.Logger
}

func NewRunner(provider llm.Provider, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{provider: provider, logger: logger}
}

// callJSON sends the agent's master prompt followed by its payload and
// decodes the structured response.
func (r *Runner) callJSON(ctx context.Context, masterPrompt string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal agent payload: %w", err)
	}

	prompt := masterPrompt + "\n\nSession data:\n" + string(body)
	text, err := r.provider.GenerateJSON(ctx, prompt)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode agent response: %w", err)
	}
	return nil
}
