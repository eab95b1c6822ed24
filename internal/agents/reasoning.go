package agents

import (
	"context"

	"go.uber.org/zap"
)

const reasoningMasterPrompt = `You are an expert Reasoning Analyzer Agent.
Your sole job is to evaluate the candidate's logical thinking, complexity awareness, and debugging reasoning from their spoken explanation.
DO NOT evaluate code correctness. Evaluate the *thinking process*.

Evaluate:
- Decomposition ability
- Example usage
- Complexity awareness
- Tradeoff discussion

Return ONLY valid JSON in this exact format, with no markdown code blocks:
{
  "problem_solving_score": <int 0-10>,
  "reasoning_score": <int 0-10>,
  "complexity_awareness": <int 0-10>,
  "debugging_skill": <int 0-10>,
  "analysis_notes": ["...", "..."]
}`

type ReasoningPayload struct {
	ApproachExplanation string `json:"approach_explanation"`
	Problem             string `json:"problem"`
	CandidateSteps      string `json:"candidate_steps"`
}

type ReasoningResult struct {
	ProblemSolvingScore int      `json:"problem_solving_score"`
	ReasoningScore      int      `json:"reasoning_score"`
	ComplexityAwareness int      `json:"complexity_awareness"`
	DebuggingSkill      int      `json:"debugging_skill"`
	AnalysisNotes       []string `json:"analysis_notes"`
}

func (r *Runner) Reasoning(ctx context.Context, payload ReasoningPayload) ReasoningResult {
	var result ReasoningResult
	if err := r.callJSON(ctx, reasoningMasterPrompt, payload, &result); err != nil {
		r.logger.Warn("reasoning analyzer failed", zap.Error(err))
		return ReasoningResult{
			ProblemSolvingScore: 5,
			ReasoningScore:      5,
			ComplexityAwareness: 5,
			DebuggingSkill:      5,
			AnalysisNotes:       []string{"Evaluation failed"},
		}
	}
	return result
}
