package agents

import (
	"context"

	"go.uber.org/zap"
)

const judgeMasterPrompt = `You are an expert Technical Code Judge.
Your sole responsibility is to evaluate code submissions objectively.
You do NOT engage in conversation. You do NOT look at transcripts.

Evaluate:
1. Pass rate & Correctness
2. Time & Space Complexity
3. Edge case handling (null, empty, large inputs)
4. Readability and Structure (naming, modularity)

Return ONLY valid JSON in this exact format, with no markdown code blocks:
{
  "technical_correctness": <0-10>,
  "code_quality": <0-10>,
  "efficiency_rating": <0-10>,
  "edge_case_handling": <0-10>,
  "issues_detected": ["...", "..."],
  "optimization_suggestions": ["...", "..."]
}`

type JudgePayload struct {
	Code        string      `json:"code"`
	Language    string      `json:"language"`
	Problem     string      `json:"problem"`
	Constraints string      `json:"constraints"`
	TestResults TestResults `json:"test_results"`
}

// TestResults summarizes a run of the candidate's code against the
// problem's cases.
type TestResults struct {
	Passed      int      `json:"passed"`
	Total       int      `json:"total"`
	FailedCases []string `json:"failed_cases"`
}

type JudgeResult struct {
	TechnicalCorrectness    int      `json:"technical_correctness"`
	CodeQuality             int      `json:"code_quality"`
	EfficiencyRating        int      `json:"efficiency_rating"`
	EdgeCaseHandling        int      `json:"edge_case_handling"`
	IssuesDetected          []string `json:"issues_detected"`
	OptimizationSuggestions []string `json:"optimization_suggestions"`
}

// Judge evaluates a formal code submission. Zero scores with an
// explanatory issue are returned when the provider fails.
func (r *Runner) Judge(ctx context.Context, payload JudgePayload) JudgeResult {
	var result JudgeResult
	if err := r.callJSON(ctx, judgeMasterPrompt, payload, &result); err != nil {
		r.logger.Warn("code judge agent failed", zap.Error(err))
		return JudgeResult{
			IssuesDetected: []string{"Judge evaluation failed"},
		}
	}
	return result
}
