package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

const aggregatorMasterPrompt = `You are the Final Evaluation Aggregator Agent for technical interviews.
Your job is to combine outputs from the Code Judge, Communication Evaluator, and Reasoning Analyzer into a single cohesive report.

Apply these weights to calculate the final score (0-100%):
- Technical Correctness: 30%
- Problem Solving: 20%
- Reasoning: 15%
- Code Quality: 15%
- Communication: 10%
- Interview Readiness: 10%

Return ONLY valid JSON in this exact format, with no markdown code blocks:
{
  "summary": "Short 2-line summary",
  "scores": {
    "technical_correctness": <0-10>,
    "problem_solving": <0-10>,
    "reasoning": <0-10>,
    "code_quality": <0-10>,
    "communication": <0-10>,
    "integrity_score": <0-100>,
    "final_score_percent": <0-100>
  },
  "justifications": {
    "technical_correctness": "...",
    "communication": "...",
    "reasoning": "..."
  },
  "actionable_recommendations": [
    "...", "..."
  ],
  "performance_level": "Hire | Strong Hire | Borderline | No Hire"
}`

// AggregatorPayload is the complete session evidence handed to the final
// report aggregator.
type AggregatorPayload struct {
	CodeJudge         JudgeResult             `json:"code_judge"`
	CommunicationEval CommResult              `json:"communication_eval"`
	ReasoningEval     ReasoningResult         `json:"reasoning_eval"`
	ProctorWarnings   []string                `json:"proctor_warnings"`
	BrowserWarnings   []models.BrowserWarning `json:"browser_warnings"`
	SessionSummary    string                  `json:"session_summary"`
}

// Aggregate produces the final report. The integrity score and the
// No-Hire floor are recomputed locally after the model responds: the
// anti-cheat arithmetic is policy, not model judgment.
func (r *Runner) Aggregate(ctx context.Context, payload AggregatorPayload) models.FinalReport {
	var report models.FinalReport
	if err := r.callJSON(ctx, aggregatorMasterPrompt, payload, &report); err != nil {
		r.logger.Warn("aggregator agent failed, building deterministic report", zap.Error(err))
		report = fallbackReport(payload)
	}

	report.Scores.TechnicalCorrectness = clampScore(report.Scores.TechnicalCorrectness)
	report.Scores.ProblemSolving = clampScore(report.Scores.ProblemSolving)
	report.Scores.Reasoning = clampScore(report.Scores.Reasoning)
	report.Scores.CodeQuality = clampScore(report.Scores.CodeQuality)
	report.Scores.Communication = clampScore(report.Scores.Communication)
	report.Scores.FinalScorePercent = clampPercent(report.Scores.FinalScorePercent)
	report.Scores.IntegrityScore = integrityScore(len(payload.ProctorWarnings), len(payload.BrowserWarnings))
	if report.Scores.IntegrityScore < 50 {
		report.PerformanceLevel = models.LevelNoHire
	}
	report.ProctorWarnings = payload.ProctorWarnings
	report.BrowserWarnings = payload.BrowserWarnings
	return report
}

// integrityScore deducts 20 points per browser warning and 10 per proctor
// warning from a perfect 100.
func integrityScore(proctorWarnings, browserWarnings int) int {
	score := 100 - 20*browserWarnings - 10*proctorWarnings
	if score < 0 {
		return 0
	}
	return score
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// fallbackReport applies the aggregator's weighting scheme directly to the
// evaluator outputs, so a provider outage still yields a usable report.
func fallbackReport(payload AggregatorPayload) models.FinalReport {
	technical := clampScore(payload.CodeJudge.TechnicalCorrectness)
	problemSolving := clampScore(payload.ReasoningEval.ProblemSolvingScore)
	reasoning := clampScore(payload.ReasoningEval.ReasoningScore)
	quality := clampScore(payload.CodeJudge.CodeQuality)
	communication := clampScore(payload.CommunicationEval.CommunicationScore)
	readiness := clampScore(payload.CommunicationEval.ConfidenceScore)

	final := (technical*30 + problemSolving*20 + reasoning*15 + quality*15 + communication*10 + readiness*10) / 10

	level := models.LevelNoHire
	switch {
	case final >= 80:
		level = models.LevelStrongHire
	case final >= 65:
		level = models.LevelHire
	case final >= 50:
		level = models.LevelBorderline
	}

	return models.FinalReport{
		Summary: "Automated evaluation compiled without the aggregator model. Scores are weighted directly from the individual evaluators.",
		Scores: models.ReportScores{
			TechnicalCorrectness: technical,
			ProblemSolving:       problemSolving,
			Reasoning:            reasoning,
			CodeQuality:          quality,
			Communication:        communication,
			FinalScorePercent:    final,
		},
		Justifications:            map[string]string{},
		ActionableRecommendations: []string{},
		PerformanceLevel:          level,
	}
}
