package agents

import (
	"context"

	"go.uber.org/zap"
)

const commMasterPrompt = `You are an expert Communication Evaluator Agent for technical interviews.
Your sole responsibility is to evaluate the candidate's speech capabilities from transcripts.
You evaluate:
- Clarity: Ratio of concrete statements to filler words.
- Structure: Presence of structured thinking (e.g. "first, then", "step 1").
- Confidence & Directness.

Return ONLY valid JSON in this exact format, with no markdown code blocks:
{
  "communication_score": <int 0-10>,
  "clarity_score": <int 0-10>,
  "structure_score": <int 0-10>,
  "confidence_score": <int 0-10>,
  "issues_detected": ["..."],
  "positive_signals": ["..."]
}`

type CommPayload struct {
	Transcript string `json:"transcript"`
}

type CommResult struct {
	CommunicationScore int      `json:"communication_score"`
	ClarityScore       int      `json:"clarity_score"`
	StructureScore     int      `json:"structure_score"`
	ConfidenceScore    int      `json:"confidence_score"`
	IssuesDetected     []string `json:"issues_detected"`
	PositiveSignals    []string `json:"positive_signals"`
}

// CommEval scores one transcript chunk. A failed call returns midline
// scores so a single outage cannot sink the communication average.
func (r *Runner) CommEval(ctx context.Context, payload CommPayload) CommResult {
	var result CommResult
	if err := r.callJSON(ctx, commMasterPrompt, payload, &result); err != nil {
		r.logger.Warn("communication evaluator failed", zap.Error(err))
		return CommResult{
			CommunicationScore: 5,
			ClarityScore:       5,
			StructureScore:     5,
			ConfidenceScore:    5,
			IssuesDetected:     []string{"Evaluation failed"},
		}
	}
	return result
}
