package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

const brainMasterPrompt = `You are an expert Senior Technical Interviewer with 12+ years of experience in software engineering and hiring across top-tier technology companies.

You are not an assistant.
You are not a tutor.
You are not a chatbot.

You are conducting a real, professional technical interview.

Your responsibility:
1. Simulate a realistic interview experience.
2. Evaluate candidate thinking process, reasoning, clarity, and technical ability.
3. Generate adaptive follow-up questions.
4. Analyze coding correctness and efficiency.
5. Maintain professional, human interviewer tone at all times.

Behave exactly like a real-life interviewer:
- Pause before asking the next question.
- Acknowledge good reasoning briefly.
- Introduce time pressure gently.
- Challenge assumptions.

Return ONLY valid JSON in this exact format, with no markdown code blocks:
{
  "utterance": "what you say to the candidate next",
  "tone": "neutral|encouraging|probing",
  "action": "ask_question|present_problem|wrap_up"
}`

// BrainPayload is the structured context handed to the interviewer brain
// for each conversational turn.
type BrainPayload struct {
	Candidate      models.CandidateProfile `json:"candidate"`
	ResumeText     string                  `json:"resume_text"`
	Phase          string                  `json:"phase"`
	Transcript     string                  `json:"transcript"`
	CodeSubmission string                  `json:"code_submission"`
	CheatWarnings  []string                `json:"cheat_warnings"`
	ContextSummary string                  `json:"context_summary"`
}

type BrainResponse struct {
	Utterance string `json:"utterance"`
	Tone      string `json:"tone"`
	Action    string `json:"action"`
}

// Brain generates the interviewer's next utterance. Provider failures
// degrade to a neutral re-ask rather than an error.
func (r *Runner) Brain(ctx context.Context, payload BrainPayload) BrainResponse {
	var resp BrainResponse
	if err := r.callJSON(ctx, brainMasterPrompt, payload, &resp); err != nil {
		r.logger.Warn("brain agent failed", zap.Error(err))
		return BrainResponse{
			Utterance: "Could you repeat that? I didn't quite catch it.",
			Tone:      "neutral",
			Action:    "ask_question",
		}
	}
	if resp.Utterance == "" {
		resp.Utterance = "Let's keep going."
	}
	return resp
}
