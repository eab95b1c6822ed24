package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

// mockProvider implements llm.Provider for testing
type mockProvider struct {
	generateFn func(prompt string) (string, error)
}

func (m *mockProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	return m.generateFn(prompt)
}

func (m *mockProvider) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return m.generateFn(prompt)
}

func (m *mockProvider) GetProviderName() string { return "mock" }

func failingProvider() *mockProvider {
	return &mockProvider{generateFn: func(string) (string, error) {
		return "", errors.New("provider down")
	}}
}

func TestBrainFallbackUtterance(t *testing.T) {
	r := NewRunner(failingProvider(), zap.NewNop())
	resp := r.Brain(context.Background(), BrainPayload{Phase: models.PhaseWarmup})
	assert.Contains(t, resp.Utterance, "repeat")
	assert.Equal(t, "ask_question", resp.Action)
}

func TestBrainParsesUtterance(t *testing.T) {
	provider := &mockProvider{generateFn: func(string) (string, error) {
		return `{"utterance": "Walk me through your approach.", "tone": "probing", "action": "ask_question"}`, nil
	}}
	r := NewRunner(provider, zap.NewNop())
	resp := r.Brain(context.Background(), BrainPayload{})
	assert.Equal(t, "Walk me through your approach.", resp.Utterance)
}

func TestJudgeFallbackIsZeroScored(t *testing.T) {
	r := NewRunner(failingProvider(), zap.NewNop())
	result := r.Judge(context.Background(), JudgePayload{Code: "x"})
	assert.Equal(t, 0, result.TechnicalCorrectness)
	assert.Contains(t, result.IssuesDetected, "Judge evaluation failed")
}

func TestCommFallbackIsMidline(t *testing.T) {
	r := NewRunner(failingProvider(), zap.NewNop())
	result := r.CommEval(context.Background(), CommPayload{Transcript: "hello"})
	assert.Equal(t, 5, result.CommunicationScore)
	assert.Equal(t, 5, result.ClarityScore)
}

func TestIntegrityScoreDeductions(t *testing.T) {
	assert.Equal(t, 100, integrityScore(0, 0))
	assert.Equal(t, 80, integrityScore(0, 1))
	assert.Equal(t, 70, integrityScore(1, 1))
	assert.Equal(t, 40, integrityScore(2, 2))
	// Floors at zero.
	assert.Equal(t, 0, integrityScore(5, 5))
}

func TestAggregateOverridesIntegrityAndLevel(t *testing.T) {
	// Model claims a clean record and a Strong Hire; three browser
	// warnings must drag integrity to 40 and the level to No Hire.
	provider := &mockProvider{generateFn: func(string) (string, error) {
		return `{
			"summary": "Great candidate.",
			"scores": {"technical_correctness": 9, "problem_solving": 9, "reasoning": 9, "code_quality": 9, "communication": 9, "integrity_score": 100, "final_score_percent": 90},
			"justifications": {},
			"actionable_recommendations": [],
			"performance_level": "Strong Hire"
		}`, nil
	}}
	r := NewRunner(provider, zap.NewNop())

	warnings := []models.BrowserWarning{
		{Type: "TAB_SWITCH"}, {Type: "TAB_SWITCH"}, {Type: "LARGE_PASTE"},
	}
	report := r.Aggregate(context.Background(), AggregatorPayload{BrowserWarnings: warnings})

	assert.Equal(t, 40, report.Scores.IntegrityScore)
	assert.Equal(t, models.LevelNoHire, report.PerformanceLevel)
	assert.Len(t, report.BrowserWarnings, 3)
}

func TestAggregateClampsModelScores(t *testing.T) {
	// Out-of-range scores from the model are clamped to the report's
	// bounds: sub-scores 0-10, final percent 0-100.
	provider := &mockProvider{generateFn: func(string) (string, error) {
		return `{
			"summary": "Runaway numbers.",
			"scores": {"technical_correctness": 42, "problem_solving": -3, "reasoning": 11, "code_quality": 10, "communication": -1, "integrity_score": 100, "final_score_percent": 400},
			"justifications": {},
			"actionable_recommendations": [],
			"performance_level": "Strong Hire"
		}`, nil
	}}
	r := NewRunner(provider, zap.NewNop())

	report := r.Aggregate(context.Background(), AggregatorPayload{})

	assert.Equal(t, 10, report.Scores.TechnicalCorrectness)
	assert.Equal(t, 0, report.Scores.ProblemSolving)
	assert.Equal(t, 10, report.Scores.Reasoning)
	assert.Equal(t, 10, report.Scores.CodeQuality)
	assert.Equal(t, 0, report.Scores.Communication)
	assert.Equal(t, 100, report.Scores.FinalScorePercent)
}

func TestAggregateFallbackWeighting(t *testing.T) {
	r := NewRunner(failingProvider(), zap.NewNop())
	report := r.Aggregate(context.Background(), AggregatorPayload{
		CodeJudge:         JudgeResult{TechnicalCorrectness: 10, CodeQuality: 10},
		ReasoningEval:     ReasoningResult{ProblemSolvingScore: 10, ReasoningScore: 10},
		CommunicationEval: CommResult{CommunicationScore: 10, ConfidenceScore: 10},
	})

	assert.Equal(t, 100, report.Scores.FinalScorePercent)
	assert.Equal(t, models.LevelStrongHire, report.PerformanceLevel)
	assert.Equal(t, 100, report.Scores.IntegrityScore)
}
