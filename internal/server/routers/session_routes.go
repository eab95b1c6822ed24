package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/handlers"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/middleware"
)

func SessionRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler) {
	router.With(middleware.ValidateRequest[*models.StartSessionRequest]()).Post("/api/start-session", sessionHandler.StartSessionHandler)
	router.With(middleware.ValidateRequest[*models.ChatRequest]()).Post("/api/chat", sessionHandler.ChatHandler)
	router.With(middleware.ValidateRequest[*models.HintRequest]()).Post("/api/hint", sessionHandler.HintHandler)
	router.With(middleware.ValidateRequest[*models.AnalyzeStuckRequest]()).Post("/api/analyze-stuck", sessionHandler.AnalyzeStuckHandler)
	router.With(middleware.ValidateRequest[*models.CodeSubmitRequest]()).Post("/api/submit-code", sessionHandler.SubmitCodeHandler)
	router.With(middleware.ValidateRequest[*models.SyncCodeRequest]()).Post("/api/sync-code", sessionHandler.SyncCodeHandler)
	router.With(middleware.ValidateRequest[*models.ReportCheatRequest]()).Post("/api/report-cheat", sessionHandler.ReportCheatHandler)
	router.With(middleware.ValidateRequest[*models.EndSessionRequest]()).Post("/api/end-session", sessionHandler.EndSessionHandler)
}
