package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/handlers"
)

func DashboardRoutes(router *chi.Mux, dashboardHandler *handlers.DashboardHandler) {
	router.Get("/api/session/{joinCode}", dashboardHandler.SessionStateHandler)
	router.Get("/api/session/{joinCode}/watch-token", dashboardHandler.WatchTokenHandler)
	router.Get("/api/session/{joinCode}/watch", dashboardHandler.WatchHandler)
}
