package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/handlers"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.Healthz)
	router.Get("/readyz", healthHandler.Readyz)
	router.Handle("/metrics", metrics.Handler())
}
