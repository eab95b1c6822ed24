package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/agents"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/config"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/llm"
	_ "github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/llm/gemini"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/handlers"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/jobs"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/metrics"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/reports"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/routers"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/store"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/watch"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/utils"
)

func registerRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, dashboardHandler *handlers.DashboardHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.SessionRoutes(router, sessionHandler)
	routers.DashboardRoutes(router, dashboardHandler)
}

// initReportStore opens the report database. A missing database disables
// report persistence but does not stop the service.
func initReportStore(logger *zap.Logger) *reports.Store {
	db, err := gorm.Open(postgres.Open(config.PostgresDSN()), &gorm.Config{})
	if err != nil {
		logger.Warn("report database unavailable, report persistence disabled", zap.Error(err))
		return nil
	}
	reportStore, err := reports.NewStore(db)
	if err != nil {
		logger.Warn("report store migration failed, report persistence disabled", zap.Error(err))
		return nil
	}
	return reportStore
}

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("redis_addr", cfg.RedisAddr))

	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	sessions := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sessions.Ping(pingCtx); err != nil {
		pingCancel()
		logger.Fatal("Failed to reach redis", zap.Error(err))
	}
	pingCancel()

	reportStore := initReportStore(logger)
	runner := agents.NewRunner(provider, logger)
	hub := watch.NewHub()

	sessionHandler := handlers.NewSessionHandler(sessions, runner, provider, reportStore, hub, logger)
	dashboardHandler := handlers.NewDashboardHandler(sessions, hub, cfg.JWTSecret, logger)
	healthHandler := handlers.NewHealthHandler(sessions, logger)

	sweeper := jobs.NewSessionSweeper(sessions, hub, cfg.SessionTTL, cfg.SweepSchedule, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start session sweeper", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer, chimiddleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware())

	registerRoutes(router, sessionHandler, dashboardHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	sweeper.Stop()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
