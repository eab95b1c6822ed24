package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/store"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/watch"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/utils"
)

const watchTokenTTL = 4 * time.Hour

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// DashboardHandler serves the recruiter view: session state by join code,
// watch tokens and the live watch stream.
type DashboardHandler struct {
	store     store.SessionStore
	hub       *watch.Hub
	jwtSecret string
	logger    *zap.Logger
}

func NewDashboardHandler(sessions store.SessionStore, hub *watch.Hub, jwtSecret string, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		store:     sessions,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// SessionStateHandler returns the current dashboard snapshot for a join code.
func (h *DashboardHandler) SessionStateHandler(w http.ResponseWriter, r *http.Request) {
	joinCode := chi.URLParam(r, "joinCode")

	session, err := h.store.GetByJoinCode(r.Context(), joinCode)
	if err == store.ErrNotFound {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "No active session for that join code",
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to load session by join code", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_load_failed",
			Message: "Could not load the session",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.DashboardState{
		Candidate:       session.Candidate,
		Phase:           session.Phase,
		LatestCode:      session.LatestCode,
		Transcripts:     session.Transcripts,
		BrowserWarnings: session.BrowserWarnings,
		ProctorWarnings: session.ProctorWarnings,
		IsActive:        session.Phase != models.PhaseWrapUp,
	})
}

// WatchTokenHandler issues a short-lived token granting access to the
// live watch stream for one session.
func (h *DashboardHandler) WatchTokenHandler(w http.ResponseWriter, r *http.Request) {
	joinCode := chi.URLParam(r, "joinCode")

	session, err := h.store.GetByJoinCode(r.Context(), joinCode)
	if err == store.ErrNotFound {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "No active session for that join code",
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to load session by join code", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_load_failed",
			Message: "Could not load the session",
		})
		return
	}

	token, err := utils.CreateWatchToken(session.ID, h.jwtSecret, watchTokenTTL)
	if err != nil {
		h.logger.Error("failed to sign watch token", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "token_failed",
			Message: "Could not create a watch token",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.WatchTokenResponse{Token: token})
}

// WatchHandler upgrades to a websocket and streams live session events
// until the watcher disconnects.
func (h *DashboardHandler) WatchHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := utils.VerifyWatchToken(r, h.jwtSecret)
	if err != nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "unauthorized",
			Message: "Invalid or missing watch token",
		})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := watch.NewClient(conn)
	h.hub.Register(sessionID, client)
	h.logger.Info("watcher connected",
		zap.String("session_id", sessionID),
		zap.Int("watchers", h.hub.WatcherCount(sessionID)))

	// Drain incoming frames so pings and close frames are processed. The
	// watch stream is one-directional.
	go func() {
		defer func() {
			h.hub.Unregister(sessionID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
