package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/metrics"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/store"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/server/watch"
)

// SessionSweeper periodically removes sessions whose agents stopped
// checking in. The store TTL is the backstop; the sweeper closes watch
// rooms and surfaces metrics in between.
type SessionSweeper struct {
	store    store.SessionStore
	hub      *watch.Hub
	maxIdle  time.Duration
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewSessionSweeper(sessions store.SessionStore, hub *watch.Hub, maxIdle time.Duration, schedule string, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		store:    sessions,
		hub:      hub,
		maxIdle:  maxIdle,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.String("schedule", s.schedule))
	return nil
}

func (s *SessionSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep deletes every session idle longer than maxIdle and closes its
// watch room.
func (s *SessionSweeper) Sweep(ctx context.Context) error {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-s.maxIdle)
	swept := 0
	for _, id := range ids {
		session, err := s.store.Get(ctx, id)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			s.logger.Warn("sweep could not load session", zap.String("session_id", id), zap.Error(err))
			continue
		}
		if session.LastSeenAt.After(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Warn("sweep could not delete session", zap.String("session_id", id), zap.Error(err))
			continue
		}
		s.hub.Broadcast(id, watch.Event{Type: "ended", SessionID: id})
		s.hub.CloseSession(id)
		metrics.SessionsSwept.Inc()
		swept++
	}

	if swept > 0 {
		s.logger.Info("session sweep complete", zap.Int("swept", swept))
	}
	return nil
}
