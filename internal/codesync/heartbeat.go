// Package codesync pushes the candidate's code buffer to the backend on a
// fixed cadence so a remote observer's view stays fresh. The channel is
// best-effort telemetry, never a control path.
package codesync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pusher delivers one code snapshot to the backend.
type Pusher interface {
	SyncCode(ctx context.Context, sessionID, code string) error
}

// SnapshotFunc supplies the current session id and code. ok is false when
// there is no live session to sync for; the heartbeat skips that beat.
type SnapshotFunc func() (sessionID, code string, ok bool)

const DefaultInterval = 3 * time.Second

type Heartbeat struct {
	pusher   Pusher
	snapshot SnapshotFunc
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewHeartbeat(pusher Pusher, snapshot SnapshotFunc, interval time.Duration, logger *zap.Logger) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Heartbeat{
		pusher:   pusher,
		snapshot: snapshot,
		interval: interval,
		logger:   logger,
	}
}

func (h *Heartbeat) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	stop, done := h.stop, h.done
	h.mu.Unlock()

	go h.run(stop, done)
}

// Stop cancels the sync timer and blocks until the loop has exited, so no
// stray push fires after teardown.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.stop)
	done := h.done
	h.mu.Unlock()

	<-done
}

func (h *Heartbeat) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sessionID, code, ok := h.snapshot()
			if !ok {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), h.interval)
			if err := h.pusher.SyncCode(ctx, sessionID, code); err != nil {
				// Silent failure is fine here.
				h.logger.Debug("code sync failed", zap.Error(err))
			}
			cancel()
		}
	}
}
