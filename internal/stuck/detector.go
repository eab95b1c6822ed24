// Package stuck detects prolonged coding inactivity and asks a remote judge
// whether the candidate appears stuck. The whole path is non-critical: any
// failure is swallowed and never surfaced to the candidate.
package stuck

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

// Judge decides whether an idle candidate is stuck.
type Judge interface {
	AnalyzeStuck(ctx context.Context, req *models.AnalyzeStuckRequest) (*models.AnalyzeStuckResponse, error)
}

type Config struct {
	IdleThreshold time.Duration
	PollInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		IdleThreshold: 90 * time.Second,
		PollInterval:  30 * time.Second,
	}
}

// SuggestionFunc receives at most one suggestion per idle stretch.
type SuggestionFunc func(suggestion string)

// Detector polls the code buffer's idle time. A "stretch" is a maximal
// interval of unchanged code; each stretch yields at most one suggestion.
type Detector struct {
	judge        Judge
	problem      models.Problem
	cfg          Config
	logger       *zap.Logger
	onSuggestion SuggestionFunc

	mu        sync.Mutex
	active    bool
	code      string
	lastEdit  time.Time
	suggested bool
	stop      chan struct{}
	done      chan struct{}

	now func() time.Time
}

func NewDetector(judge Judge, problem models.Problem, cfg Config, logger *zap.Logger, onSuggestion SuggestionFunc) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		judge:        judge,
		problem:      problem,
		cfg:          cfg,
		logger:       logger,
		onSuggestion: onSuggestion,
		now:          time.Now,
	}
}

// NoteEdit records the current code buffer. Any change resets both the idle
// clock and the already-suggested flag, so a new idle stretch can produce a
// new suggestion.
func (d *Detector) NoteEdit(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code == d.code {
		return
	}
	d.code = code
	d.lastEdit = d.now()
	d.suggested = false
}

func (d *Detector) Attach() {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.lastEdit = d.now()
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	stop, done := d.stop, d.done
	d.mu.Unlock()

	go d.run(stop, done)
}

// Detach cancels the poll timer and blocks until the loop has exited.
func (d *Detector) Detach() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	close(d.stop)
	done := d.done
	d.mu.Unlock()

	<-done
}

func (d *Detector) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.check()
		}
	}
}

func (d *Detector) check() {
	d.mu.Lock()
	if !d.active || d.suggested {
		d.mu.Unlock()
		return
	}
	idle := d.now().Sub(d.lastEdit)
	if idle < d.cfg.IdleThreshold {
		d.mu.Unlock()
		return
	}
	code := d.code
	editAt := d.lastEdit
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resp, err := d.judge.AnalyzeStuck(ctx, &models.AnalyzeStuckRequest{
		Code:                     code,
		ProblemTitle:             d.problem.Title,
		ProblemDescription:       d.problem.Description,
		Language:                 d.problem.Language,
		TimeSinceLastEditSeconds: int(idle.Seconds()),
	})
	if err != nil {
		d.logger.Warn("stuck check failed", zap.Error(err))
		return
	}
	if !resp.IsStuck || resp.Suggestion == "" {
		return
	}

	d.mu.Lock()
	// An edit or teardown during the network call ends the stretch; the
	// stale verdict is discarded.
	if !d.active || d.suggested || !d.lastEdit.Equal(editAt) {
		d.mu.Unlock()
		return
	}
	d.suggested = true
	cb := d.onSuggestion
	d.mu.Unlock()

	if cb != nil {
		cb(resp.Suggestion)
	}
}
