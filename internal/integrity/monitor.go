// Package integrity watches the candidate's environment for policy breaches
// and escalates them. The monitor only detects and counts; deciding what
// termination means is the orchestrator's job.
package integrity

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

// EventKind classifies a raw environment signal from the hosting shell.
type EventKind int

const (
	// EventVisibilityHidden fires when the candidate navigates away from or
	// hides the interview surface.
	EventVisibilityHidden EventKind = iota
	// EventFullscreenExited fires when the candidate leaves fullscreen mode.
	EventFullscreenExited
	// EventActivity fires on any pointer, keyboard or scroll signal.
	EventActivity
	// EventDevToolsOpened fires when the shell detects developer tooling.
	EventDevToolsOpened
)

// Event is one environment signal.
type Event struct {
	Kind EventKind
	At   time.Time
}

// EnvironmentSource is the scoped subscription to environment signals. A
// source's channel is owned by the shell; it closes when the shell tears
// down its listeners.
type EnvironmentSource interface {
	Events() <-chan Event
	// RequestFullscreen asks the shell to (re)enter fullscreen. Shells may
	// refuse outside a user gesture; the monitor swallows that refusal.
	RequestFullscreen() error
}

// ViolationFunc receives each recorded violation. terminal is true exactly
// once, on the violation that makes the count reach the policy threshold.
type ViolationFunc func(v models.IntegrityViolation, terminal bool)

// Policy is the single, configurable escalation policy. The tracked-signal
// set decides which violation kinds count toward the threshold.
type Policy struct {
	MaxWarnings     int
	TrackedSignals  map[models.ViolationKind]bool
	InactivityLimit time.Duration
	PollInterval    time.Duration
	MaxPasteLength  int
}

func DefaultPolicy() Policy {
	return Policy{
		MaxWarnings: 3,
		TrackedSignals: map[models.ViolationKind]bool{
			models.ViolationTabSwitch:      true,
			models.ViolationFullscreenExit: true,
			models.ViolationInactivity:     true,
			models.ViolationLargePaste:     true,
		},
		InactivityLimit: 120 * time.Second,
		PollInterval:    30 * time.Second,
		MaxPasteLength:  100,
	}
}

// Monitor observes one session's environment while attached.
type Monitor struct {
	policy      Policy
	logger      *zap.Logger
	onViolation ViolationFunc

	mu           sync.Mutex
	active       bool
	terminated   bool
	count        int
	violations   []models.IntegrityViolation
	lastActivity time.Time
	stop         chan struct{}
	done         chan struct{}

	now func() time.Time
}

func NewMonitor(policy Policy, logger *zap.Logger, onViolation ViolationFunc) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		policy:      policy,
		logger:      logger,
		onViolation: onViolation,
		now:         time.Now,
	}
}

// Attach subscribes to the source and starts the inactivity poll. It is the
// single acquisition point; Detach releases everything Attach created.
func (m *Monitor) Attach(src EnvironmentSource) {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return
	}
	m.active = true
	m.lastActivity = m.now()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	if err := src.RequestFullscreen(); err != nil {
		// Shells refuse programmatic fullscreen outside a user gesture.
		// Not a violation.
		m.logger.Warn("fullscreen request refused", zap.Error(err))
	}

	go m.run(src, stop, done)
}

// Detach stops the poll timer and releases the event subscription. It blocks
// until the monitor goroutine has exited, so no callback fires afterwards.
func (m *Monitor) Detach() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	<-done
}

func (m *Monitor) run(src EnvironmentSource, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.policy.PollInterval)
	defer ticker.Stop()

	events := src.Events()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.handleEvent(ev)
		case <-ticker.C:
			m.checkInactivity()
		}
	}
}

func (m *Monitor) handleEvent(ev Event) {
	switch ev.Kind {
	case EventActivity:
		m.mu.Lock()
		m.lastActivity = m.now()
		m.mu.Unlock()
	case EventVisibilityHidden:
		m.record(models.ViolationTabSwitch, "You switched away from the interview tab.")
	case EventFullscreenExited:
		m.record(models.ViolationFullscreenExit, "You exited fullscreen mode. Please return to fullscreen.")
	case EventDevToolsOpened:
		m.record(models.ViolationDevToolsOpen, "Developer tools were opened during the interview.")
	}
}

func (m *Monitor) checkInactivity() {
	m.mu.Lock()
	idle := m.now().Sub(m.lastActivity)
	if idle <= m.policy.InactivityLimit {
		m.mu.Unlock()
		return
	}
	// Reset the idle clock so the same stall is not reported every poll.
	m.lastActivity = m.now()
	m.mu.Unlock()

	m.record(models.ViolationInactivity, "No activity detected for a prolonged period.")
}

// CheckPaste gates a clipboard paste. It returns false when the paste must
// be cancelled, in which case one large-paste violation has been recorded.
func (m *Monitor) CheckPaste(content string) bool {
	length := len([]rune(content))
	if length <= m.policy.MaxPasteLength {
		return true
	}

	m.mu.Lock()
	blocked := m.active && !m.terminated
	m.mu.Unlock()
	if !blocked {
		return true
	}

	m.record(models.ViolationLargePaste,
		fmt.Sprintf("Attempted to paste %d characters. Large pasting is disabled.", length))
	return false
}

func (m *Monitor) record(kind models.ViolationKind, message string) {
	m.mu.Lock()
	if !m.active || m.terminated || !m.policy.TrackedSignals[kind] {
		m.mu.Unlock()
		return
	}

	v := models.IntegrityViolation{Kind: kind, Message: message, OccurredAt: m.now()}
	m.violations = append(m.violations, v)
	m.count++
	count := m.count
	terminal := count >= m.policy.MaxWarnings
	if terminal {
		m.terminated = true
	}
	cb := m.onViolation
	m.mu.Unlock()

	m.logger.Info("integrity violation recorded",
		zap.String("kind", string(kind)),
		zap.Int("count", count),
		zap.Bool("terminal", terminal))

	if cb != nil {
		cb(v, terminal)
	}
}

// WarningCount returns the number of violations recorded while attached.
func (m *Monitor) WarningCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Violations returns a copy of the append-only violation log.
func (m *Monitor) Violations() []models.IntegrityViolation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.IntegrityViolation, len(m.violations))
	copy(out, m.violations)
	return out
}
