// Package voice manages the turn-taking between text-to-speech playback and
// speech-to-text capture. The system is never simultaneously speaking and
// listening; that invariant is enforced at every transition, not just at
// call sites.
package voice

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// TurnState is the controller's position in the turn cycle.
type TurnState int

const (
	StateIdle TurnState = iota
	StateListening
	StateSpeaking
)

func (s TurnState) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateSpeaking:
		return "speaking"
	default:
		return "idle"
	}
}

// ResumeGate reports whether listening may (re)start. The orchestrator wires
// this to "session active, not ending, no final report, not terminated"; the
// controller consults it on every settle, not only at startup.
type ResumeGate func() bool

// TranscriptFunc receives each completed candidate transcript exactly once.
type TranscriptFunc func(text string)

type Controller struct {
	synth  Synthesizer
	rec    Recognizer
	logger *zap.Logger

	gate         ResumeGate
	onTranscript TranscriptFunc

	mu          sync.Mutex
	attached    bool
	state       TurnState
	utterSeq    int
	utterCancel context.CancelFunc
	stop        chan struct{}
	done        chan struct{}
}

func NewController(synth Synthesizer, rec Recognizer, logger *zap.Logger, gate ResumeGate, onTranscript TranscriptFunc) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		synth:        synth,
		rec:          rec,
		logger:       logger,
		gate:         gate,
		onTranscript: onTranscript,
	}
}

// Attach starts the transcript pump. Detach releases it together with any
// in-flight utterance and capture.
func (c *Controller) Attach() {
	c.mu.Lock()
	if c.attached {
		c.mu.Unlock()
		return
	}
	c.attached = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stop, c.done
	c.mu.Unlock()

	go c.pump(stop, done)
}

func (c *Controller) Detach() {
	c.mu.Lock()
	if !c.attached {
		c.mu.Unlock()
		return
	}
	c.attached = false
	if c.utterCancel != nil {
		c.utterCancel()
		c.utterCancel = nil
	}
	c.utterSeq++
	c.stopListeningLocked()
	c.state = StateIdle
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	<-done
}

// Speak cancels any in-flight utterance and plays text. When the utterance
// settles, successfully or not, the resume gate decides whether listening
// restarts.
func (c *Controller) Speak(text string) {
	c.mu.Lock()
	if !c.attached {
		c.mu.Unlock()
		return
	}
	c.stopListeningLocked()
	if c.utterCancel != nil {
		c.utterCancel()
	}
	c.utterSeq++
	seq := c.utterSeq
	ctx, cancel := context.WithCancel(context.Background())
	c.utterCancel = cancel
	c.state = StateSpeaking
	c.mu.Unlock()

	go func() {
		err := c.synth.Speak(ctx, text)
		c.settle(seq, err)
	}()
}

// settle is the single hook every utterance outcome routes through: success,
// playback error, unsupported environment and cancellation all land here.
func (c *Controller) settle(seq int, err error) {
	c.mu.Lock()
	if seq != c.utterSeq || !c.attached {
		// Superseded by a newer utterance or torn down.
		c.mu.Unlock()
		return
	}
	c.utterCancel = nil
	c.state = StateIdle
	gate := c.gate
	c.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, ErrUnsupported):
		c.logger.Debug("speech synthesis unsupported, skipping playback")
	case errors.Is(err, context.Canceled):
		return
	default:
		c.logger.Warn("utterance playback failed", zap.Error(err))
	}

	if gate == nil || gate() {
		c.StartListening()
	}
}

// StartListening begins capture unless the controller is mid-utterance.
func (c *Controller) StartListening() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attached || c.state == StateSpeaking || c.state == StateListening {
		return
	}
	if err := c.rec.Start(); err != nil {
		c.logger.Warn("failed to start speech capture", zap.Error(err))
		return
	}
	c.state = StateListening
}

func (c *Controller) StopListening() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopListeningLocked()
}

func (c *Controller) stopListeningLocked() {
	if c.state != StateListening {
		return
	}
	c.rec.Stop()
	c.state = StateIdle
}

// State returns the current turn state.
func (c *Controller) State() TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) pump(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	results := c.rec.Results()
	for {
		select {
		case <-stop:
			return
		case text, ok := <-results:
			if !ok {
				return
			}
			c.handleTranscript(text)
		}
	}
}

func (c *Controller) handleTranscript(text string) {
	c.mu.Lock()
	if !c.attached {
		c.mu.Unlock()
		return
	}
	// The candidate's turn is over; capture halts before delivery so the
	// same transcript cannot be picked up twice.
	c.stopListeningLocked()
	cb := c.onTranscript
	c.mu.Unlock()

	if cb != nil && text != "" {
		cb(text)
	}
}
