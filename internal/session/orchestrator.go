// Package session owns the client-side lifecycle of one live interview.
// The Orchestrator composes the integrity monitor, stuck detector, voice
// turn controller and code sync heartbeat, routes candidate and
// interviewer messages through the backend, and holds the authoritative
// answer to "is this session still active". Every component callback and
// every response that arrives asynchronously is checked against that
// answer before it is allowed to mutate state.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/codesync"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/integrity"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/stuck"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/voice"
)

// State is the lifecycle position of a session. Termination is tracked
// separately because it is absorbing: it can interrupt any active state
// and nothing but a full deactivation clears it.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateStarting      State = "starting"
	StateActive        State = "active"
	StateEnding        State = "ending"
	StateEnded         State = "ended"
)

var (
	ErrAlreadyStarted   = errors.New("session already started")
	ErrNotActive        = errors.New("session is not active")
	ErrExchangeInFlight = errors.New("another exchange is in flight")
)

// Canned lines used when the backend cannot provide one.
const (
	closingLine     = "The interview has concluded. I have generated your final evaluation report."
	chatFailureLine = "Sorry, I couldn't process that. Please try again."
	hintFailureLine = "Couldn't generate a hint right now."
	endFailureLine  = "Failed to generate the final report."
	endRequestLine  = "I'd like to end the interview now."
	submitNotice    = "I've submitted my code for testing."
	submitFollowUp  = "I just submitted my code. Can you review it or ask follow ups?"
)

func fallbackGreeting(problemTitle string) string {
	return fmt.Sprintf("Hi! I'm Codex, your AI interviewer. I couldn't connect to my brain, but take your time to read the problem %q.", problemTitle)
}

// Backend is the slice of the interview API the orchestrator and its
// components consume. *api.Client satisfies it.
type Backend interface {
	StartSession(ctx context.Context, req *models.StartSessionRequest) (*models.StartSessionResponse, error)
	Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
	RequestHint(ctx context.Context, req *models.HintRequest) (*models.HintResponse, error)
	SubmitCode(ctx context.Context, req *models.CodeSubmitRequest) (*models.CodeSubmitResponse, error)
	SyncCode(ctx context.Context, sessionID, code string) error
	AnalyzeStuck(ctx context.Context, req *models.AnalyzeStuckRequest) (*models.AnalyzeStuckResponse, error)
	ReportViolation(ctx context.Context, req *models.ReportCheatRequest) error
	EndSession(ctx context.Context, sessionID string) (*models.EndSessionResponse, error)
}

// Options configures an Orchestrator. Synth and Recognizer may be nil
// together, in which case the session runs text-only.
type Options struct {
	Backend      Backend
	Synth        voice.Synthesizer
	Recognizer   voice.Recognizer
	Policy       integrity.Policy
	StuckConfig  stuck.Config
	SyncInterval time.Duration
	Logger       *zap.Logger
}

type Orchestrator struct {
	backend Backend
	logger  *zap.Logger

	synth        voice.Synthesizer
	rec          voice.Recognizer
	policy       integrity.Policy
	stuckCfg     stuck.Config
	syncInterval time.Duration

	mu         sync.Mutex
	state      State
	terminated bool
	// epoch increments on every activation and deactivation; async
	// completions capture it and discard themselves on mismatch.
	epoch      int
	sessionID  string
	joinCode   string
	problem    models.Problem
	code       string
	transcript []models.TranscriptEntry
	report     *models.FinalReport

	chatBusy bool
	hintBusy bool
	endBusy  bool

	monitor   *integrity.Monitor
	detector  *stuck.Detector
	heartbeat *codesync.Heartbeat
	voice     *voice.Controller
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	syncInterval := opts.SyncInterval
	if syncInterval <= 0 {
		syncInterval = codesync.DefaultInterval
	}
	policy := opts.Policy
	if policy.MaxWarnings == 0 {
		policy = integrity.DefaultPolicy()
	}
	stuckCfg := opts.StuckConfig
	if stuckCfg.IdleThreshold == 0 {
		stuckCfg = stuck.DefaultConfig()
	}
	return &Orchestrator{
		backend:      opts.Backend,
		logger:       logger,
		synth:        opts.Synth,
		rec:          opts.Recognizer,
		policy:       policy,
		stuckCfg:     stuckCfg,
		syncInterval: syncInterval,
		state:        StateUninitialized,
	}
}

// Activate starts the session exactly once: it calls the start endpoint,
// records the session identity, speaks the opening message and brings up
// every monitor. A second Activate without an intervening Deactivate is
// refused, so UI re-renders cannot double-start. If the backend is
// unreachable the session still comes up active, with a local greeting
// and no session id.
func (o *Orchestrator) Activate(ctx context.Context, req *models.StartSessionRequest, problem models.Problem, env integrity.EnvironmentSource) error {
	o.mu.Lock()
	if o.state != StateUninitialized {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.state = StateStarting
	o.problem = problem
	o.epoch++
	e := o.epoch
	o.mu.Unlock()

	resp, err := o.backend.StartSession(ctx, req)

	o.mu.Lock()
	if o.epoch != e {
		o.mu.Unlock()
		return nil
	}
	var opening string
	if err != nil {
		o.logger.Warn("start session failed, using local greeting", zap.Error(err))
		opening = fallbackGreeting(problem.Title)
	} else {
		o.sessionID = resp.SessionID
		o.joinCode = resp.JoinCode
		opening = resp.Message
	}
	o.state = StateActive
	o.appendLocked(models.RoleAssistant, opening, models.EntryKindChat)

	o.monitor = integrity.NewMonitor(o.policy, o.logger, o.handleViolation)
	o.detector = stuck.NewDetector(o.backend, problem, o.stuckCfg, o.logger, o.handleStuckSuggestion)
	o.heartbeat = codesync.NewHeartbeat(o.backend, o.snapshot, o.syncInterval, o.logger)
	if o.synth != nil && o.rec != nil {
		o.voice = voice.NewController(o.synth, o.rec, o.logger, o.resumeAllowed, o.handleVoiceTranscript)
	}
	monitor, detector, heartbeat, vc := o.monitor, o.detector, o.heartbeat, o.voice
	o.mu.Unlock()

	monitor.Attach(env)
	detector.Attach()
	heartbeat.Start()
	if vc != nil {
		vc.Attach()
	}

	// A deactivation may have raced the attach calls above; if it did,
	// release everything it could not have seen.
	o.mu.Lock()
	if o.epoch != e {
		o.mu.Unlock()
		monitor.Detach()
		detector.Detach()
		heartbeat.Stop()
		if vc != nil {
			vc.Detach()
		}
		return nil
	}
	o.mu.Unlock()

	if vc != nil {
		vc.Speak(opening)
	}
	return nil
}

// Deactivate is the single teardown path. It clears session identity,
// transcript, report and termination state, and releases every timer and
// listener the components hold. Blocks until all component goroutines
// have exited, so nothing can fire against the cleared state.
func (o *Orchestrator) Deactivate() {
	o.mu.Lock()
	o.epoch++
	monitor, detector, heartbeat, vc := o.monitor, o.detector, o.heartbeat, o.voice
	o.monitor, o.detector, o.heartbeat, o.voice = nil, nil, nil, nil
	o.state = StateUninitialized
	o.terminated = false
	o.sessionID = ""
	o.joinCode = ""
	o.code = ""
	o.transcript = nil
	o.report = nil
	o.chatBusy, o.hintBusy, o.endBusy = false, false, false
	o.mu.Unlock()

	if monitor != nil {
		monitor.Detach()
	}
	if detector != nil {
		detector.Detach()
	}
	if heartbeat != nil {
		heartbeat.Stop()
	}
	if vc != nil {
		vc.Detach()
	}
}

// SendMessage runs one chat turn: the candidate's text is appended to the
// transcript, the backend is consulted with the prior chat history, and
// the reply is appended and spoken. Only one exchange may be in flight.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return o.sendChat(ctx, text, true)
}

func (o *Orchestrator) sendChat(ctx context.Context, text string, record bool) (string, error) {
	o.mu.Lock()
	if !o.canActLocked() || o.sessionID == "" {
		o.mu.Unlock()
		return "", ErrNotActive
	}
	if o.chatBusy || o.endBusy {
		o.mu.Unlock()
		return "", ErrExchangeInFlight
	}
	o.chatBusy = true
	history := models.ChatHistory(o.transcript)
	if record {
		o.appendLocked(models.RoleUser, text, models.EntryKindChat)
	}
	req := &models.ChatRequest{
		SessionID: o.sessionID,
		Message:   text,
		Code:      o.code,
		History:   history,
	}
	e := o.epoch
	o.mu.Unlock()

	resp, err := o.backend.Chat(ctx, req)

	o.mu.Lock()
	if o.epoch != e {
		o.mu.Unlock()
		return "", nil
	}
	o.chatBusy = false
	if !o.canActLocked() {
		// Session ended or was terminated while the reply was in flight.
		o.mu.Unlock()
		return "", nil
	}
	if err != nil {
		o.appendLocked(models.RoleAssistant, chatFailureLine, models.EntryKindChat)
		o.mu.Unlock()
		return "", err
	}
	o.appendLocked(models.RoleAssistant, resp.Reply, models.EntryKindChat)
	vc := o.voice
	o.mu.Unlock()

	if vc != nil {
		vc.Speak(resp.Reply)
	}
	return resp.Reply, nil
}

// RequestHint asks the hint endpoint directly, bypassing the normal chat
// turn. Serialized against concurrent hint requests.
func (o *Orchestrator) RequestHint(ctx context.Context) (string, error) {
	o.mu.Lock()
	if !o.canActLocked() || o.sessionID == "" {
		o.mu.Unlock()
		return "", ErrNotActive
	}
	if o.hintBusy {
		o.mu.Unlock()
		return "", ErrExchangeInFlight
	}
	o.hintBusy = true
	req := &models.HintRequest{
		Code:               o.code,
		ProblemTitle:       o.problem.Title,
		ProblemDescription: o.problem.Description,
		Language:           o.problem.Language,
	}
	e := o.epoch
	o.mu.Unlock()

	resp, err := o.backend.RequestHint(ctx, req)

	o.mu.Lock()
	if o.epoch != e {
		o.mu.Unlock()
		return "", nil
	}
	o.hintBusy = false
	if !o.canActLocked() {
		o.mu.Unlock()
		return "", nil
	}
	if err != nil {
		o.appendLocked(models.RoleAssistant, hintFailureLine, models.EntryKindChat)
		o.mu.Unlock()
		return "", err
	}
	o.appendLocked(models.RoleAssistant, resp.Hint, models.EntryKindHint)
	vc := o.voice
	o.mu.Unlock()

	if vc != nil {
		vc.Speak(resp.Hint)
	}
	return resp.Hint, nil
}

// SubmitCode sends the current buffer to the judge, then runs a follow-up
// chat turn so the interviewer can comment on the submission.
func (o *Orchestrator) SubmitCode(ctx context.Context) error {
	o.mu.Lock()
	if !o.canActLocked() || o.sessionID == "" || strings.TrimSpace(o.code) == "" {
		o.mu.Unlock()
		return ErrNotActive
	}
	if o.chatBusy || o.endBusy {
		o.mu.Unlock()
		return ErrExchangeInFlight
	}
	o.chatBusy = true
	o.appendLocked(models.RoleUser, submitNotice, models.EntryKindChat)
	req := &models.CodeSubmitRequest{
		SessionID: o.sessionID,
		Code:      o.code,
		Language:  o.problem.Language,
	}
	e := o.epoch
	o.mu.Unlock()

	_, submitErr := o.backend.SubmitCode(ctx, req)

	o.mu.Lock()
	if o.epoch != e {
		o.mu.Unlock()
		return nil
	}
	o.chatBusy = false
	o.mu.Unlock()

	if submitErr != nil {
		o.logger.Warn("code submit failed", zap.Error(submitErr))
		return submitErr
	}

	_, err := o.sendChat(ctx, submitFollowUp, false)
	return err
}

// EndInterview asks the backend for the final report. A second call while
// one is pending is a no-op, and the interviewer speaks a closing line on
// success. On failure the session stays active so the end can be retried.
func (o *Orchestrator) EndInterview(ctx context.Context) (*models.FinalReport, error) {
	o.mu.Lock()
	if o.endBusy || o.state == StateEnding {
		o.mu.Unlock()
		return nil, nil
	}
	if !o.canActLocked() || o.sessionID == "" {
		o.mu.Unlock()
		return nil, ErrNotActive
	}
	o.endBusy = true
	o.state = StateEnding
	o.appendLocked(models.RoleUser, endRequestLine, models.EntryKindChat)
	sid := o.sessionID
	e := o.epoch
	o.mu.Unlock()

	resp, err := o.backend.EndSession(ctx, sid)

	o.mu.Lock()
	if o.epoch != e {
		o.mu.Unlock()
		return nil, nil
	}
	o.endBusy = false
	if o.terminated {
		o.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		o.state = StateActive
		o.appendLocked(models.RoleAssistant, endFailureLine, models.EntryKindChat)
		o.mu.Unlock()
		return nil, err
	}
	report := resp.Report
	o.report = &report
	o.state = StateEnded
	monitor, detector, heartbeat := o.monitor, o.detector, o.heartbeat
	vc := o.voice
	o.mu.Unlock()

	// The session is over; stop every monitor. The voice controller stays
	// attached for the closing line, its resume gate keeps it from
	// listening again.
	if monitor != nil {
		monitor.Detach()
	}
	if detector != nil {
		detector.Detach()
	}
	if heartbeat != nil {
		heartbeat.Stop()
	}
	if vc != nil {
		vc.Speak(closingLine)
	}
	return &report, nil
}

// UpdateCode records the latest editor buffer. Feeds the stuck detector's
// idle clock and the heartbeat's snapshot.
func (o *Orchestrator) UpdateCode(code string) {
	o.mu.Lock()
	if !o.canActLocked() {
		o.mu.Unlock()
		return
	}
	o.code = code
	detector := o.detector
	o.mu.Unlock()

	if detector != nil {
		detector.NoteEdit(code)
	}
}

// PasteAllowed asks the integrity monitor whether a clipboard paste may
// proceed. The editor must cancel the paste when this returns false.
func (o *Orchestrator) PasteAllowed(content string) bool {
	o.mu.Lock()
	monitor := o.monitor
	o.mu.Unlock()

	if monitor == nil {
		return true
	}
	return monitor.CheckPaste(content)
}

// ShortcutsEnabled reports whether keyboard shortcuts (hint, submit,
// panel toggle) should act right now. Callers must consult it on every
// keypress; the answer changes asynchronously.
func (o *Orchestrator) ShortcutsEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canActLocked()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Terminated() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.terminated
}

func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

func (o *Orchestrator) JoinCode() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.joinCode
}

func (o *Orchestrator) Report() *models.FinalReport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.report
}

func (o *Orchestrator) Transcript() []models.TranscriptEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.TranscriptEntry, len(o.transcript))
	copy(out, o.transcript)
	return out
}

func (o *Orchestrator) WarningCount() int {
	o.mu.Lock()
	monitor := o.monitor
	o.mu.Unlock()

	if monitor == nil {
		return 0
	}
	return monitor.WarningCount()
}

func (o *Orchestrator) canActLocked() bool {
	return o.state == StateActive && !o.terminated && o.report == nil
}

func (o *Orchestrator) appendLocked(role, content, kind string) {
	o.transcript = append(o.transcript, models.TranscriptEntry{
		Role:    role,
		Content: content,
		Kind:    kind,
	})
}

// resumeAllowed is the voice controller's gate: speak-to-listen handover
// only happens while the session can still accept candidate input.
func (o *Orchestrator) resumeAllowed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canActLocked()
}

// handleVoiceTranscript feeds a completed speech capture through the same
// path as typed input.
func (o *Orchestrator) handleVoiceTranscript(text string) {
	if _, err := o.SendMessage(context.Background(), text); err != nil {
		o.logger.Debug("voice message dropped", zap.Error(err))
	}
}

// snapshot is the heartbeat's view of the current session.
func (o *Orchestrator) snapshot() (string, string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.canActLocked() || o.sessionID == "" {
		return "", "", false
	}
	return o.sessionID, o.code, true
}

// handleStuckSuggestion surfaces an idle-stretch suggestion as an
// unobtrusive transcript entry; it is never spoken.
func (o *Orchestrator) handleStuckSuggestion(suggestion string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.canActLocked() {
		return
	}
	o.appendLocked(models.RoleAssistant, "Hint available if you need it: "+suggestion, models.EntryKindStuck)
}

// handleViolation reports each violation to the backend best-effort and,
// on the terminal one, moves the session into the absorbing terminated
// state. Runs on the monitor's goroutine, so the teardown is deferred to
// its own goroutine rather than calling Detach from inside the callback.
func (o *Orchestrator) handleViolation(v models.IntegrityViolation, terminal bool) {
	o.mu.Lock()
	sid := o.sessionID
	e := o.epoch
	o.mu.Unlock()

	o.logger.Warn("integrity violation",
		zap.String("kind", string(v.Kind)),
		zap.Bool("terminal", terminal))

	if sid != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			req := &models.ReportCheatRequest{
				SessionID:   sid,
				WarningType: string(v.Kind),
				Message:     v.Message,
				IsTerminal:  terminal,
			}
			if err := o.backend.ReportViolation(ctx, req); err != nil {
				o.logger.Warn("failed to report violation", zap.Error(err))
			}
		}()
	}

	if terminal {
		go o.terminate(e)
	}
}

func (o *Orchestrator) terminate(epoch int) {
	o.mu.Lock()
	if o.epoch != epoch || o.terminated {
		o.mu.Unlock()
		return
	}
	o.terminated = true
	monitor, detector, heartbeat, vc := o.monitor, o.detector, o.heartbeat, o.voice
	o.mu.Unlock()

	o.logger.Warn("session terminated by integrity policy")

	if monitor != nil {
		monitor.Detach()
	}
	if detector != nil {
		detector.Detach()
	}
	if heartbeat != nil {
		heartbeat.Stop()
	}
	if vc != nil {
		vc.Detach()
	}
}
