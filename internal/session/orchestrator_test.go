package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/integrity"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/stuck"
)

type fakeBackend struct {
	mu sync.Mutex

	startFn func(*models.StartSessionRequest) (*models.StartSessionResponse, error)
	chatFn  func(*models.ChatRequest) (*models.ChatResponse, error)
	hintFn  func(*models.HintRequest) (*models.HintResponse, error)
	stuckFn func(*models.AnalyzeStuckRequest) (*models.AnalyzeStuckResponse, error)
	endFn   func(string) (*models.EndSessionResponse, error)

	chatCalls   int
	endCalls    int
	submitCalls int
	syncs       []string
	reports     []models.ReportCheatRequest
}

func (b *fakeBackend) StartSession(ctx context.Context, req *models.StartSessionRequest) (*models.StartSessionResponse, error) {
	if b.startFn != nil {
		return b.startFn(req)
	}
	return &models.StartSessionResponse{
		SessionID: "sess-1",
		JoinCode:  "123456",
		Message:   "Welcome! Let's walk through the problem together.",
	}, nil
}

func (b *fakeBackend) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	b.mu.Lock()
	b.chatCalls++
	b.mu.Unlock()
	if b.chatFn != nil {
		return b.chatFn(req)
	}
	return &models.ChatResponse{Reply: "Interesting. Why that approach?"}, nil
}

func (b *fakeBackend) RequestHint(ctx context.Context, req *models.HintRequest) (*models.HintResponse, error) {
	if b.hintFn != nil {
		return b.hintFn(req)
	}
	return &models.HintResponse{Hint: "Consider a hash map for the lookups."}, nil
}

func (b *fakeBackend) SubmitCode(ctx context.Context, req *models.CodeSubmitRequest) (*models.CodeSubmitResponse, error) {
	b.mu.Lock()
	b.submitCalls++
	b.mu.Unlock()
	return &models.CodeSubmitResponse{Status: "ok"}, nil
}

func (b *fakeBackend) SyncCode(ctx context.Context, sessionID, code string) error {
	b.mu.Lock()
	b.syncs = append(b.syncs, sessionID+":"+code)
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) AnalyzeStuck(ctx context.Context, req *models.AnalyzeStuckRequest) (*models.AnalyzeStuckResponse, error) {
	if b.stuckFn != nil {
		return b.stuckFn(req)
	}
	return &models.AnalyzeStuckResponse{IsStuck: false}, nil
}

func (b *fakeBackend) ReportViolation(ctx context.Context, req *models.ReportCheatRequest) error {
	b.mu.Lock()
	b.reports = append(b.reports, *req)
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) EndSession(ctx context.Context, sessionID string) (*models.EndSessionResponse, error) {
	b.mu.Lock()
	b.endCalls++
	b.mu.Unlock()
	if b.endFn != nil {
		return b.endFn(sessionID)
	}
	return &models.EndSessionResponse{
		Report: models.FinalReport{
			Summary:          "Solid performance overall.",
			PerformanceLevel: models.LevelHire,
		},
	}, nil
}

func (b *fakeBackend) counts() (chat, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chatCalls, b.endCalls
}

func (b *fakeBackend) reportCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.reports)
}

type fakeEnv struct {
	events chan integrity.Event
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{events: make(chan integrity.Event, 16)}
}

func (f *fakeEnv) Events() <-chan integrity.Event { return f.events }
func (f *fakeEnv) RequestFullscreen() error       { return nil }

type scriptSynth struct {
	mu     sync.Mutex
	spoken []string
}

func (s *scriptSynth) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
	return nil
}

func (s *scriptSynth) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

type scriptRecognizer struct {
	results chan string
}

func newScriptRecognizer() *scriptRecognizer {
	return &scriptRecognizer{results: make(chan string, 4)}
}

func (r *scriptRecognizer) Start() error           { return nil }
func (r *scriptRecognizer) Stop()                  {}
func (r *scriptRecognizer) Results() <-chan string { return r.results }

var testProblem = models.Problem{
	Title:       "Two Sum",
	Description: "Find two numbers adding to a target.",
	Language:    "python",
	Difficulty:  "easy",
}

func testStartRequest() *models.StartSessionRequest {
	return &models.StartSessionRequest{
		CandidateName:   "Candidate",
		Role:            "Software Engineer",
		ExperienceYears: 2,
		Languages:       []string{"python"},
		ProblemTitle:    testProblem.Title,
		DifficultyLevel: testProblem.Difficulty,
	}
}

// quietPolicy keeps the inactivity poll out of the way of short tests.
func quietPolicy() integrity.Policy {
	p := integrity.DefaultPolicy()
	p.InactivityLimit = time.Hour
	p.PollInterval = time.Hour
	return p
}

func quietStuck() stuck.Config {
	return stuck.Config{IdleThreshold: time.Hour, PollInterval: time.Hour}
}

func newTestOrchestrator(backend *fakeBackend) *Orchestrator {
	return NewOrchestrator(Options{
		Backend:      backend,
		Policy:       quietPolicy(),
		StuckConfig:  quietStuck(),
		SyncInterval: time.Hour,
		Logger:       zap.NewNop(),
	})
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for: %s", msg)
}

func TestActivateStoresIdentityAndOpening(t *testing.T) {
	backend := &fakeBackend{}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()

	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	assert.Equal(t, StateActive, o.State())
	assert.Equal(t, "sess-1", o.SessionID())
	assert.Equal(t, "123456", o.JoinCode())

	transcript := o.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, models.RoleAssistant, transcript[0].Role)
	assert.Contains(t, transcript[0].Content, "Welcome")
}

func TestActivateOnceGuard(t *testing.T) {
	backend := &fakeBackend{}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()

	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))
	assert.ErrorIs(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()), ErrAlreadyStarted)
}

func TestActivateFallsBackToLocalGreeting(t *testing.T) {
	backend := &fakeBackend{
		startFn: func(*models.StartSessionRequest) (*models.StartSessionResponse, error) {
			return nil, errors.New("backend unreachable")
		},
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()

	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	// Active despite the failure, just without a session identity.
	assert.Equal(t, StateActive, o.State())
	assert.Empty(t, o.SessionID())

	transcript := o.Transcript()
	require.Len(t, transcript, 1)
	assert.Contains(t, transcript[0].Content, testProblem.Title)
}

func TestChatTurnAppendsAndSendsHistory(t *testing.T) {
	var gotReq *models.ChatRequest
	backend := &fakeBackend{}
	backend.chatFn = func(req *models.ChatRequest) (*models.ChatResponse, error) {
		gotReq = req
		return &models.ChatResponse{Reply: "Good start."}, nil
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	o.UpdateCode("def two_sum(nums, target): ...")
	reply, err := o.SendMessage(context.Background(), "I'll try a brute force first.")
	require.NoError(t, err)
	assert.Equal(t, "Good start.", reply)

	require.NotNil(t, gotReq)
	assert.Equal(t, "sess-1", gotReq.SessionID)
	assert.Equal(t, "def two_sum(nums, target): ...", gotReq.Code)
	// History carries the prior exchange only, not the message being sent.
	require.Len(t, gotReq.History, 1)
	assert.Equal(t, models.RoleAssistant, gotReq.History[0].Role)

	transcript := o.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, models.RoleUser, transcript[1].Role)
	assert.Equal(t, "Good start.", transcript[2].Content)
}

func TestChatSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{}
	backend.chatFn = func(*models.ChatRequest) (*models.ChatResponse, error) {
		<-gate
		return &models.ChatResponse{Reply: "done"}, nil
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	errCh := make(chan error, 1)
	go func() {
		_, err := o.SendMessage(context.Background(), "first")
		errCh <- err
	}()
	waitFor(t, func() bool { chat, _ := backend.counts(); return chat == 1 }, "first chat in flight")

	_, err := o.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrExchangeInFlight)

	close(gate)
	require.NoError(t, <-errCh)
	chat, _ := backend.counts()
	assert.Equal(t, 1, chat)
}

func TestChatFailureSurfacesTranscriptError(t *testing.T) {
	backend := &fakeBackend{}
	backend.chatFn = func(*models.ChatRequest) (*models.ChatResponse, error) {
		return nil, errors.New("brain offline")
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	_, err := o.SendMessage(context.Background(), "hello?")
	require.Error(t, err)

	transcript := o.Transcript()
	last := transcript[len(transcript)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "try again")

	// The session survives the failure.
	assert.Equal(t, StateActive, o.State())
}

func TestHintBypassesChatTurn(t *testing.T) {
	var gotReq *models.HintRequest
	backend := &fakeBackend{}
	backend.hintFn = func(req *models.HintRequest) (*models.HintResponse, error) {
		gotReq = req
		return &models.HintResponse{Hint: "Use a map."}, nil
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	hint, err := o.RequestHint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Use a map.", hint)

	require.NotNil(t, gotReq)
	assert.Equal(t, testProblem.Title, gotReq.ProblemTitle)

	transcript := o.Transcript()
	last := transcript[len(transcript)-1]
	assert.Equal(t, models.EntryKindHint, last.Kind)
	// Hints stay out of chat history sent to the interviewer.
	assert.Empty(t, models.ChatHistory([]models.TranscriptEntry{last}))
}

func TestEndInterviewStoresReportAndIsIdempotent(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{}
	backend.endFn = func(string) (*models.EndSessionResponse, error) {
		<-gate
		return &models.EndSessionResponse{
			Report: models.FinalReport{Summary: "done", PerformanceLevel: models.LevelHire},
		}, nil
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	type result struct {
		report *models.FinalReport
		err    error
	}
	first := make(chan result, 1)
	go func() {
		r, err := o.EndInterview(context.Background())
		first <- result{r, err}
	}()
	waitFor(t, func() bool { _, end := backend.counts(); return end == 1 }, "end in flight")

	// Second end while the first is pending is a no-op.
	report, err := o.EndInterview(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, report)

	close(gate)
	res := <-first
	require.NoError(t, res.err)
	require.NotNil(t, res.report)
	assert.Equal(t, models.LevelHire, res.report.PerformanceLevel)

	_, end := backend.counts()
	assert.Equal(t, 1, end)
	assert.Equal(t, StateEnded, o.State())
	require.NotNil(t, o.Report())

	// Everything after the report is a no-op.
	_, err = o.SendMessage(context.Background(), "one more thing")
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestEndInterviewFailureLeavesSessionRetryable(t *testing.T) {
	fail := true
	backend := &fakeBackend{}
	backend.endFn = func(string) (*models.EndSessionResponse, error) {
		if fail {
			return nil, errors.New("report generation failed")
		}
		return &models.EndSessionResponse{Report: models.FinalReport{Summary: "ok"}}, nil
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	_, err := o.EndInterview(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateActive, o.State())

	transcript := o.Transcript()
	assert.Contains(t, transcript[len(transcript)-1].Content, "Failed to generate")

	fail = false
	report, err := o.EndInterview(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, StateEnded, o.State())
}

func TestThirdViolationTerminatesSession(t *testing.T) {
	backend := &fakeBackend{}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	env := newFakeEnv()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, env))

	for i := 0; i < 3; i++ {
		env.events <- integrity.Event{Kind: integrity.EventVisibilityHidden, At: time.Now()}
	}

	waitFor(t, o.Terminated, "session terminated")
	waitFor(t, func() bool { return backend.reportCount() == 3 }, "three violation reports")

	backend.mu.Lock()
	terminalCount := 0
	for _, r := range backend.reports {
		assert.Equal(t, "sess-1", r.SessionID)
		if r.IsTerminal {
			terminalCount++
		}
	}
	backend.mu.Unlock()
	assert.Equal(t, 1, terminalCount)

	_, err := o.SendMessage(context.Background(), "wait")
	assert.ErrorIs(t, err, ErrNotActive)
	_, err = o.RequestHint(context.Background())
	assert.ErrorIs(t, err, ErrNotActive)
	assert.False(t, o.ShortcutsEnabled())
}

func TestPasteGate(t *testing.T) {
	backend := &fakeBackend{}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	assert.True(t, o.PasteAllowed(strings.Repeat("a", 100)))
	assert.False(t, o.PasteAllowed(strings.Repeat("a", 101)))
	assert.Equal(t, 1, o.WarningCount())
}

func TestStuckSuggestionLandsInTranscript(t *testing.T) {
	backend := &fakeBackend{}
	backend.stuckFn = func(req *models.AnalyzeStuckRequest) (*models.AnalyzeStuckResponse, error) {
		return &models.AnalyzeStuckResponse{IsStuck: true, Suggestion: "Try smaller inputs."}, nil
	}
	o := NewOrchestrator(Options{
		Backend:      backend,
		Policy:       quietPolicy(),
		StuckConfig:  stuck.Config{IdleThreshold: 20 * time.Millisecond, PollInterval: 10 * time.Millisecond},
		SyncInterval: time.Hour,
		Logger:       zap.NewNop(),
	})
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	waitFor(t, func() bool {
		for _, e := range o.Transcript() {
			if e.Kind == models.EntryKindStuck {
				return strings.Contains(e.Content, "Try smaller inputs.")
			}
		}
		return false
	}, "stuck suggestion in transcript")
}

func TestHeartbeatCarriesLatestCode(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(Options{
		Backend:      backend,
		Policy:       quietPolicy(),
		StuckConfig:  quietStuck(),
		SyncInterval: 10 * time.Millisecond,
		Logger:       zap.NewNop(),
	})
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	o.UpdateCode("x = 1")
	waitFor(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		for _, s := range backend.syncs {
			if s == "sess-1:x = 1" {
				return true
			}
		}
		return false
	}, "heartbeat push with latest code")
}

func TestDeactivateDiscardsInFlightReply(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{}
	backend.chatFn = func(*models.ChatRequest) (*models.ChatResponse, error) {
		<-gate
		return &models.ChatResponse{Reply: "too late"}, nil
	}
	o := newTestOrchestrator(backend)
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		reply, err := o.SendMessage(context.Background(), "hello")
		assert.Empty(t, reply)
		assert.NoError(t, err)
	}()
	waitFor(t, func() bool { chat, _ := backend.counts(); return chat == 1 }, "chat in flight")

	o.Deactivate()
	close(gate)
	<-done

	assert.Equal(t, StateUninitialized, o.State())
	assert.Empty(t, o.Transcript())
	assert.Empty(t, o.SessionID())
}

func TestVoiceTranscriptRunsChatTurn(t *testing.T) {
	var gotMsg string
	var mu sync.Mutex
	backend := &fakeBackend{}
	backend.chatFn = func(req *models.ChatRequest) (*models.ChatResponse, error) {
		mu.Lock()
		gotMsg = req.Message
		mu.Unlock()
		return &models.ChatResponse{Reply: "Heard you."}, nil
	}
	synth := &scriptSynth{}
	rec := newScriptRecognizer()
	o := NewOrchestrator(Options{
		Backend:      backend,
		Synth:        synth,
		Recognizer:   rec,
		Policy:       quietPolicy(),
		StuckConfig:  quietStuck(),
		SyncInterval: time.Hour,
		Logger:       zap.NewNop(),
	})
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	// Opening message was spoken.
	waitFor(t, func() bool { return len(synth.lines()) >= 1 }, "opening spoken")

	rec.results <- "here is my approach"
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotMsg == "here is my approach"
	}, "voice transcript sent as chat")

	// The reply comes back through the speaker.
	waitFor(t, func() bool {
		for _, l := range synth.lines() {
			if l == "Heard you." {
				return true
			}
		}
		return false
	}, "reply spoken")
}

func TestSubmitCodeTriggersReviewTurn(t *testing.T) {
	var gotMsg string
	var mu sync.Mutex
	backend := &fakeBackend{}
	backend.chatFn = func(req *models.ChatRequest) (*models.ChatResponse, error) {
		mu.Lock()
		gotMsg = req.Message
		mu.Unlock()
		return &models.ChatResponse{Reply: "Looks correct."}, nil
	}
	o := newTestOrchestrator(backend)
	defer o.Deactivate()
	require.NoError(t, o.Activate(context.Background(), testStartRequest(), testProblem, newFakeEnv()))

	o.UpdateCode("print('hi')")
	require.NoError(t, o.SubmitCode(context.Background()))

	backend.mu.Lock()
	assert.Equal(t, 1, backend.submitCalls)
	backend.mu.Unlock()

	mu.Lock()
	assert.Contains(t, gotMsg, "submitted my code")
	mu.Unlock()

	// The submission notice is a user entry; the follow-up trigger is not.
	var userEntries []string
	for _, e := range o.Transcript() {
		if e.Role == models.RoleUser {
			userEntries = append(userEntries, e.Content)
		}
	}
	require.Len(t, userEntries, 1)
	assert.Equal(t, "I've submitted my code for testing.", userEntries[0])
}
