package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/api"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/config"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/integrity"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/session"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/utils"
	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/voice"
	_ "github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/voice/console"
)

// consoleEnv feeds integrity events typed at the prompt into the monitor.
type consoleEnv struct {
	events chan integrity.Event
}

func newConsoleEnv() *consoleEnv {
	return &consoleEnv{events: make(chan integrity.Event, 16)}
}

func (e *consoleEnv) Events() <-chan integrity.Event { return e.events }

func (e *consoleEnv) RequestFullscreen() error {
	fmt.Println("[shell] fullscreen requested")
	return nil
}

func (e *consoleEnv) emit(kind integrity.EventKind) {
	select {
	case e.events <- integrity.Event{Kind: kind}:
	default:
	}
}

var signalKinds = map[string]integrity.EventKind{
	"hidden":     integrity.EventVisibilityHidden,
	"fullscreen": integrity.EventFullscreenExited,
	"devtools":   integrity.EventDevToolsOpened,
	"activity":   integrity.EventActivity,
}

const usage = `commands:
  /code <text>       replace the working code buffer
  /hint              ask for a hint
  /submit            submit the code buffer for evaluation
  /signal <kind>     emit an environment signal (hidden, fullscreen, devtools, activity)
  /end               end the interview and print the report
  /quit              exit
anything else is sent to the interviewer as a chat message`

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadAgentConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	synth, err := voice.NewSynthesizer(cfg.VoiceProvider)
	if err != nil {
		logger.Fatal("Failed to initialize voice provider", zap.Error(err))
	}

	client := api.NewClient(cfg.BackendURL)
	orch := session.NewOrchestrator(session.Options{
		Backend: client,
		Logger:  logger,
	})

	req := &models.StartSessionRequest{
		CandidateName:   getEnvOrDefault("CANDIDATE_NAME", "Candidate"),
		Role:            getEnvOrDefault("CANDIDATE_ROLE", "Software Engineer"),
		Languages:       []string{getEnvOrDefault("INTERVIEW_LANGUAGE", "python")},
		ProblemTitle:    getEnvOrDefault("PROBLEM_TITLE", "Two Sum"),
		DifficultyLevel: getEnvOrDefault("PROBLEM_DIFFICULTY", "medium"),
	}
	problem := models.Problem{
		Title:      req.ProblemTitle,
		Language:   req.Languages[0],
		Difficulty: req.DifficultyLevel,
	}

	env := newConsoleEnv()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = orch.Activate(ctx, req, problem, env)
	cancel()
	if err != nil {
		logger.Warn("session started in offline mode", zap.Error(err))
	}

	for _, entry := range orch.Transcript() {
		if entry.Role == models.RoleAssistant {
			fmt.Printf("[interviewer] %s\n", entry.Content)
		}
	}
	if code := orch.JoinCode(); code != "" {
		fmt.Printf("recruiter join code: %s\n", code)
	}
	fmt.Println(usage)

	// Ctrl-C tears the session down cleanly.
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdownChan
		orch.Deactivate()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if handleLine(orch, synth, env, line) {
			break
		}
		if orch.Terminated() {
			fmt.Println("session terminated for integrity violations")
			break
		}
	}

	orch.Deactivate()
}

// handleLine runs one prompt command. It returns true when the loop
// should exit.
func handleLine(orch *session.Orchestrator, synth voice.Synthesizer, env *consoleEnv, line string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch {
	case line == "/quit":
		return true

	case line == "/hint":
		hint, err := orch.RequestHint(ctx)
		if err != nil {
			fmt.Printf("hint unavailable: %v\n", err)
			return false
		}
		say(ctx, synth, hint)

	case line == "/submit":
		if err := orch.SubmitCode(ctx); err != nil {
			fmt.Printf("submit failed: %v\n", err)
		}

	case line == "/end":
		report, err := orch.EndInterview(ctx)
		if err != nil {
			fmt.Printf("could not end the interview: %v\n", err)
			return false
		}
		if report == nil {
			return false
		}
		printReport(report)
		return true

	case strings.HasPrefix(line, "/code "):
		orch.UpdateCode(strings.TrimPrefix(line, "/code "))

	case strings.HasPrefix(line, "/signal "):
		kind, ok := signalKinds[strings.TrimPrefix(line, "/signal ")]
		if !ok {
			fmt.Println("unknown signal kind")
			return false
		}
		env.emit(kind)

	default:
		reply, err := orch.SendMessage(ctx, line)
		if err != nil {
			fmt.Printf("message failed: %v\n", err)
			return false
		}
		say(ctx, synth, reply)
	}
	return false
}

func say(ctx context.Context, synth voice.Synthesizer, text string) {
	if err := synth.Speak(ctx, text); err != nil {
		fmt.Printf("[interviewer] %s\n", text)
	}
}

func printReport(report *models.FinalReport) {
	fmt.Println("=== final report ===")
	fmt.Printf("level: %s\n", report.PerformanceLevel)
	fmt.Printf("final score: %d%%\n", report.Scores.FinalScorePercent)
	fmt.Printf("integrity: %d\n", report.Scores.IntegrityScore)
	fmt.Printf("summary: %s\n", report.Summary)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
