package main

import (
	"testing"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/integrity"
)

var _ integrity.EnvironmentSource = (*consoleEnv)(nil)

func TestConsoleEnvDeliversEmittedSignals(t *testing.T) {
	env := newConsoleEnv()
	env.emit(integrity.EventVisibilityHidden)

	select {
	case ev := <-env.Events():
		if ev.Kind != integrity.EventVisibilityHidden {
			t.Fatalf("unexpected event kind: %v", ev.Kind)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestConsoleEnvEmitNeverBlocks(t *testing.T) {
	env := newConsoleEnv()
	for i := 0; i < 100; i++ {
		env.emit(integrity.EventActivity)
	}
}

func TestConsoleEnvRequestFullscreen(t *testing.T) {
	env := newConsoleEnv()
	if err := env.RequestFullscreen(); err != nil {
		t.Fatalf("RequestFullscreen returned %v", err)
	}
}

func TestSignalKindsCoverShellSignals(t *testing.T) {
	for _, name := range []string{"hidden", "fullscreen", "devtools", "activity"} {
		if _, ok := signalKinds[name]; !ok {
			t.Fatalf("missing signal kind %q", name)
		}
	}
}
