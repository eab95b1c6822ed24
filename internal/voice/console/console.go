// Package console provides terminal-backed voice providers for headless
// runs: a synthesizer that paces text to stdout and a silent one that
// reports the environment as unsupported.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/voice"
)

// Register providers on package import.
func init() {
	voice.RegisterSynthesizer("console", func() (voice.Synthesizer, error) {
		return &Synthesizer{WordsPerMinute: 160}, nil
	})
	voice.RegisterSynthesizer("silent", func() (voice.Synthesizer, error) {
		return &silentSynthesizer{}, nil
	})
}

// Synthesizer writes the utterance to stdout, pacing roughly like speech so
// turn timing behaves as it would with real audio.
type Synthesizer struct {
	WordsPerMinute int
}

func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	fmt.Printf("[interviewer] %s\n", text)

	wpm := s.WordsPerMinute
	if wpm <= 0 {
		wpm = 160
	}
	words := len(strings.Fields(text))
	duration := time.Duration(words) * time.Minute / time.Duration(wpm)

	select {
	case <-time.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type silentSynthesizer struct{}

func (s *silentSynthesizer) Speak(ctx context.Context, text string) error {
	return voice.ErrUnsupported
}
