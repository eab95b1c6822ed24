package voice

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupported is returned by synthesizers that cannot play audio in the
// current environment. The controller treats it as an immediate settle and
// moves straight to the resume gate.
var ErrUnsupported = errors.New("speech synthesis not supported")

// Synthesizer plays one utterance. Speak blocks until playback completes,
// fails, or ctx is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Recognizer captures candidate speech. Completed transcripts are delivered
// on Results exactly once; the recognizer clears its own buffer on delivery.
type Recognizer interface {
	Start() error
	Stop()
	Results() <-chan string
}

// SynthesizerFactory creates a synthesizer instance.
type SynthesizerFactory func() (Synthesizer, error)

var synthesizers = make(map[string]SynthesizerFactory)

// RegisterSynthesizer registers a synthesizer factory with the given name.
func RegisterSynthesizer(name string, factory SynthesizerFactory) {
	synthesizers[name] = factory
}

// NewSynthesizer creates a synthesizer instance based on the given name.
func NewSynthesizer(name string) (Synthesizer, error) {
	factory, exists := synthesizers[name]
	if !exists {
		return nil, fmt.Errorf("unsupported voice provider: %s", name)
	}
	return factory()
}
