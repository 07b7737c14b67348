package recognizer

import (
	"context"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/audio"
)

// Engine is the operation surface a recognition backend exposes to the
// audio producer. Adapter is the default implementation; alternate
// backends provide the same surface over their own protocol.
type Engine interface {
	Init(ctx context.Context) error
	SetFormat(f *audio.Format) error
	ProcessAudio(p []byte) error
	Term() error
}

var _ Engine = (*Adapter)(nil)
