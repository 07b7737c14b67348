package transports

import (
	"context"
	"errors"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/usp"
)

// ErrZeroLengthSend is reported by a Session when asked to send an empty
// audio payload. An empty send is the only way to flush the transport's
// own buffer, so callers on the audio path treat this error as success.
var ErrZeroLengthSend = errors.New("zero-length audio send")

// MessageHandler receives inbound protocol messages, one method per
// message kind. The transport invokes the matching method on its own
// receive goroutine; handlers must not call back into the transport.
type MessageHandler interface {
	OnSpeechStartDetected(msg usp.SpeechStartDetected)
	OnSpeechEndDetected(msg usp.SpeechEndDetected)
	OnSpeechHypothesis(msg usp.SpeechHypothesis)
	OnSpeechFragment(msg usp.SpeechFragment)
	OnSpeechPhrase(msg usp.SpeechPhrase)
	OnTurnStart(msg usp.TurnStart)
	OnTurnEnd(msg usp.TurnEnd)
	OnError(msg usp.Error)
}

// Session is a live binding to a remote endpoint. The Set* calls are
// optional and only valid before Connect; SendAudio and Close require a
// connected session.
type Session interface {
	SetAuthentication(auth endpoint.AuthType, credential string) error
	SetLanguage(language string) error
	SetModelID(id string) error
	Connect(ctx context.Context) error
	// SendAudio transmits one payload. It either completes or fails
	// before returning; an empty payload flushes the transport and may
	// fail with ErrZeroLengthSend.
	SendAudio(p []byte) error
	Close() error
}

// Transport creates sessions bound to a resolved endpoint. Inbound
// messages are delivered to the handler asynchronously once the session
// is connected.
type Transport interface {
	Name() string
	Open(res endpoint.Resolution, handler MessageHandler) (Session, error)
}

// Dispatch routes a validated message to the matching handler method.
// Messages that fail usp.Decode never reach this point.
func Dispatch(h MessageHandler, msg usp.Message) {
	switch msg.Path {
	case usp.PathSpeechStartDetected:
		h.OnSpeechStartDetected(*msg.SpeechStart)
	case usp.PathSpeechEndDetected:
		h.OnSpeechEndDetected(*msg.SpeechEnd)
	case usp.PathSpeechHypothesis:
		h.OnSpeechHypothesis(*msg.Hypothesis)
	case usp.PathSpeechFragment:
		h.OnSpeechFragment(*msg.Fragment)
	case usp.PathSpeechPhrase:
		h.OnSpeechPhrase(*msg.Phrase)
	case usp.PathTurnStart:
		h.OnTurnStart(*msg.TurnStart)
	case usp.PathTurnEnd:
		h.OnTurnEnd(usp.TurnEnd{})
	case usp.PathError:
		h.OnError(*msg.Error)
	}
}
