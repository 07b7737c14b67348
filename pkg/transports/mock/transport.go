package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/transports"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/usp"
)

// Transport is an in-memory transport for local testing and integration.
// It implements the transports.Transport interface without any network
// dependency; inbound messages are injected with Deliver.
type Transport struct {
	mu       sync.Mutex
	sessions []*Session

	// Optional fault injection, applied to every opened session.
	ConnectErr error
	SendErr    error
}

func New() *Transport {
	return &Transport{}
}

func (t *Transport) Name() string { return "mock" }

func (t *Transport) Open(res endpoint.Resolution, handler transports.MessageHandler) (transports.Session, error) {
	sess := &Session{
		resolution: res,
		handler:    handler,
		connectErr: t.ConnectErr,
		sendErr:    t.SendErr,
	}
	t.mu.Lock()
	t.sessions = append(t.sessions, sess)
	t.mu.Unlock()
	return sess, nil
}

// Last returns the most recently opened session for inspection.
func (t *Transport) Last() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sessions) == 0 {
		return nil
	}
	return t.sessions[len(t.sessions)-1]
}

// Session records configuration and sent audio, and feeds injected
// messages to the registered handler the way a live connection would.
type Session struct {
	resolution endpoint.Resolution
	handler    transports.MessageHandler
	connectErr error
	sendErr    error

	mu         sync.Mutex
	auth       endpoint.AuthType
	credential string
	language   string
	modelID    string
	setOrder   []string
	payloads   [][]byte
	flushes    int

	connected atomic.Bool
	closed    atomic.Bool
}

func (s *Session) SetAuthentication(auth endpoint.AuthType, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
	s.credential = credential
	s.setOrder = append(s.setOrder, "auth")
	return nil
}

func (s *Session) SetLanguage(language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = language
	s.setOrder = append(s.setOrder, "language")
	return nil
}

func (s *Session) SetModelID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelID = id
	s.setOrder = append(s.setOrder, "model")
	return nil
}

func (s *Session) Connect(ctx context.Context) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected.Store(true)
	return nil
}

func (s *Session) SendAudio(p []byte) error {
	if len(p) == 0 {
		s.mu.Lock()
		s.flushes++
		s.mu.Unlock()
		return transports.ErrZeroLengthSend
	}
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	s.payloads = append(s.payloads, append([]byte(nil), p...))
	s.mu.Unlock()
	return nil
}

func (s *Session) Close() error {
	s.closed.Store(true)
	s.connected.Store(false)
	return nil
}

// Deliver routes an injected message to the session handler, mimicking
// asynchronous arrival from the remote service. Hand-built messages
// are validated the way decoded wire messages are, so a path without
// its body is rejected instead of crashing dispatch.
func (s *Session) Deliver(msg usp.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	transports.Dispatch(s.handler, msg)
	return nil
}

// Resolution returns the endpoint resolution the session was opened with.
func (s *Session) Resolution() endpoint.Resolution { return s.resolution }

// Payloads returns copies of all non-empty audio sends, in order.
func (s *Session) Payloads() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.payloads))
	copy(out, s.payloads)
	return out
}

// Joined concatenates all transmitted payloads.
func (s *Session) Joined() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []byte
	for _, p := range s.payloads {
		out = append(out, p...)
	}
	return out
}

// Flushes counts zero-length flush signals received.
func (s *Session) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// SetOrder reports the order of the optional pre-connect calls.
func (s *Session) SetOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.setOrder...)
}

// Auth reports the configured authentication method and credential.
func (s *Session) Auth() (endpoint.AuthType, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth, s.credential
}

// Language reports the configured recognition language.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// ModelID reports the configured custom model id.
func (s *Session) ModelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelID
}

// Connected reports whether Connect succeeded and Close has not run.
func (s *Session) Connected() bool { return s.connected.Load() }

// Closed reports whether Close has run.
func (s *Session) Closed() bool { return s.closed.Load() }

var _ transports.Transport = (*Transport)(nil)
var _ transports.Session = (*Session)(nil)
