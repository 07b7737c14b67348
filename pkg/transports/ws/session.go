package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/errorsx"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/transports"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/usp"
)

// Authentication headers by scheme.
const (
	headerSubscriptionKey = "Ocp-Apim-Subscription-Key"
	headerAuthorization   = "Authorization"
	headerDelegationToken = "X-Search-DelegationRPSToken"
	headerConnectionID    = "X-ConnectionId"
)

var errAlreadyConnected = errors.New("session already connected")

// Session is a live websocket binding: binary frames carry audio out,
// text frames carry JSON protocol messages in.
type Session struct {
	cfg        Config
	resolution endpoint.Resolution
	handler    transports.MessageHandler
	logger     *slog.Logger
	header     http.Header
	handshake  time.Duration
	language   string
	modelID    string

	writeMu   sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool
	closed    atomic.Bool
}

func (s *Session) SetAuthentication(auth endpoint.AuthType, credential string) error {
	if s.connected.Load() {
		return errAlreadyConnected
	}
	switch auth {
	case endpoint.AuthSubscriptionKey:
		s.header.Set(headerSubscriptionKey, credential)
	case endpoint.AuthAuthorizationToken:
		s.header.Set(headerAuthorization, "Bearer "+credential)
	case endpoint.AuthDelegationToken:
		s.header.Set(headerDelegationToken, credential)
	default:
		return fmt.Errorf("unsupported authentication method %s", auth)
	}
	return nil
}

func (s *Session) SetLanguage(language string) error {
	if s.connected.Load() {
		return errAlreadyConnected
	}
	s.language = language
	return nil
}

func (s *Session) SetModelID(id string) error {
	if s.connected.Load() {
		return errAlreadyConnected
	}
	s.modelID = id
	return nil
}

func (s *Session) Connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.connected.Load() {
		return errorsx.Wrap(errAlreadyConnected, errorsx.ReasonLifecycle)
	}

	url, err := serviceURL(s.resolution, s.language, s.modelID)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonConfigEndpoint)
	}

	connectionID := uuid.NewString()
	s.header.Set(headerConnectionID, connectionID)

	dialer := websocket.Dialer{HandshakeTimeout: s.handshake}
	var conn *websocket.Conn
	dialErr := newRedialPolicy(s.cfg).Do(func() error {
		var attemptErr error
		conn, _, attemptErr = dialer.DialContext(ctx, url, s.header)
		if attemptErr != nil {
			s.logger.Warn("dial_attempt_failed",
				slog.String("connection_id", connectionID),
				slog.String("error", attemptErr.Error()))
		}
		return attemptErr
	})
	if dialErr != nil {
		return errorsx.Wrap(fmt.Errorf("dial %s: %w", s.resolution.Variant, dialErr), errorsx.ReasonTransportConnect)
	}

	s.conn = conn
	s.connected.Store(true)
	s.logger.Info("session_connected",
		slog.String("connection_id", connectionID),
		slog.String("variant", s.resolution.Variant.String()),
		slog.String("mode", s.resolution.Mode.String()))

	go s.readLoop()
	return nil
}

func (s *Session) SendAudio(p []byte) error {
	if !s.connected.Load() {
		return errorsx.Wrap(errors.New("session not connected"), errorsx.ReasonLifecycle)
	}
	s.writeMu.Lock()
	err := s.conn.WriteMessage(websocket.BinaryMessage, p)
	s.writeMu.Unlock()
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonTransportSend)
	}
	if len(p) == 0 {
		// The empty frame is the wire's end-of-audio signal, but the
		// send contract reports it as a failure.
		return transports.ErrZeroLengthSend
	}
	return nil
}

func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.connected.Store(false)
	if s.conn == nil {
		return nil
	}
	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()
	if err := s.conn.Close(); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonTransportClose)
	}
	return nil
}

func (s *Session) readLoop() {
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.logger.Error("read_loop_terminated", slog.String("error", err.Error()))
			s.handler.OnError(usp.Error{
				Code:        closeCode(err),
				Description: err.Error(),
			})
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		msg, err := usp.Decode(data)
		if err != nil {
			// Malformed messages stop at the transport boundary.
			s.logger.Warn("message_rejected", slog.String("error", err.Error()))
			continue
		}
		transports.Dispatch(s.handler, msg)
	}
}

func closeCode(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// redialPolicy defines retry behavior for transient dial failures.
type redialPolicy struct {
	maxRetries int
	backoff    time.Duration
}

func newRedialPolicy(cfg Config) redialPolicy {
	return redialPolicy{
		maxRetries: cfg.MaxRedials,
		backoff:    time.Duration(cfg.RedialBackoffMS) * time.Millisecond,
	}
}

func (r redialPolicy) Do(fn func() error) error {
	var err error
	for i := 0; i <= r.maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i == r.maxRetries {
			return err
		}
		time.Sleep(r.backoff)
	}
	return err
}

var _ transports.Session = (*Session)(nil)
