package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/logging"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/transports"
)

// Config carries websocket transport settings.
type Config struct {
	// HandshakeTimeoutMS bounds a single dial attempt.
	HandshakeTimeoutMS int `mapstructure:"handshake_timeout_ms"`
	// MaxRedials is the number of extra dial attempts on transient
	// connect failure. Reconnection of an established session is not
	// attempted here.
	MaxRedials int `mapstructure:"max_redials"`
	// RedialBackoffMS is the pause between dial attempts.
	RedialBackoffMS int `mapstructure:"redial_backoff_ms"`
}

func (c Config) withDefaults() Config {
	if c.HandshakeTimeoutMS <= 0 {
		c.HandshakeTimeoutMS = 5000
	}
	if c.MaxRedials < 0 {
		c.MaxRedials = 0
	}
	if c.RedialBackoffMS <= 0 {
		c.RedialBackoffMS = 200
	}
	return c
}

// Transport opens websocket sessions against the resolved endpoint.
type Transport struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, base *slog.Logger) *Transport {
	if base == nil {
		base = slog.Default()
	}
	return &Transport{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(base, "ws_transport"),
	}
}

func (t *Transport) Name() string { return "ws" }

func (t *Transport) Open(res endpoint.Resolution, handler transports.MessageHandler) (transports.Session, error) {
	return &Session{
		cfg:        t.cfg,
		resolution: res,
		handler:    handler,
		logger:     t.logger,
		header:     http.Header{},
		handshake:  time.Duration(t.cfg.HandshakeTimeoutMS) * time.Millisecond,
	}, nil
}

var _ transports.Transport = (*Transport)(nil)
