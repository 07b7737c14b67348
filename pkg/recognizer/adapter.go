package recognizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/audio"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/errorsx"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/events"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/logging"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/metrics"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/transports"
)

// DefaultBufferMillis is the transmit window used to size the audio
// accumulation buffer when the configuration does not override it.
const DefaultBufferMillis = 100

// lifecycle is the adapter's coarse state. Operations check it under
// the adapter mutex; anything out of order is a lifecycle error.
type lifecycle int

const (
	stateCreated lifecycle = iota
	stateInitialized
	stateTerminated
)

// Options tunes adapter behavior beyond the endpoint properties.
type Options struct {
	// BufferMillis sizes the audio accumulation buffer as a transmit
	// window. Zero selects DefaultBufferMillis.
	BufferMillis int `mapstructure:"buffer_millis"`
	// DumpDir, when set, enables a per-session raw audio capture file
	// in that directory.
	DumpDir string `mapstructure:"audio_dump_dir"`
	// ResultFactory constructs result objects from recognized text.
	// Nil selects verbatim text carry-through.
	ResultFactory events.ResultFactory `mapstructure:"-"`
	// Metrics receives adapter instrumentation. Nil disables it.
	Metrics *metrics.Metrics `mapstructure:"-"`
}

// Adapter binds a local audio producer to a remote recognition session:
// it resolves the endpoint from properties, opens and configures a
// transport session, frames outgoing audio, and dispatches inbound
// messages to the event sink.
//
// All exported methods serialize on one mutex. Audio writes and inbound
// dispatch never race because dispatch runs in the Dispatcher under its
// own lock and touches no adapter state.
type Adapter struct {
	transport  transports.Transport
	props      endpoint.Properties
	sink       events.Sink
	logger     *slog.Logger
	opts       Options
	dispatcher *Dispatcher

	mu        sync.Mutex
	state     lifecycle
	sessionID string
	session   transports.Session
	writer    *audio.Writer
	dump      io.WriteCloser
}

// New creates an adapter over the given transport, endpoint properties,
// and event sink. Call Init before streaming audio.
func New(transport transports.Transport, props endpoint.Properties, sink events.Sink, base *slog.Logger, opts Options) *Adapter {
	if base == nil {
		base = slog.Default()
	}
	if opts.BufferMillis <= 0 {
		opts.BufferMillis = DefaultBufferMillis
	}
	logger := logging.NewComponentLogger(base, "recognizer")
	return &Adapter{
		transport:  transport,
		props:      props,
		sink:       sink,
		logger:     logger,
		opts:       opts,
		dispatcher: NewDispatcher(sink, opts.ResultFactory, logger, opts.Metrics),
	}
}

// SessionID returns the identifier assigned at Init, empty before.
func (a *Adapter) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// Init resolves the endpoint, opens the transport session, applies
// authentication, language, and model configuration, and connects. The
// resolver itself never fails; Init is where an unusable resolution
// becomes an error, before any connection attempt.
func (a *Adapter) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case stateInitialized:
		return errorsx.New(errorsx.ReasonLifecycle, "adapter already initialized")
	case stateTerminated:
		return errorsx.New(errorsx.ReasonLifecycle, "adapter terminated")
	}

	res := endpoint.Resolve(a.props)
	if res.Auth == endpoint.AuthUnknown {
		return errorsx.New(errorsx.ReasonConfigAuth, "no authentication credential configured")
	}
	if res.Variant != endpoint.VariantCustomURL && res.Mode == endpoint.ModeUnknown {
		return errorsx.New(errorsx.ReasonConfigMode,
			fmt.Sprintf("unrecognized recognition mode %q", a.props.GetString(endpoint.KeyMode)))
	}

	session, err := a.transport.Open(res, a.dispatcher)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonTransportConnect)
	}
	if err := session.SetAuthentication(res.Auth, res.Credential); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonConfigAuth)
	}
	if res.Language != "" {
		if err := session.SetLanguage(res.Language); err != nil {
			return errorsx.Wrap(err, errorsx.ReasonConfigEndpoint)
		}
	}
	if res.ModelID != "" {
		if err := session.SetModelID(res.ModelID); err != nil {
			return errorsx.Wrap(err, errorsx.ReasonConfigEndpoint)
		}
	}

	if err := session.Connect(ctx); err != nil {
		if a.opts.Metrics != nil {
			a.opts.Metrics.ConnectFailures.Inc()
		}
		return errorsx.Wrap(err, errorsx.ReasonTransportConnect)
	}

	a.sessionID = uuid.NewString()
	a.session = session
	a.writer = audio.NewWriter(session, a.logger, a.opts.Metrics)
	if a.opts.DumpDir != "" {
		dump, err := newDumpMirror(a.opts.DumpDir, a.sessionID)
		if err != nil {
			// Capture is diagnostic only; a failed dump never blocks
			// the session.
			a.logger.Warn("audio_dump_unavailable", slog.String("error", err.Error()))
		} else {
			a.dump = dump
			a.writer.SetMirror(dump)
		}
	}

	a.dispatcher.markConnected()
	a.state = stateInitialized
	if a.opts.Metrics != nil {
		a.opts.Metrics.ActiveSessions.Inc()
	}
	a.logger.Info("session_initialized",
		slog.String("session_id", a.sessionID),
		slog.String("transport", a.transport.Name()),
		slog.String("variant", res.Variant.String()),
		slog.String("auth", res.Auth.String()))
	return nil
}

// SetFormat declares the audio format of the stream about to be
// written. It transmits the stream header through the current write
// strategy before installing the buffered strategy sized for the new
// format, so the header goes out immediately on a fresh session.
//
// A nil format ends the current stream: buffered audio is flushed and
// the accumulation buffer released.
func (a *Adapter) SetFormat(f *audio.Format) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireInitialized(); err != nil {
		return err
	}
	if f == nil {
		a.logger.Debug("format_cleared", slog.String("session_id", a.sessionID))
		return a.writer.Flush()
	}
	header := audio.EncodeHeader(*f)
	if err := a.writer.Write(header); err != nil {
		return err
	}
	capacity := f.PreferredBufferSize(a.opts.BufferMillis)
	a.writer.SetCapacity(capacity)
	a.logger.Info("format_set",
		slog.String("session_id", a.sessionID),
		slog.Int("samples_per_sec", int(f.SamplesPerSec)),
		slog.Int("block_align", int(f.BlockAlign)),
		slog.Int("buffer_capacity", capacity))
	return nil
}

// ProcessAudio streams one chunk of captured audio. An empty chunk
// flushes: buffered audio is transmitted immediately without waiting
// for the buffer to fill.
func (a *Adapter) ProcessAudio(p []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireInitialized(); err != nil {
		return err
	}
	if len(p) == 0 {
		return a.writer.Flush()
	}
	return a.writer.Write(p)
}

// Term shuts the session down: pending audio is flushed, inbound
// dispatch stops, and the transport session closes. Term is idempotent;
// calling it before Init is a lifecycle error.
func (a *Adapter) Term() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case stateCreated:
		return errorsx.New(errorsx.ReasonLifecycle, "adapter not initialized")
	case stateTerminated:
		return nil
	}
	a.state = stateTerminated

	flushErr := a.writer.Flush()
	a.dispatcher.Terminate()
	closeErr := a.session.Close()
	if a.dump != nil {
		_ = a.dump.Close()
		a.dump = nil
	}
	if a.opts.Metrics != nil {
		a.opts.Metrics.ActiveSessions.Dec()
	}
	a.logger.Info("session_terminated", slog.String("session_id", a.sessionID))

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func (a *Adapter) requireInitialized() error {
	switch a.state {
	case stateCreated:
		return errorsx.New(errorsx.ReasonLifecycle, "adapter not initialized")
	case stateTerminated:
		return errorsx.New(errorsx.ReasonLifecycle, "adapter terminated")
	}
	return nil
}
