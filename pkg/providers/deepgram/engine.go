package deepgram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/audio"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/errorsx"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/events"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/logging"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/recognizer"
)

// Config carries the backend credentials and model selection.
type Config struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
	Interim  bool   `mapstructure:"interim"`
}

// Engine is an alternate recognition backend. It exposes the same
// operation surface as the default adapter but speaks the Deepgram
// streaming protocol, translating its callbacks into sink events.
//
// The remote connection is created lazily on SetFormat because the
// transcription options need the sample rate.
type Engine struct {
	cfg     Config
	sink    events.Sink
	factory events.ResultFactory
	logger  *slog.Logger

	mu          sync.Mutex
	initialized bool
	terminated  bool
	ctx         context.Context
	cancel      context.CancelFunc
	dgClient    *client.WSCallback
	pipeReader  *io.PipeReader
	pipeWriter  *io.PipeWriter
	metaLogged  bool
}

func New(cfg Config, sink events.Sink, factory events.ResultFactory, base *slog.Logger) *Engine {
	if factory == nil {
		factory = events.TextResultFactory{}
	}
	if base == nil {
		base = slog.Default()
	}
	return &Engine{
		cfg:     cfg,
		sink:    sink,
		factory: factory,
		logger:  logging.NewComponentLogger(base, "deepgram_engine"),
	}
}

func (e *Engine) Init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return errorsx.New(errorsx.ReasonLifecycle, "engine terminated")
	}
	if e.initialized {
		return errorsx.New(errorsx.ReasonLifecycle, "engine already initialized")
	}
	if e.cfg.APIKey == "" {
		return errorsx.New(errorsx.ReasonConfigAuth, "no api key configured")
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.initialized = true
	return nil
}

// SetFormat opens the streaming connection for the given audio format.
// A nil format while streaming finalizes the in-flight audio.
func (e *Engine) SetFormat(f *audio.Format) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if f == nil {
		if e.dgClient != nil {
			if err := e.dgClient.Finalize(); err != nil {
				return errorsx.Wrap(err, errorsx.ReasonTransportSend)
			}
		}
		return nil
	}
	if e.dgClient != nil {
		return errorsx.New(errorsx.ReasonLifecycle, "stream format already set")
	}
	if f.Tag != audio.FormatTagPCM {
		return errorsx.New(errorsx.ReasonConfigMode,
			fmt.Sprintf("unsupported format tag %d", f.Tag))
	}

	e.pipeReader, e.pipeWriter = io.Pipe()
	clientOptions := &interfaces.ClientOptions{
		EnableKeepAlive: true,
	}
	transcriptOptions := &interfaces.LiveTranscriptionOptions{
		Model:          e.cfg.Model,
		Language:       e.cfg.Language,
		Encoding:       "linear16",
		SampleRate:     int(f.SamplesPerSec),
		Channels:       int(f.Channels),
		InterimResults: e.cfg.Interim,
		VadEvents:      true,
		SmartFormat:    true,
	}

	cb := &callback{parent: e}
	dgClient, err := client.NewWSUsingCallback(e.ctx, e.cfg.APIKey, clientOptions, transcriptOptions, cb)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonTransportConnect)
	}
	if connected := dgClient.Connect(); !connected {
		return errorsx.New(errorsx.ReasonTransportConnect, "streaming connection failed")
	}
	e.dgClient = dgClient

	e.logger.Info("stream_opened",
		slog.String("model", e.cfg.Model),
		slog.Int("sample_rate", int(f.SamplesPerSec)),
		slog.Int("channels", int(f.Channels)))

	go func() {
		if err := dgClient.Stream(e.pipeReader); err != nil && e.ctx.Err() == nil {
			e.logger.Error("stream_error", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// ProcessAudio forwards one chunk of captured audio. The backend does
// its own framing, so chunks pass through unbuffered; an empty chunk
// asks the service to finalize what it has.
func (e *Engine) ProcessAudio(p []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if e.pipeWriter == nil {
		return errorsx.New(errorsx.ReasonLifecycle, "stream format not set")
	}
	if len(p) == 0 {
		if err := e.dgClient.Finalize(); err != nil {
			return errorsx.Wrap(err, errorsx.ReasonTransportSend)
		}
		return nil
	}
	if _, err := e.pipeWriter.Write(p); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonTransportSend)
	}
	return nil
}

func (e *Engine) Term() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return errorsx.New(errorsx.ReasonLifecycle, "engine not initialized")
	}
	if e.terminated {
		return nil
	}
	e.terminated = true
	if e.cancel != nil {
		e.cancel()
	}
	if e.pipeWriter != nil {
		_ = e.pipeWriter.Close()
	}
	if e.dgClient != nil {
		e.dgClient.Stop()
	}
	e.logger.Info("engine_terminated")
	return nil
}

func (e *Engine) requireInitialized() error {
	if e.terminated {
		return errorsx.New(errorsx.ReasonLifecycle, "engine terminated")
	}
	if !e.initialized {
		return errorsx.New(errorsx.ReasonLifecycle, "engine not initialized")
	}
	return nil
}

// ticks converts the service's second-based timestamps to the 100ns
// tick offsets the sink expects.
func ticks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(seconds * 1e7)
}

type callback struct {
	parent *Engine
}

func (c *callback) Open(*msginterfaces.OpenResponse) error {
	c.parent.logger.Info("connection_opened")
	return nil
}

func (c *callback) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	transcript := mr.Channel.Alternatives[0].Transcript
	if transcript == "" {
		return nil
	}
	offset := ticks(mr.Start)
	if mr.IsFinal || mr.SpeechFinal {
		c.parent.sink.OnFinal(offset, c.parent.factory.NewFinalResult(transcript))
	} else {
		c.parent.sink.OnIntermediate(offset, c.parent.factory.NewIntermediateResult(transcript))
	}
	return nil
}

func (c *callback) Metadata(md *msginterfaces.MetadataResponse) error {
	if c.parent.metaLogged {
		return nil
	}
	c.parent.metaLogged = true
	c.parent.sink.OnAdditionalInfo(0, md.RequestID)
	return nil
}

func (c *callback) SpeechStarted(ssr *msginterfaces.SpeechStartedResponse) error {
	c.parent.sink.OnSpeechStart(ticks(ssr.Timestamp))
	return nil
}

func (c *callback) UtteranceEnd(ur *msginterfaces.UtteranceEndResponse) error {
	c.parent.sink.OnSpeechEnd(ticks(ur.LastWordEnd))
	return nil
}

func (c *callback) Close(*msginterfaces.CloseResponse) error {
	c.parent.sink.OnStreamDone()
	return nil
}

func (c *callback) Error(er *msginterfaces.ErrorResponse) error {
	c.parent.sink.OnError(events.ErrorPayload{
		Description: fmt.Sprintf("%s: %s", er.ErrCode, er.ErrMsg),
	})
	return nil
}

func (c *callback) UnhandledEvent(byData []byte) error {
	c.parent.logger.Debug("unhandled_event", slog.String("data", string(byData)))
	return nil
}

var _ recognizer.Engine = (*Engine)(nil)
