package recognizer

import (
	"log/slog"
	"sync"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/events"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/metrics"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/transports"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/usp"
)

// Dispatcher turns inbound protocol messages into consumer events. It
// serializes delivery under one mutex so the sink observes events in
// arrival order, and it drops everything that arrives before the
// session connects or after it terminates.
type Dispatcher struct {
	sink    events.Sink
	factory events.ResultFactory
	logger  *slog.Logger
	m       *metrics.Metrics

	mu    sync.Mutex
	phase Phase
}

// NewDispatcher creates a dispatcher in the unconnected phase. A nil
// factory falls back to verbatim text results.
func NewDispatcher(sink events.Sink, factory events.ResultFactory, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if factory == nil {
		factory = events.TextResultFactory{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sink:    sink,
		factory: factory,
		logger:  logger,
		m:       m,
		phase:   PhaseUnconnected,
	}
}

// markConnected opens the dispatch gate once the transport is up.
func (d *Dispatcher) markConnected() {
	d.mu.Lock()
	d.advance(PhaseIdle)
	d.mu.Unlock()
}

// Terminate closes the dispatch gate. Messages still in flight on the
// transport's receive goroutine are dropped, not delivered.
func (d *Dispatcher) Terminate() {
	d.mu.Lock()
	if d.phase != PhaseTerminated {
		d.advance(PhaseTerminated)
	}
	d.mu.Unlock()
}

// Phase returns the current dispatch phase.
func (d *Dispatcher) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *Dispatcher) OnSpeechStartDetected(msg usp.SpeechStartDetected) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathSpeechStartDetected) {
		return
	}
	d.advance(PhaseSpeechActive)
	d.emit(events.KindSpeechStarted)
	d.sink.OnSpeechStart(msg.Offset)
}

func (d *Dispatcher) OnSpeechEndDetected(msg usp.SpeechEndDetected) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathSpeechEndDetected) {
		return
	}
	d.advance(PhaseTurnActive)
	d.emit(events.KindSpeechEnded)
	d.sink.OnSpeechEnd(msg.Offset)
}

func (d *Dispatcher) OnSpeechHypothesis(msg usp.SpeechHypothesis) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathSpeechHypothesis) {
		return
	}
	d.emit(events.KindIntermediate)
	d.sink.OnIntermediate(msg.Offset, d.factory.NewIntermediateResult(msg.Text))
}

// OnSpeechFragment delivers a fragment exactly like a hypothesis: both
// are non-final text for the same utterance.
func (d *Dispatcher) OnSpeechFragment(msg usp.SpeechFragment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathSpeechFragment) {
		return
	}
	d.emit(events.KindIntermediate)
	d.sink.OnIntermediate(msg.Offset, d.factory.NewIntermediateResult(msg.Text))
}

func (d *Dispatcher) OnSpeechPhrase(msg usp.SpeechPhrase) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathSpeechPhrase) {
		return
	}
	// The recognition status is surfaced for diagnostics but not
	// interpreted; the consumer decides what a non-zero status means.
	d.logger.Debug("phrase_received",
		slog.Int("recognition_status", msg.RecognitionStatus),
		slog.Uint64("offset", msg.Offset))
	d.emit(events.KindFinal)
	d.sink.OnFinal(msg.Offset, d.factory.NewFinalResult(msg.DisplayText))
}

func (d *Dispatcher) OnTurnStart(msg usp.TurnStart) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathTurnStart) {
		return
	}
	d.advance(PhaseTurnActive)
	d.emit(events.KindAdditionalInfo)
	d.sink.OnAdditionalInfo(0, msg.Context.ServiceTag)
}

// OnTurnEnd ends the session's message stream: the dispatcher
// terminates and no further messages are delivered.
func (d *Dispatcher) OnTurnEnd(usp.TurnEnd) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathTurnEnd) {
		return
	}
	d.advance(PhaseTerminated)
	d.emit(events.KindStreamDone)
	d.sink.OnStreamDone()
}

// OnError surfaces a remote error to the consumer. It does not end
// dispatch: whether the session continues or terminates after a remote
// error is the consumer's call, and messages keep flowing until
// turn-end or Terminate.
func (d *Dispatcher) OnError(msg usp.Error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropped(usp.PathError) {
		return
	}
	d.logger.Error("remote_error",
		slog.Int("code", msg.Code),
		slog.String("description", msg.Description))
	d.emit(events.KindError)
	d.sink.OnError(events.ErrorPayload{Code: msg.Code, Description: msg.Description})
}

// dropped reports whether the message must be discarded in the current
// phase, counting and logging the drop. Caller holds the mutex.
func (d *Dispatcher) dropped(path usp.Path) bool {
	if d.phase != PhaseUnconnected && d.phase != PhaseTerminated {
		return false
	}
	if d.m != nil {
		d.m.MessagesDropped.Inc()
	}
	d.logger.Debug("message_dropped",
		slog.String("path", string(path)),
		slog.String("phase", d.phase.String()))
	return true
}

// advance moves to the target phase, tolerating out-of-order remote
// messages with a warning. Caller holds the mutex.
func (d *Dispatcher) advance(to Phase) {
	if d.phase == to {
		return
	}
	if !transitionValid(d.phase, to) {
		d.logger.Warn("unexpected_phase_transition",
			slog.String("from", d.phase.String()),
			slog.String("to", to.String()))
	}
	d.phase = to
}

func (d *Dispatcher) emit(kind events.Kind) {
	if d.m != nil {
		d.m.EventsDispatched.WithLabelValues(string(kind)).Inc()
	}
}

var _ transports.MessageHandler = (*Dispatcher)(nil)
