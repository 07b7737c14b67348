package recognizer

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/events"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/metrics"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/usp"
)

type recordedResult struct {
	offset uint64
	text   string
	final  bool
}

// sinkSpy captures everything the dispatcher delivers.
type sinkSpy struct {
	mu            sync.Mutex
	starts        []uint64
	ends          []uint64
	intermediates []recordedResult
	finals        []recordedResult
	infos         []string
	doneCount     int
	errors        []events.ErrorPayload
}

func (s *sinkSpy) OnSpeechStart(offset uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts = append(s.starts, offset)
}

func (s *sinkSpy) OnSpeechEnd(offset uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ends = append(s.ends, offset)
}

func (s *sinkSpy) OnIntermediate(offset uint64, r events.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intermediates = append(s.intermediates, recordedResult{offset, r.Text(), r.IsFinal()})
}

func (s *sinkSpy) OnFinal(offset uint64, r events.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finals = append(s.finals, recordedResult{offset, r.Text(), r.IsFinal()})
}

func (s *sinkSpy) OnAdditionalInfo(offset uint64, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, payload)
}

func (s *sinkSpy) OnStreamDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doneCount++
}

func (s *sinkSpy) OnError(payload events.ErrorPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, payload)
}

func newConnectedDispatcher(sink events.Sink, m *metrics.Metrics) *Dispatcher {
	d := NewDispatcher(sink, nil, nil, m)
	d.markConnected()
	return d
}

func TestDispatcherRoutesMessages(t *testing.T) {
	spy := &sinkSpy{}
	d := newConnectedDispatcher(spy, nil)

	d.OnTurnStart(usp.TurnStart{Context: usp.TurnContext{ServiceTag: "tag-1"}})
	d.OnSpeechStartDetected(usp.SpeechStartDetected{Offset: 500})
	d.OnSpeechHypothesis(usp.SpeechHypothesis{Text: "hel", Offset: 500})
	d.OnSpeechFragment(usp.SpeechFragment{Text: "hello", Offset: 500})
	d.OnSpeechEndDetected(usp.SpeechEndDetected{Offset: 9000})
	d.OnSpeechPhrase(usp.SpeechPhrase{DisplayText: "Hello.", Offset: 500, Duration: 8500})
	d.OnTurnEnd(usp.TurnEnd{})

	if len(spy.infos) != 1 || spy.infos[0] != "tag-1" {
		t.Fatalf("expected service tag info, got %v", spy.infos)
	}
	if len(spy.starts) != 1 || spy.starts[0] != 500 {
		t.Fatalf("expected speech start at 500, got %v", spy.starts)
	}
	if len(spy.intermediates) != 2 {
		t.Fatalf("expected hypothesis and fragment as intermediates, got %d", len(spy.intermediates))
	}
	for _, r := range spy.intermediates {
		if r.final {
			t.Fatalf("intermediate result marked final: %+v", r)
		}
	}
	if spy.intermediates[1].text != "hello" {
		t.Fatalf("unexpected fragment text %q", spy.intermediates[1].text)
	}
	if len(spy.ends) != 1 || spy.ends[0] != 9000 {
		t.Fatalf("expected speech end at 9000, got %v", spy.ends)
	}
	if len(spy.finals) != 1 || spy.finals[0].text != "Hello." || !spy.finals[0].final {
		t.Fatalf("unexpected final result %+v", spy.finals)
	}
	if spy.doneCount != 1 {
		t.Fatalf("expected one stream done, got %d", spy.doneCount)
	}
}

func TestDispatcherDropsBeforeConnect(t *testing.T) {
	spy := &sinkSpy{}
	m := metrics.New(prometheus.NewRegistry())
	d := NewDispatcher(spy, nil, nil, m)

	d.OnSpeechHypothesis(usp.SpeechHypothesis{Text: "early"})

	if len(spy.intermediates) != 0 {
		t.Fatalf("nothing may be delivered before connect")
	}
	if got := testutil.ToFloat64(m.MessagesDropped); got != 1 {
		t.Fatalf("expected 1 dropped message, got %v", got)
	}
}

func TestDispatcherTurnEndIsTerminal(t *testing.T) {
	spy := &sinkSpy{}
	m := metrics.New(prometheus.NewRegistry())
	d := newConnectedDispatcher(spy, m)

	d.OnTurnEnd(usp.TurnEnd{})
	d.OnSpeechPhrase(usp.SpeechPhrase{DisplayText: "Late."})
	d.OnError(usp.Error{Code: 500, Description: "late"})

	if spy.doneCount != 1 {
		t.Fatalf("expected one stream done, got %d", spy.doneCount)
	}
	if len(spy.finals) != 0 || len(spy.errors) != 0 {
		t.Fatalf("messages after turn end must be dropped")
	}
	if got := testutil.ToFloat64(m.MessagesDropped); got != 2 {
		t.Fatalf("expected 2 dropped messages, got %v", got)
	}
	if d.Phase() != PhaseTerminated {
		t.Fatalf("expected terminated phase, got %s", d.Phase())
	}
}

func TestDispatcherContinuesAfterRemoteError(t *testing.T) {
	spy := &sinkSpy{}
	d := newConnectedDispatcher(spy, nil)

	d.OnError(usp.Error{Code: 429, Description: "throttled"})
	d.OnSpeechHypothesis(usp.SpeechHypothesis{Text: "hel", Offset: 100})
	d.OnSpeechPhrase(usp.SpeechPhrase{DisplayText: "Hello.", Offset: 100})

	if len(spy.errors) != 1 || spy.errors[0].Code != 429 {
		t.Fatalf("unexpected errors %v", spy.errors)
	}
	// A remote error is surfaced, not acted on: the session keeps
	// delivering until turn-end or the consumer terminates it.
	if len(spy.intermediates) != 1 {
		t.Fatalf("expected the hypothesis after the error to reach the sink, got %d", len(spy.intermediates))
	}
	if len(spy.finals) != 1 || spy.finals[0].text != "Hello." {
		t.Fatalf("expected the phrase after the error to reach the sink, got %d finals", len(spy.finals))
	}
	if d.Phase() == PhaseTerminated {
		t.Fatalf("a remote error must not terminate dispatch")
	}
}

func TestDispatcherTerminateStopsDelivery(t *testing.T) {
	spy := &sinkSpy{}
	d := newConnectedDispatcher(spy, nil)

	d.OnSpeechHypothesis(usp.SpeechHypothesis{Text: "before"})
	d.Terminate()
	d.OnSpeechHypothesis(usp.SpeechHypothesis{Text: "after"})

	if len(spy.intermediates) != 1 || spy.intermediates[0].text != "before" {
		t.Fatalf("expected only pre-terminate delivery, got %+v", spy.intermediates)
	}
}

func TestDispatcherCountsDispatchedEvents(t *testing.T) {
	spy := &sinkSpy{}
	m := metrics.New(prometheus.NewRegistry())
	d := newConnectedDispatcher(spy, m)

	d.OnSpeechHypothesis(usp.SpeechHypothesis{Text: "a"})
	d.OnSpeechHypothesis(usp.SpeechHypothesis{Text: "ab"})
	d.OnSpeechPhrase(usp.SpeechPhrase{DisplayText: "Ab."})

	kind := m.EventsDispatched.WithLabelValues(string(events.KindIntermediate))
	if got := testutil.ToFloat64(kind); got != 2 {
		t.Fatalf("expected 2 intermediate events, got %v", got)
	}
	kind = m.EventsDispatched.WithLabelValues(string(events.KindFinal))
	if got := testutil.ToFloat64(kind); got != 1 {
		t.Fatalf("expected 1 final event, got %v", got)
	}
}
