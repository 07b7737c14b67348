package mock

import (
	"context"
	"testing"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/usp"
)

type countingHandler struct {
	hypotheses int
	errors     int
}

func (h *countingHandler) OnSpeechStartDetected(usp.SpeechStartDetected) {}
func (h *countingHandler) OnSpeechEndDetected(usp.SpeechEndDetected)     {}
func (h *countingHandler) OnSpeechHypothesis(usp.SpeechHypothesis)       { h.hypotheses++ }
func (h *countingHandler) OnSpeechFragment(usp.SpeechFragment)           {}
func (h *countingHandler) OnSpeechPhrase(usp.SpeechPhrase)               {}
func (h *countingHandler) OnTurnStart(usp.TurnStart)                     {}
func (h *countingHandler) OnTurnEnd(usp.TurnEnd)                         {}
func (h *countingHandler) OnError(usp.Error)                             { h.errors++ }

func openMockSession(t *testing.T) (*Session, *countingHandler) {
	t.Helper()
	tr := New()
	h := &countingHandler{}
	sess, err := tr.Open(endpoint.Resolution{}, h)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := sess.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return sess.(*Session), h
}

func TestDeliverRoutesValidMessage(t *testing.T) {
	sess, h := openMockSession(t)
	err := sess.Deliver(usp.Message{
		Path:       usp.PathSpeechHypothesis,
		Hypothesis: &usp.SpeechHypothesis{Text: "hel"},
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if h.hypotheses != 1 {
		t.Fatalf("expected one hypothesis, got %d", h.hypotheses)
	}
}

func TestDeliverRejectsPathWithoutBody(t *testing.T) {
	sess, h := openMockSession(t)
	if err := sess.Deliver(usp.Message{Path: usp.PathError}); err == nil {
		t.Fatalf("expected rejection of a path without its body")
	}
	if err := sess.Deliver(usp.Message{Path: "no.such.path"}); err == nil {
		t.Fatalf("expected rejection of an unknown path")
	}
	if h.errors != 0 {
		t.Fatalf("nothing may reach the handler for invalid messages")
	}
}
