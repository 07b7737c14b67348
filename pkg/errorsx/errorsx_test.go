package errorsx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonTransportSend)
	if Reason(err) != ReasonTransportSend {
		t.Fatalf("expected reason %s, got %s", ReasonTransportSend, Reason(err))
	}
	if !HasReason(err, ReasonTransportSend) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonConfigAuth)
	second := Wrap(first, ReasonTransportConnect)
	if Reason(second) != ReasonConfigAuth {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestReasonSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("init: %w", New(ReasonLifecycle, "already initialized"))
	if Reason(err) != ReasonLifecycle {
		t.Fatalf("expected reason %s through %%w chain, got %s", ReasonLifecycle, Reason(err))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonProtocol) != nil {
		t.Fatalf("expected nil passthrough")
	}
	if Reason(errors.New("plain")) != ReasonUnknown {
		t.Fatalf("expected unknown reason for plain error")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
