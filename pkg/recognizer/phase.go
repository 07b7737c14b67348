package recognizer

// Phase tracks where a session is in its message lifecycle. It gates
// dispatch: nothing is delivered before the session connects or after
// it terminates.
type Phase int

const (
	PhaseUnconnected Phase = iota
	PhaseIdle
	PhaseTurnActive
	PhaseSpeechActive
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconnected:
		return "unconnected"
	case PhaseIdle:
		return "idle"
	case PhaseTurnActive:
		return "turn_active"
	case PhaseSpeechActive:
		return "speech_active"
	case PhaseTerminated:
		return "terminated"
	}
	return "invalid"
}

// transitionValid reports whether moving between the two phases is part
// of the expected session flow. Termination is reachable from anywhere;
// nothing leaves it.
func transitionValid(from, to Phase) bool {
	if to == PhaseTerminated {
		return from != PhaseTerminated
	}
	validTransitions := map[Phase][]Phase{
		PhaseUnconnected:  {PhaseIdle},
		PhaseIdle:         {PhaseTurnActive, PhaseSpeechActive},
		PhaseTurnActive:   {PhaseSpeechActive, PhaseTurnActive},
		PhaseSpeechActive: {PhaseTurnActive, PhaseSpeechActive},
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
