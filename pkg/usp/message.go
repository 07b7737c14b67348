package usp

import (
	"encoding/json"
	"fmt"
)

// Path identifies an inbound protocol message kind.
type Path string

const (
	PathSpeechStartDetected Path = "speech.startDetected"
	PathSpeechEndDetected   Path = "speech.endDetected"
	PathSpeechHypothesis    Path = "speech.hypothesis"
	PathSpeechFragment      Path = "speech.fragment"
	PathSpeechPhrase        Path = "speech.phrase"
	PathTurnStart           Path = "turn.start"
	PathTurnEnd             Path = "turn.end"
	PathError               Path = "error"
)

// SpeechStartDetected reports the offset at which speech begins,
// in 100ns ticks from the start of the audio stream.
type SpeechStartDetected struct {
	Offset uint64 `json:"offset"`
}

// SpeechEndDetected reports the offset at which speech ends.
type SpeechEndDetected struct {
	Offset uint64 `json:"offset"`
}

// SpeechHypothesis carries an in-progress transcription guess.
type SpeechHypothesis struct {
	Text     string `json:"text"`
	Offset   uint64 `json:"offset"`
	Duration uint64 `json:"duration"`
}

// SpeechFragment carries a stable partial transcription.
type SpeechFragment struct {
	Text     string `json:"text"`
	Offset   uint64 `json:"offset"`
	Duration uint64 `json:"duration"`
}

// SpeechPhrase carries a final transcription for a recognized phrase.
// RecognitionStatus is carried but not interpreted here.
type SpeechPhrase struct {
	RecognitionStatus int    `json:"recognitionStatus"`
	DisplayText       string `json:"displayText"`
	Offset            uint64 `json:"offset"`
	Duration          uint64 `json:"duration"`
}

// TurnContext carries per-turn service metadata.
type TurnContext struct {
	ServiceTag string `json:"serviceTag"`
}

// TurnStart opens a turn.
type TurnStart struct {
	Context TurnContext `json:"context"`
}

// TurnEnd closes a turn. It has no body fields.
type TurnEnd struct{}

// Error is a failure reported by the remote side.
type Error struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Message is the tagged union of inbound protocol messages. Exactly one
// body pointer is set, matching Path.
type Message struct {
	Path Path `json:"path"`

	SpeechStart *SpeechStartDetected `json:"speechStartDetected,omitempty"`
	SpeechEnd   *SpeechEndDetected   `json:"speechEndDetected,omitempty"`
	Hypothesis  *SpeechHypothesis    `json:"speechHypothesis,omitempty"`
	Fragment    *SpeechFragment      `json:"speechFragment,omitempty"`
	Phrase      *SpeechPhrase        `json:"speechPhrase,omitempty"`
	TurnStart   *TurnStart           `json:"turnStart,omitempty"`
	TurnEnd     *TurnEnd             `json:"turnEnd,omitempty"`
	Error       *Error               `json:"error,omitempty"`
}

// Decode parses and validates a wire message. Unknown paths and
// path/body mismatches are rejected here so they never reach dispatch.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Validate checks that the path is known and the matching body pointer
// is set. Decode runs it on every wire message; callers constructing
// messages by hand can use it to the same effect.
func (m Message) Validate() error {
	var ok bool
	switch m.Path {
	case PathSpeechStartDetected:
		ok = m.SpeechStart != nil
	case PathSpeechEndDetected:
		ok = m.SpeechEnd != nil
	case PathSpeechHypothesis:
		ok = m.Hypothesis != nil
	case PathSpeechFragment:
		ok = m.Fragment != nil
	case PathSpeechPhrase:
		ok = m.Phrase != nil
	case PathTurnStart:
		ok = m.TurnStart != nil
	case PathTurnEnd:
		ok = m.TurnEnd != nil
	case PathError:
		ok = m.Error != nil
	default:
		return fmt.Errorf("unknown message path %q", m.Path)
	}
	if !ok {
		return fmt.Errorf("message path %q without matching body", m.Path)
	}
	return nil
}
