package events

// Kind identifies a recognition event delivered to the consumer.
type Kind string

const (
	KindSpeechStarted  Kind = "speech_started"
	KindSpeechEnded    Kind = "speech_ended"
	KindIntermediate   Kind = "intermediate_result"
	KindFinal          Kind = "final_result"
	KindAdditionalInfo Kind = "additional_info"
	KindStreamDone     Kind = "stream_done"
	KindError          Kind = "error"
)

// ErrorPayload carries a remote error code and description.
type ErrorPayload struct {
	Code        int
	Description string
}

// Sink receives recognition events. All methods are invoked synchronously
// from within message dispatch; implementations must not call back into
// the transport.
type Sink interface {
	// OnSpeechStart reports detected speech at an offset in 100ns ticks.
	OnSpeechStart(offset uint64)
	// OnSpeechEnd reports the end of detected speech.
	OnSpeechEnd(offset uint64)
	// OnIntermediate delivers a non-final recognition result.
	OnIntermediate(offset uint64, result Result)
	// OnFinal delivers a final recognition result.
	OnFinal(offset uint64, result Result)
	// OnAdditionalInfo delivers out-of-band context, e.g. a turn's service tag.
	OnAdditionalInfo(offset uint64, payload string)
	// OnStreamDone signals that no more events will arrive for this utterance.
	OnStreamDone()
	// OnError delivers an error reported by the remote side.
	OnError(payload ErrorPayload)
}
