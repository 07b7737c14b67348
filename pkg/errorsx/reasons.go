package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// Configuration errors: the session cannot start.
	ReasonConfigEndpoint ReasonCode = "config_endpoint"
	ReasonConfigAuth     ReasonCode = "config_auth"
	ReasonConfigMode     ReasonCode = "config_mode"

	// Transport errors: the session is unusable afterward.
	ReasonTransportConnect ReasonCode = "transport_connect"
	ReasonTransportSend    ReasonCode = "transport_send"
	ReasonTransportClose   ReasonCode = "transport_close"

	// Lifecycle errors: operations on an adapter in the wrong state.
	ReasonLifecycle ReasonCode = "lifecycle"

	// Protocol errors: an error message delivered by the remote side.
	ReasonProtocol ReasonCode = "protocol"
)
