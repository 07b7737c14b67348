package endpoint

import "strings"

// Properties is a read-only key/value lookup for session configuration.
// Missing keys return the empty string.
type Properties interface {
	GetString(key string) string
}

// Property keys understood by the resolver.
const (
	KeyEndpoint        = "endpoint"
	KeySubscriptionKey = "subscription-key"
	KeyAuthToken       = "auth-token"
	KeyDelegationToken = "delegation-token"
	KeyCustomModelID   = "custom-model-id"
	KeyLanguage        = "recognition-language"
	KeyMode            = "recognition-mode"
)

// legacyAgentKeyword selects the legacy agent endpoint when supplied as
// the endpoint property, compared case-insensitively.
const legacyAgentKeyword = "CORTANA"

// Variant is the remote service flavor to target.
type Variant int

const (
	VariantCustomURL Variant = iota
	VariantDefaultSpeech
	VariantCustomModel
	VariantLegacyAgent
)

func (v Variant) String() string {
	switch v {
	case VariantCustomURL:
		return "custom_url"
	case VariantDefaultSpeech:
		return "default_speech"
	case VariantCustomModel:
		return "custom_model"
	case VariantLegacyAgent:
		return "legacy_agent"
	}
	return "invalid"
}

// Mode is the interaction pattern hint sent to the remote service.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeInteractive
	ModeConversation
	ModeDictation
)

func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeConversation:
		return "conversation"
	case ModeDictation:
		return "dictation"
	}
	return "unknown"
}

// AuthType is the authentication scheme presented to the service.
type AuthType int

const (
	AuthUnknown AuthType = iota
	AuthSubscriptionKey
	AuthAuthorizationToken
	AuthDelegationToken
)

func (a AuthType) String() string {
	switch a {
	case AuthSubscriptionKey:
		return "subscription_key"
	case AuthAuthorizationToken:
		return "authorization_token"
	case AuthDelegationToken:
		return "delegation_token"
	}
	return "unknown"
}

// Resolution is the deterministic outcome of a property lookup: exactly
// one endpoint variant and at most one authentication method. The caller
// decides whether an unknown mode or auth is fatal.
type Resolution struct {
	Variant    Variant
	CustomURL  string
	Mode       Mode
	Auth       AuthType
	Credential string
	Language   string
	ModelID    string
}

// Resolve derives the endpoint variant, recognition mode, and
// authentication method from the property lookup. It is a pure function
// of the properties at call time and never fails; unresolved values are
// reported as the Unknown members.
func Resolve(props Properties) Resolution {
	res := Resolution{
		Language: props.GetString(KeyLanguage),
		ModelID:  props.GetString(KeyCustomModelID),
	}

	endpoint := props.GetString(KeyEndpoint)
	switch {
	case res.ModelID != "":
		res.Variant = VariantCustomModel
	case strings.EqualFold(endpoint, legacyAgentKeyword):
		res.Variant = VariantLegacyAgent
	case endpoint != "":
		res.Variant = VariantCustomURL
		res.CustomURL = endpoint
	default:
		res.Variant = VariantDefaultSpeech
	}

	// The recognition mode only participates when the URL is not taken
	// verbatim from configuration.
	if res.Variant != VariantCustomURL {
		res.Mode = resolveMode(props.GetString(KeyMode))
	}

	res.Auth, res.Credential = resolveAuth(props)
	return res
}

func resolveMode(value string) Mode {
	switch {
	case value == "" || strings.EqualFold(value, "interactive"):
		return ModeInteractive
	case strings.EqualFold(value, "conversation"):
		return ModeConversation
	case strings.EqualFold(value, "dictation"):
		return ModeDictation
	}
	return ModeUnknown
}

func resolveAuth(props Properties) (AuthType, string) {
	if key := props.GetString(KeySubscriptionKey); key != "" {
		return AuthSubscriptionKey, key
	}
	if token := props.GetString(KeyAuthToken); token != "" {
		return AuthAuthorizationToken, token
	}
	if token := props.GetString(KeyDelegationToken); token != "" {
		return AuthDelegationToken, token
	}
	return AuthUnknown, ""
}
