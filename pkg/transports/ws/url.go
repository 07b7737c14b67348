package ws

import (
	"fmt"
	"net/url"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
)

// Well-known service hosts per endpoint variant.
const (
	defaultSpeechHost = "speech.platform.bing.com"
	customModelHost   = "westus.cris.ai"
	legacyAgentHost   = "speech.platform.bing.com"

	speechPathFormat = "/speech/recognition/%s/cognitiveservices/v1"
	legacyAgentPath  = "/cortana/api/v1"
)

// serviceURL builds the websocket URL for a resolved endpoint. A custom
// URL is used verbatim; the other variants compose a well-known host, a
// mode-specific path, and language/model query parameters.
func serviceURL(res endpoint.Resolution, language, modelID string) (string, error) {
	if res.Variant == endpoint.VariantCustomURL {
		return res.CustomURL, nil
	}
	if res.Mode == endpoint.ModeUnknown {
		return "", fmt.Errorf("recognition mode unresolved for %s endpoint", res.Variant)
	}

	u := url.URL{Scheme: "wss"}
	query := url.Values{}
	if language != "" {
		query.Set("language", language)
	}

	switch res.Variant {
	case endpoint.VariantDefaultSpeech:
		u.Host = defaultSpeechHost
		u.Path = fmt.Sprintf(speechPathFormat, res.Mode)
	case endpoint.VariantCustomModel:
		u.Host = customModelHost
		u.Path = fmt.Sprintf(speechPathFormat, res.Mode)
		if modelID != "" {
			query.Set("cid", modelID)
		}
	case endpoint.VariantLegacyAgent:
		u.Host = legacyAgentHost
		u.Path = legacyAgentPath
	default:
		return "", fmt.Errorf("unsupported endpoint variant %s", res.Variant)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}
