package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
)

// Config is the root configuration for the recognition service.
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	// Engine selects the recognition backend: "usp" or "deepgram".
	Engine string `mapstructure:"engine"`

	Speech    SpeechConfig    `mapstructure:"speech"`
	Adapter   AdapterConfig   `mapstructure:"adapter"`
	Transport TransportConfig `mapstructure:"transport"`
	Deepgram  DeepgramConfig  `mapstructure:"deepgram"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// SpeechConfig holds the endpoint and credential properties. Settings
// is a free-form overlay for the same keys, useful when properties come
// from an external source; it is validated and merged by Properties.
type SpeechConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	SubscriptionKey string `mapstructure:"subscription_key"`
	AuthToken       string `mapstructure:"auth_token"`
	DelegationToken string `mapstructure:"delegation_token"`
	CustomModelID   string `mapstructure:"custom_model_id"`
	Language        string `mapstructure:"recognition_language"`
	Mode            string `mapstructure:"recognition_mode"`

	Settings map[string]any `mapstructure:"settings"`
}

// AdapterConfig tunes the audio framing layer.
type AdapterConfig struct {
	BufferMillis int    `mapstructure:"buffer_millis"`
	AudioDumpDir string `mapstructure:"audio_dump_dir"`
}

// TransportConfig tunes the websocket transport.
type TransportConfig struct {
	HandshakeTimeoutMS int `mapstructure:"handshake_timeout_ms"`
	MaxRedials         int `mapstructure:"max_redials"`
	RedialBackoffMS    int `mapstructure:"redial_backoff_ms"`
}

// DeepgramConfig holds the alternate backend's credentials.
type DeepgramConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
	Interim  bool   `mapstructure:"interim"`
}

// MetricsConfig controls the instrumentation endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads a config file and applies defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("engine", "usp")
	v.SetDefault("speech.recognition_language", "en-US")
	v.SetDefault("speech.recognition_mode", "interactive")
	v.SetDefault("adapter.buffer_millis", 100)
	v.SetDefault("adapter.audio_dump_dir", "")
	v.SetDefault("transport.handshake_timeout_ms", 5000)
	v.SetDefault("transport.max_redials", 2)
	v.SetDefault("transport.redial_backoff_ms", 200)
	v.SetDefault("deepgram.model", "nova-2")
	v.SetDefault("deepgram.interim", true)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	return cfg, nil
}

// propertyMap is the endpoint.Properties view over resolved speech
// configuration.
type propertyMap map[string]string

func (p propertyMap) GetString(key string) string { return p[key] }

// speechSettingsSchema bounds the free-form settings overlay to the
// property keys the resolver understands.
var speechSettingsSchema = Schema{
	Optional: []string{
		endpoint.KeyEndpoint,
		endpoint.KeySubscriptionKey,
		endpoint.KeyAuthToken,
		endpoint.KeyDelegationToken,
		endpoint.KeyCustomModelID,
		endpoint.KeyLanguage,
		endpoint.KeyMode,
	},
}

// Properties produces the endpoint property bag: typed fields first,
// then the settings overlay on top. The overlay is validated against
// the resolver's key set and decoded with normalized key matching, so
// "subscription_key" and "Subscription-Key" name the same property.
func (s SpeechConfig) Properties() (endpoint.Properties, error) {
	if err := ValidateSettings(s.Settings, speechSettingsSchema); err != nil {
		return nil, fmt.Errorf("speech settings: %w", err)
	}
	var overlay struct {
		Endpoint        string `mapstructure:"endpoint"`
		SubscriptionKey string `mapstructure:"subscription-key"`
		AuthToken       string `mapstructure:"auth-token"`
		DelegationToken string `mapstructure:"delegation-token"`
		CustomModelID   string `mapstructure:"custom-model-id"`
		Language        string `mapstructure:"recognition-language"`
		Mode            string `mapstructure:"recognition-mode"`
	}
	if err := DecodeSettings(s.Settings, &overlay); err != nil {
		return nil, fmt.Errorf("speech settings: %w", err)
	}

	props := propertyMap{
		endpoint.KeyEndpoint:        s.Endpoint,
		endpoint.KeySubscriptionKey: s.SubscriptionKey,
		endpoint.KeyAuthToken:       s.AuthToken,
		endpoint.KeyDelegationToken: s.DelegationToken,
		endpoint.KeyCustomModelID:   s.CustomModelID,
		endpoint.KeyLanguage:        s.Language,
		endpoint.KeyMode:            s.Mode,
	}
	for key, value := range map[string]string{
		endpoint.KeyEndpoint:        overlay.Endpoint,
		endpoint.KeySubscriptionKey: overlay.SubscriptionKey,
		endpoint.KeyAuthToken:       overlay.AuthToken,
		endpoint.KeyDelegationToken: overlay.DelegationToken,
		endpoint.KeyCustomModelID:   overlay.CustomModelID,
		endpoint.KeyLanguage:        overlay.Language,
		endpoint.KeyMode:            overlay.Mode,
	} {
		if value != "" {
			props[key] = value
		}
	}
	return props, nil
}
