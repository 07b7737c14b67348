package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/endpoint"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "speech:\n  subscription_key: key-123\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected logging defaults %q %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Engine != "usp" {
		t.Fatalf("unexpected default engine %q", cfg.Engine)
	}
	if cfg.Speech.Language != "en-US" || cfg.Speech.Mode != "interactive" {
		t.Fatalf("unexpected speech defaults %+v", cfg.Speech)
	}
	if cfg.Adapter.BufferMillis != 100 {
		t.Fatalf("unexpected buffer window %d", cfg.Adapter.BufferMillis)
	}
	if cfg.Transport.HandshakeTimeoutMS != 5000 {
		t.Fatalf("unexpected handshake timeout %d", cfg.Transport.HandshakeTimeoutMS)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
engine: deepgram
speech:
  subscription_key: key-123
  recognition_mode: dictation
  custom_model_id: model-9
adapter:
  buffer_millis: 250
  audio_dump_dir: /tmp/dumps
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Engine != "deepgram" {
		t.Fatalf("overrides not applied: %q %q", cfg.LogLevel, cfg.Engine)
	}
	if cfg.Speech.Mode != "dictation" || cfg.Speech.CustomModelID != "model-9" {
		t.Fatalf("speech overrides not applied: %+v", cfg.Speech)
	}
	if cfg.Adapter.BufferMillis != 250 || cfg.Adapter.AudioDumpDir != "/tmp/dumps" {
		t.Fatalf("adapter overrides not applied: %+v", cfg.Adapter)
	}
}

func TestPropertiesMapping(t *testing.T) {
	s := SpeechConfig{
		SubscriptionKey: "key-123",
		Language:        "de-DE",
		Mode:            "conversation",
	}
	props, err := s.Properties()
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	if props.GetString(endpoint.KeySubscriptionKey) != "key-123" {
		t.Fatalf("subscription key not mapped")
	}
	if props.GetString(endpoint.KeyLanguage) != "de-DE" {
		t.Fatalf("language not mapped")
	}

	res := endpoint.Resolve(props)
	if res.Auth != endpoint.AuthSubscriptionKey || res.Mode != endpoint.ModeConversation {
		t.Fatalf("unexpected resolution %+v", res)
	}
}

func TestPropertiesSettingsOverlay(t *testing.T) {
	s := SpeechConfig{
		SubscriptionKey: "typed-key",
		Settings: map[string]any{
			"subscription_key": "overlay-key",
			"Recognition-Mode": "dictation",
		},
	}
	props, err := s.Properties()
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	if props.GetString(endpoint.KeySubscriptionKey) != "overlay-key" {
		t.Fatalf("overlay must win over the typed field")
	}
	if props.GetString(endpoint.KeyMode) != "dictation" {
		t.Fatalf("normalized overlay key not applied")
	}
}

func TestPropertiesOverlayOnlyReplacesPresentKeys(t *testing.T) {
	s := SpeechConfig{
		SubscriptionKey: "typed-key",
		Language:        "en-US",
		Settings: map[string]any{
			"recognition-language": "fr-FR",
		},
	}
	props, err := s.Properties()
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	if props.GetString(endpoint.KeyLanguage) != "fr-FR" {
		t.Fatalf("overlay language not applied")
	}
	if props.GetString(endpoint.KeySubscriptionKey) != "typed-key" {
		t.Fatalf("absent overlay key must not clobber the typed field")
	}
}

func TestPropertiesRejectsUnknownSetting(t *testing.T) {
	s := SpeechConfig{
		Settings: map[string]any{"no_such_property": "x"},
	}
	if _, err := s.Properties(); err == nil {
		t.Fatalf("expected unknown setting rejection")
	}
}

func TestDecodeSettingsNormalizesKeys(t *testing.T) {
	var out struct {
		BufferMillis int    `mapstructure:"buffer_millis"`
		DumpDir      string `mapstructure:"audio_dump_dir"`
	}
	input := map[string]any{
		"Buffer-Millis":  "250",
		"audio_dump_dir": "/tmp/x",
	}
	if err := DecodeSettings(input, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.BufferMillis != 250 || out.DumpDir != "/tmp/x" {
		t.Fatalf("unexpected decode result %+v", out)
	}
}

func TestValidateSettingsRequired(t *testing.T) {
	schema := Schema{Required: []string{"api-key"}, Optional: []string{"model"}}
	err := ValidateSettings(map[string]any{"model": "nova-2"}, schema)
	if err == nil {
		t.Fatalf("expected missing required key error")
	}
	if err := ValidateSettings(map[string]any{"API_KEY": "k"}, schema); err != nil {
		t.Fatalf("normalized required key must satisfy: %v", err)
	}
}
