// Package config resolves runtime configuration from the environment.
// Command-line flags are applied on top by cmd/foodvision.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Env var names.
const (
	EnvServer         = "FOODVISION_SERVER"
	EnvVoice          = "FOODVISION_VOICE"
	EnvLocale         = "FOODVISION_LOCALE"
	EnvWhisperBin     = "FOODVISION_WHISPER_BIN"
	EnvWhisperModel   = "FOODVISION_WHISPER_MODEL"
	EnvRecordSecs     = "FOODVISION_RECORD_SECS"
	EnvRequestTimeout = "FOODVISION_REQUEST_TIMEOUT_MS"
	EnvLogFile        = "FOODVISION_LOG_FILE"
	EnvAzureKey       = "AZURE_SPEECH_KEY"
	EnvAzureRegion    = "AZURE_SPEECH_REGION"
	EnvAzureVoice     = "AZURE_SPEECH_VOICE"
)

// Config stores runtime configuration.
type Config struct {
	Server ServerConfig
	Voice  VoiceConfig
	Speech SpeechConfig
	Log    LogConfig
}

// ServerConfig locates the food vision server.
type ServerConfig struct {
	BaseURL string
	// RequestTimeout bounds each HTTP request. Zero means no timeout.
	RequestTimeout time.Duration
	// Push enables the push channel.
	Push bool
}

// VoiceConfig drives speech recognition.
type VoiceConfig struct {
	Enabled      bool
	Locale       string
	WhisperBin   string
	WhisperModel string
	RecordSecs   int
}

// SpeechConfig drives spoken feedback.
type SpeechConfig struct {
	Enabled   bool
	AzureKey  string
	Region    string
	VoiceName string
	CacheDir  string
}

// LogConfig selects where logs go.
type LogConfig struct {
	// File is the rotated log file, or "stderr".
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load resolves configuration from environment variables and defaults.
func Load() Config {
	cfg := Config{
		Server: ServerConfig{
			BaseURL:        strings.TrimRight(envOrDefault(EnvServer, "http://localhost:5000"), "/"),
			RequestTimeout: time.Duration(envOrDefaultInt(EnvRequestTimeout, 0)) * time.Millisecond,
			Push:           true,
		},
		Voice: VoiceConfig{
			Enabled:      envOrDefaultBool(EnvVoice, true),
			Locale:       envOrDefault(EnvLocale, "en-US"),
			WhisperBin:   envOrDefault(EnvWhisperBin, "whisper-cli"),
			WhisperModel: envOrDefault(EnvWhisperModel, filepath.Join("models", "ggml-base.en.bin")),
			RecordSecs:   envOrDefaultInt(EnvRecordSecs, 3),
		},
		Speech: SpeechConfig{
			AzureKey:  strings.TrimSpace(os.Getenv(EnvAzureKey)),
			Region:    strings.TrimSpace(os.Getenv(EnvAzureRegion)),
			VoiceName: envOrDefault(EnvAzureVoice, "en-US-AvaNeural"),
			CacheDir:  filepath.Join(".foodvision-cache", "tts"),
		},
		Log: LogConfig{
			File:       envOrDefault(EnvLogFile, filepath.Join(".foodvision-logs", "foodvision.log")),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
	cfg.Speech.Enabled = cfg.Speech.AzureKey != "" && cfg.Speech.Region != ""

	if cfg.Server.RequestTimeout < 0 {
		cfg.Server.RequestTimeout = 0
	}
	if cfg.Voice.RecordSecs <= 0 {
		cfg.Voice.RecordSecs = 3
	}
	return cfg
}

// WhisperLanguage returns the whisper language code for the locale,
// e.g. "en" for "en-US".
func (v VoiceConfig) WhisperLanguage() string {
	lang, _, _ := strings.Cut(v.Locale, "-")
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "en"
	}
	return lang
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
