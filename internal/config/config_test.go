package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvServer, EnvVoice, EnvLocale, EnvWhisperBin, EnvWhisperModel, EnvRecordSecs,
		EnvRequestTimeout, EnvLogFile, EnvAzureKey, EnvAzureRegion, EnvAzureVoice,
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Server.BaseURL != "http://localhost:5000" {
		t.Errorf("unexpected server %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout != 0 {
		t.Errorf("expected no request timeout by default, got %s", cfg.Server.RequestTimeout)
	}
	if !cfg.Voice.Enabled || cfg.Voice.Locale != "en-US" {
		t.Errorf("unexpected voice config %+v", cfg.Voice)
	}
	if cfg.Speech.Enabled {
		t.Error("speech must stay off without Azure credentials")
	}
}

func TestLoadRespectsOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvServer, "http://kitchen:8080/")
	t.Setenv(EnvVoice, "off")
	t.Setenv(EnvLocale, "fr-FR")
	t.Setenv(EnvRequestTimeout, "2500")
	t.Setenv(EnvRecordSecs, "-4")
	t.Setenv(EnvAzureKey, "k")
	t.Setenv(EnvAzureRegion, "westeurope")

	cfg := Load()
	if cfg.Server.BaseURL != "http://kitchen:8080" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout != 2500*time.Millisecond {
		t.Errorf("unexpected timeout %s", cfg.Server.RequestTimeout)
	}
	if cfg.Voice.Enabled {
		t.Error("voice should be disabled")
	}
	if got := cfg.Voice.WhisperLanguage(); got != "fr" {
		t.Errorf("expected whisper language fr, got %q", got)
	}
	if cfg.Voice.RecordSecs != 3 {
		t.Errorf("expected record secs fallback, got %d", cfg.Voice.RecordSecs)
	}
	if !cfg.Speech.Enabled {
		t.Error("speech should be enabled with credentials")
	}
}

func TestLoadIgnoresGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRequestTimeout, "soon")
	t.Setenv(EnvVoice, "maybe")

	cfg := Load()
	if cfg.Server.RequestTimeout != 0 {
		t.Errorf("expected fallback timeout, got %s", cfg.Server.RequestTimeout)
	}
	if !cfg.Voice.Enabled {
		t.Error("expected fallback voice enabled")
	}
}
