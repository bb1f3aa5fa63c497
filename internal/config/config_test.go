package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Mode != ModeBrowser {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeBrowser)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DEPOSITCAM_ADDR", ":9090")
	t.Setenv("DEPOSITCAM_MODE", "kiosk")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DEPOSIT_BOTTLE_CENTS", "10")
	t.Setenv("DEPOSIT_CAN_CENTS", "7")
	t.Setenv("DEPOSITCAM_ANALYSIS_TIMEOUT", "15s")

	cfg := DefaultConfig()
	cfg.LoadEnv()

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.Mode != ModeKiosk {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeKiosk)
	}
	if cfg.GeminiKey != "test-key" {
		t.Errorf("GeminiKey = %q, want %q", cfg.GeminiKey, "test-key")
	}
	if cfg.Rates.BottleCents != 10 || cfg.Rates.CanCents != 7 {
		t.Errorf("Rates = %+v, want bottle 10 can 7", cfg.Rates)
	}
	if cfg.AnalysisTimeout != 15*time.Second {
		t.Errorf("AnalysisTimeout = %v, want 15s", cfg.AnalysisTimeout)
	}
}

func TestLoadEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("DEPOSIT_BOTTLE_CENTS", "not-a-number")
	t.Setenv("DEPOSITCAM_ANALYSIS_TIMEOUT", "soon")

	cfg := DefaultConfig()
	cfg.LoadEnv()

	if cfg.Rates.BottleCents != DefaultConfig().Rates.BottleCents {
		t.Errorf("BottleCents = %d, want default", cfg.Rates.BottleCents)
	}
	if cfg.AnalysisTimeout != DefaultConfig().AnalysisTimeout {
		t.Errorf("AnalysisTimeout = %v, want default", cfg.AnalysisTimeout)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "Addr"},
		{"unknown mode", func(c *Config) { c.Mode = "drone" }, "Mode"},
		{"negative rate", func(c *Config) { c.Rates.BottleCents = -1 }, "Rates"},
		{"zero timeout", func(c *Config) { c.AnalysisTimeout = 0 }, "AnalysisTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() error type %T, want *ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}
