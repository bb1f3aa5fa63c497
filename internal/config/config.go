// Package config provides application configuration for the depositcam server.
// Flag parsing is done in cmd/depositcam/main.go; this struct is data only.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/bottlebank/depositcam/pkg/camera"
	"github.com/bottlebank/depositcam/pkg/deposit"
)

// Camera modes.
const (
	ModeBrowser = "browser" // the browser owns the camera and uploads frames
	ModeKiosk   = "kiosk"   // the server owns a local webcam
)

// Default configuration values.
const (
	DefaultAddr      = ":8080"
	DefaultStaticDir = "./web"
	DefaultLogLevel  = "info"
	DefaultModel     = "gemini-2.0-flash"
)

// Config holds all configuration for the depositcam application.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string

	// StaticDir is the directory served at /. Empty disables static serving.
	StaticDir string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Mode selects who owns the camera: ModeBrowser or ModeKiosk.
	Mode string

	// Camera configures the local webcam in kiosk mode.
	Camera camera.Config

	// Rates are the per-container deposit values.
	Rates deposit.Rates

	// GeminiKey enables the Gemini analyzer when set.
	GeminiKey string

	// GeminiModel is the Gemini model name.
	GeminiModel string

	// AnalysisTimeout bounds a single analysis cycle.
	AnalysisTimeout time.Duration

	// FallbackSeed seeds the degraded-mode estimator. Zero keeps the
	// deterministic fixed estimate.
	FallbackSeed int64
}

// DefaultConfig returns sensible defaults for depositcam.
func DefaultConfig() Config {
	return Config{
		Addr:            DefaultAddr,
		StaticDir:       DefaultStaticDir,
		LogLevel:        DefaultLogLevel,
		Mode:            ModeBrowser,
		Camera:          camera.DefaultConfig(),
		Rates:           deposit.DefaultRates(),
		GeminiModel:     DefaultModel,
		AnalysisTimeout: 60 * time.Second,
	}
}

// LoadEnv loads configuration values from the environment, reading a .env
// file first when one is present. Call this after flag parsing so flags win
// only where the caller applies them that way.
func (c *Config) LoadEnv() {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	if addr := os.Getenv("DEPOSITCAM_ADDR"); addr != "" {
		c.Addr = addr
	}
	if dir := os.Getenv("DEPOSITCAM_STATIC_DIR"); dir != "" {
		c.StaticDir = dir
	}
	if lvl := os.Getenv("DEPOSITCAM_LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
	if mode := os.Getenv("DEPOSITCAM_MODE"); mode != "" {
		c.Mode = mode
	}
	c.GeminiKey = os.Getenv("GEMINI_API_KEY")
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.GeminiModel = model
	}
	if v, ok := envInt("DEPOSIT_BOTTLE_CENTS"); ok {
		c.Rates.BottleCents = v
	}
	if v, ok := envInt("DEPOSIT_CAN_CENTS"); ok {
		c.Rates.CanCents = v
	}
	if v, ok := envInt("DEPOSITCAM_CAMERA_DEVICE"); ok {
		c.Camera.DeviceID = v
	}
	if v, ok := envInt("DEPOSITCAM_FALLBACK_SEED"); ok {
		c.FallbackSeed = int64(v)
	}
	if d := os.Getenv("DEPOSITCAM_ANALYSIS_TIMEOUT"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil && parsed > 0 {
			c.AnalysisTimeout = parsed
		}
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "listen address is required"}
	}
	if c.Mode != ModeBrowser && c.Mode != ModeKiosk {
		return &ConfigError{Field: "Mode", Message: fmt.Sprintf("unknown camera mode %q (want %s or %s)", c.Mode, ModeBrowser, ModeKiosk)}
	}
	if err := c.Rates.Validate(); err != nil {
		return &ConfigError{Field: "Rates", Message: err.Error()}
	}
	if c.Mode == ModeKiosk {
		if issues := c.Camera.Validate(); len(issues) > 0 {
			return &ConfigError{Field: "Camera", Message: issues[0]}
		}
	}
	if c.AnalysisTimeout <= 0 {
		return &ConfigError{Field: "AnalysisTimeout", Message: "analysis timeout must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
