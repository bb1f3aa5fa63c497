package analysis

import (
	"log/slog"
	"time"
)

// DefaultPrompt asks the vision model for machine-readable counts.
// Kept deliberately strict: the response must be bare JSON so the
// parser never has to guess.
const DefaultPrompt = `Count the refundable beverage containers in this photo.
Respond with only a JSON object of the form {"bottles": <int>, "cans": <int>}.
Count plastic and glass bottles as bottles and aluminum cans as cans.
Do not include any other text.`

// Config holds backend configuration.
type Config struct {
	// APIKey authenticates remote backends.
	APIKey string

	// Model is the vision model name for remote backends.
	Model string

	// Prompt is the counting instruction sent with each frame.
	Prompt string

	// Timeout bounds a single Analyze call.
	Timeout time.Duration

	// Logger is the structured logger for backend events.
	Logger *slog.Logger
}

// Option is a functional option for configuring backends.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithModel sets the vision model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithPrompt overrides the counting prompt.
func WithPrompt(prompt string) Option {
	return func(c *Config) { c.Prompt = prompt }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns sensible defaults for the Gemini backend.
func DefaultConfig() *Config {
	return &Config{
		Model:   "gemini-2.0-flash",
		Prompt:  DefaultPrompt,
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
