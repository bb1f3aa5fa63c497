package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const analyzerGemini = "gemini"

// Gemini counts containers with Google's Gemini vision models.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	config *Config
	logger *slog.Logger
}

// NewGemini creates a Gemini analyzer.
func NewGemini(ctx context.Context, opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, WrapError(analyzerGemini, ErrNoAPIKey)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, WrapError(analyzerGemini, fmt.Errorf("creating client: %w", err))
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		config: cfg,
		logger: cfg.Logger.With("component", "analysis.gemini"),
	}, nil
}

// Analyze sends the frame to Gemini and parses the counts.
func (g *Gemini) Analyze(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, WrapError(analyzerGemini, ErrNoImage)
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	parts := []genai.Part{
		genai.ImageData("jpeg", image),
		genai.Text(g.config.Prompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, WrapError(analyzerGemini, fmt.Errorf("generating content: %w", err))
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, WrapError(analyzerGemini, ErrBadResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	result, err := parseCounts(text.String())
	if err != nil {
		return nil, WrapError(analyzerGemini, err)
	}

	result.Analyzer = analyzerGemini
	result.LatencyMs = time.Since(start).Milliseconds()

	g.logger.Debug("analysis complete",
		"bottles", result.Bottles,
		"cans", result.Cans,
		"latency_ms", result.LatencyMs,
	)

	return result, nil
}

// Name identifies the backend for logging.
func (g *Gemini) Name() string {
	return analyzerGemini
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// parseCounts extracts a counts object from model output.
// Models wrap JSON in markdown fences often enough that we strip them
// and cut to the outermost braces before unmarshaling.
func parseCounts(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrBadResponse, truncate(text, 80))
	}

	var result Result
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	clamped := result.Clamped()
	return &clamped, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Verify Gemini implements Analyzer at compile time.
var _ Analyzer = (*Gemini)(nil)
