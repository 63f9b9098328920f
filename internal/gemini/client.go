// Package gemini calls Google's Gemini API to turn a prompt into plan text.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Config configures a Client.
type Config struct {
	APIKey string
	Model  string
	// Endpoint overrides the API base URL. Empty uses Google's endpoint.
	Endpoint string
	// RequestsPerMinute caps calls to the upstream API. Zero means unlimited.
	RequestsPerMinute int
}

// Client is a rate-limited generateContent caller.
type Client struct {
	genai       *genai.Client
	model       string
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// New creates a Client. It does not contact the API.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini.New: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini.New: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		genai:       gc,
		model:       cfg.Model,
		rateLimiter: limiter,
		logger:      logger,
	}, nil
}

// Generate sends system as the system instruction and prompt as the single
// user turn, and returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini.Client.Generate: rate limit: %w", err)
	}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "generateContent failed", "model", c.model, "error", err)
		return "", fmt.Errorf("gemini.Client.Generate: %w", err)
	}

	text := resp.Text()
	c.logger.DebugContext(ctx, "generateContent done",
		"model", c.model,
		"duration", time.Since(start),
		"response_bytes", len(text),
	)
	if text == "" {
		return "", fmt.Errorf("gemini.Client.Generate: %w", ErrEmptyResponse)
	}
	return text, nil
}
