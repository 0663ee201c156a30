package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Config selects and configures a concrete Generator implementation.
type Config struct {
	Provider     string
	Model        string
	OpenAIAPIKey string
	GeminiAPIKey string
	MaxTokens    int
	Temperature  float32
	Logger       zerolog.Logger
}

// New constructs the Generator named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAIGenerator(OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      cfg.Logger,
		})
	case "gemini", "":
		return NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Logger:      cfg.Logger,
		})
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
