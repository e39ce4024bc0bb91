package categorizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/logging"
)

// ClientConfig selects and configures a completion provider.
type ClientConfig struct {
	Provider          string
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
}

// NewCompletionClient creates the client for cfg.Provider. It returns
// apperrors.ErrNoClient when no API key is set, which callers treat as
// "LLM tier disabled".
func NewCompletionClient(ctx context.Context, cfg ClientConfig, logger logging.Logger) (CompletionClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.ErrNoClient
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		client, err := NewGeminiClient(ctx, cfg.APIKey, cfg.RequestsPerMinute, cfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderOpenAI:
		client, err := NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.RequestsPerMinute, cfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, &apperrors.ConfigError{Key: "ai.provider", Value: cfg.Provider, Reason: fmt.Sprintf("unsupported provider, expected %s or %s", ProviderGemini, ProviderOpenAI)}
	}
}
