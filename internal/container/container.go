// Package container provides dependency injection for the txcat application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/categorizer"
	"fjacquet/txcat/internal/config"
	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. Categorizer sessions are created
// per run with NewSession so each gets its own category index.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	store   categorizer.CategoryStoreInterface
	client  categorizer.CompletionClient
	options categorizer.Options

	clientSet bool
}

// Option replaces a dependency NewContainer would otherwise build.
type Option func(*Container)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithStore sets the category store.
func WithStore(s categorizer.CategoryStoreInterface) Option {
	return func(c *Container) { c.store = s }
}

// WithCompletionClient sets the completion client. A nil client disables the LLM tier.
func WithCompletionClient(client categorizer.CompletionClient) Option {
	return func(c *Container) {
		c.client = client
		c.clientSet = true
	}
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	// Create logger first as it's needed by other components
	if c.logger == nil {
		c.logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	if c.store == nil {
		c.store = store.NewCategoryStore(cfg.Data.CategoriesFile, cfg.Data.OverridesFile, cfg.Data.KeywordsFile, c.logger)
	}

	if !c.clientSet {
		client, err := newClient(cfg, c.logger)
		if err != nil {
			return nil, err
		}
		c.client = client
	}

	c.options = categorizer.Options{
		MinConfidence:    cfg.Categorization.MinConfidence,
		Model:            cfg.AI.Model,
		Temperature:      cfg.AI.Temperature,
		MaxTokens:        cfg.AI.MaxTokens,
		BatchMaxTokens:   cfg.AI.BatchMaxTokens,
		BatchSize:        cfg.AI.BatchSize,
		BatchConcurrency: cfg.AI.BatchConcurrency,
		MaxAttempts:      cfg.AI.MaxRetries,
		RetryDelay:       cfg.RetryDelay(),
		Prices:           categorizer.DefaultPriceTable(),
	}

	c.logger.Debug("Container initialized",
		logging.Field{Key: "ai_enabled", Value: c.client != nil},
		logging.Field{Key: logging.FieldProvider, Value: cfg.AI.Provider},
		logging.Field{Key: logging.FieldModel, Value: cfg.AI.Model})

	return c, nil
}

// newClient returns nil when AI is disabled or no key is configured.
func newClient(cfg *config.Config, logger logging.Logger) (categorizer.CompletionClient, error) {
	if !cfg.AI.Enabled {
		logger.Debug("AI categorization disabled")
		return nil, nil
	}

	client, err := categorizer.NewCompletionClient(context.Background(), categorizer.ClientConfig{
		Provider:          cfg.AI.Provider,
		APIKey:            cfg.AI.APIKey,
		BaseURL:           cfg.AI.BaseURL,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Timeout:           cfg.Timeout(),
	}, logger)
	if errors.Is(err, apperrors.ErrNoClient) {
		logger.Warn("AI categorization enabled but no API key configured",
			logging.Field{Key: logging.FieldProvider, Value: cfg.AI.Provider})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	return client, nil
}

// NewSession loads categories and keyword rules and returns a fresh categorizer.
func (c *Container) NewSession() (*categorizer.Categorizer, error) {
	return categorizer.NewCategorizerFromStore(c.store, c.client, c.options, c.logger)
}

// MatchOptions loads the stored overrides and guidelines. Guidelines from the
// configuration come first.
func (c *Container) MatchOptions(useLLM bool) (categorizer.MatchOptions, error) {
	overrides, err := c.store.LoadOverrides()
	if err != nil {
		return categorizer.MatchOptions{}, fmt.Errorf("failed to load overrides: %w", err)
	}
	stored, err := c.store.LoadGuidelines()
	if err != nil {
		return categorizer.MatchOptions{}, fmt.Errorf("failed to load guidelines: %w", err)
	}

	guidelines := make([]string, 0, len(c.config.Data.Guidelines)+len(stored))
	guidelines = append(guidelines, c.config.Data.Guidelines...)
	guidelines = append(guidelines, stored...)

	if useLLM && c.client == nil {
		c.logger.Info("LLM tier requested but no completion client is configured")
	}

	return categorizer.MatchOptions{
		UseLLM:     useLLM,
		Overrides:  overrides,
		Guidelines: guidelines,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the container's category store.
func (c *Container) GetStore() categorizer.CategoryStoreInterface {
	return c.store
}

// GetCompletionClient returns the completion client, or nil if AI is not enabled.
func (c *Container) GetCompletionClient() categorizer.CompletionClient {
	return c.client
}

// Options returns the engine options derived from the configuration.
func (c *Container) Options() categorizer.Options {
	return c.options
}

// Close releases the completion client when it holds a connection.
func (c *Container) Close() error {
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
