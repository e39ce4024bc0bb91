// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fjacquet/txcat/internal/apperrors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by InitializeConfig.
const EnvPrefix = "TXCAT"

// Supported completion providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	AI struct {
		Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
		Provider          string  `mapstructure:"provider" yaml:"provider"`
		Model             string  `mapstructure:"model" yaml:"model"`
		APIKey            string  `mapstructure:"api_key" yaml:"-"` // Never serialize API key
		BaseURL           string  `mapstructure:"base_url" yaml:"base_url"`
		RequestsPerMinute int     `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxRetries        int     `mapstructure:"max_retries" yaml:"max_retries"`
		RetryDelayMs      int     `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
		Temperature       float64 `mapstructure:"temperature" yaml:"temperature"`
		MaxTokens         int     `mapstructure:"max_tokens" yaml:"max_tokens"`
		BatchSize         int     `mapstructure:"batch_size" yaml:"batch_size"`
		BatchConcurrency  int     `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
		BatchMaxTokens    int     `mapstructure:"batch_max_tokens" yaml:"batch_max_tokens"`
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Data struct {
		CategoriesFile string   `mapstructure:"categories_file" yaml:"categories_file"`
		OverridesFile  string   `mapstructure:"overrides_file" yaml:"overrides_file"`
		KeywordsFile   string   `mapstructure:"keywords_file" yaml:"keywords_file"`
		Guidelines     []string `mapstructure:"guidelines" yaml:"guidelines"`
	} `mapstructure:"data" yaml:"data"`
}

// InitializeConfig loads defaults, the first config.yaml found in the
// standard locations, and TXCAT_* environment variables.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load is InitializeConfig with an explicit config file. An empty path
// searches $HOME/.txcat, .txcat and the working directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.txcat")
		v.AddConfigPath(".txcat")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file. Only an explicitly named file must exist.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, &apperrors.DataFileError{FilePath: v.ConfigFileUsed(), Err: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Provider API key from its conventional variable when not set explicitly
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	if config.AI.APIKey == "" {
		config.AI.APIKey = os.Getenv(APIKeyEnvVar(config.AI.Provider))
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// APIKeyEnvVar returns the environment variable holding the API key of provider.
func APIKeyEnvVar(provider string) string {
	if strings.EqualFold(provider, ProviderOpenAI) {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.retry_delay_ms", 1000)
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.max_tokens", 50)
	v.SetDefault("ai.batch_size", 50)
	v.SetDefault("ai.batch_concurrency", 1)
	v.SetDefault("ai.batch_max_tokens", 2000)

	// Categorization defaults
	v.SetDefault("categorization.min_confidence", 30.0)

	// Data defaults
	v.SetDefault("data.categories_file", "categories.yaml")
	v.SetDefault("data.overrides_file", "overrides.yaml")
	v.SetDefault("data.keywords_file", "")
	v.SetDefault("data.guidelines", []string{})
}

type intRange struct {
	key      string
	value    int
	min, max int
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(strings.ToLower(config.Log.Level)); err != nil {
		return &apperrors.ConfigError{Key: "log.level", Value: config.Log.Level, Reason: "unknown log level"}
	}

	if !strings.EqualFold(config.Log.Format, "text") && !strings.EqualFold(config.Log.Format, "json") {
		return &apperrors.ConfigError{Key: "log.format", Value: config.Log.Format, Reason: "must be 'text' or 'json'"}
	}

	if config.AI.Provider != ProviderGemini && config.AI.Provider != ProviderOpenAI {
		return &apperrors.ConfigError{Key: "ai.provider", Value: config.AI.Provider, Reason: "must be 'gemini' or 'openai'"}
	}

	if config.Categorization.MinConfidence < 0 || config.Categorization.MinConfidence > 100 {
		return &apperrors.ConfigError{Key: "categorization.min_confidence", Value: config.Categorization.MinConfidence, Reason: "must be between 0 and 100"}
	}

	if !config.AI.Enabled {
		return nil
	}

	if config.AI.APIKey == "" {
		return &apperrors.ConfigError{Key: "ai.api_key", Value: "", Reason: APIKeyEnvVar(config.AI.Provider) + " required when AI is enabled"}
	}

	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return &apperrors.ConfigError{Key: "ai.temperature", Value: config.AI.Temperature, Reason: "must be between 0 and 2"}
	}

	ranges := []intRange{
		{"ai.requests_per_minute", config.AI.RequestsPerMinute, 1, 1000},
		{"ai.timeout_seconds", config.AI.TimeoutSeconds, 1, 300},
		{"ai.max_retries", config.AI.MaxRetries, 1, 10},
		{"ai.retry_delay_ms", config.AI.RetryDelayMs, 0, 60000},
		{"ai.max_tokens", config.AI.MaxTokens, 1, 8192},
		{"ai.batch_size", config.AI.BatchSize, 1, 500},
		{"ai.batch_concurrency", config.AI.BatchConcurrency, 1, 16},
		{"ai.batch_max_tokens", config.AI.BatchMaxTokens, 1, 65536},
	}
	for _, r := range ranges {
		if r.value < r.min || r.value > r.max {
			return &apperrors.ConfigError{Key: r.key, Value: r.value, Reason: fmt.Sprintf("must be between %d and %d", r.min, r.max)}
		}
	}

	return nil
}

// Timeout returns the per-call timeout of the completion client.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base delay between completion retries.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.AI.RetryDelayMs) * time.Millisecond
}
