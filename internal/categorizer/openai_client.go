package categorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/logging"

	"golang.org/x/time/rate"
)

// ProviderOpenAI is the provider name of OpenAIClient.
const ProviderOpenAI = "openai"

// DefaultOpenAIBaseURL is used when no base URL is configured.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements CompletionClient for OpenAI-compatible chat
// completion endpoints.
type OpenAIClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	logger     logging.Logger
}

// NewOpenAIClient creates a client for baseURL ("" means the public OpenAI API).
func NewOpenAIClient(apiKey, baseURL string, requestsPerMinute int, timeout time.Duration, logger logging.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.ErrNoClient
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: newLimiter(requestsPerMinute),
		logger:  logging.OrNop(logger),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Provider returns "openai".
func (c *OpenAIClient) Provider() string {
	return ProviderOpenAI
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete posts the request to /chat/completions.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return CompletionResponse{}, c.fail(0, err)
	}

	body := openAIRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]openAIMessage, len(req.Messages)),
	}
	for i, m := range req.Messages {
		body.Messages[i] = openAIMessage{Role: m.Role, Content: m.Content}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("Calling completion API",
		logging.Field{Key: logging.FieldProvider, Value: ProviderOpenAI},
		logging.Field{Key: logging.FieldModel, Value: req.Model})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, c.fail(0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, c.fail(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, c.fail(resp.StatusCode, fmt.Errorf("unexpected response: %s", truncate(string(data), 200)))
	}

	var decoded openAIResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return CompletionResponse{}, c.fail(resp.StatusCode, fmt.Errorf("failed to parse response: %w", err))
	}

	out := CompletionResponse{
		PromptTokens:     decoded.Usage.PromptTokens,
		CompletionTokens: decoded.Usage.CompletionTokens,
	}
	if len(decoded.Choices) > 0 {
		out.Text = decoded.Choices[0].Message.Content
	}
	return out, nil
}

func (c *OpenAIClient) fail(status int, err error) error {
	return &apperrors.CompletionError{Provider: ProviderOpenAI, StatusCode: status, Err: err}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
