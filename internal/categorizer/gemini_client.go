package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ProviderGemini is the provider name of GeminiClient.
const ProviderGemini = "gemini"

// GeminiClient implements CompletionClient on the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient creates a Gemini client. requestsPerMinute <= 0 disables
// client-side rate limiting; timeout <= 0 disables the per-call timeout.
func NewGeminiClient(ctx context.Context, apiKey string, requestsPerMinute int, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.ErrNoClient
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:  client,
		limiter: newLimiter(requestsPerMinute),
		timeout: timeout,
		logger:  logging.OrNop(logger),
	}, nil
}

// Provider returns "gemini".
func (c *GeminiClient) Provider() string {
	return ProviderGemini
}

// Complete sends the request. System messages become the model's system
// instruction; the others are sent as content parts in order.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return CompletionResponse{}, &apperrors.CompletionError{Provider: ProviderGemini, Err: err}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens)) // #nosec G115 -- bounded by configuration
	}

	var system []genai.Part
	var parts []genai.Part
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, genai.Text(m.Content))
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}

	c.logger.Debug("Calling completion API",
		logging.Field{Key: logging.FieldProvider, Value: ProviderGemini},
		logging.Field{Key: logging.FieldModel, Value: req.Model})

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return CompletionResponse{}, &apperrors.CompletionError{Provider: ProviderGemini, StatusCode: googleStatus(err), Err: err}
	}
	return geminiResponse(resp), nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func geminiResponse(resp *genai.GenerateContentResponse) CompletionResponse {
	var out CompletionResponse
	if resp == nil {
		return out
	}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		// The first candidate with content is the answer.
		if sb.Len() > 0 {
			break
		}
	}
	out.Text = sb.String()
	return out
}

func googleStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}
