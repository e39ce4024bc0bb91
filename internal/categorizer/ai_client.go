package categorizer

import "context"

// Message roles understood by every completion provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message sent to a completion API.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a provider-neutral completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// CompletionResponse carries the answer text and the token usage the
// provider reported for the call.
type CompletionResponse struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns prompt plus completion tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// CompletionClient abstracts the external completion API so the matchers can
// be tested without network access.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// Provider names the backing service, e.g. "gemini" or "openai".
	Provider() string
}
