package llm

import "context"

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request.
type Request struct {
	// System is the system prompt.
	System string `json:"system,omitempty"`

	// Prompt is the rendered conversation ending with the assistant cue.
	Prompt string `json:"prompt"`

	// MaxTokens caps the response. Zero uses the client default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature overrides the client default when non-nil.
	Temperature *float64 `json:"temperature,omitempty"`
}

// Usage reports token consumption of one completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Reported is true when the provider supplied the counts; false when
	// they were estimated locally.
	Reported bool `json:"reported"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Response is the result of a completion.
type Response struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Client sends completion requests.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (*Response, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
