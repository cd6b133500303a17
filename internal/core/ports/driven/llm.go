package driven

import "context"

// LLMService completes prompts for query rewriting, answer synthesis and
// memory summarisation. Provider outages wrap domain.ErrLLMUnavailable.
type LLMService interface {
	// Generate completes a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat completes a conversation. System messages come first.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateOptions tunes a single-prompt completion. Zero MaxTokens leaves
// the provider default. Temperature is always sent, zero included.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a chat completion the same way as GenerateOptions.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
