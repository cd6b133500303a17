// Package openai completes chats with the OpenAI chat completions API or
// any server that speaks the same protocol.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultLLMModel = "gpt-4o-mini"
	DefaultTimeout  = 2 * time.Minute
)

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService wraps the go-openai client.
type LLMService struct {
	client  *goopenai.Client
	baseURL string
	model   string
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client:  goopenai.NewClientWithConfig(clientCfg),
		baseURL: clientCfg.BaseURL,
		model:   cfg.Model,
	}, nil
}

// Generate completes a single prompt, sent as one user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	temperature := float32(opts.Temperature)
	return s.complete(ctx, goopenai.ChatCompletionRequest{
		Messages:    []goopenai.ChatCompletionMessage{{Role: goopenai.ChatMessageRoleUser, Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: &temperature,
		Stop:        opts.StopWords,
	})
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	// Always set: zero is the deterministic setting used for rewriting.
	temperature := float32(opts.Temperature)
	return s.complete(ctx, goopenai.ChatCompletionRequest{
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens,
		Temperature: &temperature,
	})
}

// complete returns the first choice. A reply cut off by the token limit is
// still returned; a filtered one is an error.
func (s *LLMService) complete(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	req.Model = s.model
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices returned")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonContentFilter {
		return "", errors.New("openai: completion withheld by content filter")
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai: empty completion (finish reason %q)", choice.FinishReason)
	}
	return text, nil
}

// classify marks errors that mean the provider cannot serve right now:
// transport failures, auth, quota and server errors.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if unavailable(httpStatus(err)) {
		return fmt.Errorf("%w: openai: %w", domain.ErrLLMUnavailable, err)
	}
	return fmt.Errorf("openai: %w", err)
}

// httpStatus returns the status carried by a go-openai error, or -1 when
// the request never got a response.
func httpStatus(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	// *url.Error, returned for transport failures.
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return -1
	}
	return 0
}

func unavailable(status int) bool {
	return status == -1 ||
		status == http.StatusUnauthorized ||
		status == http.StatusForbidden ||
		status == http.StatusNotFound ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model's metadata, which checks the key and the model
// name without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GetModel(ctx, s.model); err != nil {
		return classify(ctx, err)
	}
	return nil
}

func (s *LLMService) Close() error {
	return nil
}
