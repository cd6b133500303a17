// Package anthropic completes chats with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// defaultMaxTokens fills the field the API requires on every request.
	defaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	APIKey string

	// BaseURL is the API host. A trailing /v1 is added when missing.
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService wraps the go-anthropic client.
type LLMService struct {
	client *anthropic.Client
	model  string
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}

	client := anthropic.NewClient(cfg.APIKey,
		anthropic.WithBaseURL(base),
		anthropic.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	return &LLMService{client: client, model: cfg.Model}, nil
}

// Generate completes a single prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request("", []anthropic.Message{userMessage(prompt)}, opts.MaxTokens, opts.Temperature)
	req.StopSequences = opts.StopWords
	return s.complete(ctx, req)
}

// Chat conducts a multi-turn conversation. System messages move to the
// request's system field and consecutive turns of one role are merged,
// since the API rejects both.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	var turns []driven.ChatMessage
	for _, m := range messages {
		switch {
		case m.Role == driven.RoleSystem:
			system = append(system, m.Content)
		case len(turns) > 0 && turns[len(turns)-1].Role == m.Role:
			turns[len(turns)-1].Content += "\n\n" + m.Content
		default:
			turns = append(turns, m)
		}
	}

	msgs := make([]anthropic.Message, len(turns))
	for i, t := range turns {
		msgs[i] = userMessage(t.Content)
		if t.Role == driven.RoleAssistant {
			msgs[i].Role = anthropic.RoleAssistant
		}
	}
	return s.complete(ctx, s.request(strings.Join(system, "\n\n"), msgs, opts.MaxTokens, opts.Temperature))
}

func userMessage(text string) anthropic.Message {
	return anthropic.Message{
		Role:    anthropic.RoleUser,
		Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(text)},
	}
}

func (s *LLMService) request(system string, msgs []anthropic.Message, maxTokens int, temperature float64) anthropic.MessagesRequest {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temp := float32(temperature)
	return anthropic.MessagesRequest{
		Model:       anthropic.Model(s.model),
		Messages:    msgs,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: &temp,
	}
}

func (s *LLMService) complete(ctx context.Context, req anthropic.MessagesRequest) (string, error) {
	resp, err := s.client.CreateMessages(ctx, req)
	if err != nil {
		return "", classify(ctx, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			out.WriteString(*block.Text)
		}
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("anthropic: empty completion (stop reason %q)", resp.StopReason)
	}
	return text, nil
}

// classify wraps outages, rate limits and credential problems in
// domain.ErrLLMUnavailable. Rejected requests stay plain errors.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsRateLimitErr() || apiErr.IsOverloadedErr() || apiErr.IsApiErr() ||
			apiErr.IsAuthenticationErr() || apiErr.IsPermissionErr() || apiErr.IsNotFoundErr() {
			return fmt.Errorf("%w: anthropic: %w", domain.ErrLLMUnavailable, err)
		}
		return fmt.Errorf("anthropic: %w", err)
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		switch code := reqErr.StatusCode; {
		case code == http.StatusUnauthorized, code == http.StatusForbidden,
			code == http.StatusNotFound, code == http.StatusTooManyRequests, code >= 500:
			return fmt.Errorf("%w: anthropic: %w", domain.ErrLLMUnavailable, err)
		}
		return fmt.Errorf("anthropic: %w", err)
	}

	// Transport and decoding failures.
	return fmt.Errorf("%w: anthropic: %w", domain.ErrLLMUnavailable, err)
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping sends a one-token message, which checks the key and the model name.
func (s *LLMService) Ping(ctx context.Context) error {
	req := s.request("", []anthropic.Message{userMessage("ping")}, 1, 0)
	if _, err := s.client.CreateMessages(ctx, req); err != nil {
		return classify(ctx, err)
	}
	return nil
}

func (s *LLMService) Close() error {
	return nil
}
