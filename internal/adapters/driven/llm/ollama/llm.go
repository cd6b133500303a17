// Package ollama completes chats with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.1"

	// DefaultTimeout allows for a cold model load on the first turn.
	DefaultTimeout = 3 * time.Minute
)

// Config holds configuration for the Ollama LLM service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// ContextWindow sets num_ctx. Prompts carry the retrieved passages, a
	// summary and recent turns, which overflow small default windows.
	// Zero keeps the model's default.
	ContextWindow int
}

// LLMService sends every request through /api/chat.
type LLMService struct {
	client        *http.Client
	baseURL       string
	model         string
	contextWindow int
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options"`
}

// options is always sent so a zero temperature overrides the model default.
type options struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	NumCtx      int      `json:"num_ctx,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

var errModelMissing = errors.New("model not found")

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg Config) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:        &http.Client{Timeout: cfg.Timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		model:         cfg.Model,
		contextWindow: cfg.ContextWindow,
	}
}

// Generate completes a single prompt, sent as one user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.complete(ctx,
		[]chatMessage{{Role: driven.RoleUser, Content: prompt}},
		options{Temperature: opts.Temperature, NumPredict: opts.MaxTokens, Stop: opts.StopWords})
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	msgs := make([]chatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	return s.complete(ctx, msgs, options{Temperature: opts.Temperature, NumPredict: opts.MaxTokens})
}

func (s *LLMService) complete(ctx context.Context, msgs []chatMessage, opts options) (string, error) {
	opts.NumCtx = s.contextWindow

	var out chatResponse
	err := s.post(ctx, "/api/chat", chatRequest{Model: s.model, Messages: msgs, Options: opts}, &out)
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		return "", errors.New("ollama: empty completion")
	}
	return text, nil
}

func (s *LLMService) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: ollama at %s: %w", domain.ErrLLMUnavailable, s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		text := strings.TrimSpace(string(msg))
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(msg, &e) == nil && e.Error != "" {
			text = e.Error
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %w: %s", domain.ErrLLMUnavailable, errModelMissing, text)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: ollama status %d: %s", domain.ErrLLMUnavailable, resp.StatusCode, text)
		default:
			return fmt.Errorf("ollama status %d: %s", resp.StatusCode, text)
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ollama response: %w", err)
	}
	return nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks that the server is up and the model has been pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	err := s.post(ctx, "/api/show", struct {
		Model string `json:"model"`
	}{s.model}, nil)
	if errors.Is(err, errModelMissing) {
		return fmt.Errorf("%w (try 'ollama pull %s')", err, s.model)
	}
	return err
}

func (s *LLMService) Close() error {
	return nil
}
