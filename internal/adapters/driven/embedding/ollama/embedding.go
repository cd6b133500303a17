// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "bge-m3"
	DefaultTimeout    = 2 * time.Minute
	DefaultDimensions = 1024
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	BaseURL string
	Model   string

	// Timeout bounds one /api/embed call, which carries a whole batch.
	Timeout time.Duration

	// Dimensions is the expected vector size. Responses of another size
	// are rejected so an index never mixes models. Zero accepts any size
	// and reports DefaultDimensions until the first response.
	Dimensions int
}

// EmbeddingService calls Ollama's batch endpoint /api/embed.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
	strict     bool
}

var errModelMissing = errors.New("model not found")

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

type showRequest struct {
	Model string `json:"model"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	strict := cfg.Dimensions > 0
	if !strict {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		strict:     strict,
	}
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request. Transport failures wrap
// domain.ErrEmbeddingUnavailable; bad responses wrap domain.ErrEmbedding.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embedResponse
	if err := s.post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: ollama: %s", domain.ErrEmbedding, out.Error)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: ollama returned %d vectors for %d inputs",
			domain.ErrEmbedding, len(out.Embeddings), len(texts))
	}
	want := s.dimensions
	if !s.strict {
		want = len(out.Embeddings[0])
	}
	for i, v := range out.Embeddings {
		if len(v) == 0 || len(v) != want {
			return nil, fmt.Errorf("%w: ollama vector %d has %d dimensions, model %s expects %d",
				domain.ErrEmbedding, i, len(v), s.model, want)
		}
	}
	return out.Embeddings, nil
}

func (s *EmbeddingService) post(ctx context.Context, path string, in, out any) error {
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
		return fmt.Errorf("%w: ollama at %s: %w", domain.ErrEmbeddingUnavailable, s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode ollama response: %w", domain.ErrEmbedding, err)
	}
	return nil
}

// statusError maps a non-200 reply. A missing model and server-side
// failures mean the provider cannot serve; anything else is a bad request.
func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	text := string(bytes.TrimSpace(msg))
	if json.Unmarshal(msg, &body) == nil && body.Error != "" {
		text = body.Error
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w: %s", domain.ErrEmbeddingUnavailable, errModelMissing, text)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: ollama status %d: %s", domain.ErrEmbeddingUnavailable, resp.StatusCode, text)
	default:
		return fmt.Errorf("%w: ollama status %d: %s", domain.ErrEmbedding, resp.StatusCode, text)
	}
}

// Dimensions returns the expected vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks that the server is up and the model has been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	err := s.post(ctx, "/api/show", showRequest{Model: s.model}, nil)
	if errors.Is(err, errModelMissing) {
		return fmt.Errorf("%w (try 'ollama pull %s')", err, s.model)
	}
	return err
}

func (s *EmbeddingService) Close() error {
	return nil
}
