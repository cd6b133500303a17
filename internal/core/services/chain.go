package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// Chain answers questions about one document: rewrite, retrieve, then
// synthesise. It holds no conversation state; callers pass memory in.
type Chain struct {
	documentID string
	index      driven.VectorIndex
	embedding  driven.EmbeddingService
	llm        driven.LLMService
	normaliser driven.TextNormaliser
	prompts    driven.PromptStore
	settings   domain.RetrievalSettings
}

// ChainConfig holds the collaborators of a Chain.
type ChainConfig struct {
	Index      driven.VectorIndex
	Embedding  driven.EmbeddingService
	LLM        driven.LLMService
	Normaliser driven.TextNormaliser
	Prompts    driven.PromptStore
	Settings   domain.RetrievalSettings
}

// NewChain creates a chain over an opened index.
func NewChain(documentID string, cfg ChainConfig) *Chain {
	return &Chain{
		documentID: documentID,
		index:      cfg.Index,
		embedding:  cfg.Embedding,
		llm:        cfg.LLM,
		normaliser: cfg.Normaliser,
		prompts:    cfg.Prompts,
		settings:   cfg.Settings,
	}
}

// DocumentID returns the document this chain answers about.
func (c *Chain) DocumentID() string {
	return c.documentID
}

// Rewrite turns query into a self-contained search query using the recent
// turns. Without history the query is returned as is. Errors wrap
// domain.ErrRewrite and are never fatal to a turn.
func (c *Chain) Rewrite(ctx context.Context, window []domain.Turn, query string) (string, error) {
	if len(window) == 0 {
		return query, nil
	}

	policy, err := c.prompts.Load(driven.PromptQueryRewrite)
	if err != nil {
		return "", fmt.Errorf("%w: load prompt: %w", domain.ErrRewrite, err)
	}

	messages := make([]driven.ChatMessage, 0, 2*len(window)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: policy})
	messages = append(messages, turnMessages(window)...)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: query})

	resp, err := c.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: domain.RewriteTemperature})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRewrite, err)
	}

	rewritten := strings.TrimSpace(resp)
	if rewritten == "" {
		return "", fmt.Errorf("%w: empty rewrite", domain.ErrRewrite)
	}
	logger.Debug("Rewrote %q as %q", query, rewritten)
	return rewritten, nil
}

// Retrieve returns the top-k passages for query, best first. Ties are
// ordered by ascending ordinal.
func (c *Chain) Retrieve(ctx context.Context, query string) ([]domain.Passage, error) {
	normalised := c.normaliser.Normalise(query)
	if normalised == "" {
		normalised = query
	}

	vec, err := c.embedding.Embed(ctx, normalised)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbedding, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrEmbedding)
	}

	hits, err := c.index.Search(ctx, NormalizeVector(vec), c.settings.TopK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	passages := make([]domain.Passage, len(hits))
	for i, h := range hits {
		passages[i] = domain.Passage{
			Ordinal: h.Ordinal,
			Key:     h.Key,
			Text:    h.Text,
			Score:   h.Similarity,
		}
	}
	logger.Debug("Retrieved %d passages for %q", len(passages), query)
	return passages, nil
}

// Synthesize produces the answer to query from the passages and the
// composed conversation. Errors wrap domain.ErrCompletion.
func (c *Chain) Synthesize(
	ctx context.Context, conversation ComposedContext, passages []domain.Passage, query string,
) (string, error) {
	policy, err := c.prompts.Load(driven.PromptAnswerPolicy)
	if err != nil {
		return "", fmt.Errorf("%w: load prompt: %w", domain.ErrCompletion, err)
	}

	history := conversation.Messages()
	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleSystem,
		Content: systemMessage(policy, passages, conversation.Summary),
	})
	messages = append(messages, history...)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: query})

	resp, err := c.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: c.settings.AnswerTemperature})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCompletion, err)
	}

	answer := strings.TrimSpace(resp)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", domain.ErrCompletion)
	}
	return answer, nil
}

// Close releases the index.
func (c *Chain) Close() error {
	return c.index.Close()
}

// systemMessage appends the retrieved context and the conversation summary
// to the answer policy.
func systemMessage(policy string, passages []domain.Passage, summary string) string {
	var sb strings.Builder
	sb.WriteString(policy)
	sb.WriteString("\n\n")
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s]\n%s", p.Key, p.Text)
	}
	if summary != "" {
		sb.WriteString("\n\nخلاصهٔ گفتگوی قبلی:\n")
		sb.WriteString(summary)
	}
	return sb.String()
}
