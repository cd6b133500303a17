package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// Ensure LLMSummarizer implements the interface.
var _ driven.Summarizer = (*LLMSummarizer)(nil)

// LLMSummarizer folds conversation turns into a running summary with the
// chat-completion service.
type LLMSummarizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMSummarizer creates a new summarizer.
func NewLLMSummarizer(llm driven.LLMService, prompts driven.PromptStore) *LLMSummarizer {
	return &LLMSummarizer{
		llm:     llm,
		prompts: prompts,
	}
}

// Summarize returns previous updated with turns.
func (s *LLMSummarizer) Summarize(ctx context.Context, previous string, turns []domain.Turn) (string, error) {
	if len(turns) == 0 {
		return previous, nil
	}

	template, err := s.prompts.Load(driven.PromptSummarise)
	if err != nil {
		return "", fmt.Errorf("load summarise prompt: %w", err)
	}

	prompt := fmt.Sprintf(template, previous, RenderTurns(turns))

	resp, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: domain.SummaryTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: summarise: %w", domain.ErrCompletion, err)
	}

	summary := strings.TrimSpace(resp)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", domain.ErrCompletion)
	}
	return summary, nil
}

// RenderTurns formats turns as a plain-text transcript.
func RenderTurns(turns []domain.Turn) string {
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("کاربر: ")
		sb.WriteString(t.Query)
		sb.WriteString("\nدستیار: ")
		sb.WriteString(t.Answer)
	}
	return sb.String()
}
