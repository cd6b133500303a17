package services

import (
	"strings"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// EstimateTokens returns a rough token count for text: one token per
// four characters plus one per six whitespace separators. Non-empty text
// is never less than one token.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}

	charCount := len([]rune(text))
	whitespaceCount := strings.Count(text, " ") + strings.Count(text, "\n") + strings.Count(text, "\t")

	estimated := (charCount / 4) + (whitespaceCount / 6)
	if estimated < 1 {
		return 1
	}
	return estimated
}

// estimateTurnTokens counts both sides of a turn.
func estimateTurnTokens(t domain.Turn) int {
	return EstimateTokens(t.Query) + EstimateTokens(t.Answer)
}

func estimateTurnsTokens(turns []domain.Turn) int {
	total := 0
	for _, t := range turns {
		total += estimateTurnTokens(t)
	}
	return total
}
