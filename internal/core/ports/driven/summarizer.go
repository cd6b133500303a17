package driven

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// Summarizer folds conversation turns into a running summary.
type Summarizer interface {
	// Summarize returns a new summary covering previous and turns.
	Summarize(ctx context.Context, previous string, turns []domain.Turn) (string, error)
}
