package textnorm

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// Processor fills Chunk.Normalized using a TextNormaliser.
// It implements the PostProcessor interface and never creates chunks.
type Processor struct {
	normaliser driven.TextNormaliser
}

// NewProcessor wraps n as a pipeline stage. A nil n uses New().
func NewProcessor(n driven.TextNormaliser) *Processor {
	if n == nil {
		n = New()
	}
	return &Processor{normaliser: n}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "textnorm"
}

// Process normalises every chunk. Chunks whose normalised form is empty
// are dropped; ordinals are left untouched so citation keys stay stable.
func (p *Processor) Process(_ context.Context, _ string, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.Normalized = p.normaliser.Normalise(c.Text)
		if c.Normalized == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
