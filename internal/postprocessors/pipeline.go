// Package postprocessors turns extracted document text into normalised chunks.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

var errEmptyPipeline = errors.New("pipeline has no stages")

// Pipeline runs stages in order. The first stage receives nil chunks and
// creates them; later stages rewrite or filter what they are given.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline from stages.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process runs text through every stage.
func (p *Pipeline) Process(ctx context.Context, text string) ([]domain.Chunk, error) {
	if len(p.stages) == 0 {
		return nil, errEmptyPipeline
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, text, chunks)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		logger.Debug("postprocess: %s %d -> %d chunks", stage.Name(), len(chunks), len(out))
		chunks = out
	}
	return chunks, nil
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
