package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// StageConfig is everything a built-in stage may need at construction.
type StageConfig struct {
	Chunker    domain.ChunkerSettings
	Normaliser driven.TextNormaliser
}

// Builder constructs one stage.
type Builder func(cfg StageConfig) (driven.PostProcessor, error)

// Registry maps stage names to builders so pipelines can be assembled
// from a list of names.
type Registry struct {
	builders map[string]Builder
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a builder. Names are unique.
func (r *Registry) Register(name string, b Builder) error {
	if _, dup := r.builders[name]; dup {
		return fmt.Errorf("%w: stage %q", domain.ErrAlreadyExists, name)
	}
	r.builders[name] = b
	r.order = append(r.order, name)
	return nil
}

// Names returns registered stage names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Pipeline builds the named stages, in the given order, into a pipeline.
func (r *Registry) Pipeline(names []string, cfg StageConfig) (*Pipeline, error) {
	stages := make([]driven.PostProcessor, 0, len(names))
	for _, name := range names {
		b, ok := r.builders[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown stage %q", domain.ErrInvalidInput, name)
		}
		stage, err := b(cfg)
		if err != nil {
			return nil, fmt.Errorf("build stage %s: %w", name, err)
		}
		stages = append(stages, stage)
	}
	return NewPipeline(stages...), nil
}
