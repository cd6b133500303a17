package postprocessors

import (
	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/postprocessors/chunker"
	"github.com/custodia-labs/skillbot/internal/postprocessors/textnorm"
)

// DefaultStages splits first, then normalises each chunk.
var DefaultStages = []string{"chunker", "textnorm"}

// DefaultRegistry knows the built-in stages.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Names are distinct, so these cannot fail.
	_ = r.Register("chunker", func(cfg StageConfig) (driven.PostProcessor, error) {
		return chunker.New(chunker.WithChunkSize(cfg.Chunker.Size), chunker.WithOverlap(cfg.Chunker.Overlap)), nil
	})
	_ = r.Register("textnorm", func(cfg StageConfig) (driven.PostProcessor, error) {
		return textnorm.NewProcessor(cfg.Normaliser), nil
	})
	return r
}

// NewDefaultPipeline validates settings and builds the default stages. The
// normaliser n must be the one queries use so both sides of a lookup agree.
func NewDefaultPipeline(settings domain.ChunkerSettings, n driven.TextNormaliser) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return DefaultRegistry().Pipeline(DefaultStages, StageConfig{Chunker: settings, Normaliser: n})
}
