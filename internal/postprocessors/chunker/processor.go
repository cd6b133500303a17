// Package chunker provides a boundary-aware, word-count text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping words.
const DefaultChunkOverlap = 100

// Boundary ranks, strongest first. A chunk prefers to end, and the next
// chunk prefers to start, at the strongest boundary in reach.
const (
	rankParagraph = iota
	rankLine
	rankSentence
	rankClause
	rankWord
)

// Processor splits document text into overlapping chunks measured in
// whitespace-delimited words. It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits text into chunks with ordinals starting at 0.
// Input chunks are ignored; this processor creates new chunks from the text.
func (p *Processor) Process(_ context.Context, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	spans := p.Split(text)
	if len(spans) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = domain.Chunk{Ordinal: i, Text: s}
	}
	return chunks, nil
}

// word is a maximal run of non-space runes. rank classifies the gap that
// follows it.
type word struct {
	start, end int
	rank       int
}

// Split returns the chunk texts. Each chunk is a verbatim span of text,
// separators included, so readers see the original punctuation.
func (p *Processor) Split(text string) []string {
	words := scan(text)
	n := len(words)
	if n == 0 {
		return nil
	}

	var out []string
	start := 0
	for {
		if n-start <= p.chunkSize {
			out = append(out, text[words[start].start:words[n-1].end])
			return out
		}

		end := p.pickEnd(words, start)
		out = append(out, text[words[start].start:words[end-1].end])
		start = p.pickStart(words, start, end)
	}
}

// pickEnd chooses the exclusive end of a chunk beginning at start. It
// takes the strongest boundary in the back half of the window, latest
// on ties.
func (p *Processor) pickEnd(words []word, start int) int {
	limit := start + p.chunkSize
	lo := start + max(1, p.chunkSize/2)

	best, bestRank := limit, words[limit-1].rank
	for e := limit - 1; e >= lo; e-- {
		if r := words[e-1].rank; r < bestRank {
			best, bestRank = e, r
		}
	}
	return best
}

// pickStart chooses where the chunk after [start, end) begins. It stays
// within the overlap and strictly before end, so every boundary at end
// is covered by the next chunk. Earliest wins on ties.
func (p *Processor) pickStart(words []word, start, end int) int {
	if p.overlap == 0 {
		return end
	}
	lo := max(end-p.overlap, start+1)
	if lo >= end {
		return end
	}

	best, bestRank := lo, rankWord+1
	for s := lo; s < end; s++ {
		if r := words[s-1].rank; r < bestRank {
			best, bestRank = s, r
		}
	}
	return best
}

func scan(text string) []word {
	var words []word
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		words = append(words, word{start: start, end: i})
	}

	for k := range words {
		gap := ""
		if k+1 < len(words) {
			gap = text[words[k].end:words[k+1].start]
		}
		words[k].rank = classify(text[words[k].start:words[k].end], gap)
	}
	return words
}

// Sentence and clause terminators for Persian and Latin scripts.
const (
	sentenceEnds = ".!?؟…"
	clauseEnds   = "؛;:,،-"
)

func classify(w, gap string) int {
	switch {
	case strings.Count(gap, "\n") >= 2:
		return rankParagraph
	case strings.Contains(gap, "\n"):
		return rankLine
	}

	last, _ := utf8.DecodeLastRuneInString(strings.TrimRight(w, `"'»)]`))
	switch {
	case strings.ContainsRune(sentenceEnds, last):
		return rankSentence
	case strings.ContainsRune(clauseEnds, last):
		return rankClause
	default:
		return rankWord
	}
}
