package domain

import (
	"fmt"
	"time"
)

// Fixed sampling temperatures for the internal completion calls. Answer
// synthesis uses the configured LLM temperature instead.
const (
	// RewriteTemperature is used when rewriting a query for search.
	RewriteTemperature = 0.0

	// SummaryTemperature is used when folding turns into the summary.
	SummaryTemperature = 0.0
)

// ChunkerSettings controls how extracted text is split.
// Sizes are measured in whitespace-delimited words.
type ChunkerSettings struct {
	// Size is the target chunk length in words.
	Size int

	// Overlap is the number of words shared by consecutive chunks.
	Overlap int
}

// Validate checks the chunker settings.
func (c ChunkerSettings) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap must be in [0, size)", ErrInvalidInput)
	}
	return nil
}

// IndexSettings controls vector index builds.
type IndexSettings struct {
	// BatchSize is the number of chunks per embedding request.
	BatchSize int

	// RequestsPerSecond limits embedding requests. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter burst size.
	Burst int
}

// RetrievalSettings controls the retrieval chain.
type RetrievalSettings struct {
	// TopK is the number of passages handed to the synthesiser.
	TopK int

	// AnswerTemperature is the sampling temperature for answer synthesis.
	AnswerTemperature float64
}

// MemorySettings sizes the three conversational memory layers.
type MemorySettings struct {
	// Window is the number of verbatim turns.
	Window int

	// TokenBudget caps the estimated tokens of the rolling buffer.
	TokenBudget int

	// SummaryBudget is the estimated token count of unsummarised
	// material that triggers a summary refresh.
	SummaryBudget int
}

// Validate checks the memory settings.
func (m MemorySettings) Validate() error {
	if m.Window < 1 {
		return fmt.Errorf("%w: memory window must be positive", ErrInvalidInput)
	}
	if m.TokenBudget < 1 || m.SummaryBudget < 1 {
		return fmt.Errorf("%w: memory budgets must be positive", ErrInvalidInput)
	}
	return nil
}

// SessionSettings bounds the session cache.
type SessionSettings struct {
	// Capacity is the maximum number of cached sessions. Zero is unbounded.
	Capacity int
}

// StorageSettings locates on-disk state.
type StorageSettings struct {
	// DataDir holds the metadata database.
	DataDir string

	// DocsDir holds one workspace directory per document.
	DocsDir string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
}

// AppSettings is the whole configuration, assembled from config.toml and
// the environment.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunker   ChunkerSettings
	Index     IndexSettings
	Retrieval RetrievalSettings
	Memory    MemorySettings
	Sessions  SessionSettings
	Storage   StorageSettings
	Server    ServerSettings
}

// Validate checks every section that carries invariants.
func (s AppSettings) Validate() error {
	if err := s.Chunker.Validate(); err != nil {
		return err
	}
	if err := s.Memory.Validate(); err != nil {
		return err
	}
	if s.Index.BatchSize < 1 {
		return fmt.Errorf("%w: index batch size must be positive", ErrInvalidInput)
	}
	if s.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: top k must be positive", ErrInvalidInput)
	}
	if s.Sessions.Capacity < 0 {
		return fmt.Errorf("%w: session capacity must not be negative", ErrInvalidInput)
	}
	return nil
}

// DefaultAppSettings runs entirely on a local Ollama. Storage directories
// stay empty for the config loader to place under the application home.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Chunker: ChunkerSettings{
			Size:    500,
			Overlap: 100,
		},
		Index: IndexSettings{
			BatchSize: 16,
			Burst:     1,
		},
		Retrieval: RetrievalSettings{
			TopK:              10,
			AnswerTemperature: 0.1,
		},
		Memory: MemorySettings{
			Window:        6,
			TokenBudget:   1500,
			SummaryBudget: 2000,
		},
		Sessions: SessionSettings{
			Capacity: 64,
		},
		Server: ServerSettings{
			Addr:           ":8000",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Minute,
			MaxUploadBytes: 32 << 20,
		},
	}
}
