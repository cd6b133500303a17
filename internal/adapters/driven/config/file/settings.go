package file

import (
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// Configuration keys.
const (
	KeyServerAddr         = "server.addr"
	KeyServerReadTimeout  = "server.read_timeout"
	KeyServerWriteTimeout = "server.write_timeout"
	KeyServerMaxUploadMB  = "server.max_upload_mb"

	KeyDataDir = "storage.data_dir"
	KeyDocsDir = "storage.docs_dir"

	KeyEmbeddingProvider = "embedding.provider"
	KeyEmbeddingModel    = "embedding.model"
	KeyEmbeddingBaseURL  = "embedding.base_url"
	KeyEmbeddingAPIKey   = "embedding.api_key"

	KeyLLMProvider = "llm.provider"
	KeyLLMModel    = "llm.model"
	KeyLLMBaseURL  = "llm.base_url"
	KeyLLMAPIKey   = "llm.api_key"

	KeyChunkSize    = "chunker.size"
	KeyChunkOverlap = "chunker.overlap"

	KeyIndexBatchSize = "index.batch_size"
	KeyIndexRPS       = "index.requests_per_second"
	KeyIndexBurst     = "index.burst"

	KeyTopK              = "retrieval.top_k"
	KeyAnswerTemperature = "retrieval.answer_temperature"

	KeyMemoryWindow        = "memory.window"
	KeyMemoryTokenBudget   = "memory.token_budget"
	KeyMemorySummaryBudget = "memory.summary_budget"

	KeySessionCapacity = "sessions.capacity"
)

// Environment variables that override file values.
const (
	EnvDocsDir    = "SKILLBOT_DOCS_DIR"
	EnvDataDir    = "SKILLBOT_DATA_DIR"
	EnvAddr       = "SKILLBOT_ADDR"
	EnvEmbedModel = "SKILLBOT_EMBED_MODEL"
	EnvLLMModel   = "SKILLBOT_LLM_MODEL"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvAnthropic  = "ANTHROPIC_API_KEY"
	EnvOllamaHost = "OLLAMA_HOST"
)

// LoadSettings maps the config store onto application settings. Missing
// keys keep their defaults; storage directories default to subdirectories
// of home.
func LoadSettings(store driven.ConfigStore, home string) domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Storage.DataDir = filepath.Join(home, "data")
	s.Storage.DocsDir = filepath.Join(home, "docs")

	str := func(key string, dst *string) {
		if v := store.GetString(key); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetInt(key)
		}
	}
	float := func(key string, dst *float64) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetFloat(key)
		}
	}
	duration := func(key string, dst *time.Duration) {
		v := store.GetString(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Warn("config: ignoring %s=%q: %v", key, v, err)
			return
		}
		*dst = d
	}

	str(KeyServerAddr, &s.Server.Addr)
	duration(KeyServerReadTimeout, &s.Server.ReadTimeout)
	duration(KeyServerWriteTimeout, &s.Server.WriteTimeout)
	if _, ok := store.Get(KeyServerMaxUploadMB); ok {
		s.Server.MaxUploadBytes = int64(store.GetInt(KeyServerMaxUploadMB)) << 20
	}

	str(KeyDataDir, &s.Storage.DataDir)
	str(KeyDocsDir, &s.Storage.DocsDir)

	if v := store.GetString(KeyEmbeddingProvider); v != "" {
		s.Embedding.Provider = domain.AIProvider(v)
		s.Embedding.Model = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
	}
	str(KeyEmbeddingModel, &s.Embedding.Model)
	str(KeyEmbeddingBaseURL, &s.Embedding.BaseURL)
	str(KeyEmbeddingAPIKey, &s.Embedding.APIKey)

	if v := store.GetString(KeyLLMProvider); v != "" {
		s.LLM.Provider = domain.AIProvider(v)
		s.LLM.Model = domain.DefaultLLMModels()[s.LLM.Provider]
	}
	str(KeyLLMModel, &s.LLM.Model)
	str(KeyLLMBaseURL, &s.LLM.BaseURL)
	str(KeyLLMAPIKey, &s.LLM.APIKey)

	integer(KeyChunkSize, &s.Chunker.Size)
	integer(KeyChunkOverlap, &s.Chunker.Overlap)

	integer(KeyIndexBatchSize, &s.Index.BatchSize)
	float(KeyIndexRPS, &s.Index.RequestsPerSecond)
	integer(KeyIndexBurst, &s.Index.Burst)

	integer(KeyTopK, &s.Retrieval.TopK)
	float(KeyAnswerTemperature, &s.Retrieval.AnswerTemperature)

	integer(KeyMemoryWindow, &s.Memory.Window)
	integer(KeyMemoryTokenBudget, &s.Memory.TokenBudget)
	integer(KeyMemorySummaryBudget, &s.Memory.SummaryBudget)

	integer(KeySessionCapacity, &s.Sessions.Capacity)

	return s
}

// ApplyEnv overlays environment variables onto settings. API keys only
// apply to the provider that uses them.
func ApplyEnv(s *domain.AppSettings, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(env string, dst *string) {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
		}
	}

	set(EnvDocsDir, &s.Storage.DocsDir)
	set(EnvDataDir, &s.Storage.DataDir)
	set(EnvAddr, &s.Server.Addr)
	set(EnvEmbedModel, &s.Embedding.Model)
	set(EnvLLMModel, &s.LLM.Model)

	switch s.Embedding.Provider {
	case domain.AIProviderOpenAI:
		set(EnvOpenAIKey, &s.Embedding.APIKey)
	case domain.AIProviderOllama:
		set(EnvOllamaHost, &s.Embedding.BaseURL)
	}

	switch s.LLM.Provider {
	case domain.AIProviderOpenAI:
		set(EnvOpenAIKey, &s.LLM.APIKey)
	case domain.AIProviderAnthropic:
		set(EnvAnthropic, &s.LLM.APIKey)
	case domain.AIProviderOllama:
		set(EnvOllamaHost, &s.LLM.BaseURL)
	}
}
