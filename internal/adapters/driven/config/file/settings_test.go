package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/skillbot/internal/core/domain"
)

func newStoreWith(t *testing.T, content string) *ConfigStore {
	t.Helper()
	dir := t.TempDir()
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600))
	}
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store
}

func TestLoadSettings_Defaults(t *testing.T) {
	store := newStoreWith(t, "")

	s := LoadSettings(store, "/home/u/.skillbot")

	want := domain.DefaultAppSettings()
	assert.Equal(t, want.Chunker, s.Chunker)
	assert.Equal(t, want.Memory, s.Memory)
	assert.Equal(t, want.Retrieval, s.Retrieval)
	assert.Equal(t, ":8000", s.Server.Addr)
	assert.Equal(t, filepath.Join("/home/u/.skillbot", "data"), s.Storage.DataDir)
	assert.Equal(t, filepath.Join("/home/u/.skillbot", "docs"), s.Storage.DocsDir)
	assert.NoError(t, s.Validate())
}

func TestLoadSettings_FromFile(t *testing.T) {
	store := newStoreWith(t, `
[server]
addr = "127.0.0.1:9000"
read_timeout = "10s"
max_upload_mb = 4

[storage]
docs_dir = "/srv/docs"

[llm]
provider = "anthropic"
api_key = "key"

[embedding]
provider = "openai"
model = "text-embedding-3-large"

[chunker]
size = 300
overlap = 60

[retrieval]
top_k = 5
answer_temperature = 0

[memory]
window = 3

[sessions]
capacity = 0
`)

	s := LoadSettings(store, "/h")

	assert.Equal(t, "127.0.0.1:9000", s.Server.Addr)
	assert.Equal(t, 10*time.Second, s.Server.ReadTimeout)
	assert.Equal(t, int64(4<<20), s.Server.MaxUploadBytes)
	assert.Equal(t, "/srv/docs", s.Storage.DocsDir)
	assert.Equal(t, domain.AIProviderAnthropic, s.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", s.LLM.Model)
	assert.Equal(t, "key", s.LLM.APIKey)
	assert.Equal(t, "text-embedding-3-large", s.Embedding.Model)
	assert.Equal(t, domain.ChunkerSettings{Size: 300, Overlap: 60}, s.Chunker)
	assert.Equal(t, 5, s.Retrieval.TopK)
	assert.Equal(t, 0.0, s.Retrieval.AnswerTemperature)
	assert.Equal(t, 3, s.Memory.Window)
	assert.Equal(t, 0, s.Sessions.Capacity)
}

func TestLoadSettings_BadDurationIgnored(t *testing.T) {
	store := newStoreWith(t, "[server]\nwrite_timeout = \"soon\"\n")

	s := LoadSettings(store, "/h")
	assert.Equal(t, domain.DefaultAppSettings().Server.WriteTimeout, s.Server.WriteTimeout)
}

func TestLoadSettings_DecodedNumbers(t *testing.T) {
	// Decoders hand back int64 and float64; an explicit zero still counts.
	store := memory.NewConfigStore(map[string]any{
		KeyTopK:              int64(2),
		KeyAnswerTemperature: float64(0),
		KeyMemoryWindow:      int64(3),
		KeySessionCapacity:   int64(0),
		KeyLLMModel:          "",
	})

	s := LoadSettings(store, "/h")
	assert.Equal(t, 2, s.Retrieval.TopK)
	assert.Zero(t, s.Retrieval.AnswerTemperature)
	assert.Equal(t, 3, s.Memory.Window)
	assert.Equal(t, 0, s.Sessions.Capacity)
	assert.Equal(t, domain.DefaultAppSettings().LLM.Model, s.LLM.Model)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDocsDir:    "/env/docs",
		EnvAddr:       ":9999",
		EnvLLMModel:   "gpt-4o",
		EnvOpenAIKey:  "sk-env",
		EnvAnthropic:  "ak-env",
		EnvOllamaHost: "http://gpu:11434",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	s := domain.DefaultAppSettings()
	s.LLM.Provider = domain.AIProviderOpenAI
	ApplyEnv(&s, lookup)

	assert.Equal(t, "/env/docs", s.Storage.DocsDir)
	assert.Equal(t, ":9999", s.Server.Addr)
	assert.Equal(t, "gpt-4o", s.LLM.Model)
	assert.Equal(t, "sk-env", s.LLM.APIKey)
	// Embedding stays on ollama so it takes the host, not the OpenAI key.
	assert.Equal(t, "http://gpu:11434", s.Embedding.BaseURL)
	assert.Empty(t, s.Embedding.APIKey)
}

func TestLoadEnvFiles(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, ".env"), []byte("SKILLBOT_TEST_A=first\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(second, ".env"), []byte("SKILLBOT_TEST_A=second\nSKILLBOT_TEST_B=b\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("SKILLBOT_TEST_A")
		os.Unsetenv("SKILLBOT_TEST_B")
	})

	require.NoError(t, LoadEnvFiles(first, "", filepath.Join(t.TempDir(), "missing"), second))

	assert.Equal(t, "first", os.Getenv("SKILLBOT_TEST_A"))
	assert.Equal(t, "b", os.Getenv("SKILLBOT_TEST_B"))
}
