package domain

const unknownDescription = "Unknown"

// AIProvider names a backend for embeddings, chat completion or both.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

// providerInfo describes what a provider offers. An empty embedModel
// means the provider has no embeddings endpoint.
type providerInfo struct {
	label      string
	local      bool
	embedModel string
	llmModel   string
}

// providerOrder fixes listing order; providerCatalogue holds the facts.
var (
	providerOrder     = []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
	providerCatalogue = map[AIProvider]providerInfo{
		AIProviderOllama:    {label: "Ollama (local)", local: true, embedModel: "bge-m3", llmModel: "llama3.1"},
		AIProviderOpenAI:    {label: "OpenAI (cloud)", embedModel: "text-embedding-3-small", llmModel: "gpt-4o-mini"},
		AIProviderAnthropic: {label: "Anthropic (cloud)", llmModel: "claude-3-5-sonnet-latest"},
	}
)

func (p AIProvider) IsValid() bool {
	_, ok := providerCatalogue[p]
	return ok
}

// RequiresAPIKey is true for every hosted provider.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !providerCatalogue[p].local
}

func (p AIProvider) IsLocal() bool {
	return providerCatalogue[p].local
}

func (p AIProvider) String() string {
	return string(p)
}

// Description is a label for status output, such as "Ollama (local)".
func (p AIProvider) Description() string {
	if info, ok := providerCatalogue[p]; ok {
		return info.label
	}
	return unknownDescription
}

// ready reports whether p is known and has the key it needs.
func ready(p AIProvider, apiKey string) bool {
	return p.IsValid() && (apiKey != "" || !p.RequiresAPIKey())
}

// EmbeddingSettings selects the embedding backend. BaseURL overrides the
// provider endpoint; APIKey is ignored by local providers.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured reports whether the settings name a usable provider.
func (e EmbeddingSettings) IsConfigured() bool {
	return ready(e.Provider, e.APIKey)
}

// LLMSettings selects the chat completion backend.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured reports whether the settings name a usable provider.
func (l LLMSettings) IsConfigured() bool {
	return ready(l.Provider, l.APIKey)
}

// AllEmbeddingProviders lists providers with an embeddings endpoint.
func AllEmbeddingProviders() []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if providerCatalogue[p].embedModel != "" {
			out = append(out, p)
		}
	}
	return out
}

// AllLLMProviders lists every provider; all of them complete chats.
func AllLLMProviders() []AIProvider {
	return append([]AIProvider(nil), providerOrder...)
}

// DefaultEmbeddingModels maps each embedding provider to its default model.
func DefaultEmbeddingModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for _, p := range AllEmbeddingProviders() {
		out[p] = providerCatalogue[p].embedModel
	}
	return out
}

// DefaultLLMModels maps each provider to its default chat model.
func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string, len(providerOrder))
	for _, p := range providerOrder {
		out[p] = providerCatalogue[p].llmModel
	}
	return out
}

// EmbeddingDimensions gives native vector sizes of well-known models. The
// multilingual models are listed because Persian needs them.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"bge-m3":                  1024,
		"multilingual-e5-large":   1024,
		"paraphrase-multilingual": 768,
		"nomic-embed-text":        768,
		"mxbai-embed-large":       1024,
		"all-minilm":              384,

		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
