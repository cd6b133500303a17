package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/skillbot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/skillbot/internal/adapters/driven/workspace"
	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
	"github.com/custodia-labs/skillbot/internal/extractors"
	"github.com/custodia-labs/skillbot/internal/extractors/plaintext"
	"github.com/custodia-labs/skillbot/internal/postprocessors"
	"github.com/custodia-labs/skillbot/internal/postprocessors/textnorm"
)

var errProviderDown = errors.New("provider down")

// staticPrompts serves fixed templates.
type staticPrompts map[string]string

func (p staticPrompts) Load(name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", domain.ErrNotFound
}

func (p staticPrompts) Reload() {}

func testPrompts() staticPrompts {
	return staticPrompts{
		driven.PromptQueryRewrite: "REWRITE",
		driven.PromptAnswerPolicy: "POLICY",
		driven.PromptSummarise:    "SUMMARY %s\nNEW %s",
	}
}

// fakeEmbedding hashes whitespace tokens into a bag-of-words vector, so
// texts sharing words are similar.
type fakeEmbedding struct {
	dims int

	mu          sync.Mutex
	batches     int
	queries     []string
	failOnBatch int // 1-based; zero never fails
	queryErr    error
	vectors     func(texts []string) [][]float32
}

func newFakeEmbedding() *fakeEmbedding {
	return &fakeEmbedding{dims: 256}
}

func (f *fakeEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return bagOfWords(text, f.dims), nil
}

func (f *fakeEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	if f.failOnBatch > 0 && f.batches == f.failOnBatch {
		return nil, errProviderDown
	}
	if f.vectors != nil {
		return f.vectors(texts), nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = bagOfWords(t, f.dims)
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int              { return f.dims }
func (f *fakeEmbedding) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedding) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedding) Close() error                 { return nil }

func (f *fakeEmbedding) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batches
}

func bagOfWords(text string, dims int) []float32 {
	v := make([]float32, dims)
	for _, tok := range strings.Fields(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		v[h.Sum32()%uint32(dims)]++
	}
	v[dims-1] += 0.01
	return v
}

type chatCall struct {
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

// fakeLLM answers through pluggable functions and records every call.
type fakeLLM struct {
	chat     func(messages []driven.ChatMessage, opts driven.ChatOptions) (string, error)
	generate func(prompt string, opts driven.GenerateOptions) (string, error)
	delay    time.Duration

	mu            sync.Mutex
	chatCalls     []chatCall
	generateCalls []string
	generateOpts  []driven.GenerateOptions

	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	f.generateCalls = append(f.generateCalls, prompt)
	f.generateOpts = append(f.generateOpts, opts)
	f.mu.Unlock()
	if f.generate == nil {
		return "summary", nil
	}
	return f.generate(prompt, opts)
}

func (f *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, chatCall{messages: messages, opts: opts})
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.chat == nil {
		return groundedChat(messages, opts)
	}
	return f.chat(messages, opts)
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

func (f *fakeLLM) calls() []chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]chatCall, len(f.chatCalls))
	copy(out, f.chatCalls)
	return out
}

// knownSkills are the capabilities groundedChat can talk about.
var knownSkills = []string{"طراحی سایت", "آشپزی", "برنامه نویسی"}

const declineAnswer = "من این توانایی را ندارم."

// groundedChat echoes the question for rewrites and otherwise answers
// only from the context in the system message.
func groundedChat(messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	system := messages[0].Content
	query := messages[len(messages)-1].Content

	if strings.HasPrefix(system, "REWRITE") {
		return query, nil
	}
	for _, skill := range knownSkills {
		if !strings.Contains(query, skill) {
			continue
		}
		if strings.Contains(system, skill) {
			return "آره، " + skill + " بلدم.", nil
		}
		return declineAnswer, nil
	}
	return "پاسخ دقیقی برای این سوال ندارم", nil
}

// recordingSummarizer joins queries into the summary.
type recordingSummarizer struct {
	mu     sync.Mutex
	calls  int
	folded []domain.Turn
	err    error
}

func (r *recordingSummarizer) Summarize(_ context.Context, previous string, turns []domain.Turn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	r.folded = append(r.folded, turns...)
	parts := []string{}
	if previous != "" {
		parts = append(parts, previous)
	}
	for _, t := range turns {
		parts = append(parts, t.Query)
	}
	return strings.Join(parts, "|"), nil
}

// testEnv wires the real pipeline over fakes for the AI providers.
type testEnv struct {
	ws        *workspace.Filesystem
	docs      *memory.DocumentStore
	indexes   *sqlite.IndexStore
	embed     *fakeEmbedding
	llm       *fakeLLM
	sessions  *SessionCache
	factory   *SessionFactory
	builds    atomic.Int32
	ingestion *IngestionService
	chat      *ChatService
	documents *DocumentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ws, err := workspace.New(t.TempDir())
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	settings.Chunker = domain.ChunkerSettings{Size: 40, Overlap: 8}

	normaliser := textnorm.New()
	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunker, normaliser)
	require.NoError(t, err)

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())

	env := &testEnv{
		ws:      ws,
		docs:    memory.NewDocumentStore(),
		indexes: sqlite.NewIndexStore(),
		embed:   newFakeEmbedding(),
		llm:     &fakeLLM{},
	}

	env.factory = NewSessionFactory(ws, env.indexes, NewLLMSummarizer(env.llm, testPrompts()), ChainConfig{
		Embedding:  env.embed,
		LLM:        env.llm,
		Normaliser: normaliser,
		Prompts:    testPrompts(),
		Settings:   settings.Retrieval,
	}, settings.Memory)

	env.sessions = NewSessionCache(func(ctx context.Context, id string) (*Session, error) {
		env.builds.Add(1)
		return env.factory.Build(ctx, id)
	}, settings.Sessions.Capacity)
	t.Cleanup(env.sessions.Close)

	locks := NewDocumentLocks()
	env.ingestion = NewIngestionService(IngestionConfig{
		Workspace:  ws,
		Extractors: registry,
		Pipeline:   pipeline,
		Indexer:    NewIndexer(env.embed, env.indexes, settings.Index),
		DocStore:   env.docs,
		Sessions:   env.sessions,
		Locks:      locks,
	})
	env.chat = NewChatService(env.sessions, ws)
	env.documents = NewDocumentService(env.docs, ws, env.sessions, locks)
	return env
}

func (e *testEnv) ingestText(t *testing.T, id, text string) *domain.Document {
	t.Helper()
	doc, err := e.ingestion.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: id,
		Name:       "Test Person",
		Filename:   "skills.txt",
		MIMEType:   "text/plain",
		Source:     []byte(text),
	})
	require.NoError(t, err)
	return doc
}
