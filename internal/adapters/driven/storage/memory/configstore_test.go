package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"llm.model":                    "llama3.1",
		"retrieval.top_k":              int64(7),
		"retrieval.answer_temperature": 0.3,
		"watch.extensions":             []any{".pdf", 3, ".md"},
		"server.tls":                   true,
	})

	assert.Equal(t, "llama3.1", store.GetString("llm.model"))
	assert.Equal(t, 7, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 7.0, store.GetFloat("retrieval.top_k"), 1e-9)
	assert.InDelta(t, 0.3, store.GetFloat("retrieval.answer_temperature"), 1e-9)
	assert.Equal(t, 0, store.GetInt("retrieval.answer_temperature"))
	assert.Equal(t, []string{".pdf", ".md"}, store.GetStringSlice("watch.extensions"))
	assert.True(t, store.GetBool("server.tls"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_MissingAndWrongTypes(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))

	assert.Equal(t, 0, store.GetInt("k"))
	assert.Equal(t, 0.0, store.GetFloat("k"))
	assert.False(t, store.GetBool("k"))
	assert.Nil(t, store.GetStringSlice("k"))
	assert.Equal(t, "", store.GetString("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("n", i)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("n")
		}()
	}
	wg.Wait()

	_, ok := store.Get("n")
	assert.True(t, ok)
}

func TestConfigStore_ReplaceAndSnapshot(t *testing.T) {
	store := NewConfigStore(map[string]any{"old": 1})

	store.Replace(map[string]any{"b": "x", "a": int64(2)})
	assert.Equal(t, []string{"a", "b"}, store.Keys())

	snap := store.Snapshot()
	snap["a"] = 99
	assert.Equal(t, 2, store.GetInt("a"), "snapshot must be a copy")

	store.Replace(nil)
	assert.Empty(t, store.Keys())
	require.NoError(t, store.Set("k", true))
	assert.True(t, store.GetBool("k"))
}
