package services

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// Session pairs a document's retrieval chain with its conversation memory.
type Session struct {
	DocumentID string

	chain  *Chain
	memory *LayeredMemory

	// mu is held for a whole turn and while evicting.
	mu      sync.Mutex
	evicted bool
	inTurn  atomic.Bool
}

// NewSession creates a session.
func NewSession(documentID string, chain *Chain, memory *LayeredMemory) *Session {
	return &Session{
		DocumentID: documentID,
		chain:      chain,
		memory:     memory,
	}
}

// Memory returns the session's memory.
func (s *Session) Memory() *LayeredMemory {
	return s.memory
}

// close marks the session evicted and releases its chain.
// The caller must hold s.mu.
func (s *Session) close() {
	if s.evicted {
		return
	}
	s.evicted = true
	if s.chain != nil {
		if err := s.chain.Close(); err != nil {
			logger.Debug("Close session %s: %v", s.DocumentID, err)
		}
	}
}

// SessionBuilder constructs a session for a document with a ready index.
type SessionBuilder func(ctx context.Context, documentID string) (*Session, error)

// SessionFactory builds sessions from a document's workspace.
type SessionFactory struct {
	workspace  driven.Workspace
	indexStore driven.VectorIndexStore
	summarizer driven.Summarizer
	chain      ChainConfig
	memory     domain.MemorySettings
}

// NewSessionFactory creates a factory. cfg.Index is ignored; every
// session opens its own index.
func NewSessionFactory(
	workspace driven.Workspace,
	indexStore driven.VectorIndexStore,
	summarizer driven.Summarizer,
	cfg ChainConfig,
	memory domain.MemorySettings,
) *SessionFactory {
	cfg.Index = nil
	return &SessionFactory{
		workspace:  workspace,
		indexStore: indexStore,
		summarizer: summarizer,
		chain:      cfg,
		memory:     memory,
	}
}

// Build opens the document's index and returns a fresh session.
// A document without a complete, non-empty index is not ready.
func (f *SessionFactory) Build(ctx context.Context, documentID string) (*Session, error) {
	if !f.workspace.IsReady(ctx, documentID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotReady, documentID)
	}

	index, err := f.indexStore.Open(ctx, f.workspace.Paths(documentID).Index)
	if err != nil {
		return nil, fmt.Errorf("open index for %s: %w", documentID, err)
	}
	if index.Len() == 0 {
		_ = index.Close()
		return nil, fmt.Errorf("%w: %s has an empty index", domain.ErrIndexNotReady, documentID)
	}

	cfg := f.chain
	cfg.Index = index
	return NewSession(documentID, NewChain(documentID, cfg), NewLayeredMemory(f.memory, f.summarizer)), nil
}

// SessionCache holds at most one session per document id.
//
// Concurrent first requests for an id share a single build. When the cache
// is over capacity the least recently used idle session is evicted; a
// session with a turn in flight is never evicted.
type SessionCache struct {
	build    SessionBuilder
	capacity int
	group    singleflight.Group

	mu          sync.Mutex
	entries     map[string]*list.Element
	order       *list.List // front is most recently used
	generations map[string]uint64

	built   atomic.Int64
	evicted atomic.Int64
}

// NewSessionCache creates a cache. A capacity of zero is unbounded.
func NewSessionCache(build SessionBuilder, capacity int) *SessionCache {
	return &SessionCache{
		build:       build,
		capacity:    capacity,
		entries:     make(map[string]*list.Element),
		order:       list.New(),
		generations: make(map[string]uint64),
	}
}

// Get returns the session for documentID, building it on first use.
func (c *SessionCache) Get(ctx context.Context, documentID string) (*Session, error) {
	if s := c.lookup(documentID); s != nil {
		return s, nil
	}

	v, err, _ := c.group.Do(documentID, func() (any, error) {
		if s := c.lookup(documentID); s != nil {
			return s, nil
		}

		c.mu.Lock()
		gen := c.generations[documentID]
		c.mu.Unlock()

		// Shared by every waiting caller, so one caller's cancellation
		// must not fail the others.
		s, err := c.build(context.WithoutCancel(ctx), documentID)
		if err != nil {
			return nil, err
		}
		c.built.Add(1)
		logger.Debug("Built session for %s", documentID)

		c.insert(documentID, s, gen)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Acquire returns the session for documentID locked for one turn. The
// returned release function must be called when the turn ends.
func (c *SessionCache) Acquire(ctx context.Context, documentID string) (*Session, func(), error) {
	for {
		s, err := c.Get(ctx, documentID)
		if err != nil {
			return nil, nil, err
		}
		s.mu.Lock()
		if s.evicted {
			// Evicted between Get and Lock; fetch the replacement.
			s.mu.Unlock()
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			continue
		}
		c.touch(documentID)
		return s, s.mu.Unlock, nil
	}
}

// Peek returns the cached session for documentID without building one.
func (c *SessionCache) Peek(documentID string) (*Session, bool) {
	s := c.lookup(documentID)
	return s, s != nil
}

// Invalidate drops the session for documentID, waiting for an in-flight
// turn to finish. A build already running for the id is not cached.
func (c *SessionCache) Invalidate(documentID string) {
	c.mu.Lock()
	c.generations[documentID]++
	var s *Session
	if el, ok := c.entries[documentID]; ok {
		s = el.Value.(*Session)
		c.order.Remove(el)
		delete(c.entries, documentID)
	}
	c.mu.Unlock()
	c.group.Forget(documentID)

	if s == nil {
		return
	}
	s.mu.Lock()
	s.close()
	s.mu.Unlock()
	logger.Debug("Invalidated session for %s", documentID)
}

// Len returns the number of cached sessions.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Built returns how many sessions have been constructed.
func (c *SessionCache) Built() int64 {
	return c.built.Load()
}

// Evicted returns how many sessions have been evicted for capacity.
func (c *SessionCache) Evicted() int64 {
	return c.evicted.Load()
}

// Close releases every cached session, waiting for in-flight turns.
func (c *SessionCache) Close() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.Invalidate(id)
	}
}

func (c *SessionCache) lookup(documentID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[documentID]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*Session)
	}
	return nil
}

func (c *SessionCache) touch(documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[documentID]; ok {
		c.order.MoveToFront(el)
	}
}

// insert caches s unless the id was invalidated since gen was read, then
// evicts idle sessions beyond capacity. A session that is not cached is
// closed so Acquire fetches a fresh one instead of running a turn on it.
func (c *SessionCache) insert(documentID string, s *Session, gen uint64) {
	c.mu.Lock()
	if c.generations[documentID] != gen {
		c.mu.Unlock()
		s.mu.Lock()
		s.close()
		s.mu.Unlock()
		logger.Debug("Session for %s was invalidated during build; not caching", documentID)
		return
	}
	c.entries[documentID] = c.order.PushFront(s)
	victims := c.evictLocked(documentID)
	c.mu.Unlock()

	for _, v := range victims {
		v.close()
		v.mu.Unlock()
		c.evicted.Add(1)
		logger.Debug("Evicted session for %s", v.DocumentID)
	}
}

// evictLocked removes least recently used sessions until the cache fits
// its capacity, skipping keep and sessions with a turn in flight. Victims
// are returned locked. The caller must hold c.mu.
func (c *SessionCache) evictLocked(keep string) []*Session {
	if c.capacity <= 0 {
		return nil
	}

	var victims []*Session
	for el := c.order.Back(); el != nil && c.order.Len() > c.capacity; {
		prev := el.Prev()
		s := el.Value.(*Session)
		if s.DocumentID != keep && s.mu.TryLock() {
			c.order.Remove(el)
			delete(c.entries, s.DocumentID)
			victims = append(victims, s)
		}
		el = prev
	}
	return victims
}
