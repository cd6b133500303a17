// Package watcher ingests skills documents dropped into an inbox directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Extensions lists the file types picked up from the inbox.
var Extensions = []string{".pdf", ".txt", ".md"}

// Result reports the outcome of one ingestion.
type Result struct {
	Path     string
	Document *domain.Document
	Err      error
}

// Inbox watches one directory and ingests each file once per modification.
type Inbox struct {
	dir       string
	ingestion driving.IngestionService
	debounce  time.Duration
	onResult  func(Result)

	mu      sync.Mutex
	pending map[string]struct{}
	seen    map[string]time.Time
}

// New creates an inbox watcher for dir.
func New(dir string, ingestion driving.IngestionService, debounce time.Duration) (*Inbox, error) {
	if ingestion == nil {
		return nil, fmt.Errorf("%w: ingestion service is required", domain.ErrInvalidInput)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("inbox %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: inbox %s is not a directory", domain.ErrInvalidInput, dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Inbox{
		dir:       dir,
		ingestion: ingestion,
		debounce:  debounce,
		pending:   make(map[string]struct{}),
		seen:      make(map[string]time.Time),
	}, nil
}

// OnResult sets a callback invoked after every ingestion attempt.
func (w *Inbox) OnResult(fn func(Result)) {
	w.onResult = fn
}

// Run ingests files already in the inbox, then watches for new ones
// until ctx is cancelled.
func (w *Inbox) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	if err := w.Scan(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Inbox watcher error: %v", err)

		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Scan queues every eligible file in the inbox and ingests it.
func (w *Inbox) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	w.mu.Lock()
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if !e.IsDir() && Eligible(path) {
			w.pending[path] = struct{}{}
		}
	}
	w.mu.Unlock()

	w.Flush(ctx)
	return nil
}

func (w *Inbox) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !Eligible(event.Name) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()
}

// Flush ingests every queued path whose modification time has not been
// ingested before.
func (w *Inbox) Flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, path)
	}
}

func (w *Inbox) ingestFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	mtime := info.ModTime()

	w.mu.Lock()
	last, ok := w.seen[path]
	w.mu.Unlock()
	if ok && last.Equal(mtime) {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		w.report(Result{Path: path, Err: fmt.Errorf("read %s: %w", path, err)})
		return
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	logger.Info("Ingesting %s from inbox", base)

	doc, err := w.ingestion.Ingest(ctx, driving.IngestRequest{
		DocumentID: DocumentIDFor(base),
		Name:       stem,
		Filename:   base,
		Source:     raw,
	})

	// A failed file is marked seen too; touching it retries.
	w.mu.Lock()
	w.seen[path] = mtime
	w.mu.Unlock()

	w.report(Result{Path: path, Document: doc, Err: err})
}

func (w *Inbox) report(r Result) {
	if r.Err != nil {
		logger.Warn("Inbox ingestion of %s failed: %v", r.Path, r.Err)
	}
	if w.onResult != nil {
		w.onResult(r)
	}
}

// Eligible reports whether path is a visible file with a supported extension.
func Eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DocumentIDFor derives a stable document id from a file name so that
// dropping an updated file replaces the earlier ingestion.
func DocumentIDFor(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	id := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '-'
	}, stem)
	id = strings.TrimLeft(id, ".")
	if len(id) > domain.MaxDocumentIDLength {
		id = id[:domain.MaxDocumentIDLength]
	}
	if domain.ValidateDocumentID(id) != nil {
		return uuid.NewString()
	}
	return id
}
