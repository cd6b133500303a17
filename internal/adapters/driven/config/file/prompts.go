package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults/*.txt
var defaultFS embed.FS

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	data, err := defaultFS.ReadFile(path.Join("defaults", name+".txt"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// PromptStore reads <dir>/<name>.txt, seeding the directory with the
// built-in templates the first time anything is loaded. Edited files win
// over the defaults as long as they keep the same number of %s verbs.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore uses <home>/prompts when dir is empty. Nothing is written
// until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]string{}}, nil
}

// Dir is where the template files live.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) Load(name string) (string, error) {
	def, known := DefaultPrompt(name)

	s.seed.Do(func() { s.seedErr = s.writeDefaults() })
	if s.seedErr != nil {
		if known {
			return def, nil
		}
		return "", fmt.Errorf("prompts: %w", s.seedErr)
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt, err := s.read(name, def, known)
	if err != nil {
		if known {
			logger.Warn("prompts: %v, using built-in %s", err, name)
			return def, nil
		}
		return "", err
	}

	s.mu.Lock()
	if prev, ok := s.cache[name]; ok {
		prompt = prev
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *PromptStore) read(name, def string, known bool) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	switch {
	case errors.Is(err, fs.ErrNotExist) && !known:
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("prompt %q: %w", name, err)
	}

	prompt := strings.TrimSpace(string(data))
	if known && strings.Count(prompt, "%s") != strings.Count(def, "%s") {
		return "", fmt.Errorf("prompt %q needs %d %%s placeholders", name, strings.Count(def, "%s"))
	}
	return prompt, nil
}

// writeDefaults creates any template file that does not exist yet.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	entries, err := defaultFS.ReadDir("defaults")
	if err != nil {
		return err
	}
	for _, e := range entries {
		data, err := defaultFS.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(s.dir, e.Name()), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
