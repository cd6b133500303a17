// Package workspace stores each document's artifacts in its own directory.
//
// Layout under the docs root:
//
//	<root>/<document-id>/source.<ext>   raw upload
//	<root>/<document-id>/skill.md       extracted text with YAML front matter
//	<root>/<document-id>/index.db       vector index
//	<root>/<document-id>/index.next.db  replacement index being built
//
// Every file is written under a temporary name and renamed into place.
package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// Ensure Filesystem implements the interface.
var _ driven.Workspace = (*Filesystem)(nil)

// Artifact file names.
const (
	SourceBase = "source"
	TextFile   = "skill.md"
	IndexFile  = "index.db"
	StagedFile = "index.next.db"
)

const frontMatterDelim = "---"

// Filesystem is a driven.Workspace rooted at a directory.
type Filesystem struct {
	root string
}

// New creates a workspace rooted at dir, creating it if needed.
func New(dir string) (*Filesystem, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: docs directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating docs directory: %w", err)
	}
	return &Filesystem{root: dir}, nil
}

// Root returns the docs directory.
func (w *Filesystem) Root() string {
	return w.root
}

// Paths returns artifact locations for id without touching disk.
func (w *Filesystem) Paths(id string) driven.WorkspacePaths {
	dir := filepath.Join(w.root, id)
	return driven.WorkspacePaths{
		Dir:         dir,
		Text:        filepath.Join(dir, TextFile),
		Index:       filepath.Join(dir, IndexFile),
		StagedIndex: filepath.Join(dir, StagedFile),
	}
}

// Create makes the workspace directory for id.
func (w *Filesystem) Create(_ context.Context, id string) (driven.WorkspacePaths, error) {
	if err := domain.ValidateDocumentID(id); err != nil {
		return driven.WorkspacePaths{}, err
	}
	paths := w.Paths(id)
	if err := os.MkdirAll(paths.Dir, 0700); err != nil {
		return driven.WorkspacePaths{}, fmt.Errorf("creating workspace %s: %w", id, err)
	}
	return paths, nil
}

// WriteSource stores raw as source<ext>, replacing any earlier source with
// a different extension.
func (w *Filesystem) WriteSource(ctx context.Context, id, ext string, raw []byte) (string, error) {
	paths, err := w.Create(ctx, id)
	if err != nil {
		return "", err
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	target := filepath.Join(paths.Dir, SourceBase+strings.ToLower(ext))
	if err := writeAtomic(target, raw); err != nil {
		return "", fmt.Errorf("writing source: %w", err)
	}

	old, _ := filepath.Glob(filepath.Join(paths.Dir, SourceBase+".*"))
	for _, p := range old {
		if p != target {
			_ = os.Remove(p)
		}
	}
	return target, nil
}

// WriteText stores text behind a YAML front matter block.
func (w *Filesystem) WriteText(ctx context.Context, id string, header driven.TextHeader, text string) (string, error) {
	paths, err := w.Create(ctx, id)
	if err != nil {
		return "", err
	}

	meta, err := yaml.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("encoding text header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim + "\n")
	buf.Write(meta)
	buf.WriteString(frontMatterDelim + "\n\n")
	buf.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		buf.WriteByte('\n')
	}

	if err := writeAtomic(paths.Text, buf.Bytes()); err != nil {
		return "", fmt.Errorf("writing text: %w", err)
	}
	return paths.Text, nil
}

// ReadText returns the stored header and text for id.
func (w *Filesystem) ReadText(_ context.Context, id string) (driven.TextHeader, string, error) {
	if err := domain.ValidateDocumentID(id); err != nil {
		return driven.TextHeader{}, "", err
	}
	data, err := os.ReadFile(w.Paths(id).Text)
	if errors.Is(err, fs.ErrNotExist) {
		return driven.TextHeader{}, "", fmt.Errorf("text for %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return driven.TextHeader{}, "", fmt.Errorf("reading text: %w", err)
	}
	return ParseText(data)
}

// ParseText splits a stored text file into header and body. Files without
// front matter are returned whole with an empty header.
func ParseText(data []byte) (driven.TextHeader, string, error) {
	var header driven.TextHeader
	content := string(data)

	opening := frontMatterDelim + "\n"
	if !strings.HasPrefix(content, opening) {
		return header, content, nil
	}
	rest := content[len(opening):]
	end := strings.Index(rest, "\n"+frontMatterDelim+"\n")
	if end < 0 {
		return header, content, nil
	}

	if err := yaml.Unmarshal([]byte(rest[:end+1]), &header); err != nil {
		return header, "", fmt.Errorf("parsing text header: %w", err)
	}
	body := rest[end+len("\n"+frontMatterDelim+"\n"):]
	return header, strings.TrimPrefix(body, "\n"), nil
}

// PromoteIndex renames the staged index over the live one.
func (w *Filesystem) PromoteIndex(_ context.Context, id string) error {
	if err := domain.ValidateDocumentID(id); err != nil {
		return err
	}
	paths := w.Paths(id)
	if err := os.Rename(paths.StagedIndex, paths.Index); err != nil {
		return fmt.Errorf("promoting index: %w", err)
	}
	return nil
}

// RemoveIndex deletes the live and staged index files for id.
func (w *Filesystem) RemoveIndex(_ context.Context, id string) error {
	if err := domain.ValidateDocumentID(id); err != nil {
		return err
	}
	paths := w.Paths(id)
	for _, p := range []string{paths.Index, paths.StagedIndex} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing index: %w", err)
		}
	}
	return nil
}

// IsReady reports whether a non-empty index file exists for id.
func (w *Filesystem) IsReady(_ context.Context, id string) bool {
	if domain.ValidateDocumentID(id) != nil {
		return false
	}
	info, err := os.Stat(w.Paths(id).Index)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// List reports artifact presence for every workspace, sorted by id.
func (w *Filesystem) List(ctx context.Context) ([]domain.WorkspaceStatus, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}

	var out []domain.WorkspaceStatus
	for _, e := range entries {
		if !e.IsDir() || domain.ValidateDocumentID(e.Name()) != nil {
			continue
		}
		id := e.Name()
		paths := w.Paths(id)
		sources, _ := filepath.Glob(filepath.Join(paths.Dir, SourceBase+".*"))
		out = append(out, domain.WorkspaceStatus{
			DocumentID: id,
			HasSource:  len(sources) > 0,
			HasText:    fileExists(paths.Text),
			HasIndex:   w.IsReady(ctx, id),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out, nil
}

// Remove deletes the workspace for id.
func (w *Filesystem) Remove(_ context.Context, id string) error {
	if err := domain.ValidateDocumentID(id); err != nil {
		return err
	}
	if err := os.RemoveAll(w.Paths(id).Dir); err != nil {
		return fmt.Errorf("removing workspace %s: %w", id, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// writeAtomic writes data to a temporary sibling of path and renames it.
func writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
