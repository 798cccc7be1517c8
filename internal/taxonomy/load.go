package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// LoadFile reads and parses a single tree document.
func LoadFile(path string) (*RawTreeDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	return Parse(data, path)
}

// DocumentName derives a document key from its path: the base name without
// extension ("data/phylogenetic.json" -> "phylogenetic").
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover expands a doublestar pattern into document names and paths.
func Discover(pattern string) (map[string]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, &DataLoadError{Source: pattern, Err: fmt.Errorf("bad pattern: %w", err)}
	}
	if len(matches) == 0 {
		return nil, &DataLoadError{Source: pattern, Err: errors.New("no tree documents found")}
	}
	docs := make(map[string]string, len(matches))
	for _, m := range matches {
		docs[DocumentName(m)] = m
	}
	return docs, nil
}

// Cache holds one canonical tree per document. Trees are normalized on first
// use and shared read-only afterwards. Failed loads are not cached, so a later
// Get retries the fetch.
type Cache struct {
	pattern string
	logger  *slog.Logger

	mu    sync.Mutex
	trees map[string]*CanonicalTree
}

// NewCache creates a cache over the documents matched by pattern.
func NewCache(pattern string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		pattern: pattern,
		logger:  logger,
		trees:   make(map[string]*CanonicalTree),
	}
}

// Documents lists the available document names in sorted order.
func (c *Cache) Documents() ([]string, error) {
	docs, err := Discover(c.pattern)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.trees) == 0 {
			return nil, err
		}
		docs = make(map[string]string)
		for name := range c.trees {
			docs[name] = ""
		}
	}
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the canonical tree for the named document. An empty name selects
// the first document in sorted order.
func (c *Cache) Get(ctx context.Context, name string) (*CanonicalTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if name != "" {
		if t, ok := c.trees[name]; ok {
			return t, nil
		}
	}

	docs, err := Discover(c.pattern)
	if err != nil {
		if t, ok := c.first(); ok && name == "" {
			return t, nil
		}
		return nil, err
	}
	if name == "" {
		names := make([]string, 0, len(docs))
		for n := range docs {
			names = append(names, n)
		}
		sort.Strings(names)
		name = names[0]
		if t, ok := c.trees[name]; ok {
			return t, nil
		}
	}

	path, ok := docs[name]
	if !ok {
		return nil, &DataLoadError{Source: name, Err: errors.New("unknown tree document")}
	}
	raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	t := Normalize(raw, c.logger.With("document", name))
	c.trees[name] = t
	c.logger.Info("tree loaded", "document", name, "nodes", t.NodeCount(), "leaves", t.LeafCount(), "warnings", len(t.Warnings()))
	return t, nil
}

// Put stores an already-normalized tree under name.
func (c *Cache) Put(name string, t *CanonicalTree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees[name] = t
}

// Invalidate drops a cached tree so the next Get reloads it.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trees, name)
}

func (c *Cache) first() (*CanonicalTree, bool) {
	if len(c.trees) == 0 {
		return nil, false
	}
	names := make([]string, 0, len(c.trees))
	for n := range c.trees {
		names = append(names, n)
	}
	sort.Strings(names)
	return c.trees[names[0]], true
}
