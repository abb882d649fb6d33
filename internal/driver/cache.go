package driver

import (
	"sort"
	"sync"

	"nixscan/internal/project"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
)

type cacheEntry struct {
	digest project.Digest
	file   *syntax.SourceFile
}

// Cache holds parsed files by project-relative path. Parse workers share one
// Cache; an entry is reused only while the content hash still matches.
// Every file a Cache sees is loaded into its FileSet, so file IDs stay
// unique across batches.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	fileSet *source.FileSet
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry), fileSet: source.NewFileSet()}
}

func (c *Cache) FileSet() *source.FileSet { return c.fileSet }

// Lookup returns the cached file for path if it was parsed from content
// with the given digest.
func (c *Cache) Lookup(path string, digest project.Digest) (*syntax.SourceFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok || e.digest != digest {
		return nil, false
	}
	return e.file, true
}

// Get returns the cached file for path regardless of its content hash.
func (c *Cache) Get(path string) (*syntax.SourceFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return e.file, ok
}

// Put stores sf under sf.Path, replacing any earlier parse.
func (c *Cache) Put(sf *syntax.SourceFile, digest project.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sf.Path] = cacheEntry{digest: digest, file: sf}
}

// Forget drops path from the cache.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Files returns every cached file sorted by path.
func (c *Cache) Files() []*syntax.SourceFile {
	c.mu.Lock()
	out := make([]*syntax.SourceFile, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.file)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
