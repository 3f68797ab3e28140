// Package cache memoizes token sequences by source content, so repeated
// transforms of an unchanged file (watch mode fires duplicate events)
// skip re-lexing.
package cache

import (
	"crypto/md5"
	"fmt"
	"io"
	"sync"

	"github.com/tokrex/tokrex/token"
)

type entry struct {
	hash string
	toks []token.Token
}

// Cache is a content-addressed token cache, safe for concurrent use.
type Cache struct {
	mutex   sync.RWMutex
	entries map[string]entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get returns the cached tokens for key when the content still hashes the
// same; the second result reports a hit.
func (c *Cache) Get(key, content string) ([]token.Token, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.hash != hashContent(content) {
		return nil, false
	}
	return e.toks, true
}

// Put stores the tokens produced from content under key, displacing any
// stale entry.
func (c *Cache) Put(key, content string, toks []token.Token) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry{hash: hashContent(content), toks: toks}
}

// Invalidate drops the entry under key.
func (c *Cache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
}

// Len is the number of live entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

func hashContent(content string) string {
	h := md5.New()
	io.WriteString(h, content)
	return fmt.Sprintf("%x", h.Sum(nil))
}
