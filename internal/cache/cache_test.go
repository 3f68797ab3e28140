package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokrex/tokrex/token"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := New()
	toks := []token.Token{{Kind: token.Ident, Value: "x"}}

	_, ok := c.Get("a.ts", "let x;")
	assert.False(t, ok)

	c.Put("a.ts", "let x;", toks)
	got, ok := c.Get("a.ts", "let x;")
	require.True(t, ok)
	assert.Equal(t, toks, got)
	assert.Equal(t, 1, c.Len())

	// same key, different content: stale
	_, ok = c.Get("a.ts", "let y;")
	assert.False(t, ok)

	c.Invalidate("a.ts")
	_, ok = c.Get("a.ts", "let x;")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put("k", "content", nil)
				c.Get("k", "content")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
