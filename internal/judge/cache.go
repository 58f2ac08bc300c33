package judge

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Source is the puzzle text Knowledge is built from.
type Source struct {
	Lang    string
	Content string
	Answer  string
	Hints   []string
}

func (s Source) fingerprint() string {
	h := sha256.New()
	write := func(v string) {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	write(s.Lang)
	write(s.Content)
	write(s.Answer)
	for _, hint := range s.Hints {
		write(hint)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type cacheEntry struct {
	fingerprint string
	knowledge   *Knowledge
}

// Cache memoizes Knowledge per puzzle id. An entry whose source text no
// longer matches is rebuilt, and Invalidate drops an entry outright when a
// puzzle is edited or deleted. Concurrent misses for the same id share one
// build.
type Cache struct {
	engine *Engine

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

func NewCache(engine *Engine) *Cache {
	return &Cache{
		engine:  engine,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the Knowledge for id, building it from src on a miss. hit
// reports whether a cached value was used.
func (c *Cache) Get(id string, src Source) (k *Knowledge, hit bool, err error) {
	fp := src.fingerprint()

	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && e.fingerprint == fp {
		return e.knowledge, true, nil
	}

	v, err, _ := c.group.Do(id+"\x00"+fp, func() (any, error) {
		k, err := c.engine.BuildKnowledge(src.Lang, src.Content, src.Answer, src.Hints)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[id] = cacheEntry{fingerprint: fp, knowledge: k}
		c.mu.Unlock()
		return k, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Knowledge), false, nil
}

// Invalidate forgets the Knowledge for id.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
