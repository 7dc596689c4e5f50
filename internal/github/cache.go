package github

import (
	"strings"
	"sync"
)

// apiCache provides in-memory caching for GitHub API responses.
// All fields are protected by a read-write mutex for concurrent safety.
// Caches have a single-run lifetime (not persisted).
type apiCache struct {
	mu sync.RWMutex

	dates     map[string]int64         // sha → author date
	histories map[string]historyResult // "expression[:args]" → walk
	head      *resolvedHead
}

// historyResult is one commit walk. truncated is set when the walk stopped
// at the commit cap before reaching the root commit.
type historyResult struct {
	commits   []string
	truncated bool
}

// resolvedHead is the versioned commit and, when it is a branch tip, the
// branch name.
type resolvedHead struct {
	sha    string
	branch string
}

func newCache() *apiCache {
	return &apiCache{
		dates:     make(map[string]int64),
		histories: make(map[string]historyResult),
	}
}

// Commit date cache.

func (c *apiCache) getDate(sha string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	date, ok := c.dates[sha]
	return date, ok
}

func (c *apiCache) putDate(sha string, date int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dates[sha] = date
}

// History cache.

func (c *apiCache) getHistory(key string) (historyResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.histories[key]
	return h, ok
}

func (c *apiCache) putHistory(key string, h historyResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories[key] = h
}

// Head cache.

func (c *apiCache) getHead() (resolvedHead, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.head == nil {
		return resolvedHead{}, false
	}
	return *c.head, true
}

func (c *apiCache) putHead(head resolvedHead) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = &head
}

// historyKey returns a cache key for a commit walk.
func historyKey(expression string, args ...string) string {
	var b strings.Builder
	b.WriteString(expression)
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			b.WriteByte(':')
			b.WriteString(a)
		}
	}
	return b.String()
}
