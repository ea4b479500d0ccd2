// ABOUTME: Bounded TTL cache for composed answers, keyed by question and document
// ABOUTME: Serves repeat questions without a second provider round trip
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/documentgpt/docchat/internal/models"
)

const (
	// DefaultSize bounds cache entries; eviction is least-recently-used.
	DefaultSize = 100
	// DefaultTTL bounds entry age. Stale answers after reindexing are the
	// main hazard, so the window stays short.
	DefaultTTL = 5 * time.Minute
)

type entry struct {
	response  *models.ChatResponse
	expiresAt time.Time
}

// AnswerCache memoizes non-streaming chat responses. Streaming responses are
// never cached. Safe for concurrent use.
type AnswerCache struct {
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time
}

// New creates an AnswerCache. Non-positive size or ttl fall back to defaults.
func New(size int, ttl time.Duration) (*AnswerCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create answer cache: %w", err)
	}
	return &AnswerCache{entries: entries, ttl: ttl, now: time.Now}, nil
}

// Key derives the cache key for a question against a document. The empty
// document ID keys general-mode answers.
func Key(query, documentID string) string {
	sum := md5.Sum([]byte(query + ":" + documentID))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached response, or nil on miss or expiry.
func (c *AnswerCache) Get(query, documentID string) *models.ChatResponse {
	key := Key(query, documentID)
	e, ok := c.entries.Get(key)
	if !ok {
		return nil
	}
	if c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		return nil
	}
	return e.response
}

// Put stores a response. Nil responses are ignored.
func (c *AnswerCache) Put(query, documentID string, resp *models.ChatResponse) {
	if resp == nil {
		return
	}
	c.entries.Add(Key(query, documentID), entry{response: resp, expiresAt: c.now().Add(c.ttl)})
}

// Invalidate drops every entry. Called after a document is reindexed; entries
// are not tagged per document, so the whole cache goes.
func (c *AnswerCache) Invalidate() {
	c.entries.Purge()
}

// Len reports the current number of entries, expired or not.
func (c *AnswerCache) Len() int {
	return c.entries.Len()
}
