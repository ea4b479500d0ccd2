// ABOUTME: Per-user rate limiting for chat and indexing actions
// ABOUTME: Token buckets in a bounded registry so abusive keys can't grow it
package ratelimit

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Action names a rate-limited operation class.
type Action string

const (
	// ActionChat covers question answering, streamed or not.
	ActionChat Action = "chat"
	// ActionIndex covers document (re)indexing, which is far more expensive.
	ActionIndex Action = "index"
)

const (
	// DefaultChatPerMinute is the chat request budget per user.
	DefaultChatPerMinute = 20
	// DefaultIndexPerMinute is the indexing budget per user.
	DefaultIndexPerMinute = 5
	// DefaultMaxKeys bounds tracked (user, action) pairs.
	DefaultMaxKeys = 10000
)

// Config holds per-action budgets. Zero values fall back to defaults.
type Config struct {
	ChatPerMinute  int
	IndexPerMinute int
	MaxKeys        int
}

// Limiter tracks a token bucket per (user, action) pair. Safe for concurrent
// use. Least-recently-seen pairs are evicted when the registry fills, which
// effectively refills their bucket; that is acceptable at the default bound.
type Limiter struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
	limits  map[Action]rate.Limit
	bursts  map[Action]int
}

// New creates a Limiter.
func New(cfg Config) (*Limiter, error) {
	if cfg.ChatPerMinute <= 0 {
		cfg.ChatPerMinute = DefaultChatPerMinute
	}
	if cfg.IndexPerMinute <= 0 {
		cfg.IndexPerMinute = DefaultIndexPerMinute
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = DefaultMaxKeys
	}

	buckets, err := lru.New[string, *rate.Limiter](cfg.MaxKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter registry: %w", err)
	}
	return &Limiter{
		buckets: buckets,
		limits: map[Action]rate.Limit{
			ActionChat:  rate.Limit(float64(cfg.ChatPerMinute) / 60),
			ActionIndex: rate.Limit(float64(cfg.IndexPerMinute) / 60),
		},
		bursts: map[Action]int{
			ActionChat:  cfg.ChatPerMinute,
			ActionIndex: cfg.IndexPerMinute,
		},
	}, nil
}

// Allow reports whether the user may perform the action now, consuming one
// token if so. Unknown actions are always allowed.
func (l *Limiter) Allow(userID string, action Action) bool {
	limit, ok := l.limits[action]
	if !ok {
		return true
	}

	key := userID + "|" + string(action)

	l.mu.Lock()
	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = rate.NewLimiter(limit, l.bursts[action])
		l.buckets.Add(key, bucket)
	}
	l.mu.Unlock()

	return bucket.Allow()
}

// Reset forgets the user's bucket for one action, restoring a full budget.
func (l *Limiter) Reset(userID string, action Action) {
	l.mu.Lock()
	l.buckets.Remove(userID + "|" + string(action))
	l.mu.Unlock()
}

// ResetAll forgets every bucket.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	l.buckets.Purge()
	l.mu.Unlock()
}
