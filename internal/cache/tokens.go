// Package cache provides caching utilities for the MCP server.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TokenCache is a thread-safe LRU of Splunk session keys whose entries
// expire after a fixed TTL. It satisfies search.TokenCache.
type TokenCache struct {
	cache *expirable.LRU[string, string]
}

// NewTokenCache creates a cache holding at most maxItems keys for ttl each.
func NewTokenCache(maxItems int, ttl time.Duration) *TokenCache {
	if maxItems <= 0 {
		maxItems = 1
	}
	return &TokenCache{cache: expirable.NewLRU[string, string](maxItems, nil, ttl)}
}

// Get returns the session key stored under key, if present and unexpired.
func (c *TokenCache) Get(key string) (string, bool) {
	return c.cache.Get(key)
}

// Put stores a session key, replacing any previous one.
func (c *TokenCache) Put(key, token string) {
	c.cache.Add(key, token)
}

// Remove drops the session key stored under key.
func (c *TokenCache) Remove(key string) {
	c.cache.Remove(key)
}

// Len returns the current number of cached keys.
func (c *TokenCache) Len() int {
	return c.cache.Len()
}
