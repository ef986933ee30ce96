package cache

import (
	"fmt"
	"time"

	"financas/internal/stats"
)

// SummaryCache memoizes aggregation results keyed by their filter. A
// ledger mutation invalidates everything: summaries are cheap to rebuild
// and a stale total is worse than a recomputed one.
type SummaryCache struct {
	lru *LRUCache[stats.Summary]
}

// NewSummaryCache creates a summary cache with the given capacity and TTL
func NewSummaryCache(maxSize int, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		lru: NewLRUCache[stats.Summary](maxSize, ttl),
	}
}

// Key builds the cache key for a filter. Rolling periods bake the current
// day into the key so a cached "last 7 days" never survives a date change.
func Key(f stats.Filter, now time.Time) string {
	day := ""
	switch f.Period {
	case stats.PeriodLast7Days, stats.PeriodLast30Days, stats.PeriodCurrentYear:
		day = now.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		f.Period, day, f.Start, f.End, f.Member, f.Source, f.ProjectID, f.Query)
}

// Get retrieves a cached summary
func (c *SummaryCache) Get(key string) (stats.Summary, bool) {
	return c.lru.Get(key)
}

// Set stores a summary
func (c *SummaryCache) Set(key string, s stats.Summary) {
	c.lru.Set(key, s)
}

// Invalidate drops all cached summaries. Called after every mutation.
func (c *SummaryCache) Invalidate() {
	c.lru.Clear()
}

// CleanExpired removes expired entries
func (c *SummaryCache) CleanExpired() int {
	return c.lru.CleanExpired()
}

// Size returns the number of cached summaries
func (c *SummaryCache) Size() int {
	return c.lru.Size()
}
