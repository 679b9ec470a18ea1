package redis

import (
	"context"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG CACHE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CatalogCache implements catalog.Cache on top of Redis. The pipeline writes
// through after every successful run; readers fall back to PostgreSQL on a
// miss.
type CatalogCache struct {
	cache *Cache
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(cache *Cache) *CatalogCache {
	return &CatalogCache{cache: cache}
}

// SetCatalog stores a catalog snapshot.
func (c *CatalogCache) SetCatalog(ctx context.Context, lessons []catalog.Lesson) error {
	return c.cache.Set(ctx, KeyCatalogSnapshot, lessons, TTLCatalogSnapshot)
}

// GetCatalog returns the cached snapshot, or ErrCacheMiss.
func (c *CatalogCache) GetCatalog(ctx context.Context) ([]catalog.Lesson, error) {
	var lessons []catalog.Lesson
	if err := c.cache.Get(ctx, KeyCatalogSnapshot, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// SetLastOutcome stores the most recent scrape outcome.
func (c *CatalogCache) SetLastOutcome(ctx context.Context, outcome *catalog.ScrapeOutcome) error {
	return c.cache.Set(ctx, KeyLastScrapeOutcome, outcome, TTLLastOutcome)
}

// GetLastOutcome returns the most recent scrape outcome, or ErrCacheMiss.
func (c *CatalogCache) GetLastOutcome(ctx context.Context) (*catalog.ScrapeOutcome, error) {
	var outcome catalog.ScrapeOutcome
	if err := c.cache.Get(ctx, KeyLastScrapeOutcome, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// SetStats stores the aggregated catalog statistics.
func (c *CatalogCache) SetStats(ctx context.Context, stats *catalog.Stats) error {
	return c.cache.Set(ctx, KeyCatalogStats, stats, TTLCatalogStats)
}

// GetStats returns the cached statistics, or ErrCacheMiss.
func (c *CatalogCache) GetStats(ctx context.Context) (*catalog.Stats, error) {
	var stats catalog.Stats
	if err := c.cache.Get(ctx, KeyCatalogStats, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
