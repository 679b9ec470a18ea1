package catalog

import (
	"context"
)

// Repository defines persistence operations for the lesson catalog.
// Writes are single parameterized statements; the underlying store is
// expected to serialize individual statements, so no cross-operation locking
// is required here.
type Repository interface {
	// GetCatalog returns every lesson in the catalog.
	GetCatalog(ctx context.Context) ([]Lesson, error)

	// GetLesson returns a lesson by id, or shared.ErrNotFound.
	GetLesson(ctx context.Context, lessonID string) (*Lesson, error)

	// UpsertLesson inserts the lesson or overwrites all fields of an
	// existing row with the same lesson id (last-write-wins).
	UpsertLesson(ctx context.Context, lesson *Lesson) error

	// CountLessons returns the total number of lessons.
	CountLessons(ctx context.Context) (int, error)

	// GetStats returns catalog statistics for the presentation layer.
	GetStats(ctx context.Context) (*Stats, error)
}

// Cache defines an optional read-side cache for the catalog. Implementations
// are best-effort: a cache failure must never fail the calling operation.
type Cache interface {
	// SetCatalog stores a catalog snapshot.
	SetCatalog(ctx context.Context, lessons []Lesson) error

	// GetCatalog returns the cached snapshot, or an error on miss.
	GetCatalog(ctx context.Context) ([]Lesson, error)

	// SetLastOutcome stores the most recent scrape outcome.
	SetLastOutcome(ctx context.Context, outcome *ScrapeOutcome) error

	// GetLastOutcome returns the most recent scrape outcome, or an error
	// on miss.
	GetLastOutcome(ctx context.Context) (*ScrapeOutcome, error)

	// SetStats stores the catalog statistics.
	SetStats(ctx context.Context, stats *Stats) error

	// GetStats returns the cached statistics, or an error on miss.
	GetStats(ctx context.Context) (*Stats, error)
}
