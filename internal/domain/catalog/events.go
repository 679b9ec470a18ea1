package catalog

import (
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// ScrapeStartedEvent is emitted when a scrape run begins.
type ScrapeStartedEvent struct {
	shared.BaseEvent
	Trigger ScrapeTrigger `json:"trigger"`
}

// Payload implements shared.Event.
func (e ScrapeStartedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"trigger": string(e.Trigger),
	}
}

// NewScrapeStartedEvent creates a new ScrapeStartedEvent.
func NewScrapeStartedEvent(trigger ScrapeTrigger) ScrapeStartedEvent {
	return ScrapeStartedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventScrapeStarted, "pipeline"),
		Trigger:   trigger,
	}
}

// ScrapeCompletedEvent is emitted when a scrape run finishes, whether it
// succeeded or failed. For a successful run it is always preceded by a
// CatalogUpdatedEvent for the same run.
type ScrapeCompletedEvent struct {
	shared.BaseEvent
	Outcome ScrapeOutcome `json:"outcome"`
}

// Payload implements shared.Event.
func (e ScrapeCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"success":           e.Outcome.Success,
		"integrated":        e.Outcome.Integrated,
		"modules_breakdown": e.Outcome.ModulesBreakdown,
		"error":             e.Outcome.Error,
		"trigger":           string(e.Outcome.Trigger),
	}
}

// NewScrapeCompletedEvent creates a new ScrapeCompletedEvent.
func NewScrapeCompletedEvent(outcome ScrapeOutcome) ScrapeCompletedEvent {
	return ScrapeCompletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventScrapeCompleted, "pipeline"),
		Outcome:   outcome,
	}
}

// CatalogUpdatedEvent carries the freshly re-read catalog after a successful
// merge so observers always see data consistent with the outcome event that
// follows.
type CatalogUpdatedEvent struct {
	shared.BaseEvent
	Catalog []Lesson `json:"catalog"`
}

// Payload implements shared.Event.
func (e CatalogUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"lesson_count": len(e.Catalog),
	}
}

// NewCatalogUpdatedEvent creates a new CatalogUpdatedEvent.
func NewCatalogUpdatedEvent(lessons []Lesson) CatalogUpdatedEvent {
	return CatalogUpdatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventCatalogUpdated, "pipeline"),
		Catalog:   lessons,
	}
}
