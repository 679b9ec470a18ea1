// Package catalog contains the lesson catalog domain: lessons discovered by
// the content acquisition pipeline, their optional quiz payloads, and the
// outcome of a scrape run.
package catalog

import (
	"fmt"
	"time"

	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// DefaultLessonXP is the XP reward awarded for completing a lesson that does
// not declare its own reward.
const DefaultLessonXP = 10

// ══════════════════════════════════════════════════════════════════════════════
// LESSON
// ══════════════════════════════════════════════════════════════════════════════

// Lesson is a single catalog entry. Lesson IDs are globally unique across
// modules and serve as the merge key for the acquisition pipeline's upsert.
// Lessons are created and refreshed only by the pipeline; the progression
// engine never mutates them.
type Lesson struct {
	// LessonID uniquely identifies the lesson across all modules.
	LessonID string

	// ModuleID groups lessons into a module (e.g., "bureautique").
	ModuleID string

	// Title is the display title.
	Title string

	// Description is an optional short description.
	Description string

	// VideoPath is the media reference for the lesson video.
	VideoPath string

	// PDFPath is the media reference for the lesson document, if any.
	PDFPath string

	// HasQuiz reports whether the lesson carries a quiz payload.
	HasQuiz bool

	// XP is the reward for completing the lesson (DefaultLessonXP if the
	// discovery source did not specify one).
	XP int

	// Quiz is the structured quiz payload, nil when HasQuiz is false.
	Quiz *QuizPayload

	// ScrapedAt records when the lesson was last (re)discovered.
	ScrapedAt time.Time
}

// Validate checks the lesson's invariants.
func (l *Lesson) Validate() error {
	if l.LessonID == "" {
		return shared.NewDomainError("catalog", "Validate", shared.ErrInvalidInput, "lesson id is required")
	}
	if l.ModuleID == "" {
		return shared.NewDomainError("catalog", "Validate", shared.ErrInvalidInput, "module id is required")
	}
	if l.Title == "" {
		return shared.NewDomainError("catalog", "Validate", shared.ErrInvalidInput, "title is required")
	}
	if l.XP < 0 {
		return shared.NewDomainError("catalog", "Validate", shared.ErrNegativeValue, "xp reward cannot be negative")
	}
	if l.HasQuiz {
		if l.Quiz == nil {
			return shared.NewDomainError("catalog", "Validate", shared.ErrInvalidInput, "quiz flag set without quiz payload")
		}
		if err := l.Quiz.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ PAYLOAD
// ══════════════════════════════════════════════════════════════════════════════

// QuizPayload is the structured quiz attached to a lesson.
type QuizPayload struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Question is a single multiple-choice question. Correct is the zero-based
// index of the right option.
type Question struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// Validate checks the payload's invariants: at least one question, every
// question with at least two options and an in-range correct index.
func (q *QuizPayload) Validate() error {
	if len(q.Questions) == 0 {
		return shared.NewDomainError("catalog", "Validate", shared.ErrInvalidInput, "quiz has no questions")
	}
	for i, question := range q.Questions {
		if len(question.Options) < 2 {
			return shared.NewDomainError("catalog", "Validate", shared.ErrInvalidInput,
				fmt.Sprintf("question %d has fewer than 2 options", i))
		}
		if question.Correct < 0 || question.Correct >= len(question.Options) {
			return shared.NewDomainError("catalog", "Validate", shared.ErrInvalidInput,
				fmt.Sprintf("question %d has out-of-range correct index %d", i, question.Correct))
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCRAPE OUTCOME
// ══════════════════════════════════════════════════════════════════════════════

// ScrapeTrigger identifies what started a scrape run.
type ScrapeTrigger string

const (
	TriggerBootstrap ScrapeTrigger = "bootstrap"
	TriggerScheduled ScrapeTrigger = "scheduled"
	TriggerManual    ScrapeTrigger = "manual"
)

// ScrapeOutcome is the transient result of one scrape run. It is broadcast on
// the event bus and optionally kept as "last result" in memory; it is never
// persisted as an entity.
type ScrapeOutcome struct {
	Success bool `json:"success"`

	// Integrated is the number of lessons merged into the catalog.
	Integrated int `json:"integrated"`

	// ModulesBreakdown maps module id to the number of lessons touched in
	// this run.
	ModulesBreakdown map[string]int `json:"modules_breakdown,omitempty"`

	// Error carries a human-readable message when Success is false.
	Error string `json:"error,omitempty"`

	// Trigger records what started the run.
	Trigger ScrapeTrigger `json:"trigger"`

	Timestamp time.Time `json:"timestamp"`
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// ModuleStats summarizes one module of the catalog.
type ModuleStats struct {
	ModuleID        string `json:"module_id"`
	TotalLessons    int    `json:"total_lessons"`
	LessonsWithQuiz int    `json:"lessons_with_quiz"`
}

// Stats summarizes the whole catalog for the presentation layer.
type Stats struct {
	TotalLessons  int           `json:"total_lessons"`
	RecentlyAdded int           `json:"recently_added"` // discovered within the last 7 days
	Modules       []ModuleStats `json:"modules"`
}
