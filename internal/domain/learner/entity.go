// Package learner contains the learner progression domain: the learner
// profile, the XP level ladder, the badge rule set and quiz attempt history.
package learner

import (
	"time"

	"github.com/google/uuid"

	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// XP represents accumulated experience points. XP is non-negative and
// monotonically non-decreasing except on an explicit progress reset.
type XP int

// Diff returns the difference between two XP values.
func (xp XP) Diff(other XP) XP {
	return xp - other
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile is the aggregate owning all progression state for one learner.
// The derived level is never stored: it is always recomputed from XP via the
// ladder.
type Profile struct {
	// ID is the opaque learner identity, assigned once at creation.
	ID string

	// DisplayName is the learner's display name.
	DisplayName string

	// Avatar is the avatar tag (e.g., "etudiant", "developpeur").
	Avatar string

	// CurrentXP is the cumulative experience.
	CurrentXP XP

	// CompletedLessons is the set of completed lesson ids.
	CompletedLessons map[string]bool

	// Attempts is the ordered quiz attempt history (oldest first).
	Attempts []QuizAttempt

	// Badges is the set of earned badge ids. Badges are never revoked.
	Badges map[string]bool

	// Theme is the UI theme preference, orthogonal to progression.
	Theme string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile creates a profile for a learner at first launch.
func NewProfile(displayName, avatar string) (*Profile, error) {
	if displayName == "" {
		return nil, shared.NewDomainError("learner", "NewProfile", shared.ErrInvalidInput, "display name is required")
	}
	now := time.Now().UTC()
	return &Profile{
		ID:               uuid.NewString(),
		DisplayName:      displayName,
		Avatar:           avatar,
		CurrentXP:        0,
		CompletedLessons: make(map[string]bool),
		Attempts:         nil,
		Badges:           make(map[string]bool),
		Theme:            "light",
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// HasCompleted reports whether the lesson is already completed.
func (p *Profile) HasCompleted(lessonID string) bool {
	return p.CompletedLessons[lessonID]
}

// MarkCompleted adds a lesson to the completion set. Returns false if the
// lesson was already completed (the call is then a no-op).
func (p *Profile) MarkCompleted(lessonID string) bool {
	if p.CompletedLessons[lessonID] {
		return false
	}
	if p.CompletedLessons == nil {
		p.CompletedLessons = make(map[string]bool)
	}
	p.CompletedLessons[lessonID] = true
	p.UpdatedAt = time.Now().UTC()
	return true
}

// AddXP increases cumulative XP. Negative deltas are rejected: XP never
// decreases except through ResetProgress.
func (p *Profile) AddXP(amount XP) error {
	if amount < 0 {
		return shared.NewDomainError("learner", "AddXP", shared.ErrNegativeValue, "xp delta cannot be negative")
	}
	p.CurrentXP += amount
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// HasBadge reports whether the badge has been earned.
func (p *Profile) HasBadge(badgeID string) bool {
	return p.Badges[badgeID]
}

// AwardBadge adds a badge to the earned set. Idempotent.
func (p *Profile) AwardBadge(badgeID string) {
	if p.Badges == nil {
		p.Badges = make(map[string]bool)
	}
	p.Badges[badgeID] = true
	p.UpdatedAt = time.Now().UTC()
}

// RecordAttempt appends a quiz attempt to the history.
func (p *Profile) RecordAttempt(attempt QuizAttempt) {
	p.Attempts = append(p.Attempts, attempt)
	p.UpdatedAt = time.Now().UTC()
}

// NextAttemptNumber returns the 1-based attempt number for the next attempt
// on the given lesson.
func (p *Profile) NextAttemptNumber(lessonID string) int {
	count := 0
	for _, a := range p.Attempts {
		if a.LessonID == lessonID {
			count++
		}
	}
	return count + 1
}

// LatestAttemptPerLesson returns the most recent attempt for each lesson.
// Only the latest result per lesson counts toward the quiz-pass badges.
func (p *Profile) LatestAttemptPerLesson() map[string]QuizAttempt {
	latest := make(map[string]QuizAttempt, len(p.Attempts))
	for _, a := range p.Attempts {
		latest[a.LessonID] = a
	}
	return latest
}

// Reset clears completions, quiz history, badges and XP back to zero while
// preserving identity, name, avatar and settings. Irreversible.
func (p *Profile) Reset() {
	p.CurrentXP = 0
	p.CompletedLessons = make(map[string]bool)
	p.Attempts = nil
	p.Badges = make(map[string]bool)
	p.UpdatedAt = time.Now().UTC()
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ ATTEMPT
// ══════════════════════════════════════════════════════════════════════════════

// QuizAttempt is one recorded quiz result. Multiple attempts per lesson are
// retained for display; badge evaluation only looks at the most recent one.
type QuizAttempt struct {
	LearnerID string

	// LessonID references the lesson whose quiz was taken.
	LessonID string

	// Score is the rounded percentage, 0-100.
	Score int

	// Passed is true when Score >= the pass threshold.
	Passed bool

	// AttemptNumber is 1-based and monotonically increasing per lesson.
	AttemptNumber int

	CreatedAt time.Time
}
