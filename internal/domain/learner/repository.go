package learner

import (
	"context"
)

// Repository defines persistence operations for learner profiles.
// The engine treats the store as externally synchronized: writes are single
// parameterized statements.
type Repository interface {
	// GetProfile returns the learner profile, or shared.ErrNotFound when
	// no profile has been created yet (first launch).
	GetProfile(ctx context.Context) (*Profile, error)

	// CreateProfile persists a newly onboarded profile.
	CreateProfile(ctx context.Context, profile *Profile) error

	// UpsertProfile persists the profile's scalar state (name, avatar,
	// XP, theme).
	UpsertProfile(ctx context.Context, profile *Profile) error

	// AddCompletion records a completed lesson. Idempotent per lesson id.
	AddCompletion(ctx context.Context, learnerID, lessonID string) error

	// AddBadge records an earned badge. Idempotent per badge id.
	AddBadge(ctx context.Context, learnerID, badgeID string) error

	// ClearProgress removes completions, badges and quiz attempts and
	// zeroes XP for the learner, preserving identity and settings.
	ClearProgress(ctx context.Context, learnerID string) error
}

// AttemptRepository defines persistence operations for quiz attempts.
type AttemptRepository interface {
	// AppendAttempt appends a quiz attempt to the history.
	AppendAttempt(ctx context.Context, attempt *QuizAttempt) error

	// GetAttempts returns the full attempt history for the learner,
	// oldest first.
	GetAttempts(ctx context.Context, learnerID string) ([]QuizAttempt, error)
}
