// Package postgres implements the PostgreSQL persistence layer for the
// learning engine.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/infoapp-hub/learning-engine/internal/domain/learner"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository for PostgreSQL. The engine
// keeps a single profile; GetProfile loads the oldest row, which is the one
// Onboard created.
type LearnerRepository struct {
	conn *Connection
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(conn *Connection) *LearnerRepository {
	return &LearnerRepository{conn: conn}
}

// GetProfile returns the learner profile with completions, badges and quiz
// attempts hydrated, or shared.ErrNotFound on first launch.
func (r *LearnerRepository) GetProfile(ctx context.Context) (*learner.Profile, error) {
	query := `
		SELECT id, display_name, avatar, current_xp, theme, created_at, updated_at
		FROM learners
		ORDER BY created_at ASC
		LIMIT 1
	`

	var p learner.Profile
	var xp int
	err := r.conn.QueryRow(ctx, query).Scan(
		&p.ID,
		&p.DisplayName,
		&p.Avatar,
		&xp,
		&p.Theme,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetProfile", shared.ErrNotFound, "no learner profile exists")
		}
		return nil, fmt.Errorf("failed to query learner profile: %w", err)
	}
	p.CurrentXP = learner.XP(xp)

	if p.CompletedLessons, err = r.loadCompletions(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Badges, err = r.loadBadges(ctx, p.ID); err != nil {
		return nil, err
	}

	return &p, nil
}

// CreateProfile persists a newly onboarded profile.
func (r *LearnerRepository) CreateProfile(ctx context.Context, profile *learner.Profile) error {
	query := `
		INSERT INTO learners (id, display_name, avatar, current_xp, theme, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		profile.ID,
		profile.DisplayName,
		profile.Avatar,
		int(profile.CurrentXP),
		profile.Theme,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("postgres", "CreateProfile", shared.ErrAlreadyExists, "learner profile already exists")
		}
		return fmt.Errorf("failed to create learner profile: %w", err)
	}

	return nil
}

// UpsertProfile persists the profile's scalar state.
func (r *LearnerRepository) UpsertProfile(ctx context.Context, profile *learner.Profile) error {
	query := `
		INSERT INTO learners (id, display_name, avatar, current_xp, theme, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar = EXCLUDED.avatar,
			current_xp = EXCLUDED.current_xp,
			theme = EXCLUDED.theme
	`

	_, err := r.conn.Exec(ctx, query,
		profile.ID,
		profile.DisplayName,
		profile.Avatar,
		int(profile.CurrentXP),
		profile.Theme,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert learner profile: %w", err)
	}

	return nil
}

// AddCompletion records a completed lesson. The ON CONFLICT clause makes
// repeated calls for the same lesson harmless.
func (r *LearnerRepository) AddCompletion(ctx context.Context, learnerID, lessonID string) error {
	query := `
		INSERT INTO learner_completions (learner_id, lesson_id)
		VALUES ($1, $2)
		ON CONFLICT (learner_id, lesson_id) DO NOTHING
	`

	if _, err := r.conn.Exec(ctx, query, learnerID, lessonID); err != nil {
		return fmt.Errorf("failed to record lesson completion: %w", err)
	}

	return nil
}

// AddBadge records an earned badge. Idempotent per badge id.
func (r *LearnerRepository) AddBadge(ctx context.Context, learnerID, badgeID string) error {
	query := `
		INSERT INTO learner_badges (learner_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (learner_id, badge_id) DO NOTHING
	`

	if _, err := r.conn.Exec(ctx, query, learnerID, badgeID); err != nil {
		return fmt.Errorf("failed to record earned badge: %w", err)
	}

	return nil
}

// ClearProgress removes completions, badges and quiz attempts and zeroes XP,
// all in one transaction so a reset never half-applies.
func (r *LearnerRepository) ClearProgress(ctx context.Context, learnerID string) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		statements := []string{
			`DELETE FROM learner_completions WHERE learner_id = $1`,
			`DELETE FROM learner_badges WHERE learner_id = $1`,
			`DELETE FROM quiz_attempts WHERE learner_id = $1`,
			`UPDATE learners SET current_xp = 0 WHERE id = $1`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt, learnerID); err != nil {
				return fmt.Errorf("failed to clear progress: %w", err)
			}
		}
		return nil
	})
}

// loadCompletions returns the completion set for a learner.
func (r *LearnerRepository) loadCompletions(ctx context.Context, learnerID string) (map[string]bool, error) {
	rows, err := r.conn.Query(ctx, `SELECT lesson_id FROM learner_completions WHERE learner_id = $1`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	completions := make(map[string]bool)
	for rows.Next() {
		var lessonID string
		if err := rows.Scan(&lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan completion row: %w", err)
		}
		completions[lessonID] = true
	}

	return completions, rows.Err()
}

// loadBadges returns the earned badge set for a learner.
func (r *LearnerRepository) loadBadges(ctx context.Context, learnerID string) (map[string]bool, error) {
	rows, err := r.conn.Query(ctx, `SELECT badge_id FROM learner_badges WHERE learner_id = $1`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	badges := make(map[string]bool)
	for rows.Next() {
		var badgeID string
		if err := rows.Scan(&badgeID); err != nil {
			return nil, fmt.Errorf("failed to scan badge row: %w", err)
		}
		badges[badgeID] = true
	}

	return badges, rows.Err()
}
