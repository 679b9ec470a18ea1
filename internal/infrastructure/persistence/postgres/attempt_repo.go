// Package postgres implements the PostgreSQL persistence layer for the
// learning engine.
package postgres

import (
	"context"
	"fmt"

	"github.com/infoapp-hub/learning-engine/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AttemptRepository implements learner.AttemptRepository for PostgreSQL.
// Attempt history is append-only; rows are never updated or deleted outside
// of a full progress reset.
type AttemptRepository struct {
	conn *Connection
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(conn *Connection) *AttemptRepository {
	return &AttemptRepository{conn: conn}
}

// AppendAttempt appends a quiz attempt to the history.
func (r *AttemptRepository) AppendAttempt(ctx context.Context, attempt *learner.QuizAttempt) error {
	query := `
		INSERT INTO quiz_attempts (learner_id, lesson_id, score, passed, attempt_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		attempt.LearnerID,
		attempt.LessonID,
		attempt.Score,
		attempt.Passed,
		attempt.AttemptNumber,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append quiz attempt: %w", err)
	}

	return nil
}

// GetAttempts returns the full attempt history for the learner, oldest first.
func (r *AttemptRepository) GetAttempts(ctx context.Context, learnerID string) ([]learner.QuizAttempt, error) {
	query := `
		SELECT learner_id, lesson_id, score, passed, attempt_number, created_at
		FROM quiz_attempts
		WHERE learner_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []learner.QuizAttempt
	for rows.Next() {
		var a learner.QuizAttempt
		if err := rows.Scan(
			&a.LearnerID,
			&a.LessonID,
			&a.Score,
			&a.Passed,
			&a.AttemptNumber,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}
