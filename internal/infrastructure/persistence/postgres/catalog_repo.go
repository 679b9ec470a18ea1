// Package postgres implements the PostgreSQL persistence layer for the
// learning engine.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CatalogRepository implements catalog.Repository for PostgreSQL. Quiz
// payloads are stored as JSONB alongside the lesson row so a lesson is always
// read and written as one unit.
type CatalogRepository struct {
	conn *Connection
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(conn *Connection) *CatalogRepository {
	return &CatalogRepository{conn: conn}
}

const lessonColumns = `lesson_id, module_id, title, description, video_path, pdf_path, has_quiz, xp, quiz_data, scraped_at`

// GetCatalog returns every lesson, ordered by module then lesson id so the
// presentation layer gets a stable ordering.
func (r *CatalogRepository) GetCatalog(ctx context.Context) ([]catalog.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons ORDER BY module_id ASC, lesson_id ASC`, lessonColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var lessons []catalog.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, *lesson)
	}

	return lessons, rows.Err()
}

// GetLesson returns a lesson by id, or shared.ErrNotFound.
func (r *CatalogRepository) GetLesson(ctx context.Context, lessonID string) (*catalog.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE lesson_id = $1`, lessonColumns)

	row := r.conn.QueryRow(ctx, query, lessonID)
	lesson, err := scanLesson(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetLesson", shared.ErrNotFound,
				fmt.Sprintf("lesson %q not found", lessonID))
		}
		return nil, err
	}

	return lesson, nil
}

// UpsertLesson inserts the lesson or overwrites all fields of an existing row
// with the same lesson id. Last write wins.
func (r *CatalogRepository) UpsertLesson(ctx context.Context, lesson *catalog.Lesson) error {
	query := `
		INSERT INTO lessons (lesson_id, module_id, title, description, video_path, pdf_path, has_quiz, xp, quiz_data, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (lesson_id) DO UPDATE SET
			module_id = EXCLUDED.module_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			video_path = EXCLUDED.video_path,
			pdf_path = EXCLUDED.pdf_path,
			has_quiz = EXCLUDED.has_quiz,
			xp = EXCLUDED.xp,
			quiz_data = EXCLUDED.quiz_data,
			scraped_at = EXCLUDED.scraped_at
	`

	var quizJSON []byte
	if lesson.Quiz != nil {
		var err error
		quizJSON, err = json.Marshal(lesson.Quiz)
		if err != nil {
			return fmt.Errorf("failed to marshal quiz payload: %w", err)
		}
	}

	_, err := r.conn.Exec(ctx, query,
		lesson.LessonID,
		lesson.ModuleID,
		lesson.Title,
		lesson.Description,
		lesson.VideoPath,
		lesson.PDFPath,
		lesson.HasQuiz,
		lesson.XP,
		quizJSON,
		lesson.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lesson: %w", err)
	}

	return nil
}

// CountLessons returns the total number of lessons.
func (r *CatalogRepository) CountLessons(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM lessons`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

// GetStats returns catalog statistics: totals, lessons discovered within the
// last 7 days, and a per-module breakdown.
func (r *CatalogRepository) GetStats(ctx context.Context) (*catalog.Stats, error) {
	stats := &catalog.Stats{}

	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE scraped_at > NOW() - INTERVAL '7 days')
		FROM lessons
	`).Scan(&stats.TotalLessons, &stats.RecentlyAdded)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog totals: %w", err)
	}

	rows, err := r.conn.Query(ctx, `
		SELECT module_id,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE has_quiz)
		FROM lessons
		GROUP BY module_id
		ORDER BY module_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query module stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m catalog.ModuleStats
		if err := rows.Scan(&m.ModuleID, &m.TotalLessons, &m.LessonsWithQuiz); err != nil {
			return nil, fmt.Errorf("failed to scan module stats row: %w", err)
		}
		stats.Modules = append(stats.Modules, m)
	}

	return stats, rows.Err()
}

// scanLesson scans one lesson row, decoding the quiz payload if present.
func scanLesson(row pgx.Row) (*catalog.Lesson, error) {
	var lesson catalog.Lesson
	var quizJSON []byte

	err := row.Scan(
		&lesson.LessonID,
		&lesson.ModuleID,
		&lesson.Title,
		&lesson.Description,
		&lesson.VideoPath,
		&lesson.PDFPath,
		&lesson.HasQuiz,
		&lesson.XP,
		&quizJSON,
		&lesson.ScrapedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(quizJSON) > 0 {
		var payload catalog.QuizPayload
		if err := json.Unmarshal(quizJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quiz payload for %s: %w", lesson.LessonID, err)
		}
		lesson.Quiz = &payload
	}

	return &lesson, nil
}
