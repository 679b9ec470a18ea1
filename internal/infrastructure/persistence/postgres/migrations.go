// Package postgres implements the PostgreSQL persistence layer for the
// learning engine.
package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_learners",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_catalog",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE LEARNERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create learner progression tables
-- Version: 001

-- The learner profile. The engine is effectively single-profile, but the
-- schema does not enforce that so multi-profile support stays open.
CREATE TABLE IF NOT EXISTS learners (
    id UUID PRIMARY KEY,
    display_name VARCHAR(100) NOT NULL,
    avatar VARCHAR(255) NOT NULL DEFAULT '',
    current_xp INTEGER NOT NULL DEFAULT 0,
    theme VARCHAR(20) NOT NULL DEFAULT 'light',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_xp CHECK (current_xp >= 0)
);

-- Completed lessons. The unique constraint is what makes lesson completion
-- idempotent at the storage level.
CREATE TABLE IF NOT EXISTS learner_completions (
    id SERIAL PRIMARY KEY,
    learner_id UUID NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
    lesson_id VARCHAR(100) NOT NULL,
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(learner_id, lesson_id)
);

CREATE INDEX IF NOT EXISTS idx_learner_completions_learner ON learner_completions(learner_id);

-- Earned badges. Awarding is idempotent per badge.
CREATE TABLE IF NOT EXISTS learner_badges (
    id SERIAL PRIMARY KEY,
    learner_id UUID NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
    badge_id VARCHAR(50) NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(learner_id, badge_id)
);

CREATE INDEX IF NOT EXISTS idx_learner_badges_learner ON learner_badges(learner_id);

-- Quiz attempt history, append-only. attempt_number is per (learner, lesson).
CREATE TABLE IF NOT EXISTS quiz_attempts (
    id SERIAL PRIMARY KEY,
    learner_id UUID NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
    lesson_id VARCHAR(100) NOT NULL,
    score INTEGER NOT NULL,
    passed BOOLEAN NOT NULL,
    attempt_number INTEGER NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_score CHECK (score >= 0 AND score <= 100),
    CONSTRAINT valid_attempt_number CHECK (attempt_number >= 1),
    UNIQUE(learner_id, lesson_id, attempt_number)
);

CREATE INDEX IF NOT EXISTS idx_quiz_attempts_learner ON quiz_attempts(learner_id);
CREATE INDEX IF NOT EXISTS idx_quiz_attempts_learner_lesson ON quiz_attempts(learner_id, lesson_id);

-- Updated_at trigger for learners
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_learners_updated_at ON learners;
CREATE TRIGGER update_learners_updated_at
    BEFORE UPDATE ON learners
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_learners_updated_at ON learners;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS quiz_attempts;
DROP TABLE IF EXISTS learner_badges;
DROP TABLE IF EXISTS learner_completions;
DROP TABLE IF EXISTS learners;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE CATALOG
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create lesson catalog
-- Version: 002

-- Lessons discovered by the acquisition pipeline. lesson_id is the merge key:
-- the pipeline upserts by it, so rediscovered lessons overwrite in place and
-- never duplicate.
CREATE TABLE IF NOT EXISTS lessons (
    lesson_id VARCHAR(100) PRIMARY KEY,
    module_id VARCHAR(100) NOT NULL,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    video_path VARCHAR(512) NOT NULL DEFAULT '',
    pdf_path VARCHAR(512) NOT NULL DEFAULT '',
    has_quiz BOOLEAN NOT NULL DEFAULT FALSE,
    xp INTEGER NOT NULL DEFAULT 10,
    quiz_data JSONB,
    scraped_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_lesson_xp CHECK (xp >= 0),
    CONSTRAINT quiz_data_presence CHECK (NOT has_quiz OR quiz_data IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_lessons_module ON lessons(module_id);
CREATE INDEX IF NOT EXISTS idx_lessons_scraped_at ON lessons(scraped_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS lessons;
`
