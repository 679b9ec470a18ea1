// Package commands is the command surface of the learning engine: the single
// handle the presentation layer drives. It bundles learner progression, quiz
// flow, content acquisition and background job control.
package commands

import (
	"context"
	"log/slog"

	"github.com/infoapp-hub/learning-engine/internal/application/acquisition"
	"github.com/infoapp-hub/learning-engine/internal/application/progression"
	"github.com/infoapp-hub/learning-engine/internal/application/quizflow"
	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/learner"
	"github.com/infoapp-hub/learning-engine/internal/domain/quiz"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
	"github.com/infoapp-hub/learning-engine/internal/infrastructure/scheduler"
)

// Config carries the command surface's dependencies.
type Config struct {
	Engine   *progression.Engine
	Quizzes  *quizflow.Service
	Pipeline *acquisition.Pipeline

	// Jobs is optional; when nil the job-control commands report
	// scheduling as disabled.
	Jobs *scheduler.Scheduler

	Logger *slog.Logger
}

// Commands exposes every operation the presentation layer may invoke.
type Commands struct {
	engine   *progression.Engine
	quizzes  *quizflow.Service
	pipeline *acquisition.Pipeline
	jobs     *scheduler.Scheduler
	logger   *slog.Logger
}

// New creates the command surface from the given config.
func New(cfg Config) (*Commands, error) {
	if cfg.Engine == nil {
		return nil, shared.NewDomainError("commands", "New", shared.ErrInvalidConfig, "progression engine is required")
	}
	if cfg.Quizzes == nil {
		return nil, shared.NewDomainError("commands", "New", shared.ErrInvalidConfig, "quiz service is required")
	}
	if cfg.Pipeline == nil {
		return nil, shared.NewDomainError("commands", "New", shared.ErrInvalidConfig, "acquisition pipeline is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Commands{
		engine:   cfg.Engine,
		quizzes:  cfg.Quizzes,
		pipeline: cfg.Pipeline,
		jobs:     cfg.Jobs,
		logger:   cfg.Logger,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER PROGRESSION
// ══════════════════════════════════════════════════════════════════════════════

// Onboard creates the learner profile.
func (c *Commands) Onboard(ctx context.Context, displayName, avatar string) (*learner.Profile, error) {
	return c.engine.Onboard(ctx, displayName, avatar)
}

// Profile returns a snapshot of the learner profile, or nil before onboarding.
func (c *Commands) Profile() *learner.Profile {
	return c.engine.Profile()
}

// CurrentLevel returns the learner's level on the XP ladder.
func (c *Commands) CurrentLevel() learner.Level {
	return c.engine.CurrentLevel()
}

// CompleteLesson marks a lesson completed and awards its XP.
func (c *Commands) CompleteLesson(ctx context.Context, lessonID string) (*progression.CompleteLessonResult, error) {
	return c.engine.CompleteLesson(ctx, lessonID)
}

// ResetProgress wipes the learner's progress while keeping the profile.
func (c *Commands) ResetProgress(ctx context.Context) error {
	return c.engine.ResetProgress(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ FLOW
// ══════════════════════════════════════════════════════════════════════════════

// StartQuiz opens a quiz session for the given lesson.
func (c *Commands) StartQuiz(ctx context.Context, lessonID string) (*quiz.Session, error) {
	return c.quizzes.StartSession(ctx, lessonID)
}

// SubmitAnswer records an answer in the active session. The returned outcome
// is non-nil once the session finishes.
func (c *Commands) SubmitAnswer(ctx context.Context, optionIndex int) (*quizflow.Outcome, error) {
	return c.quizzes.SubmitAnswer(ctx, optionIndex)
}

// FinishQuiz force-finishes the active session.
func (c *Commands) FinishQuiz(ctx context.Context) (*quizflow.Outcome, error) {
	return c.quizzes.FinishSession(ctx)
}

// AbandonQuiz discards the active session without recording a result.
func (c *Commands) AbandonQuiz() {
	c.quizzes.AbandonSession()
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT ACQUISITION
// ══════════════════════════════════════════════════════════════════════════════

// TriggerScrape starts a manual scrape run. The returned channel delivers the
// outcome when the run settles.
func (c *Commands) TriggerScrape(ctx context.Context) (<-chan *catalog.ScrapeOutcome, error) {
	return c.pipeline.RunAsync(ctx, catalog.TriggerManual)
}

// ScrapeStatus reports the pipeline state and the last settled outcome.
func (c *Commands) ScrapeStatus() (acquisition.State, *catalog.ScrapeOutcome) {
	return c.pipeline.State(), c.pipeline.LastOutcome()
}

// ══════════════════════════════════════════════════════════════════════════════
// BACKGROUND JOBS
// ══════════════════════════════════════════════════════════════════════════════

// Jobs lists the registered background jobs. Empty when scheduling is
// disabled.
func (c *Commands) Jobs() []scheduler.JobInfo {
	if c.jobs == nil {
		return nil
	}
	return c.jobs.ListJobs()
}

// RunJob executes a background job immediately, ignoring its schedule.
func (c *Commands) RunJob(ctx context.Context, jobName string) (*scheduler.JobResult, error) {
	if c.jobs == nil {
		return nil, shared.NewDomainError("commands", "RunJob", shared.ErrInvalidState, "background job scheduling is disabled")
	}
	return c.jobs.RunNow(ctx, jobName)
}

// JobMetrics returns the scheduler's metrics snapshot, or false when
// scheduling or metrics collection is disabled.
func (c *Commands) JobMetrics() (scheduler.MetricsSnapshot, bool) {
	if c.jobs == nil {
		return scheduler.MetricsSnapshot{}, false
	}
	metrics := c.jobs.GetMetrics()
	if metrics == nil {
		return scheduler.MetricsSnapshot{}, false
	}
	return metrics.Snapshot(), true
}
