// Package progression implements the progression engine: XP accrual, level
// derivation, badge evaluation and quiz result recording for the learner
// profile it owns.
package progression

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/learner"
	"github.com/infoapp-hub/learning-engine/internal/domain/quiz"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// QuizPassXP is the fixed XP reward for passing a quiz, independent of the
// lesson's own reward.
const QuizPassXP = 20

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine owns one learner profile and applies all progression mutations to
// it. Mutations are invoked from serialized user-interaction events; the
// mutex only guards against accidental concurrent use, it is not a
// throughput mechanism.
//
// Failure semantics: the in-memory profile is mutated first, then persisted.
// A persistence failure is surfaced to the caller and the in-memory mutation
// is not rolled back; callers own the retry.
type Engine struct {
	mu sync.Mutex

	profileRepo learner.Repository
	attemptRepo learner.AttemptRepository
	catalogRepo catalog.Repository
	ladder      *learner.Ladder
	ruleSet     *learner.RuleSet
	events      shared.EventPublisher
	logger      *slog.Logger

	profile *learner.Profile
}

// Config contains the engine's collaborators.
type Config struct {
	ProfileRepo learner.Repository
	AttemptRepo learner.AttemptRepository
	CatalogRepo catalog.Repository

	// Ladder defaults to learner.DefaultLadder().
	Ladder *learner.Ladder

	// RuleSet defaults to learner.DefaultRuleSet().
	RuleSet *learner.RuleSet

	Events shared.EventPublisher

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewEngine creates a progression engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Ladder == nil {
		cfg.Ladder = learner.DefaultLadder()
	}
	if cfg.RuleSet == nil {
		cfg.RuleSet = learner.DefaultRuleSet()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		profileRepo: cfg.ProfileRepo,
		attemptRepo: cfg.AttemptRepo,
		catalogRepo: cfg.CatalogRepo,
		ladder:      cfg.Ladder,
		ruleSet:     cfg.RuleSet,
		events:      cfg.Events,
		logger:      cfg.Logger,
	}
}

// Load fetches the learner profile and its quiz history from storage.
// It must be called before any mutation. Returns shared.ErrNotFound when no
// profile exists yet (first launch).
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	profile, err := e.profileRepo.GetProfile(ctx)
	if err != nil {
		return err
	}
	attempts, err := e.attemptRepo.GetAttempts(ctx, profile.ID)
	if err != nil {
		return shared.WrapPersistence("progression", "Load", err)
	}
	profile.Attempts = attempts
	e.profile = profile

	e.logger.Info("learner profile loaded",
		"learner_id", profile.ID,
		"xp", int(profile.CurrentXP),
		"completed_lessons", len(profile.CompletedLessons),
		"badges", len(profile.Badges),
	)
	return nil
}

// Onboard creates and persists a fresh profile at first launch.
func (e *Engine) Onboard(ctx context.Context, displayName, avatar string) (*learner.Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	profile, err := learner.NewProfile(displayName, avatar)
	if err != nil {
		return nil, err
	}
	if err := e.profileRepo.CreateProfile(ctx, profile); err != nil {
		return nil, shared.WrapPersistence("progression", "Onboard", err)
	}
	e.profile = profile

	e.logger.Info("learner onboarded", "learner_id", profile.ID, "name", displayName)
	return profile, nil
}

// Profile returns the owned profile. Nil until Load or Onboard succeeds.
func (e *Engine) Profile() *learner.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// CurrentLevel derives the learner's level from XP via the ladder.
func (e *Engine) CurrentLevel() learner.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ladder.LevelFor(e.profile.CurrentXP)
}

// ProgressWithinLevel returns the percentage toward the next level.
func (e *Engine) ProgressWithinLevel() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ladder.ProgressWithinLevel(e.profile.CurrentXP)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// CompleteLessonResult describes what a CompleteLesson call changed.
type CompleteLessonResult struct {
	// AlreadyCompleted is true when the call was an idempotent no-op.
	AlreadyCompleted bool

	// XPAwarded is the XP granted (0 on no-op).
	XPAwarded int

	// NewBadges lists badges earned by this completion, in rule order.
	NewBadges []learner.Badge

	// LeveledUp reports whether a ladder threshold was crossed, and to
	// which level.
	LeveledUp bool
	NewLevel  learner.Level
}

// CompleteLesson marks a lesson as completed and awards its XP. Idempotent:
// completing an already-completed lesson changes nothing and awards no
// duplicate XP.
func (e *Engine) CompleteLesson(ctx context.Context, lessonID string) (*CompleteLessonResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireProfile("CompleteLesson"); err != nil {
		return nil, err
	}
	if e.profile.HasCompleted(lessonID) {
		return &CompleteLessonResult{AlreadyCompleted: true}, nil
	}

	lesson, err := e.catalogRepo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, shared.WrapDomainError("progression", "CompleteLesson", shared.ErrInvalidInput,
			"unknown lesson", err)
	}

	reward := lesson.XP
	if reward <= 0 {
		reward = catalog.DefaultLessonXP
	}

	levelBefore := e.ladder.LevelFor(e.profile.CurrentXP)
	e.profile.MarkCompleted(lessonID)
	if err := e.profile.AddXP(learner.XP(reward)); err != nil {
		return nil, err
	}
	levelAfter := e.ladder.LevelFor(e.profile.CurrentXP)

	if err := e.profileRepo.AddCompletion(ctx, e.profile.ID, lessonID); err != nil {
		return nil, shared.WrapPersistence("progression", "CompleteLesson", err)
	}
	if err := e.profileRepo.UpsertProfile(ctx, e.profile); err != nil {
		return nil, shared.WrapPersistence("progression", "CompleteLesson", err)
	}

	newBadges, err := e.evaluateBadges(ctx)
	if err != nil {
		return nil, err
	}

	result := &CompleteLessonResult{
		XPAwarded: reward,
		NewBadges: newBadges,
		LeveledUp: levelAfter.Number > levelBefore.Number,
		NewLevel:  levelAfter,
	}

	e.publish(learner.NewLessonCompletedEvent(e.profile.ID, lessonID, reward, e.profile.CurrentXP))
	for _, badge := range newBadges {
		e.publish(learner.NewBadgeEarnedEvent(e.profile.ID, badge))
	}
	if result.LeveledUp {
		e.publish(learner.NewLevelUpEvent(e.profile.ID, levelAfter))
	}

	e.logger.Info("lesson completed",
		"lesson_id", lessonID,
		"xp_awarded", reward,
		"new_total", int(e.profile.CurrentXP),
		"new_badges", len(newBadges),
	)
	return result, nil
}

// AddXP increases cumulative XP by a non-negative amount and emits a level-up
// event when a ladder threshold is crossed.
func (e *Engine) AddXP(ctx context.Context, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireProfile("AddXP"); err != nil {
		return err
	}
	leveledUp, newLevel, err := e.addXPLocked(ctx, amount)
	if err != nil {
		return err
	}
	if leveledUp {
		e.publish(learner.NewLevelUpEvent(e.profile.ID, newLevel))
	}
	return nil
}

// RecordQuizResult appends a finished quiz session's result to the history,
// awards the quiz-pass XP when passed and re-evaluates badges.
func (e *Engine) RecordQuizResult(ctx context.Context, result *quiz.Result) (*learner.QuizAttempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireProfile("RecordQuizResult"); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, shared.NewDomainError("progression", "RecordQuizResult", shared.ErrInvalidInput, "result is required")
	}

	attempt := learner.QuizAttempt{
		LearnerID:     e.profile.ID,
		LessonID:      result.LessonID,
		Score:         result.Score,
		Passed:        result.Passed,
		AttemptNumber: e.profile.NextAttemptNumber(result.LessonID),
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.attemptRepo.AppendAttempt(ctx, &attempt); err != nil {
		return nil, shared.WrapPersistence("progression", "RecordQuizResult", err)
	}
	e.profile.RecordAttempt(attempt)

	var (
		leveledUp bool
		newLevel  learner.Level
	)
	if result.Passed {
		var err error
		leveledUp, newLevel, err = e.addXPLocked(ctx, QuizPassXP)
		if err != nil {
			return nil, err
		}
	}

	newBadges, err := e.evaluateBadges(ctx)
	if err != nil {
		return nil, err
	}

	for _, badge := range newBadges {
		e.publish(learner.NewBadgeEarnedEvent(e.profile.ID, badge))
	}
	if leveledUp {
		e.publish(learner.NewLevelUpEvent(e.profile.ID, newLevel))
	}

	e.logger.Info("quiz result recorded",
		"lesson_id", result.LessonID,
		"score", result.Score,
		"passed", result.Passed,
		"attempt", attempt.AttemptNumber,
	)
	return &attempt, nil
}

// ResetProgress clears completions, quiz history, badges and XP while
// preserving identity, name and avatar. Irreversible.
func (e *Engine) ResetProgress(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireProfile("ResetProgress"); err != nil {
		return err
	}

	e.profile.Reset()
	if err := e.profileRepo.ClearProgress(ctx, e.profile.ID); err != nil {
		return shared.WrapPersistence("progression", "ResetProgress", err)
	}
	if err := e.profileRepo.UpsertProfile(ctx, e.profile); err != nil {
		return shared.WrapPersistence("progression", "ResetProgress", err)
	}

	e.publish(learner.NewProgressResetEvent(e.profile.ID))
	e.logger.Info("progress reset", "learner_id", e.profile.ID)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNAL
// ══════════════════════════════════════════════════════════════════════════════

// addXPLocked mutates XP in memory, persists, and reports a level crossing.
// Caller holds the mutex.
func (e *Engine) addXPLocked(ctx context.Context, amount int) (bool, learner.Level, error) {
	if amount < 0 {
		return false, learner.Level{}, shared.NewDomainError("progression", "AddXP",
			shared.ErrInvalidInput, "xp delta cannot be negative")
	}

	before := e.ladder.LevelFor(e.profile.CurrentXP)
	if err := e.profile.AddXP(learner.XP(amount)); err != nil {
		return false, learner.Level{}, err
	}
	after := e.ladder.LevelFor(e.profile.CurrentXP)

	if err := e.profileRepo.UpsertProfile(ctx, e.profile); err != nil {
		return false, learner.Level{}, shared.WrapPersistence("progression", "AddXP", err)
	}
	return after.Number > before.Number, after, nil
}

// evaluateBadges runs the rule set against the current catalog and persists
// any newly earned badges. Caller holds the mutex.
func (e *Engine) evaluateBadges(ctx context.Context) ([]learner.Badge, error) {
	lessons, err := e.catalogRepo.GetCatalog(ctx)
	if err != nil {
		return nil, shared.WrapPersistence("progression", "evaluateBadges", err)
	}

	newBadges := e.ruleSet.Evaluate(e.profile, lessons)
	for _, badge := range newBadges {
		e.profile.AwardBadge(badge.ID)
		if err := e.profileRepo.AddBadge(ctx, e.profile.ID, badge.ID); err != nil {
			return nil, shared.WrapPersistence("progression", "evaluateBadges", err)
		}
	}
	return newBadges, nil
}

func (e *Engine) requireProfile(op string) error {
	if e.profile == nil {
		return shared.NewDomainError("progression", op, shared.ErrInvalidState, "no learner profile loaded")
	}
	return nil
}

func (e *Engine) publish(event shared.Event) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(event); err != nil {
		e.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
