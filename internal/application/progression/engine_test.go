package progression

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/learner"
	"github.com/infoapp-hub/learning-engine/internal/domain/quiz"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeLearnerRepo struct {
	profile     *learner.Profile
	completions map[string]bool
	badges      map[string]bool
	attempts    []learner.QuizAttempt
}

func newFakeLearnerRepo() *fakeLearnerRepo {
	return &fakeLearnerRepo{
		completions: make(map[string]bool),
		badges:      make(map[string]bool),
	}
}

func (r *fakeLearnerRepo) GetProfile(ctx context.Context) (*learner.Profile, error) {
	if r.profile == nil {
		return nil, shared.ErrNotFound
	}
	return r.profile, nil
}

func (r *fakeLearnerRepo) CreateProfile(ctx context.Context, profile *learner.Profile) error {
	r.profile = profile
	return nil
}

func (r *fakeLearnerRepo) UpsertProfile(ctx context.Context, profile *learner.Profile) error {
	r.profile = profile
	return nil
}

func (r *fakeLearnerRepo) AddCompletion(ctx context.Context, learnerID, lessonID string) error {
	r.completions[lessonID] = true
	return nil
}

func (r *fakeLearnerRepo) AddBadge(ctx context.Context, learnerID, badgeID string) error {
	r.badges[badgeID] = true
	return nil
}

func (r *fakeLearnerRepo) ClearProgress(ctx context.Context, learnerID string) error {
	r.completions = make(map[string]bool)
	r.badges = make(map[string]bool)
	r.attempts = nil
	return nil
}

func (r *fakeLearnerRepo) AppendAttempt(ctx context.Context, attempt *learner.QuizAttempt) error {
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeLearnerRepo) GetAttempts(ctx context.Context, learnerID string) ([]learner.QuizAttempt, error) {
	return r.attempts, nil
}

type fakeCatalogRepo struct {
	lessons map[string]catalog.Lesson
}

func newFakeCatalogRepo(lessons ...catalog.Lesson) *fakeCatalogRepo {
	repo := &fakeCatalogRepo{lessons: make(map[string]catalog.Lesson)}
	for _, l := range lessons {
		repo.lessons[l.LessonID] = l
	}
	return repo
}

func (r *fakeCatalogRepo) GetCatalog(ctx context.Context) ([]catalog.Lesson, error) {
	out := make([]catalog.Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetLesson(ctx context.Context, lessonID string) (*catalog.Lesson, error) {
	l, ok := r.lessons[lessonID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &l, nil
}

func (r *fakeCatalogRepo) UpsertLesson(ctx context.Context, lesson *catalog.Lesson) error {
	r.lessons[lesson.LessonID] = *lesson
	return nil
}

func (r *fakeCatalogRepo) CountLessons(ctx context.Context) (int, error) {
	return len(r.lessons), nil
}

func (r *fakeCatalogRepo) GetStats(ctx context.Context) (*catalog.Stats, error) {
	return &catalog.Stats{TotalLessons: len(r.lessons)}, nil
}

type recordingPublisher struct {
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURES
// ══════════════════════════════════════════════════════════════════════════════

func testLessons() []catalog.Lesson {
	now := time.Now().UTC()
	return []catalog.Lesson{
		{LessonID: "bur-01", ModuleID: "bureautique", Title: "Découvrir le tableur", XP: 10, ScrapedAt: now},
		{LessonID: "bur-02", ModuleID: "bureautique", Title: "Formules de base", XP: 40, ScrapedAt: now},
		{LessonID: "pro-01", ModuleID: "programmation", Title: "Variables", XP: 90, ScrapedAt: now},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeLearnerRepo, *fakeCatalogRepo, *recordingPublisher) {
	t.Helper()

	learnerRepo := newFakeLearnerRepo()
	catalogRepo := newFakeCatalogRepo(testLessons()...)
	publisher := &recordingPublisher{}

	engine := NewEngine(Config{
		ProfileRepo: learnerRepo,
		AttemptRepo: learnerRepo,
		CatalogRepo: catalogRepo,
		Events:      publisher,
	})

	_, err := engine.Onboard(context.Background(), "Amina", "etudiante")
	assert.NoError(t, err)

	return engine, learnerRepo, catalogRepo, publisher
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestEngine_MutationsRequireProfile(t *testing.T) {
	engine := NewEngine(Config{
		ProfileRepo: newFakeLearnerRepo(),
		AttemptRepo: newFakeLearnerRepo(),
		CatalogRepo: newFakeCatalogRepo(),
	})

	_, err := engine.CompleteLesson(context.Background(), "bur-01")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	err = engine.AddXP(context.Background(), 10)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	err = engine.ResetProgress(context.Background())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestEngine_LoadReturnsNotFoundOnFirstLaunch(t *testing.T) {
	engine := NewEngine(Config{
		ProfileRepo: newFakeLearnerRepo(),
		AttemptRepo: newFakeLearnerRepo(),
		CatalogRepo: newFakeCatalogRepo(),
	})

	err := engine.Load(context.Background())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEngine_CompleteLessonAwardsXPAndFirstBadge(t *testing.T) {
	engine, repo, _, publisher := newTestEngine(t)

	result, err := engine.CompleteLesson(context.Background(), "bur-01")
	assert.NoError(t, err)
	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, 10, result.XPAwarded)

	profile := engine.Profile()
	assert.Equal(t, learner.XP(10), profile.CurrentXP)
	assert.True(t, profile.HasCompleted("bur-01"))
	assert.True(t, repo.completions["bur-01"])

	// The very first completion earns the first-steps badge, announced
	// after the completion itself.
	assert.Equal(t, []shared.EventType{
		shared.EventLessonCompleted,
		shared.EventBadgeEarned,
	}, publisher.types())
	assert.True(t, profile.HasBadge("first-steps"))
}

func TestEngine_CompleteLessonIsIdempotent(t *testing.T) {
	engine, _, _, publisher := newTestEngine(t)

	_, err := engine.CompleteLesson(context.Background(), "bur-01")
	assert.NoError(t, err)
	eventsAfterFirst := len(publisher.events)

	result, err := engine.CompleteLesson(context.Background(), "bur-01")
	assert.NoError(t, err)
	assert.True(t, result.AlreadyCompleted)
	assert.Equal(t, 0, result.XPAwarded)
	assert.Empty(t, result.NewBadges)

	assert.Equal(t, learner.XP(10), engine.Profile().CurrentXP)
	assert.Len(t, publisher.events, eventsAfterFirst)
}

func TestEngine_CompleteLessonUnknownLesson(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.CompleteLesson(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, learner.XP(0), engine.Profile().CurrentXP)
}

func TestEngine_CompleteLessonCrossesLevelThreshold(t *testing.T) {
	engine, _, _, publisher := newTestEngine(t)

	_, err := engine.CompleteLesson(context.Background(), "bur-01")
	assert.NoError(t, err)
	publisher.events = nil

	// 10 + 40 = 50 XP, the Novice threshold.
	result, err := engine.CompleteLesson(context.Background(), "bur-02")
	assert.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, "Novice", result.NewLevel.Name)

	// Completing bur-02 also finishes the bureautique module, so a badge
	// lands between the completion and the level-up.
	assert.Equal(t, []shared.EventType{
		shared.EventLessonCompleted,
		shared.EventBadgeEarned,
		shared.EventLevelUp,
	}, publisher.types())
}

func TestEngine_CompleteLessonModuleBadge(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.CompleteLesson(context.Background(), "bur-01")
	assert.NoError(t, err)
	assert.False(t, engine.Profile().HasBadge("bureautique-expert"))

	result, err := engine.CompleteLesson(context.Background(), "bur-02")
	assert.NoError(t, err)

	ids := make([]string, len(result.NewBadges))
	for i, b := range result.NewBadges {
		ids[i] = b.ID
	}
	assert.Contains(t, ids, "bureautique-expert")
	assert.True(t, engine.Profile().HasBadge("bureautique-expert"))
}

func TestEngine_AddXP(t *testing.T) {
	engine, _, _, publisher := newTestEngine(t)

	err := engine.AddXP(context.Background(), -5)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	assert.NoError(t, engine.AddXP(context.Background(), 30))
	assert.Empty(t, publisher.events)
	assert.Equal(t, "Débutant", engine.CurrentLevel().Name)

	assert.NoError(t, engine.AddXP(context.Background(), 30))
	assert.Equal(t, []shared.EventType{shared.EventLevelUp}, publisher.types())
	assert.Equal(t, "Novice", engine.CurrentLevel().Name)
}

func TestEngine_RecordQuizResultPassed(t *testing.T) {
	engine, repo, _, _ := newTestEngine(t)

	attempt, err := engine.RecordQuizResult(context.Background(), &quiz.Result{
		LessonID: "bur-01", Score: 100, Passed: true, Correct: 3, Total: 3,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.True(t, attempt.Passed)
	assert.WithinDuration(t, time.Now().UTC(), attempt.CreatedAt, 5*time.Second)

	assert.Equal(t, learner.XP(QuizPassXP), engine.Profile().CurrentXP)
	assert.Len(t, repo.attempts, 1)
	assert.False(t, repo.attempts[0].CreatedAt.IsZero())
}

func TestEngine_RecordQuizResultFailedAwardsNoXP(t *testing.T) {
	engine, _, _, publisher := newTestEngine(t)

	attempt, err := engine.RecordQuizResult(context.Background(), &quiz.Result{
		LessonID: "bur-01", Score: 33, Passed: false, Correct: 1, Total: 3,
	})
	assert.NoError(t, err)
	assert.False(t, attempt.Passed)
	assert.Equal(t, learner.XP(0), engine.Profile().CurrentXP)
	assert.Empty(t, publisher.events)
}

func TestEngine_RecordQuizResultAttemptNumbersIncrease(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	first, err := engine.RecordQuizResult(context.Background(), &quiz.Result{LessonID: "bur-01", Score: 33})
	assert.NoError(t, err)
	second, err := engine.RecordQuizResult(context.Background(), &quiz.Result{LessonID: "bur-01", Score: 67})
	assert.NoError(t, err)
	other, err := engine.RecordQuizResult(context.Background(), &quiz.Result{LessonID: "pro-01", Score: 50})
	assert.NoError(t, err)

	assert.Equal(t, 1, first.AttemptNumber)
	assert.Equal(t, 2, second.AttemptNumber)
	assert.Equal(t, 1, other.AttemptNumber)
}

func TestEngine_QuizMasterBadgeAfterThreePasses(t *testing.T) {
	engine, _, catalogRepo, _ := newTestEngine(t)

	// Quizzes on three distinct lessons, all passed.
	now := time.Now().UTC()
	_ = catalogRepo.UpsertLesson(context.Background(), &catalog.Lesson{
		LessonID: "cyb-01", ModuleID: "cybersecurite", Title: "Mots de passe", XP: 10, ScrapedAt: now,
	})

	for _, id := range []string{"bur-01", "bur-02", "cyb-01"} {
		_, err := engine.RecordQuizResult(context.Background(), &quiz.Result{
			LessonID: id, Score: 100, Passed: true,
		})
		assert.NoError(t, err)
	}

	assert.True(t, engine.Profile().HasBadge("quiz-master"))
}

func TestEngine_ResetProgressPreservesIdentity(t *testing.T) {
	engine, repo, _, publisher := newTestEngine(t)

	_, err := engine.CompleteLesson(context.Background(), "bur-01")
	assert.NoError(t, err)
	id := engine.Profile().ID
	publisher.events = nil

	assert.NoError(t, engine.ResetProgress(context.Background()))

	profile := engine.Profile()
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, "Amina", profile.DisplayName)
	assert.Equal(t, learner.XP(0), profile.CurrentXP)
	assert.Empty(t, profile.CompletedLessons)
	assert.Empty(t, profile.Badges)
	assert.Empty(t, repo.completions)

	assert.Equal(t, []shared.EventType{shared.EventProgressReset}, publisher.types())
}
