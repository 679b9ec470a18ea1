package quizflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/infoapp-hub/learning-engine/internal/application/progression"
	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/learner"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

type memoryStore struct {
	profile  *learner.Profile
	attempts []learner.QuizAttempt
	lessons  map[string]catalog.Lesson
}

func (s *memoryStore) GetProfile(ctx context.Context) (*learner.Profile, error) {
	if s.profile == nil {
		return nil, shared.ErrNotFound
	}
	return s.profile, nil
}

func (s *memoryStore) CreateProfile(ctx context.Context, profile *learner.Profile) error {
	s.profile = profile
	return nil
}

func (s *memoryStore) UpsertProfile(ctx context.Context, profile *learner.Profile) error {
	s.profile = profile
	return nil
}

func (s *memoryStore) AddCompletion(ctx context.Context, learnerID, lessonID string) error {
	return nil
}

func (s *memoryStore) AddBadge(ctx context.Context, learnerID, badgeID string) error {
	return nil
}

func (s *memoryStore) ClearProgress(ctx context.Context, learnerID string) error {
	s.attempts = nil
	return nil
}

func (s *memoryStore) AppendAttempt(ctx context.Context, attempt *learner.QuizAttempt) error {
	s.attempts = append(s.attempts, *attempt)
	return nil
}

func (s *memoryStore) GetAttempts(ctx context.Context, learnerID string) ([]learner.QuizAttempt, error) {
	return s.attempts, nil
}

func (s *memoryStore) GetCatalog(ctx context.Context) ([]catalog.Lesson, error) {
	out := make([]catalog.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		out = append(out, l)
	}
	return out, nil
}

func (s *memoryStore) GetLesson(ctx context.Context, lessonID string) (*catalog.Lesson, error) {
	l, ok := s.lessons[lessonID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &l, nil
}

func (s *memoryStore) UpsertLesson(ctx context.Context, lesson *catalog.Lesson) error {
	s.lessons[lesson.LessonID] = *lesson
	return nil
}

func (s *memoryStore) CountLessons(ctx context.Context) (int, error) {
	return len(s.lessons), nil
}

func (s *memoryStore) GetStats(ctx context.Context) (*catalog.Stats, error) {
	return &catalog.Stats{TotalLessons: len(s.lessons)}, nil
}

func newTestService(t *testing.T) (*Service, *progression.Engine, *memoryStore) {
	t.Helper()

	now := time.Now().UTC()
	store := &memoryStore{lessons: map[string]catalog.Lesson{
		"bur-01": {
			LessonID: "bur-01", ModuleID: "bureautique", Title: "Découvrir le tableur",
			XP: 10, HasQuiz: true, ScrapedAt: now,
			Quiz: &catalog.QuizPayload{
				Title: "Quiz tableur",
				Questions: []catalog.Question{
					{Prompt: "Quel signe débute une formule ?", Options: []string{"#", "="}, Correct: 1},
					{Prompt: "Que fait SOMME ?", Options: []string{"Trie", "Additionne"}, Correct: 1},
				},
			},
		},
		"bur-02": {
			LessonID: "bur-02", ModuleID: "bureautique", Title: "Mise en page",
			XP: 10, HasQuiz: false, ScrapedAt: now,
		},
	}}

	engine := progression.NewEngine(progression.Config{
		ProfileRepo: store,
		AttemptRepo: store,
		CatalogRepo: store,
	})
	_, err := engine.Onboard(context.Background(), "Karim", "developpeur")
	assert.NoError(t, err)

	return NewService(engine, store, nil), engine, store
}

func TestService_StartSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	session, err := svc.StartSession(context.Background(), "bur-01")
	assert.NoError(t, err)
	assert.Equal(t, 2, session.QuestionCount())
	assert.Same(t, session, svc.ActiveSession())
}

func TestService_StartSessionRejectsUnknownLesson(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartSession(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Nil(t, svc.ActiveSession())
}

func TestService_StartSessionRejectsLessonWithoutQuiz(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartSession(context.Background(), "bur-02")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_StartSessionRejectsWhileActive(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartSession(context.Background(), "bur-01")
	assert.NoError(t, err)

	_, err = svc.StartSession(context.Background(), "bur-01")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestService_SubmitAnswerWithoutSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SubmitAnswer(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.FinishSession(context.Background())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestService_FullFlowRecordsResultAndClearsSession(t *testing.T) {
	svc, engine, store := newTestService(t)

	_, err := svc.StartSession(context.Background(), "bur-01")
	assert.NoError(t, err)

	outcome, err := svc.SubmitAnswer(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, outcome)

	outcome, err = svc.SubmitAnswer(context.Background(), 1)
	assert.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Equal(t, 100, outcome.Result.Score)
	assert.True(t, outcome.Result.Passed)
	assert.Equal(t, 1, outcome.Attempt.AttemptNumber)

	// Session is single-use: finishing clears it and the pass XP landed.
	assert.Nil(t, svc.ActiveSession())
	assert.Equal(t, learner.XP(progression.QuizPassXP), engine.Profile().CurrentXP)
	assert.Len(t, store.attempts, 1)
}

func TestService_AbandonSessionDiscardsWithoutRecording(t *testing.T) {
	svc, engine, store := newTestService(t)

	_, err := svc.StartSession(context.Background(), "bur-01")
	assert.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), 0)
	assert.NoError(t, err)

	svc.AbandonSession()

	assert.Nil(t, svc.ActiveSession())
	assert.Empty(t, store.attempts)
	assert.Equal(t, learner.XP(0), engine.Profile().CurrentXP)

	// A new session can start after abandoning.
	_, err = svc.StartSession(context.Background(), "bur-01")
	assert.NoError(t, err)
}
