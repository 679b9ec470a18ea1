// Package quizflow coordinates quiz sessions for the presentation layer:
// starting a session from a catalog lesson, forwarding answers, and feeding
// the finished result into the progression engine.
package quizflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/infoapp-hub/learning-engine/internal/application/progression"
	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/learner"
	"github.com/infoapp-hub/learning-engine/internal/domain/quiz"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// Service owns at most one active quiz session. Sessions are single-use and
// manipulated from serialized user-interaction events.
type Service struct {
	mu sync.Mutex

	engine      *progression.Engine
	catalogRepo catalog.Repository
	logger      *slog.Logger

	session *quiz.Session
}

// NewService creates a quiz flow service.
func NewService(engine *progression.Engine, catalogRepo catalog.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:      engine,
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// Outcome is returned to the presentation layer when a session finishes.
type Outcome struct {
	Result  quiz.Result
	Attempt learner.QuizAttempt
}

// StartSession begins a quiz for the given lesson. Starting while another
// session is active is rejected; the caller must finish or abandon it first.
func (s *Service) StartSession(ctx context.Context, lessonID string) (*quiz.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return nil, shared.NewDomainError("quizflow", "StartSession", shared.ErrInvalidState,
			"another quiz session is active")
	}

	lesson, err := s.catalogRepo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, shared.WrapDomainError("quizflow", "StartSession", shared.ErrInvalidInput,
			"unknown lesson", err)
	}
	if !lesson.HasQuiz || lesson.Quiz == nil {
		return nil, shared.NewDomainError("quizflow", "StartSession", shared.ErrInvalidInput,
			"lesson has no quiz")
	}

	session, err := quiz.NewSession(lesson.LessonID, lesson.Quiz)
	if err != nil {
		return nil, err
	}
	s.session = session

	s.logger.Debug("quiz session started", "lesson_id", lessonID, "questions", session.QuestionCount())
	return session, nil
}

// SubmitAnswer forwards an answer to the active session. When the answer
// finalizes the quiz, the result is recorded through the progression engine
// and the finished outcome is returned; otherwise the returned outcome is
// nil and the session advances to the next question.
func (s *Service) SubmitAnswer(ctx context.Context, optionIndex int) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, shared.NewDomainError("quizflow", "SubmitAnswer", shared.ErrInvalidState,
			"no active quiz session")
	}

	result, err := s.session.SubmitAnswer(optionIndex)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return s.recordLocked(ctx, result)
}

// FinishSession scores the active session explicitly (allowed on the last
// question when its answer is already recorded) and records the result.
func (s *Service) FinishSession(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, shared.NewDomainError("quizflow", "FinishSession", shared.ErrInvalidState,
			"no active quiz session")
	}

	result, err := s.session.Finish()
	if err != nil {
		return nil, err
	}
	return s.recordLocked(ctx, result)
}

// AbandonSession discards the active session without recording a result.
func (s *Service) AbandonSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// ActiveSession returns the in-flight session, or nil.
func (s *Service) ActiveSession() *quiz.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// recordLocked persists the finished result and clears the session. The
// session is cleared even when recording fails: it is single-use and already
// finished. Caller holds the mutex.
func (s *Service) recordLocked(ctx context.Context, result *quiz.Result) (*Outcome, error) {
	s.session = nil

	attempt, err := s.engine.RecordQuizResult(ctx, result)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: *result, Attempt: *attempt}, nil
}
