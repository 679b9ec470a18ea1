// Package quiz implements the quiz session state machine: stepwise question
// traversal, answer capture and scoring. A session is manipulated by exactly
// one caller at a time and is single-use.
package quiz

import (
	"fmt"
	"math"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// PassThreshold is the minimum score percentage to pass a quiz.
const PassThreshold = 70

// State identifies the session's lifecycle state.
type State int

const (
	// StateAwaitingAnswer means the session is waiting for an answer to
	// the current question.
	StateAwaitingAnswer State = iota

	// StateFinished means the session has been scored; all further
	// transitions are rejected.
	StateFinished
)

// Result is the outcome of a finished session, consumed by the progression
// engine.
type Result struct {
	LessonID string

	// Score is the rounded percentage of correct answers, 0-100.
	Score int

	// Passed is true when Score >= PassThreshold.
	Passed bool

	// Correct and Total are the raw counts behind Score.
	Correct int
	Total   int
}

// Session is a quiz in progress for one lesson.
type Session struct {
	lessonID string
	payload  *catalog.QuizPayload

	state    State
	current  int
	answers  map[int]int
	result   *Result
}

// NewSession constructs a session at the first question. The payload is
// validated so that invariants (option counts, correct indexes) hold for the
// whole traversal.
func NewSession(lessonID string, payload *catalog.QuizPayload) (*Session, error) {
	if payload == nil {
		return nil, shared.NewDomainError("quiz", "NewSession", shared.ErrInvalidInput, "quiz payload is required")
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		lessonID: lessonID,
		payload:  payload,
		state:    StateAwaitingAnswer,
		current:  0,
		answers:  make(map[int]int, len(payload.Questions)),
	}, nil
}

// LessonID returns the lesson this session belongs to.
func (s *Session) LessonID() string {
	return s.lessonID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// CurrentQuestion returns the question awaiting an answer. Calling it on a
// finished session returns the last question.
func (s *Session) CurrentQuestion() catalog.Question {
	idx := s.current
	if idx >= len(s.payload.Questions) {
		idx = len(s.payload.Questions) - 1
	}
	return s.payload.Questions[idx]
}

// QuestionIndex returns the zero-based index of the current question.
func (s *Session) QuestionIndex() int {
	return s.current
}

// QuestionCount returns the number of questions in the quiz.
func (s *Session) QuestionCount() int {
	return len(s.payload.Questions)
}

// SubmitAnswer records the answer for the current question and advances, or
// finalizes when the last question was answered. An out-of-range option index
// is rejected without any state change. Answers are mutable until the session
// finishes: re-answering an index overwrites the prior answer.
func (s *Session) SubmitAnswer(optionIndex int) (*Result, error) {
	if s.state == StateFinished {
		return nil, shared.NewDomainError("quiz", "SubmitAnswer", shared.ErrInvalidState, "session already finished")
	}

	question := s.payload.Questions[s.current]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return nil, shared.NewDomainError("quiz", "SubmitAnswer", shared.ErrInvalidInput,
			fmt.Sprintf("option index %d out of range for question %d", optionIndex, s.current))
	}

	s.answers[s.current] = optionIndex

	if s.current == len(s.payload.Questions)-1 {
		return s.finalize(), nil
	}
	s.current++
	return nil, nil
}

// Finish scores the session explicitly. It is allowed on the last question
// when an answer for it has already been recorded, instead of requiring a
// further SubmitAnswer call.
func (s *Session) Finish() (*Result, error) {
	if s.state == StateFinished {
		return nil, shared.NewDomainError("quiz", "Finish", shared.ErrInvalidState, "session already finished")
	}
	if s.current != len(s.payload.Questions)-1 {
		return nil, shared.NewDomainError("quiz", "Finish", shared.ErrInvalidState, "not on the last question")
	}
	if _, answered := s.answers[s.current]; !answered {
		return nil, shared.NewDomainError("quiz", "Finish", shared.ErrInvalidState, "last question has no recorded answer")
	}
	return s.finalize(), nil
}

// Result returns the scored result once the session is finished.
func (s *Session) Result() (*Result, bool) {
	if s.state != StateFinished {
		return nil, false
	}
	return s.result, true
}

// finalize computes correctness per question and transitions to Finished.
func (s *Session) finalize() *Result {
	correct := 0
	for i, question := range s.payload.Questions {
		if answer, ok := s.answers[i]; ok && answer == question.Correct {
			correct++
		}
	}

	total := len(s.payload.Questions)
	score := int(math.Round(100 * float64(correct) / float64(total)))

	s.state = StateFinished
	s.result = &Result{
		LessonID: s.lessonID,
		Score:    score,
		Passed:   score >= PassThreshold,
		Correct:  correct,
		Total:    total,
	}
	return s.result
}
