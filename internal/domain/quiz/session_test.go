package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

func threeQuestionQuiz() *catalog.QuizPayload {
	return &catalog.QuizPayload{
		Title: "Quiz: Les bases du tableur",
		Questions: []catalog.Question{
			{Prompt: "Que fait la touche F2 ?", Options: []string{"Édite la cellule", "Ferme le fichier", "Imprime"}, Correct: 0},
			{Prompt: "Quel signe débute une formule ?", Options: []string{"#", "=", "%"}, Correct: 1},
			{Prompt: "Que fait SOMME ?", Options: []string{"Trie", "Compte", "Additionne"}, Correct: 2},
		},
	}
}

func TestNewSession_ValidatesPayload(t *testing.T) {
	_, err := NewSession("tab-01", nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewSession("tab-01", &catalog.QuizPayload{Title: "vide"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)
	assert.Equal(t, StateAwaitingAnswer, s.State())
	assert.Equal(t, 0, s.QuestionIndex())
	assert.Equal(t, 3, s.QuestionCount())
}

func TestSession_AllCorrectScoresHundred(t *testing.T) {
	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)

	res, err := s.SubmitAnswer(0)
	assert.NoError(t, err)
	assert.Nil(t, res)

	res, err = s.SubmitAnswer(1)
	assert.NoError(t, err)
	assert.Nil(t, res)

	res, err = s.SubmitAnswer(2)
	assert.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, StateFinished, s.State())
}

func TestSession_OneOfThreeRoundsToThirtyThree(t *testing.T) {
	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)

	// Only the first answer is correct.
	_, err = s.SubmitAnswer(0)
	assert.NoError(t, err)
	_, err = s.SubmitAnswer(0)
	assert.NoError(t, err)
	res, err := s.SubmitAnswer(0)
	assert.NoError(t, err)

	assert.Equal(t, 33, res.Score)
	assert.False(t, res.Passed)
	assert.Equal(t, 1, res.Correct)
}

func TestSession_TwoOfThreeRoundsToSixtySeven(t *testing.T) {
	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)

	_, err = s.SubmitAnswer(0)
	assert.NoError(t, err)
	_, err = s.SubmitAnswer(1)
	assert.NoError(t, err)
	res, err := s.SubmitAnswer(0)
	assert.NoError(t, err)

	// 2/3 rounds up to 67, which still sits below the pass threshold.
	assert.Equal(t, 67, res.Score)
	assert.False(t, res.Passed)
}

func TestSession_OutOfRangeAnswerLeavesStateUntouched(t *testing.T) {
	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)

	_, err = s.SubmitAnswer(3)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = s.SubmitAnswer(-1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	assert.Equal(t, 0, s.QuestionIndex())
	assert.Equal(t, StateAwaitingAnswer, s.State())
}

func TestSession_SubmitAfterFinishedRejected(t *testing.T) {
	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)

	_, _ = s.SubmitAnswer(0)
	_, _ = s.SubmitAnswer(1)
	_, err = s.SubmitAnswer(2)
	assert.NoError(t, err)

	_, err = s.SubmitAnswer(0)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = s.Finish()
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestSession_FinishRequiresLastQuestionAnswered(t *testing.T) {
	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)

	_, err = s.Finish()
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, _ = s.SubmitAnswer(0)
	_, err = s.Finish()
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestSession_ResultOnlyAfterFinish(t *testing.T) {
	s, err := NewSession("tab-01", threeQuestionQuiz())
	assert.NoError(t, err)

	_, ok := s.Result()
	assert.False(t, ok)

	_, _ = s.SubmitAnswer(0)
	_, _ = s.SubmitAnswer(1)
	res, err := s.SubmitAnswer(2)
	assert.NoError(t, err)

	stored, ok := s.Result()
	assert.True(t, ok)
	assert.Equal(t, res, stored)
	assert.Equal(t, "tab-01", stored.LessonID)
}
