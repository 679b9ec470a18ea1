package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

func TestNewProfile_RequiresDisplayName(t *testing.T) {
	_, err := NewProfile("", "etudiant")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	p, err := NewProfile("Karim", "developpeur")
	assert.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, XP(0), p.CurrentXP)
	assert.Equal(t, "light", p.Theme)
}

func TestProfile_MarkCompletedIsIdempotent(t *testing.T) {
	p := newTestProfile(t)

	assert.True(t, p.MarkCompleted("l1"))
	assert.False(t, p.MarkCompleted("l1"))
	assert.Len(t, p.CompletedLessons, 1)
}

func TestProfile_AddXPRejectsNegative(t *testing.T) {
	p := newTestProfile(t)

	assert.NoError(t, p.AddXP(30))
	err := p.AddXP(-5)
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
	assert.Equal(t, XP(30), p.CurrentXP)
}

func TestProfile_NextAttemptNumber(t *testing.T) {
	p := newTestProfile(t)

	assert.Equal(t, 1, p.NextAttemptNumber("l1"))
	p.RecordAttempt(QuizAttempt{LessonID: "l1", AttemptNumber: 1})
	p.RecordAttempt(QuizAttempt{LessonID: "l1", AttemptNumber: 2})
	p.RecordAttempt(QuizAttempt{LessonID: "l2", AttemptNumber: 1})
	assert.Equal(t, 3, p.NextAttemptNumber("l1"))
	assert.Equal(t, 2, p.NextAttemptNumber("l2"))
}

func TestProfile_ResetPreservesIdentity(t *testing.T) {
	p := newTestProfile(t)
	id := p.ID

	assert.NoError(t, p.AddXP(200))
	p.MarkCompleted("l1")
	p.AwardBadge("first-steps")
	p.RecordAttempt(QuizAttempt{LessonID: "l1", Passed: true, AttemptNumber: 1})

	p.Reset()

	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Amina", p.DisplayName)
	assert.Equal(t, "etudiante", p.Avatar)
	assert.Equal(t, XP(0), p.CurrentXP)
	assert.Empty(t, p.CompletedLessons)
	assert.Empty(t, p.Badges)
	assert.Empty(t, p.Attempts)
}
