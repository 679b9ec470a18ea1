package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
)

func newTestProfile(t *testing.T) *Profile {
	t.Helper()
	p, err := NewProfile("Amina", "etudiante")
	assert.NoError(t, err)
	return p
}

func TestRuleSet_FirstSteps(t *testing.T) {
	rs := DefaultRuleSet()
	profile := newTestProfile(t)

	assert.Empty(t, rs.Evaluate(profile, nil))

	profile.MarkCompleted("lesson-1")
	earned := rs.Evaluate(profile, nil)
	assert.Len(t, earned, 1)
	assert.Equal(t, "first-steps", earned[0].ID)
}

func TestRuleSet_DedicatedLearnerAtExactly100XP(t *testing.T) {
	rs := DefaultRuleSet()
	profile := newTestProfile(t)

	assert.NoError(t, profile.AddXP(99))
	assert.Empty(t, rs.Evaluate(profile, nil))

	assert.NoError(t, profile.AddXP(1))
	earned := rs.Evaluate(profile, nil)
	assert.Len(t, earned, 1)
	assert.Equal(t, "dedicated-learner", earned[0].ID)
}

func TestRuleSet_EmptyModuleNeverAwards(t *testing.T) {
	rs := DefaultRuleSet()
	profile := newTestProfile(t)

	// Empty catalog: no module badge may fire even though "all" of the
	// module's zero lessons are completed.
	earned := rs.Evaluate(profile, nil)
	for _, b := range earned {
		assert.NotEqual(t, KindModuleCompleted, b.Kind)
	}
}

func TestRuleSet_ModuleCompleted(t *testing.T) {
	rs := DefaultRuleSet()
	profile := newTestProfile(t)

	lessons := []catalog.Lesson{
		{LessonID: "b1", ModuleID: "bureautique", Title: "Word"},
		{LessonID: "b2", ModuleID: "bureautique", Title: "Excel"},
		{LessonID: "p1", ModuleID: "programmation", Title: "Python"},
	}

	profile.MarkCompleted("b1")
	earnedIDs := idsOf(rs.Evaluate(profile, lessons))
	assert.NotContains(t, earnedIDs, "bureautique-expert")

	profile.MarkCompleted("b2")
	earnedIDs = idsOf(rs.Evaluate(profile, lessons))
	assert.Contains(t, earnedIDs, "bureautique-expert")
	assert.NotContains(t, earnedIDs, "programmer")
}

func TestRuleSet_QuizMasterCountsLatestAttemptPerLesson(t *testing.T) {
	rs := DefaultRuleSet()
	profile := newTestProfile(t)

	// Three passes on the same lesson count once.
	for i := 1; i <= 3; i++ {
		profile.RecordAttempt(QuizAttempt{LessonID: "l1", Passed: true, AttemptNumber: i})
	}
	assert.NotContains(t, idsOf(rs.Evaluate(profile, nil)), "quiz-master")

	// A pass superseded by a fail does not count.
	profile.RecordAttempt(QuizAttempt{LessonID: "l2", Passed: true, AttemptNumber: 1})
	profile.RecordAttempt(QuizAttempt{LessonID: "l2", Passed: false, AttemptNumber: 2})
	assert.NotContains(t, idsOf(rs.Evaluate(profile, nil)), "quiz-master")

	profile.RecordAttempt(QuizAttempt{LessonID: "l2", Passed: true, AttemptNumber: 3})
	profile.RecordAttempt(QuizAttempt{LessonID: "l3", Passed: true, AttemptNumber: 1})
	assert.Contains(t, idsOf(rs.Evaluate(profile, nil)), "quiz-master")
}

func TestRuleSet_AlreadyEarnedBadgesAreSkipped(t *testing.T) {
	rs := DefaultRuleSet()
	profile := newTestProfile(t)

	profile.MarkCompleted("lesson-1")
	earned := rs.Evaluate(profile, nil)
	assert.Len(t, earned, 1)

	profile.AwardBadge(earned[0].ID)
	assert.Empty(t, rs.Evaluate(profile, nil))
}

func TestRuleSet_DeclarationOrder(t *testing.T) {
	rs := DefaultRuleSet()
	profile := newTestProfile(t)

	// Qualify for first-steps and dedicated-learner in one pass; order must
	// follow declaration order, not qualification order.
	assert.NoError(t, profile.AddXP(150))
	profile.MarkCompleted("lesson-1")

	earned := rs.Evaluate(profile, nil)
	assert.Equal(t, []string{"first-steps", "dedicated-learner"}, idsOf(earned))
}

func idsOf(badges []Badge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}
