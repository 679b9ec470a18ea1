package learner

import (
	"github.com/infoapp-hub/learning-engine/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RULE SET
// ══════════════════════════════════════════════════════════════════════════════

// ConditionKind is the closed set of badge condition kinds.
type ConditionKind int

const (
	// KindLessonCount awards when the number of completed lessons reaches
	// the threshold.
	KindLessonCount ConditionKind = iota

	// KindQuizPassCount awards when the number of passed quizzes reaches
	// the threshold. Only the most recent result per lesson counts.
	KindQuizPassCount

	// KindModuleCompleted awards when every lesson of the named module is
	// completed. A module with zero lessons in the catalog never awards.
	KindModuleCompleted

	// KindXPThreshold awards when cumulative XP reaches the threshold.
	KindXPThreshold
)

// Badge is an immutable, declaratively-conditioned achievement.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string

	// Kind selects the condition; Threshold applies to the count/XP kinds
	// and ModuleID to KindModuleCompleted.
	Kind      ConditionKind
	Threshold int
	ModuleID  string
}

// RuleSet is the ordered collection of badge rules. Declaration order is
// stable and determines award ordering when multiple badges qualify in the
// same evaluation pass.
type RuleSet struct {
	badges []Badge
}

// NewRuleSet builds a rule set from badge declarations.
func NewRuleSet(badges []Badge) *RuleSet {
	return &RuleSet{badges: badges}
}

// DefaultRuleSet returns the application's built-in badges.
func DefaultRuleSet() *RuleSet {
	return NewRuleSet([]Badge{
		{ID: "first-steps", Name: "Premiers pas", Description: "Complétez votre première leçon", Icon: "🎯", Kind: KindLessonCount, Threshold: 1},
		{ID: "quiz-master", Name: "Maître des quiz", Description: "Réussissez 3 quiz", Icon: "🧠", Kind: KindQuizPassCount, Threshold: 3},
		{ID: "bureautique-expert", Name: "Expert Bureautique", Description: "Terminez tous les cours de bureautique", Icon: "📊", Kind: KindModuleCompleted, ModuleID: "bureautique"},
		{ID: "programmer", Name: "Programmeur", Description: "Terminez tous les cours de programmation", Icon: "💻", Kind: KindModuleCompleted, ModuleID: "programmation"},
		{ID: "cybersecurity-expert", Name: "Expert Cybersécurité", Description: "Terminez tous les cours de cybersécurité", Icon: "🔒", Kind: KindModuleCompleted, ModuleID: "cybersecurite"},
		{ID: "dedicated-learner", Name: "Apprenant assidu", Description: "Obtenez 100 XP", Icon: "⭐", Kind: KindXPThreshold, Threshold: 100},
		{ID: "knowledge-seeker", Name: "Chercheur de savoir", Description: "Complétez 10 leçons", Icon: "📚", Kind: KindLessonCount, Threshold: 10},
	})
}

// Badges returns the rules in declaration order.
func (rs *RuleSet) Badges() []Badge {
	return rs.badges
}

// Get returns a badge by id.
func (rs *RuleSet) Get(badgeID string) (Badge, bool) {
	for _, b := range rs.badges {
		if b.ID == badgeID {
			return b, true
		}
	}
	return Badge{}, false
}

// Evaluate returns the badges newly earned by the profile against the given
// catalog, in declaration order. Already-earned badges are skipped; badges
// are never revoked.
func (rs *RuleSet) Evaluate(profile *Profile, lessons []catalog.Lesson) []Badge {
	var earned []Badge
	for _, badge := range rs.badges {
		if profile.HasBadge(badge.ID) {
			continue
		}
		if rs.satisfied(badge, profile, lessons) {
			earned = append(earned, badge)
		}
	}
	return earned
}

// satisfied evaluates one badge condition against current state.
func (rs *RuleSet) satisfied(badge Badge, profile *Profile, lessons []catalog.Lesson) bool {
	switch badge.Kind {
	case KindLessonCount:
		return len(profile.CompletedLessons) >= badge.Threshold

	case KindQuizPassCount:
		passed := 0
		for _, attempt := range profile.LatestAttemptPerLesson() {
			if attempt.Passed {
				passed++
			}
		}
		return passed >= badge.Threshold

	case KindModuleCompleted:
		// An empty module never awards: before the first scrape the
		// catalog is empty and every module badge would fire otherwise.
		found := false
		for _, lesson := range lessons {
			if lesson.ModuleID != badge.ModuleID {
				continue
			}
			found = true
			if !profile.HasCompleted(lesson.LessonID) {
				return false
			}
		}
		return found

	case KindXPThreshold:
		return int(profile.CurrentXP) >= badge.Threshold
	}
	return false
}
