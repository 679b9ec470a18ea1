package learner

import (
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// LessonCompletedEvent is emitted when a learner completes a lesson for the
// first time.
type LessonCompletedEvent struct {
	shared.BaseEvent
	LessonID  string `json:"lesson_id"`
	XPAwarded int    `json:"xp_awarded"`
	NewTotal  int    `json:"new_total"`
}

// Payload implements shared.Event.
func (e LessonCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"lesson_id":  e.LessonID,
		"xp_awarded": e.XPAwarded,
		"new_total":  e.NewTotal,
	}
}

// NewLessonCompletedEvent creates a new LessonCompletedEvent.
func NewLessonCompletedEvent(learnerID, lessonID string, xpAwarded int, newTotal XP) LessonCompletedEvent {
	return LessonCompletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLessonCompleted, learnerID),
		LessonID:  lessonID,
		XPAwarded: xpAwarded,
		NewTotal:  int(newTotal),
	}
}

// BadgeEarnedEvent is emitted once per newly earned badge, in the rule set's
// declaration order.
type BadgeEarnedEvent struct {
	shared.BaseEvent
	BadgeID   string `json:"badge_id"`
	BadgeName string `json:"badge_name"`
	Icon      string `json:"icon"`
}

// Payload implements shared.Event.
func (e BadgeEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"badge_id":   e.BadgeID,
		"badge_name": e.BadgeName,
		"icon":       e.Icon,
	}
}

// NewBadgeEarnedEvent creates a new BadgeEarnedEvent.
func NewBadgeEarnedEvent(learnerID string, badge Badge) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventBadgeEarned, learnerID),
		BadgeID:   badge.ID,
		BadgeName: badge.Name,
		Icon:      badge.Icon,
	}
}

// LevelUpEvent is emitted when an XP gain crosses a ladder threshold.
type LevelUpEvent struct {
	shared.BaseEvent
	NewLevel  int    `json:"new_level"`
	LevelName string `json:"level_name"`
}

// Payload implements shared.Event.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"new_level":  e.NewLevel,
		"level_name": e.LevelName,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(learnerID string, level Level) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLevelUp, learnerID),
		NewLevel:  level.Number,
		LevelName: level.Name,
	}
}

// ProgressResetEvent is emitted after an explicit progress reset.
type ProgressResetEvent struct {
	shared.BaseEvent
}

// Payload implements shared.Event.
func (e ProgressResetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewProgressResetEvent creates a new ProgressResetEvent.
func NewProgressResetEvent(learnerID string) ProgressResetEvent {
	return ProgressResetEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventProgressReset, learnerID),
	}
}
