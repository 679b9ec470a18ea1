package learner

import (
	"fmt"

	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL LADDER
// ══════════════════════════════════════════════════════════════════════════════

// Level is one rung of the XP ladder.
type Level struct {
	// Number is the level number, strictly increasing along the ladder.
	Number int

	// Name is the display name.
	Name string

	// Threshold is the minimum cumulative XP to attain this level.
	Threshold XP

	// Color is the display color.
	Color string
}

// Ladder is an ordered set of XP thresholds mapping cumulative XP to a level.
// It is fixed configuration data, validated once at load.
type Ladder struct {
	levels []Level
}

// NewLadder validates the rungs and builds a ladder. Thresholds must be
// strictly increasing with level number and level 1 must start at 0.
func NewLadder(levels []Level) (*Ladder, error) {
	if len(levels) == 0 {
		return nil, shared.NewDomainError("learner", "NewLadder", shared.ErrInvalidConfig, "ladder has no levels")
	}
	if levels[0].Threshold != 0 {
		return nil, shared.NewDomainError("learner", "NewLadder", shared.ErrInvalidConfig, "first level must have threshold 0")
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Number <= levels[i-1].Number {
			return nil, shared.NewDomainError("learner", "NewLadder", shared.ErrInvalidConfig,
				fmt.Sprintf("level numbers not strictly increasing at index %d", i))
		}
		if levels[i].Threshold <= levels[i-1].Threshold {
			return nil, shared.NewDomainError("learner", "NewLadder", shared.ErrInvalidConfig,
				fmt.Sprintf("thresholds not strictly increasing at index %d", i))
		}
	}
	return &Ladder{levels: levels}, nil
}

// DefaultLadder returns the application's seven-level ladder.
func DefaultLadder() *Ladder {
	ladder, err := NewLadder([]Level{
		{Number: 1, Name: "Débutant", Threshold: 0, Color: "#94a3b8"},
		{Number: 2, Name: "Novice", Threshold: 50, Color: "#60a5fa"},
		{Number: 3, Name: "Apprenti", Threshold: 120, Color: "#34d399"},
		{Number: 4, Name: "Compétent", Threshold: 220, Color: "#fbbf24"},
		{Number: 5, Name: "Expérimenté", Threshold: 350, Color: "#f97316"},
		{Number: 6, Name: "Expert", Threshold: 500, Color: "#ef4444"},
		{Number: 7, Name: "Maître", Threshold: 700, Color: "#8b5cf6"},
	})
	if err != nil {
		// The built-in ladder is static data; a validation failure here is
		// a programming error.
		panic(err)
	}
	return ladder
}

// Levels returns the rungs in order.
func (l *Ladder) Levels() []Level {
	return l.levels
}

// LevelFor returns the highest level whose threshold is <= xp.
func (l *Ladder) LevelFor(xp XP) Level {
	current := l.levels[0]
	for _, level := range l.levels {
		if xp >= level.Threshold {
			current = level
		} else {
			break
		}
	}
	return current
}

// NextLevel returns the immediate successor of the given level, or false if
// it is the last rung.
func (l *Ladder) NextLevel(level Level) (Level, bool) {
	for i, rung := range l.levels {
		if rung.Number == level.Number {
			if i+1 < len(l.levels) {
				return l.levels[i+1], true
			}
			return Level{}, false
		}
	}
	return Level{}, false
}

// ProgressWithinLevel returns the percentage (0-100) of progress from the
// current level toward the next one, or 100 when the learner is on the last
// rung.
func (l *Ladder) ProgressWithinLevel(xp XP) int {
	current := l.LevelFor(xp)
	next, ok := l.NextLevel(current)
	if !ok {
		return 100
	}
	span := int(next.Threshold - current.Threshold)
	gained := int(xp - current.Threshold)
	pct := 100 * gained / span
	if pct > 100 {
		pct = 100
	}
	return pct
}
