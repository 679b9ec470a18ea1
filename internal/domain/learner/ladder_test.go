package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLadder_Thresholds(t *testing.T) {
	ladder := DefaultLadder()
	levels := ladder.Levels()

	assert.Len(t, levels, 7)
	assert.Equal(t, XP(0), levels[0].Threshold)
	assert.Equal(t, "Débutant", levels[0].Name)
	assert.Equal(t, "Maître", levels[6].Name)
	assert.Equal(t, XP(700), levels[6].Threshold)

	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i].Threshold, levels[i-1].Threshold)
		assert.Greater(t, levels[i].Number, levels[i-1].Number)
	}
}

func TestLadder_LevelFor(t *testing.T) {
	ladder := DefaultLadder()

	tests := []struct {
		xp   XP
		want string
	}{
		{0, "Débutant"},
		{49, "Débutant"},
		{50, "Novice"},
		{119, "Novice"},
		{120, "Apprenti"},
		{220, "Compétent"},
		{350, "Expérimenté"},
		{500, "Expert"},
		{699, "Expert"},
		{700, "Maître"},
		{10000, "Maître"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ladder.LevelFor(tt.xp).Name, "xp=%d", tt.xp)
	}
}

func TestLadder_NextLevel(t *testing.T) {
	ladder := DefaultLadder()

	first := ladder.LevelFor(0)
	next, ok := ladder.NextLevel(first)
	assert.True(t, ok)
	assert.Equal(t, "Novice", next.Name)

	last := ladder.LevelFor(700)
	_, ok = ladder.NextLevel(last)
	assert.False(t, ok)
}

func TestLadder_ProgressWithinLevel(t *testing.T) {
	ladder := DefaultLadder()

	// Halfway from Débutant (0) to Novice (50).
	assert.Equal(t, 50, ladder.ProgressWithinLevel(25))

	// At a threshold the progress restarts at zero.
	assert.Equal(t, 0, ladder.ProgressWithinLevel(50))

	// The last rung always reports 100.
	assert.Equal(t, 100, ladder.ProgressWithinLevel(700))
	assert.Equal(t, 100, ladder.ProgressWithinLevel(9999))
}

func TestNewLadder_Validation(t *testing.T) {
	_, err := NewLadder(nil)
	assert.Error(t, err)

	// First threshold must be zero.
	_, err = NewLadder([]Level{{Number: 1, Name: "A", Threshold: 10}})
	assert.Error(t, err)

	// Thresholds must strictly increase.
	_, err = NewLadder([]Level{
		{Number: 1, Name: "A", Threshold: 0},
		{Number: 2, Name: "B", Threshold: 0},
	})
	assert.Error(t, err)

	// Level numbers must strictly increase.
	_, err = NewLadder([]Level{
		{Number: 1, Name: "A", Threshold: 0},
		{Number: 1, Name: "B", Threshold: 50},
	})
	assert.Error(t, err)
}
