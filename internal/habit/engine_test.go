package habit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestToggleCompletion_ContiguousCompletionGrowsStreak(t *testing.T) {
	last := date("2024-06-09")
	h := Habit{Streak: 2, Completed: false, LastCompletedDate: &last}
	today := date("2024-06-10")

	res := ToggleCompletion(h, today, 10)

	assert.Equal(t, 3, res.Habit.Streak)
	assert.True(t, res.Habit.Completed)
	require.NotNil(t, res.Habit.LastCompletedDate)
	assert.Equal(t, today, *res.Habit.LastCompletedDate)
	assert.Equal(t, 11, res.XP)
	assert.Equal(t, 3, res.StreakAchieved)
}

func TestToggleCompletion_GapResetsStreak(t *testing.T) {
	last := date("2024-06-07")
	h := Habit{Streak: 5, Completed: false, LastCompletedDate: &last}

	res := ToggleCompletion(h, date("2024-06-10"), 4)

	assert.Equal(t, 1, res.Habit.Streak)
	assert.Equal(t, 5, res.XP)
	assert.Equal(t, 1, res.StreakAchieved)
}

func TestToggleCompletion_NeverCompletedStartsStreakAtOne(t *testing.T) {
	h := Habit{Streak: 0, Completed: false, LastCompletedDate: nil}

	res := ToggleCompletion(h, date("2024-06-10"), 0)

	assert.Equal(t, 1, res.Habit.Streak)
	assert.True(t, res.Habit.Completed)
	assert.Equal(t, 1, res.XP)
	assert.Equal(t, 1, res.StreakAchieved)
}

func TestToggleCompletion_FutureLastCompletedTreatedAsBrokenStreak(t *testing.T) {
	last := date("2024-06-12")
	h := Habit{Streak: 7, Completed: false, LastCompletedDate: &last}

	res := ToggleCompletion(h, date("2024-06-10"), 20)

	assert.Equal(t, 1, res.Habit.Streak)
}

func TestToggleCompletion_SameDayLastCompletedResetsStreak(t *testing.T) {
	last := date("2024-06-10")
	h := Habit{Streak: 3, Completed: false, LastCompletedDate: &last}

	res := ToggleCompletion(h, date("2024-06-10"), 20)

	assert.Equal(t, 1, res.Habit.Streak)
}

func TestToggleCompletion_UncompleteDecrements(t *testing.T) {
	last := date("2024-06-10")
	h := Habit{Streak: 3, Completed: true, LastCompletedDate: &last}
	today := date("2024-06-10")

	res := ToggleCompletion(h, today, 5)

	assert.Equal(t, 2, res.Habit.Streak)
	assert.False(t, res.Habit.Completed)
	assert.Equal(t, 4, res.XP)
	assert.Equal(t, 0, res.StreakAchieved)

	// streak before decrement was > 1, so the prior completion day is
	// assumed to be yesterday
	require.NotNil(t, res.Habit.LastCompletedDate)
	assert.Equal(t, date("2024-06-09"), *res.Habit.LastCompletedDate)
}

func TestToggleCompletion_UncompleteSingleDayStreakClearsDate(t *testing.T) {
	last := date("2024-06-10")
	h := Habit{Streak: 1, Completed: true, LastCompletedDate: &last}

	res := ToggleCompletion(h, date("2024-06-10"), 1)

	assert.Equal(t, 0, res.Habit.Streak)
	assert.Nil(t, res.Habit.LastCompletedDate)
	assert.Equal(t, 0, res.XP)
}

func TestToggleCompletion_UncompleteAtZeroStreakFloors(t *testing.T) {
	last := date("2024-06-10")
	h := Habit{Streak: 0, Completed: true, LastCompletedDate: &last}

	res := ToggleCompletion(h, date("2024-06-10"), 0)

	assert.Equal(t, 0, res.Habit.Streak)
	assert.Equal(t, 0, res.XP)
	assert.Nil(t, res.Habit.LastCompletedDate)
}

func TestToggleCompletion_XPNeverNegativeAcrossSequences(t *testing.T) {
	h := Habit{}
	xp := 0
	today := date("2024-06-10")

	for i := 0; i < 50; i++ {
		res := ToggleCompletion(h, today, xp)
		h, xp = res.Habit, res.XP
		assert.GreaterOrEqual(t, xp, 0)
		assert.GreaterOrEqual(t, h.Streak, 0)
	}
}

func TestToggleCompletion_CelebrationOnlyAboveOne(t *testing.T) {
	yesterday := date("2024-06-09")
	today := date("2024-06-10")

	fresh := ToggleCompletion(Habit{}, today, 0)
	assert.Equal(t, 1, fresh.StreakAchieved)

	contiguous := ToggleCompletion(Habit{Streak: 1, LastCompletedDate: &yesterday}, today, 1)
	assert.Equal(t, 2, contiguous.StreakAchieved)

	uncompleted := ToggleCompletion(contiguous.Habit, today, contiguous.XP)
	assert.Equal(t, 0, uncompleted.StreakAchieved)
}

func TestToggleCompletion_IgnoresTimeOfDay(t *testing.T) {
	last := time.Date(2024, 6, 9, 23, 55, 0, 0, time.UTC)
	h := Habit{Streak: 1, Completed: false, LastCompletedDate: &last}
	today := time.Date(2024, 6, 10, 0, 5, 0, 0, time.UTC)

	res := ToggleCompletion(h, today, 0)

	assert.Equal(t, 2, res.Habit.Streak)
	assert.Equal(t, date("2024-06-10"), *res.Habit.LastCompletedDate)
}
