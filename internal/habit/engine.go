package habit

import "time"

// ToggleResult carries the outcome of a single completion toggle.
// StreakAchieved is the post-completion streak value when a habit was
// marked done, and 0 when it was un-completed.
type ToggleResult struct {
	Habit          Habit
	XP             int
	StreakAchieved int
}

// ToggleCompletion computes the next habit state and XP total for one
// "toggle completion" action. It is a pure function: persistence and
// notifications are the caller's job.
//
// Completing a habit whose last completion was yesterday extends the
// streak; any gap (or a never-completed habit, or a last-completed date
// of today or later) resets it to 1. Un-completing decrements streak and
// XP, both floored at zero, and reconstructs the previous completion date
// heuristically: yesterday if the streak before the decrement was greater
// than 1, otherwise unset. No completion history is kept, so repeated
// toggle cycles on the same day are not a byte-exact undo.
func ToggleCompletion(h Habit, today time.Time, currentXP int) ToggleResult {
	today = CivilDate(today)
	yesterday := today.AddDate(0, 0, -1)

	if h.Completed {
		if h.Streak > 1 {
			h.LastCompletedDate = &yesterday
		} else {
			h.LastCompletedDate = nil
		}
		h.Streak = h.Streak - 1
		if h.Streak < 0 {
			h.Streak = 0
		}
		h.Completed = false

		newXP := currentXP - 1
		if newXP < 0 {
			newXP = 0
		}
		return ToggleResult{Habit: h, XP: newXP, StreakAchieved: 0}
	}

	if h.LastCompletedDate != nil && CivilDate(*h.LastCompletedDate).Equal(yesterday) {
		h.Streak = h.Streak + 1
	} else {
		h.Streak = 1
	}
	h.Completed = true
	h.LastCompletedDate = &today

	return ToggleResult{Habit: h, XP: currentXP + 1, StreakAchieved: h.Streak}
}

// CivilDate truncates a timestamp to calendar-day granularity in UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
