package stats

import "time"

type UserStats struct {
	HabitCount       int `json:"habit_count"`
	CompletedToday   int `json:"completed_today"`
	TotalCompletions int `json:"total_completions"`
	CurrentStreak    int `json:"current_streak"`
	LongestStreak    int `json:"longest_streak"`
}

type CalendarDay struct {
	Date        time.Time `json:"date"`
	Completions int       `json:"completions"`
	IsToday     bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
