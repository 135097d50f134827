package habit

type CreateHabitRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Category string `json:"category"`
}

type ToggleHabitResponse struct {
	Habit          *Habit `json:"habit"`
	XP             int    `json:"xp"`
	StreakAchieved int    `json:"streak_achieved"`
	Saved          bool   `json:"saved"`
	SaveError      string `json:"save_error,omitempty"`
}
