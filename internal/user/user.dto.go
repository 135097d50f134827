package user

import "habitQuestAPI/internal/habit"

type CreateUserRequest struct {
	ClerkID  string `json:"clerkId" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type UpdateGoalsRequest struct {
	Goals string `json:"goals"`
}

type ProfileResponse struct {
	User   *User          `json:"user"`
	Rank   string         `json:"rank"`
	Habits []*habit.Habit `json:"habits"`
}
