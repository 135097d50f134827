package habit

import (
	"time"

	"github.com/google/uuid"
)

type Habit struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	Name              string     `json:"name" db:"name"`
	Category          string     `json:"category" db:"category"`
	Completed         bool       `json:"completed" db:"completed"`
	Streak            int        `json:"streak" db:"streak"`
	LastCompletedDate *time.Time `json:"last_completed_date" db:"last_completed_date"`
	Position          int        `json:"position" db:"position"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
