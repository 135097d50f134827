package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitQuestAPI/internal/habit"
	"habitQuestAPI/middleware"
	"habitQuestAPI/utils"
)

type HabitService struct {
	db           *pgxpool.Pool
	notifService *NotificationService
}

func NewHabitService(db *pgxpool.Pool, notifService *NotificationService) *HabitService {
	return &HabitService{
		db:           db,
		notifService: notifService,
	}
}

func (s *HabitService) GetHabits(ctx context.Context, clerkID string) ([]*habit.Habit, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT id, user_id, name, category, completed, streak, last_completed_date, position, created_at, updated_at
	FROM habits
	WHERE user_id = $1
	ORDER BY position
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer rows.Close()

	var habits []*habit.Habit
	for rows.Next() {
		h := &habit.Habit{}
		err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.Name,
			&h.Category,
			&h.Completed,
			&h.Streak,
			&h.LastCompletedDate,
			&h.Position,
			&h.CreatedAt,
			&h.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}

	if habits == nil {
		habits = []*habit.Habit{}
	}

	return habits, nil
}

// AddHabit appends a habit to the end of the user's list. New habits start
// uncompleted with no streak and no completion date.
func (s *HabitService) AddHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if req.Name == "" {
		return nil, fmt.Errorf("habit name is required")
	}

	query := `
	INSERT INTO habits (id, user_id, name, category, completed, streak, last_completed_date, position, created_at, updated_at)
	VALUES ($1, $2, $3, $4, false, 0, NULL,
		(SELECT COALESCE(MAX(position), 0) + 1 FROM habits WHERE user_id = $2),
		NOW(), NOW())
	RETURNING id, user_id, name, category, completed, streak, last_completed_date, position, created_at, updated_at
	`

	h := &habit.Habit{}
	err = s.db.QueryRow(ctx, query, uuid.New(), userID, req.Name, req.Category).Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Category,
		&h.Completed,
		&h.Streak,
		&h.LastCompletedDate,
		&h.Position,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return h, nil
}

// DeleteHabit removes a habit permanently. The remaining habits keep their
// positions, so display order is preserved.
func (s *HabitService) DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	result, err := s.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit not found")
	}

	return nil
}

// ToggleHabit applies the completion engine to one habit and persists the
// result. The state transition always succeeds; a failed save is reported
// in the response (and as an error notification) rather than rolling the
// computed state back.
func (s *HabitService) ToggleHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*habit.ToggleHabitResponse, error) {
	var userID uuid.UUID
	var currentXP int
	err := s.db.QueryRow(ctx, `SELECT id, xp FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &currentXP)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT id, user_id, name, category, completed, streak, last_completed_date, position, created_at, updated_at
	FROM habits
	WHERE id = $1 AND user_id = $2
	`

	h := habit.Habit{}
	err = s.db.QueryRow(ctx, query, habitID, userID).Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Category,
		&h.Completed,
		&h.Streak,
		&h.LastCompletedDate,
		&h.Position,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit not found")
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	wasCompleted := h.Completed
	res := habit.ToggleCompletion(h, time.Now(), currentXP)

	if wasCompleted {
		middleware.HabitCompletions.WithLabelValues("uncomplete").Inc()
	} else {
		middleware.HabitCompletions.WithLabelValues("complete").Inc()
	}

	resp := &habit.ToggleHabitResponse{
		Habit:          &res.Habit,
		XP:             res.XP,
		StreakAchieved: res.StreakAchieved,
		Saved:          true,
	}

	// The celebration follows the computed streak, not the save outcome: the
	// client keeps the optimistic state either way.
	if res.StreakAchieved > 1 {
		middleware.StreakCelebrations.Inc()
		utils.CelebrateStreak(s.notifService, userID, h.Name, res.StreakAchieved)
	}

	if err := s.saveToggle(ctx, userID, &res.Habit, res.XP, wasCompleted); err != nil {
		log.Printf("ToggleHabit: failed to persist toggle for habit %s: %v", habitID, err)
		resp.Saved = false
		resp.SaveError = "failed to save progress"
		utils.ReportSaveFailure(s.notifService, userID, h.Name)
	}

	return resp, nil
}

// saveToggle writes the habit row, the XP total, and the completion log in
// one transaction, the store's single atomic write per toggle.
func (s *HabitService) saveToggle(ctx context.Context, userID uuid.UUID, h *habit.Habit, newXP int, wasCompleted bool) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	habitQuery := `
	UPDATE habits
	SET completed = $2, streak = $3, last_completed_date = $4, updated_at = NOW()
	WHERE id = $1
	`
	if _, err := tx.Exec(ctx, habitQuery, h.ID, h.Completed, h.Streak, h.LastCompletedDate); err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET xp = $2, updated_at = NOW() WHERE id = $1`, userID, newXP); err != nil {
		return fmt.Errorf("failed to update xp: %w", err)
	}

	today := habit.CivilDate(time.Now())
	if wasCompleted {
		// Same-day un-complete drops the log row for today.
		if _, err := tx.Exec(ctx,
			`DELETE FROM habit_completions WHERE habit_id = $1 AND date = $2`,
			h.ID, today,
		); err != nil {
			return fmt.Errorf("failed to remove completion log: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`INSERT INTO habit_completions (habit_id, user_id, date) VALUES ($1, $2, $3) ON CONFLICT (habit_id, date) DO NOTHING`,
			h.ID, userID, today,
		); err != nil {
			return fmt.Errorf("failed to log completion: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit toggle: %w", err)
	}

	return nil
}
