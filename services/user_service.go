package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitQuestAPI/internal/stats"
	"habitQuestAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, clerk_id, email, username, image_url, xp, goals, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.ImageURL,
		&u.XP,
		&u.Goals,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, image_url, xp, goals, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.ImageURL,
		&u.XP,
		&u.Goals,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetOrProvisionUser loads the profile for a Clerk user, creating an empty
// one if the webhook has not provisioned it yet. A missing record is "not
// yet provisioned", never a user-visible error.
func (s *UserService) GetOrProvisionUser(ctx context.Context, clerkID string) (*user.User, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err == nil {
		return u, nil
	}
	if err.Error() != "user not found" {
		return nil, err
	}

	return s.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Username: clerkID,
	})
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, username, email, imageURL string) error {
	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		email = COALESCE(NULLIF($3, ''), email),
		image_url = COALESCE(NULLIF($4, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	`

	_, err := s.db.Exec(ctx, query, clerkID, username, email, imageURL)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// UpdateGoals replaces the free-text goals and nothing else, mirroring the
// partial {goals} profile write.
func (s *UserService) UpdateGoals(ctx context.Context, clerkID string, goals string) (*user.User, error) {
	query := `
	UPDATE users
	SET goals = $2, updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, username, image_url, xp, goals, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID, goals).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.ImageURL,
		&u.XP,
		&u.Goals,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update goals: %w", err)
	}

	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	query := `DELETE FROM users WHERE clerk_id = $1`

	result, err := s.db.Exec(ctx, query, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

func (s *UserService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT
		COALESCE(COUNT(h.id), 0) as habit_count,
		COALESCE(COUNT(h.id) FILTER (WHERE h.completed = true), 0) as completed_today,
		COALESCE(MAX(h.streak), 0) as current_streak
	FROM habits h
	WHERE h.user_id = $1
	`

	st := &stats.UserStats{}
	err = s.db.QueryRow(ctx, query, userID).Scan(
		&st.HabitCount,
		&st.CompletedToday,
		&st.CurrentStreak,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COALESCE(COUNT(*), 0) FROM habit_completions WHERE user_id = $1`,
		userID,
	).Scan(&st.TotalCompletions)
	if err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}

	// Longest streak over the completion log: gaps-and-islands per habit.
	longestQuery := `
	SELECT COALESCE(MAX(streak_length), 0)
	FROM (
		SELECT COUNT(*) as streak_length
		FROM (
			SELECT
				habit_id,
				date,
				date - (ROW_NUMBER() OVER (PARTITION BY habit_id ORDER BY date))::int AS grp
			FROM habit_completions
			WHERE user_id = $1
		) sub
		GROUP BY habit_id, grp
	) streaks
	`

	err = s.db.QueryRow(ctx, longestQuery, userID).Scan(&st.LongestStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to compute longest streak: %w", err)
	}

	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}

	return st, nil
}

func (s *UserService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*stats.CalendarResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	query := `
	SELECT date, COUNT(*)
	FROM habit_completions
	WHERE user_id = $1
		AND date >= $2
		AND date <= $3
	GROUP BY date
	ORDER BY date
	`

	rows, err := s.db.Query(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	dayMap := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		dayMap[date.Format("2006-01-02")] = count
	}

	var days []*stats.CalendarDay
	today := time.Now().UTC().Format("2006-01-02")

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		days = append(days, &stats.CalendarDay{
			Date:        d,
			Completions: dayMap[dateStr],
			IsToday:     dateStr == today,
		})
	}

	return &stats.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}
