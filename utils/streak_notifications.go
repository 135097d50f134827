package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"habitQuestAPI/internal/notification"
)

// NotificationCreator is the one method the triggers below need from the
// notification service.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// CelebrateStreak fires the congratulatory notification after a completion
// that grew a streak past one. Fire-and-forget: failures are logged only.
func CelebrateStreak(notifier NotificationCreator, userID uuid.UUID, habitName string, streak int) {
	go func() {
		bgCtx := context.Background()

		req := &notification.CreateNotificationRequest{
			UserID:  userID,
			Type:    notification.TypeStreakAchieved,
			Kind:    notification.KindInfo,
			Title:   fmt.Sprintf("%d day streak!", streak),
			Message: fmt.Sprintf("You've completed \"%s\" %d days in a row. Keep it going!", habitName, streak),
			Data: map[string]any{
				"habit_name": habitName,
				"streak":     streak,
			},
		}

		if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
			log.Printf("Failed to create streak notification for user %s: %v", userID, err)
		}
	}()
}

// AnnouncePlanReady tells the user their generated plan is waiting, with the
// suggestion count in the payload so clients can badge it.
func AnnouncePlanReady(notifier NotificationCreator, userID uuid.UUID, habitCount int) {
	go func() {
		bgCtx := context.Background()

		req := &notification.CreateNotificationRequest{
			UserID:  userID,
			Type:    notification.TypePlanReady,
			Kind:    notification.KindInfo,
			Title:   "Your plan is ready",
			Message: fmt.Sprintf("We put together %d habit suggestions for your goals.", habitCount),
			Data: map[string]any{
				"habit_count": habitCount,
			},
		}

		if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
			log.Printf("Failed to create plan-ready notification for user %s: %v", userID, err)
		}
	}()
}

// ReportSaveFailure surfaces a failed profile save. The computed state was
// already returned to the client, so this is informational only.
func ReportSaveFailure(notifier NotificationCreator, userID uuid.UUID, habitName string) {
	go func() {
		bgCtx := context.Background()

		req := &notification.CreateNotificationRequest{
			UserID:  userID,
			Type:    notification.TypeSaveFailed,
			Kind:    notification.KindError,
			Title:   "Progress not saved",
			Message: fmt.Sprintf("We couldn't save your progress on \"%s\". It will be retried on your next action.", habitName),
			Data: map[string]any{
				"habit_name": habitName,
			},
		}

		if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
			log.Printf("Failed to create save-failure notification for user %s: %v", userID, err)
		}
	}()
}
