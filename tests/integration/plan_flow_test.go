package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitQuestAPI/handlers"
	"habitQuestAPI/internal/notification"
	"habitQuestAPI/internal/plan"
	"habitQuestAPI/internal/user"
	"habitQuestAPI/middleware"
	"habitQuestAPI/services"
	"habitQuestAPI/tests/helpers"
)

func TestGeneratePlanFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	t.Cleanup(func() { helpers.CleanupTestDB(t, pool) })

	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"habits\":[{\"name\":\"Walk 20 minutes\",\"category\":\"health\",\"reason\":\"low-effort daily movement\"}]}"}}]
		}`))
	}))
	defer server.Close()
	t.Setenv("OPENAI_BASE_URL", server.URL)

	notifService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool)
	planService := services.NewPlanService("test-key")
	planHandler := handlers.NewPlanHandler(planService, userService, notifService)

	clerkID := helpers.UniqueClerkID()
	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "testplan@example.com",
		Username: "testplan",
	})
	require.NoError(t, err)

	_, err = userService.UpdateGoals(ctx, clerkID, "get more exercise")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/plan", nil)
	reqCtx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	req = req.WithContext(reqCtx)
	rr := httptest.NewRecorder()

	planHandler.GeneratePlan(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var planResp plan.PlanResponse
	err = json.Unmarshal(rr.Body.Bytes(), &planResp)
	require.NoError(t, err)
	require.Len(t, planResp.Habits, 1)
	assert.Equal(t, "Walk 20 minutes", planResp.Habits[0].Name)
	assert.Equal(t, "health", planResp.Habits[0].Category)

	// The plan-ready notification is created asynchronously.
	require.Eventually(t, func() bool {
		list, err := notifService.GetNotifications(ctx, clerkID, 50)
		if err != nil {
			return false
		}
		for _, n := range list.Notifications {
			if n.Type == notification.TypePlanReady {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)
}
