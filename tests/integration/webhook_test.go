package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitQuestAPI/handlers"
	"habitQuestAPI/services"
	"habitQuestAPI/tests/helpers"
)

func clerkUserPayload(eventType, clerkID string) []byte {
	return []byte(fmt.Sprintf(`{
		"data": {
			"id": "%s",
			"username": "testwebhook",
			"first_name": "Test",
			"last_name": "Webhook",
			"image_url": "https://example.com/image.jpg",
			"email_addresses": [{"email_address": "test.webhook@example.com"}]
		},
		"object": "event",
		"type": "%s"
	}`, clerkID, eventType))
}

func TestClerkWebhook_UserCreatedProvisionsProfile(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	os.Unsetenv("CLERK_WEBHOOK_SECRET")

	userService := services.NewUserService(pool)
	webhookHandler := handlers.NewWebhookHandler(userService)

	clerkID := helpers.UniqueClerkID()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		bytes.NewReader(clerkUserPayload("user.created", clerkID)))
	rr := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	u, err := userService.GetUserByClerkID(context.Background(), clerkID)
	require.NoError(t, err)
	assert.Equal(t, "testwebhook", u.Username)
	assert.Equal(t, "test.webhook@example.com", u.Email)
	assert.Equal(t, 0, u.XP)
}

func TestClerkWebhook_UserDeletedRemovesProfile(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	os.Unsetenv("CLERK_WEBHOOK_SECRET")

	userService := services.NewUserService(pool)
	webhookHandler := handlers.NewWebhookHandler(userService)

	clerkID := helpers.UniqueClerkID()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		bytes.NewReader(clerkUserPayload("user.created", clerkID)))
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	deletePayload := []byte(fmt.Sprintf(`{"data": {"id": "%s"}, "type": "user.deleted"}`, clerkID))
	req = httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(deletePayload))
	rr = httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	_, err := userService.GetUserByClerkID(context.Background(), clerkID)
	assert.Error(t, err)
}

func TestClerkWebhook_InvalidSignatureRejected(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	os.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test_secret")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	userService := services.NewUserService(pool)
	webhookHandler := handlers.NewWebhookHandler(userService)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		bytes.NewReader(clerkUserPayload("user.created", helpers.UniqueClerkID())))
	req.Header.Set("svix-id", "msg_test")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", "v1,bogus")
	rr := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
