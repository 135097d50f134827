package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitQuestAPI/middleware"
	"habitQuestAPI/services"
)

func TestGeneratePlan_Unauthenticated(t *testing.T) {
	handler := NewPlanHandler(services.NewPlanService("test-key"), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/plan", nil)
	rr := httptest.NewRecorder()

	handler.GeneratePlan(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGeneratePlan_NotConfigured(t *testing.T) {
	// No API key: requests degrade to 503 before any other work happens.
	handler := NewPlanHandler(services.NewPlanService(""), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/plan", nil)
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, "user_test_plan")
	req = req.WithContext(ctx)
	rr := httptest.NewRecorder()

	handler.GeneratePlan(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var response map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Contains(t, response["error"], "not configured")
}
