package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanService(t *testing.T, handler http.HandlerFunc) *PlanService {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewPlanService("test-key")
	s.baseURL = srv.URL
	return s
}

func chatCompletion(content string) any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
	}
}

func TestGeneratePlan_ParsesSuggestedHabits(t *testing.T) {
	s := newTestPlanService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "get fit and read more", req.Messages[1].Content)

		json.NewEncoder(w).Encode(chatCompletion(
			`{"habits":[{"name":"Morning run","category":"fitness","reason":"builds endurance"},{"name":"Read 10 pages","category":"learning","reason":"compounds daily"}]}`,
		))
	})

	resp, err := s.GeneratePlan(context.Background(), "get fit and read more")
	require.NoError(t, err)
	require.Len(t, resp.Habits, 2)
	assert.Equal(t, "Morning run", resp.Habits[0].Name)
	assert.Equal(t, "fitness", resp.Habits[0].Category)
}

func TestGeneratePlan_ToleratesMarkdownFences(t *testing.T) {
	s := newTestPlanService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletion(
			"```json\n{\"habits\":[{\"name\":\"Stretch\",\"category\":\"\",\"reason\":\"mobility\"}]}\n```",
		))
	})

	resp, err := s.GeneratePlan(context.Background(), "be flexible")
	require.NoError(t, err)
	require.Len(t, resp.Habits, 1)
	assert.Equal(t, "general", resp.Habits[0].Category)
}

func TestGeneratePlan_RetriesOnServerError(t *testing.T) {
	calls := 0
	s := newTestPlanService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(chatCompletion(
			`{"habits":[{"name":"Sleep by 11","category":"health","reason":"recovery"}]}`,
		))
	})

	resp, err := s.GeneratePlan(context.Background(), "sleep better")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, resp.Habits, 1)
}

func TestGeneratePlan_ClientErrorDoesNotRetry(t *testing.T) {
	calls := 0
	s := newTestPlanService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad request", "type": "invalid_request_error"},
		})
	})

	_, err := s.GeneratePlan(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "bad request")
}

func TestGeneratePlan_RequiresConfigurationAndGoals(t *testing.T) {
	unconfigured := NewPlanService("")
	_, err := unconfigured.GeneratePlan(context.Background(), "goals")
	require.Error(t, err)

	s := newTestPlanService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not be called")
	})
	_, err = s.GeneratePlan(context.Background(), "   ")
	require.Error(t, err)
}

func TestParsePlanContent_RejectsEmptyAndNameless(t *testing.T) {
	_, err := parsePlanContent(`{"habits":[]}`)
	require.Error(t, err)

	_, err = parsePlanContent(`{"habits":[{"name":"","category":"x","reason":"y"}]}`)
	require.Error(t, err)

	_, err = parsePlanContent(`not json`)
	require.Error(t, err)
}
