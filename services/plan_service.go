package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"habitQuestAPI/internal/plan"
)

const (
	planBaseURL      = "https://api.openai.com/v1/chat/completions"
	planModel        = "gpt-4o-mini"
	planMaxRetries   = 3
	planInitialDelay = 1 * time.Second
)

const planSystemPrompt = `You are a habit coach. Given a user's goals, suggest 3 to 5 small daily habits.
Respond with JSON only, in the form {"habits":[{"name":"...","category":"...","reason":"..."}]}.
Keep names under 60 characters and categories to a single word.`

// PlanService turns free-text goals into suggested habits via an
// OpenAI-compatible chat completions endpoint.
type PlanService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewPlanService(apiKey string) *PlanService {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = planBaseURL
	}

	return &PlanService{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   planModel,
		client:  &http.Client{},
	}
}

// Enabled reports whether an API key is configured. Without one the plan
// endpoint degrades to 503 instead of failing mid-request.
func (s *PlanService) Enabled() bool {
	return s.apiKey != ""
}

// GeneratePlan requests habit suggestions for the given goals. Opaque
// request/response: no streaming, retries only on rate limits and server
// errors.
func (s *PlanService) GeneratePlan(ctx context.Context, goals string) (*plan.PlanResponse, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("plan generation is not configured")
	}

	goals = strings.TrimSpace(goals)
	if goals == "" {
		return nil, fmt.Errorf("goals text is required")
	}

	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: planSystemPrompt},
			{Role: "user", Content: goals},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < planMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * planInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr chatError
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
				lastErr = fmt.Errorf("plan API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("plan API error (%d): %s", resp.StatusCode, string(respBody))
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}

			return nil, lastErr
		}

		var chatResp chatResponse
		if err := json.Unmarshal(respBody, &chatResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if len(chatResp.Choices) == 0 {
			return nil, fmt.Errorf("no completion returned")
		}

		return parsePlanContent(chatResp.Choices[0].Message.Content)
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", planMaxRetries, lastErr)
}

// parsePlanContent extracts the habit list from the model output, tolerating
// markdown code fences around the JSON.
func parsePlanContent(content string) (*plan.PlanResponse, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var planResp plan.PlanResponse
	if err := json.Unmarshal([]byte(content), &planResp); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	if len(planResp.Habits) == 0 {
		return nil, fmt.Errorf("plan contained no habits")
	}

	for i := range planResp.Habits {
		if planResp.Habits[i].Name == "" {
			return nil, fmt.Errorf("plan contained a habit without a name")
		}
		if planResp.Habits[i].Category == "" {
			planResp.Habits[i].Category = "general"
		}
	}

	return &planResp, nil
}
