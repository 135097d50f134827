package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"habitQuestAPI/internal/plan"
	"habitQuestAPI/middleware"
	"habitQuestAPI/services"
	"habitQuestAPI/utils"
)

type PlanHandler struct {
	planService  *services.PlanService
	userService  *services.UserService
	notifService *services.NotificationService
}

func NewPlanHandler(planService *services.PlanService, userService *services.UserService, notifService *services.NotificationService) *PlanHandler {
	return &PlanHandler{
		planService:  planService,
		userService:  userService,
		notifService: notifService,
	}
}

// GeneratePlan asks the AI collaborator for habit suggestions based on the
// user's stored goals, or the goals text in the request body if present.
func (h *PlanHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	// Plan generation is slower than the usual CRUD calls.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if !h.planService.Enabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Plan generation is not configured")
		return
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	var req plan.GeneratePlanRequest
	if r.Body != nil {
		// Body is optional; ignore decode errors from an empty body.
		json.NewDecoder(r.Body).Decode(&req)
	}

	goals := strings.TrimSpace(req.Goals)
	if goals == "" {
		goals = strings.TrimSpace(u.Goals)
	}

	if goals == "" {
		respondWithError(w, http.StatusBadRequest, "Set your goals before requesting a plan")
		return
	}

	planResp, err := h.planService.GeneratePlan(ctx, goals)
	if err != nil {
		log.Printf("GeneratePlan Handler: %v", err)
		middleware.PlanGenerations.WithLabelValues("error").Inc()
		respondWithError(w, http.StatusBadGateway, "Failed to generate plan")
		return
	}

	middleware.PlanGenerations.WithLabelValues("success").Inc()
	utils.AnnouncePlanReady(h.notifService, u.ID, len(planResp.Habits))
	respondWithJSON(w, http.StatusOK, planResp)
}
