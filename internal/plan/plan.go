package plan

type SuggestedHabit struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

type GeneratePlanRequest struct {
	Goals string `json:"goals,omitempty"`
}

type PlanResponse struct {
	Habits []SuggestedHabit `json:"habits"`
}
