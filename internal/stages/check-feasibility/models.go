// internal/stages/check-feasibility/models.go
package checkfeasibility

import "trip-planner/internal/models"

type Input struct {
	Query      models.TripQuery              `json:"query"`
	Candidates []models.DestinationCandidate `json:"candidates"`
}

type Output struct {
	// Results is sorted by score, highest first.
	Results []models.CandidateFeasibility `json:"results"`
}

// BudgetAdjustment describes how far a stated budget falls short of an
// estimated trip cost and what budget would cover it with headroom.
type BudgetAdjustment struct {
	CurrentBudget   float64 `json:"currentBudget"`
	EstimatedCost   float64 `json:"estimatedCost"`
	Shortfall       float64 `json:"shortfall"`
	IncreasePercent float64 `json:"increasePercent"`
	SuggestedBudget float64 `json:"suggestedBudget"`
}
