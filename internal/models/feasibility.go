// internal/models/feasibility.go
package models

// CategoryDetail holds provider-returned fields for one cost category
// ("flight" or "hotel").
type CategoryDetail struct {
	Cost     float64 `json:"cost,omitempty"`
	Duration string  `json:"duration,omitempty"`
	Name     string  `json:"name,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
}

// FeasibilityResult is the outcome of checking one candidate destination.
// It is never mutated after construction.
//
// IsFeasible requires Score >= the configured minimum AND FlightAvailable
// AND HotelAvailable AND WithinBudget, all four simultaneously. WithinBudget
// is false when any cost check fails, category shares included, not only
// when the grand total exceeds the budget.
type FeasibilityResult struct {
	IsFeasible      bool                      `json:"isFeasible"`
	Score           float64                   `json:"score"` // clamped into [0,1]
	Issues          []string                  `json:"issues,omitempty"`
	Alternatives    []string                  `json:"alternatives,omitempty"`
	EstimatedCost   float64                   `json:"estimatedCost"`
	FlightAvailable bool                      `json:"flightAvailable"`
	HotelAvailable  bool                      `json:"hotelAvailable"`
	WithinBudget    bool                      `json:"withinBudget"`
	Details         map[string]CategoryDetail `json:"details,omitempty"`
}

// CandidateFeasibility pairs a destination name with its feasibility result
// for batch checks.
type CandidateFeasibility struct {
	Name   string            `json:"name"`
	Result FeasibilityResult `json:"result"`
}
