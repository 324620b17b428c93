// internal/stages/validate-requirements/models.go
package validaterequirements

import "trip-planner/internal/models"

// Outcome reports the first failing precondition, checked in fixed order:
// dates, then budget, then origin.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeMissingDates  Outcome = "missing_dates"
	OutcomeMissingBudget Outcome = "missing_budget"
	OutcomeMissingOrigin Outcome = "missing_origin"
)

type Input struct {
	Query models.TripQuery `json:"query"`
}

// Output carries the normalized query. The input query is never mutated;
// Query here is a fresh value with dates normalized and defaults injected.
type Output struct {
	Outcome Outcome          `json:"outcome"`
	Query   models.TripQuery `json:"query"`
}
