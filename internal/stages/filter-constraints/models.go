// internal/stages/filter-constraints/models.go
package filterconstraints

import "trip-planner/internal/models"

type Input struct {
	Query      models.TripQuery              `json:"query"`
	Candidates []models.DestinationCandidate `json:"candidates"`
}

type Output struct {
	Kept    []models.DestinationCandidate `json:"kept"`
	Dropped []DroppedCandidate            `json:"dropped,omitempty"`
	Applied bool                          `json:"applied"`
}

// DroppedCandidate records why a candidate was removed, for logging and
// audit trails.
type DroppedCandidate struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
