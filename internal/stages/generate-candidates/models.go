// internal/stages/generate-candidates/models.go
package generatecandidates

import "trip-planner/internal/models"

type Input struct {
	Query models.TripQuery   `json:"query"`
	Type  models.RequestType `json:"type"`
}

type Output struct {
	Primary        []models.DestinationCandidate `json:"primary"`
	Alternatives   []models.DestinationCandidate `json:"alternatives"`
	Recommendation string                        `json:"recommendation,omitempty"`

	// Hits is the deduplicated, score-ordered search evidence that seeded
	// candidate extraction. Empty when web search is unavailable.
	Hits []models.ScoredHit `json:"hits,omitempty"`
}

// weightedQuery is one targeted search query with its relevance weight and
// the criteria its results are scored against.
type weightedQuery struct {
	label    string
	text     string
	weight   float64
	criteria []string
}
