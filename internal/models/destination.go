// internal/models/destination.go
package models

// DestinationCandidate is one proposed place, created by the candidate
// generation stage and enriched by the feasibility stage.
type DestinationCandidate struct {
	Name             string   `json:"name"`
	Country          string   `json:"country,omitempty"`
	Region           string   `json:"region,omitempty"`
	Description      string   `json:"description,omitempty"`
	BestTimeToVisit  string   `json:"bestTimeToVisit,omitempty"`
	TravelTime       string   `json:"travelTime,omitempty"`
	EstimatedCost    string   `json:"estimatedCost,omitempty"`
	Attractions      []string `json:"attractions,omitempty"`
	Activities       []string `json:"activities,omitempty"`
	Climate          string   `json:"climate,omitempty"`
	VisaRequirements string   `json:"visaRequirements,omitempty"`
	Language         string   `json:"language,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	SafetyRating     string   `json:"safetyRating,omitempty"`

	// Demographic fit
	FamilyFriendlyScore int    `json:"familyFriendlyScore,omitempty"` // 1-10
	RomanticAppeal      int    `json:"romanticAppeal,omitempty"`      // 1-10
	NightlifeRating     int    `json:"nightlifeRating,omitempty"`     // 1-10
	BusinessFriendly    bool   `json:"businessFriendly,omitempty"`
	CrowdLevel          string `json:"crowdLevel,omitempty"`

	// RelevanceScore comes from search-snippet scoring; FeasibilityScore from
	// the feasibility check. The two are independent.
	RelevanceScore   float64 `json:"relevanceScore,omitempty"`
	FeasibilityScore float64 `json:"feasibilityScore,omitempty"`
}

// ScoredHit is a deduplicated web-search result with its composite
// relevance score and per-criterion breakdown.
type ScoredHit struct {
	Name       string             `json:"name"`
	Snippet    string             `json:"snippet"`
	Link       string             `json:"link,omitempty"`
	Score      float64            `json:"score"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
	QueryLabel string             `json:"queryLabel,omitempty"`
}
