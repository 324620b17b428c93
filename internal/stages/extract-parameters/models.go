// internal/stages/extract-parameters/models.go
package extractparameters

import "trip-planner/internal/models"

type Input struct {
	Request string `json:"request"`
}

type Output struct {
	Query models.TripQuery `json:"query"`

	// UsedFallback is true when the LLM response could not be parsed and the
	// deterministic extractor produced the query instead.
	UsedFallback bool `json:"usedFallback"`
}
