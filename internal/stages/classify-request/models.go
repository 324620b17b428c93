// internal/stages/classify-request/models.go
package classifyrequest

import "trip-planner/internal/models"

type Input struct {
	Request string `json:"request"`
}

type Output struct {
	// RawLabel is the lower-cased, trimmed model response with no validation
	// applied.
	RawLabel string `json:"rawLabel"`

	// Type is RawLabel mapped onto the known request types, with anything
	// unrecognized treated as abstract.
	Type models.RequestType `json:"type"`
}
