// internal/models/research.go
package models

// ResearchResult is the final envelope returned by the research pipeline.
//
// If any of the three *Required flags is true the destination lists are
// empty: the result is a request for more input, not a partial answer.
type ResearchResult struct {
	RequestType        RequestType            `json:"requestType,omitempty"`
	Destinations       []DestinationCandidate `json:"destinations,omitempty"`
	Alternatives       []DestinationCandidate `json:"alternatives,omitempty"`
	Recommendation     string                 `json:"recommendation,omitempty"`
	Comparison         string                 `json:"comparison,omitempty"`
	UserChoiceRequired bool                   `json:"userChoiceRequired,omitempty"`

	DateRequired   bool `json:"dateRequired,omitempty"`
	BudgetRequired bool `json:"budgetRequired,omitempty"`
	OriginRequired bool `json:"originRequired,omitempty"`
}

// NeedsInput reports whether the pipeline halted to ask the user for a
// missing precondition.
func (r *ResearchResult) NeedsInput() bool {
	return r.DateRequired || r.BudgetRequired || r.OriginRequired
}
