// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

// LoadRegistry reads a stage registry from a JSON file, for deployments
// that override the built-in catalog.
func LoadRegistry(path string) (*StageRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg StageRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Builtin returns the catalog for the compiled-in pipeline.
func Builtin() *StageRegistry {
	return &StageRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-20",
		Stages: []Stage{
			{
				ID:          "extract-parameters",
				DisplayName: "Parameter Extraction",
				Description: "Turns a free-text travel request into a structured trip query, with a deterministic fallback when the model response is unusable.",
				Order:       1,
				ErrorCodes:  []string{"EXTRACTION_FAILED", "EXTRACTION_API_TIMEOUT"},
				Timeout:     "30s",
				Retries:     1,
				Tags:        []string{"llm"},
			},
			{
				ID:          "validate-requirements",
				DisplayName: "Requirement Validation",
				Description: "Checks dates, budget and origin in fixed order, normalizing dates and filling defaults from stored preferences.",
				Order:       2,
				ErrorCodes:  []string{"MISSING_DATES", "MISSING_BUDGET", "MISSING_ORIGIN"},
				Timeout:     "5s",
				Retries:     0,
			},
			{
				ID:          "classify-request",
				DisplayName: "Request Classification",
				Description: "Labels the request specific, abstract, multi_location or constrained to pick a research strategy.",
				Order:       3,
				ErrorCodes:  []string{"CLASSIFICATION_FAILED", "LLM_TIMEOUT"},
				Timeout:     "15s",
				Retries:     1,
				Tags:        []string{"llm"},
			},
			{
				ID:          "generate-candidates",
				DisplayName: "Candidate Generation",
				Description: "Runs weighted web searches, scores the evidence, and extracts three to five destination candidates.",
				Order:       4,
				ErrorCodes:  []string{"WEB_SEARCH_TIMEOUT", "WEB_SEARCH_FAILED", "LLM_RESPONSE_MALFORMED", "NO_DESTINATIONS"},
				Timeout:     "60s",
				Retries:     1,
				Tags:        []string{"llm", "websearch"},
			},
			{
				ID:          "filter-constraints",
				DisplayName: "Constraint Filtering",
				Description: "Drops candidates plainly unreachable within the travel-time limit; fails open for unknown origins.",
				Order:       5,
				Timeout:     "10s",
				Retries:     0,
			},
			{
				ID:          "check-feasibility",
				DisplayName: "Feasibility Check",
				Description: "Prices flights and hotels against the budget split, scores each candidate, and suggests nearby alternatives for failures.",
				Order:       6,
				ErrorCodes:  []string{"FLIGHT_LOOKUP_FAILED", "HOTEL_LOOKUP_FAILED", "TRAVEL_API_TIMEOUT"},
				Timeout:     "30s",
				Retries:     2,
				Tags:        []string{"travel-api"},
			},
		},
	}
}
