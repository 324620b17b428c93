// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
	"trip-planner/internal/pipeline"
	"trip-planner/internal/preferences"
	"trip-planner/internal/providers/llm"
	"trip-planner/internal/providers/travel"
	"trip-planner/internal/providers/websearch"
	checkfeasibility "trip-planner/internal/stages/check-feasibility"
	classifyrequest "trip-planner/internal/stages/classify-request"
	extractparameters "trip-planner/internal/stages/extract-parameters"
	filterconstraints "trip-planner/internal/stages/filter-constraints"
	generatecandidates "trip-planner/internal/stages/generate-candidates"
	validaterequirements "trip-planner/internal/stages/validate-requirements"
)

// These tests run the whole pipeline through the real HTTP provider
// clients, with httptest servers standing in for the GenAI and search
// backends and the deterministic mock travel provider doing the pricing.

// genAIScript answers by prompt shape, mirroring what the upstream model
// would produce per stage.
type genAIScript struct {
	extraction string
	label      string
	candidates string
}

func (s genAIScript) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		text := ""
		switch {
		case strings.Contains(req.Prompt, "Extract destination research parameters"):
			text = s.extraction
		case strings.Contains(req.Prompt, "determine the type of destination inquiry"):
			text = s.label
		case strings.Contains(req.Prompt, "numbered travel search snippet"):
			text = `["Monterey, CA", "Santa Barbara, CA"]`
		case strings.Contains(req.Prompt, "Research travel destinations"):
			text = s.candidates
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
	}
}

func searchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]string{
				{"title": "Monterey travel guide", "snippet": "Aquarium, beaches, family friendly", "link": "https://example.com/monterey"},
				{"title": "Santa Barbara beaches", "snippet": "Relaxed beach weekends", "link": "https://example.com/sb"},
			},
		})
	}
}

func buildPipeline(t *testing.T, genai genAIScript) *pipeline.Coordinator {
	t.Helper()
	log := logger.NewTestLogger(t)

	genaiServer := httptest.NewServer(genai.handler())
	t.Cleanup(genaiServer.Close)
	searchServer := httptest.NewServer(searchHandler())
	t.Cleanup(searchServer.Close)

	completer := llm.NewClient(&llm.Config{BaseURL: genaiServer.URL, APIKey: "test"}, log)
	searcher := websearch.NewClient(&websearch.Config{
		BaseURL:  searchServer.URL,
		APIKey:   "test",
		EngineID: "cx",
	}, log)

	mock := travel.NewMockProvider()
	feasibility := checkfeasibility.NewHandler(
		checkfeasibility.LoadConfig(),
		mock,
		travel.MockHotelAdapter{Provider: mock},
		log,
	).WithClock(func() time.Time {
		return time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	})

	prefs := preferences.NewStaticStore(preferences.Preferences{HomeAirport: "SFO"})

	stages := pipeline.Stages{
		Extractor:   extractparameters.NewHandler(extractparameters.LoadConfig(), completer, log),
		Validator:   validaterequirements.NewHandler(validaterequirements.LoadConfig(), prefs, log),
		Classifier:  classifyrequest.NewHandler(classifyrequest.LoadConfig(), completer, log),
		Generator:   generatecandidates.NewHandler(generatecandidates.LoadConfig(), completer, searcher, log),
		Filter:      filterconstraints.NewHandler(filterconstraints.LoadConfig(), log),
		Feasibility: feasibility,
	}

	return pipeline.NewCoordinator(stages, pipeline.Options{MaxBacktrackAttempts: 1}, log)
}

func TestPipeline_FeasibleBeachTrip(t *testing.T) {
	c := buildPipeline(t, genAIScript{
		extraction: `{"query": "relaxing beach trip", "origin_location": "SFO",
			"max_travel_time": "3 hours", "travel_dates": "summer", "budget": "$5000",
			"interests": ["beaches"], "traveler_type": "couple"}`,
		label: "constrained",
		candidates: `{"destinations": [
			{"name": "Monterey, CA", "country": "USA", "region": "California"},
			{"name": "Santa Barbara, CA", "country": "USA", "region": "California"},
			{"name": "San Diego, CA", "country": "USA", "region": "California"}
		], "recommendation": "Monterey balances beaches and a short hop from SFO."}`,
	})

	result, err := c.ResearchWithFeasibility(context.Background(),
		"Relaxing beach trip from SFO within 3 hours this summer, budget $5000", nil)

	require.NoError(t, err)
	assert.False(t, result.NeedsInput())
	assert.Equal(t, models.RequestConstrained, result.RequestType)
	require.NotEmpty(t, result.Destinations)
	for _, d := range result.Destinations {
		assert.GreaterOrEqual(t, d.FeasibilityScore, 0.6)
	}
	assert.NotEmpty(t, result.Recommendation)
}

func TestPipeline_MissingDatesAsksUser(t *testing.T) {
	c := buildPipeline(t, genAIScript{
		extraction: `{"query": "beach trip", "origin_location": "SFO", "budget": "$2000"}`,
		label:      "abstract",
		candidates: `{"destinations": [{"name": "Monterey, CA"}]}`,
	})

	result, err := c.ResearchWithFeasibility(context.Background(), "Beach trip sometime", nil)

	require.NoError(t, err)
	assert.True(t, result.DateRequired)
	assert.Empty(t, result.Destinations)
}

func TestPipeline_ConstraintFilterDropsFarDestinations(t *testing.T) {
	c := buildPipeline(t, genAIScript{
		extraction: `{"query": "island getaway", "origin_location": "SFO",
			"max_travel_time": "3 hours", "travel_dates": "summer", "budget": "$5000"}`,
		label: "constrained",
		candidates: `{"destinations": [
			{"name": "Hydra", "country": "Greece", "region": "Saronic Islands"},
			{"name": "Monterey, CA", "country": "USA", "region": "California"},
			{"name": "Santa Barbara, CA", "country": "USA", "region": "California"}
		], "recommendation": "Hydra if you can stretch the trip, Monterey otherwise."}`,
	})

	result, err := c.ResearchWithFeasibility(context.Background(),
		"Island getaway from SFO within 3 hours this summer, $5000", nil)

	require.NoError(t, err)
	for _, d := range result.Destinations {
		assert.NotEqual(t, "Hydra", d.Name, "unreachable destination filtered out")
	}
	require.NotEmpty(t, result.Destinations)
}

func TestPipeline_InfeasibleBudgetBacktracksThenAsks(t *testing.T) {
	c := buildPipeline(t, genAIScript{
		extraction: `{"query": "weekend escape", "origin_location": "SFO",
			"travel_dates": "summer", "budget": "$100"}`,
		label: "constrained",
		candidates: `{"destinations": [
			{"name": "Lake Tahoe, CA", "country": "USA", "region": "California"}
		]}`,
	})

	var backtrackSeen bool
	result, err := c.ResearchWithFeasibility(context.Background(),
		"Weekend escape from SFO this summer for $100", func(e models.ProgressEvent) {
			if e.Type == models.ProgressDestinationChoice {
				backtrackSeen = true
			}
		})

	require.NoError(t, err)
	assert.True(t, backtrackSeen, "coordinator tried nearby alternatives")
	assert.True(t, result.UserChoiceRequired)
	for _, d := range result.Destinations {
		assert.Less(t, d.FeasibilityScore, 0.6)
	}
}
