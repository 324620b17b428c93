// internal/stages/extract-parameters/handler_test.go
package extractparameters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

// stubCompleter returns a canned response or error for every prompt.
type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestHandler(t *testing.T, completer *stubCompleter) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), completer, logger.NewTestLogger(t))
}

// ==========================
// LLM Extraction Tests
// ==========================

func TestExecute_LLMSuccess(t *testing.T) {
	completer := &stubCompleter{response: `{
		"query": "romantic beach getaway",
		"origin_location": "SFO",
		"max_travel_time": "3 hours",
		"travel_dates": "summer",
		"budget": "$2000",
		"interests": ["beaches", "food"],
		"travel_style": "relaxing",
		"traveler_type": "couple",
		"group_size": 2,
		"age_range": null,
		"mobility_requirements": null,
		"seasonal_preference": "summer"
	}`}

	h := newTestHandler(t, completer)
	out, err := h.Execute(context.Background(), &Input{
		Request: "Romantic beach trip from SFO this summer, budget $2000",
	})

	require.NoError(t, err)
	assert.False(t, out.UsedFallback)
	assert.Equal(t, "romantic beach getaway", out.Query.Query)
	assert.Equal(t, "SFO", out.Query.OriginLocation)
	assert.Equal(t, "3 hours", out.Query.MaxTravelTime)
	assert.Equal(t, "$2000", out.Query.Budget)
	assert.Equal(t, models.TravelerCouple, out.Query.TravelerType)
	assert.Equal(t, 2, out.Query.GroupSize)
	assert.Equal(t, []string{"beaches", "food"}, out.Query.Interests)
}

func TestExecute_LLMResponseInCodeFence(t *testing.T) {
	completer := &stubCompleter{response: "```json\n{\"query\": \"weekend in wine country\"}\n```"}

	h := newTestHandler(t, completer)
	out, err := h.Execute(context.Background(), &Input{Request: "wine weekend"})

	require.NoError(t, err)
	assert.False(t, out.UsedFallback)
	assert.Equal(t, "weekend in wine country", out.Query.Query)
}

func TestExecute_EmptyQueryFieldUsesRawRequest(t *testing.T) {
	completer := &stubCompleter{response: `{"query": null, "budget": "$500"}`}

	h := newTestHandler(t, completer)
	out, err := h.Execute(context.Background(), &Input{Request: "cheap trip somewhere"})

	require.NoError(t, err)
	assert.Equal(t, "cheap trip somewhere", out.Query.Query)
	assert.Equal(t, "$500", out.Query.Budget)
}

// ==========================
// Fallback Tests
// ==========================

func TestExecute_FallbackOnCompleterError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("upstream down")}

	h := newTestHandler(t, completer)
	out, err := h.Execute(context.Background(), &Input{
		Request: "Family trip with kids from SFO, $3000 budget",
	})

	require.NoError(t, err, "extraction must never fail")
	assert.True(t, out.UsedFallback)
	assert.Equal(t, models.TravelerFamilyWithKids, out.Query.TravelerType)
	assert.Equal(t, "$3000", out.Query.Budget)
}

func TestExecute_FallbackOnMalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json at all", "Sure! Here are some ideas for your trip."},
		{"schema violation", `{"origin_location": "SFO"}`},
		{"wrong field type", `{"query": "trip", "interests": "beaches"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubCompleter{response: tt.response})
			out, err := h.Execute(context.Background(), &Input{Request: "trip to the coast"})

			require.NoError(t, err)
			assert.True(t, out.UsedFallback)
			assert.Equal(t, "trip to the coast", out.Query.Query)
		})
	}
}

// ==========================
// Heuristic Extractor Tests
// ==========================

func TestExtractHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		validate func(t *testing.T, q models.TripQuery)
	}{
		{
			name:    "origin from pattern",
			request: "Beach trip from SFO within 3 hours flight",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "SFO", q.OriginLocation)
				assert.Equal(t, "3 hours", q.MaxTravelTime)
			},
		},
		{
			name:    "origin to pattern",
			request: "Boston to somewhere warm",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "Boston", q.OriginLocation)
			},
		},
		{
			name:    "hour count without travel context is ignored",
			request: "I have 3 hours of meetings but want a vacation",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Empty(t, q.MaxTravelTime)
			},
		},
		{
			name:    "dollar budget with comma",
			request: "Somewhere nice for $1,500",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "$1,500", q.Budget)
			},
		},
		{
			name:    "budget style keyword",
			request: "A budget-friendly escape",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "budget-friendly", q.Budget)
			},
		},
		{
			name:    "luxury keyword",
			request: "A luxury resort week",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "luxury", q.Budget)
			},
		},
		{
			name:    "family traveler type and age range",
			request: "Trip with the kids to a beach",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, models.TravelerFamilyWithKids, q.TravelerType)
				assert.Equal(t, "family", q.AgeRange)
				assert.Contains(t, q.Interests, "beaches")
			},
		},
		{
			name:    "honeymoon maps to couple",
			request: "Honeymoon somewhere romantic",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, models.TravelerCouple, q.TravelerType)
			},
		},
		{
			name:    "default traveler type",
			request: "A quiet week away",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, models.TravelerLeisure, q.TravelerType)
			},
		},
		{
			name:    "season fills dates and preference",
			request: "Skiing somewhere this winter",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "winter", q.TravelDates)
				assert.Equal(t, "winter", q.SeasonalPreference)
				assert.Contains(t, q.Interests, "skiing")
			},
		},
		{
			name:    "month name fills dates",
			request: "Somewhere warm in january",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "january", q.TravelDates)
				assert.Empty(t, q.SeasonalPreference)
			},
		},
		{
			name:    "mobility requirements",
			request: "Wheelchair accessible city break",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, "limited_mobility", q.MobilityRequirements)
			},
		},
		{
			name:    "beach and beaches collapse to one interest",
			request: "Beach trip with great beaches",
			validate: func(t *testing.T, q models.TripQuery) {
				assert.Equal(t, []string{"beaches"}, q.Interests)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ExtractHeuristic(tt.request)
			assert.Equal(t, tt.request, q.Query, "raw request always becomes the query")
			tt.validate(t, q)
		})
	}
}
