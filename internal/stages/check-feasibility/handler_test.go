// internal/stages/check-feasibility/handler_test.go
package checkfeasibility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
	"trip-planner/internal/providers/travel"
)

// ==========================
// Test Helper Functions
// ==========================

type stubFlights struct {
	offer travel.FlightOffer
	err   error
}

func (s stubFlights) CheapestOffer(ctx context.Context, origin, destination, departureDate, returnDate string) (travel.FlightOffer, error) {
	return s.offer, s.err
}

type stubHotels struct {
	offer travel.HotelOffer
	err   error
}

func (s stubHotels) CheapestOffer(ctx context.Context, destination, checkIn, checkOut string) (travel.HotelOffer, error) {
	return s.offer, s.err
}

func newTestHandler(t *testing.T, flights travel.FlightProvider, hotels travel.HotelProvider) *Handler {
	t.Helper()
	h := NewHandler(LoadConfig(), flights, hotels, logger.NewTestLogger(t))
	return h.WithClock(func() time.Time { return fixedNow })
}

func goodFlight() stubFlights {
	return stubFlights{offer: travel.FlightOffer{Available: true, Cost: 200, Airline: "United", Duration: "1h30m"}}
}

func goodHotel() stubHotels {
	return stubHotels{offer: travel.HotelOffer{Available: true, CostPerNight: 50, HotelName: "Harbor View Inn", Rating: 4.2}}
}

var testCandidate = models.DestinationCandidate{Name: "Monterey, CA", Country: "USA"}

// ==========================
// Scoring Tests
// ==========================

func TestCheck_FullyFeasible(t *testing.T) {
	h := newTestHandler(t, goodFlight(), goodHotel())

	result := h.Check(context.Background(), models.TripQuery{
		OriginLocation: "SFO",
		Budget:         "$2000",
		TravelDates:    "summer",
	}, testCandidate)

	assert.True(t, result.IsFeasible)
	assert.Equal(t, 1.0, result.Score)
	assert.True(t, result.FlightAvailable)
	assert.True(t, result.HotelAvailable)
	assert.True(t, result.WithinBudget)
	assert.Empty(t, result.Issues)
	// flight 200 + hotel 50 * 7 nights
	assert.Equal(t, 550.0, result.EstimatedCost)
	assert.Equal(t, "United", result.Details["flight"].Name)
	assert.Equal(t, 350.0, result.Details["hotel"].Cost)
}

func TestCheck_Penalties(t *testing.T) {
	tests := []struct {
		name         string
		flights      travel.FlightProvider
		hotels       travel.HotelProvider
		budget       string
		wantScore    float64
		withinBudget bool
		feasible     bool
	}{
		{
			name:         "no flight",
			flights:      stubFlights{offer: travel.FlightOffer{Available: false}},
			hotels:       goodHotel(),
			budget:       "$2000",
			wantScore:    0.6,
			withinBudget: true,
			feasible:     false, // score passes but flight availability gates it
		},
		{
			name:         "flight lookup error counts as unavailable",
			flights:      stubFlights{err: errors.New("api down")},
			hotels:       goodHotel(),
			budget:       "$2000",
			wantScore:    0.6,
			withinBudget: true,
			feasible:     false,
		},
		{
			name:         "no hotel",
			flights:      goodFlight(),
			hotels:       stubHotels{offer: travel.HotelOffer{Available: false}},
			budget:       "$2000",
			wantScore:    0.7,
			withinBudget: true,
			feasible:     false,
		},
		{
			name:    "flight over its share",
			flights: stubFlights{offer: travel.FlightOffer{Available: true, Cost: 900}},
			hotels:  goodHotel(),
			budget:  "$1600",
			// flight limit 1600*0.5=800; total 900+350=1250 lands under
			// 1600 but busting a category share still breaks the budget
			wantScore:    0.7,
			withinBudget: false,
			feasible:     false,
		},
		{
			name:    "hotel over its share",
			flights: goodFlight(),
			hotels:  stubHotels{offer: travel.HotelOffer{Available: true, CostPerNight: 120}},
			budget:  "$2000",
			// hotel limit 2000*0.35=700, hotel total 840, trip total 1040
			wantScore:    0.8,
			withinBudget: false,
			feasible:     false,
		},
		{
			name:    "everything over budget",
			flights: stubFlights{offer: travel.FlightOffer{Available: true, Cost: 900}},
			hotels:  stubHotels{offer: travel.HotelOffer{Available: true, CostPerNight: 120}},
			budget:  "$1000",
			// -0.3 flight share, -0.2 hotel share, -0.2 total
			wantScore:    0.3,
			withinBudget: false,
			feasible:     false,
		},
		{
			name:         "nothing available clamps at zero",
			flights:      stubFlights{offer: travel.FlightOffer{Available: false}},
			hotels:       stubHotels{offer: travel.HotelOffer{Available: false}},
			budget:       "$100",
			wantScore:    0.3, // -0.4 and -0.3; zero cost stays within budget
			withinBudget: true,
			feasible:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.flights, tt.hotels)

			result := h.Check(context.Background(), models.TripQuery{
				OriginLocation: "SFO",
				Budget:         tt.budget,
				TravelDates:    "summer",
			}, testCandidate)

			assert.InDelta(t, tt.wantScore, result.Score, 1e-9)
			assert.Equal(t, tt.withinBudget, result.WithinBudget)
			assert.Equal(t, tt.feasible, result.IsFeasible)
		})
	}
}

func TestCheck_NoBudgetMeansNoCeiling(t *testing.T) {
	h := newTestHandler(t, stubFlights{offer: travel.FlightOffer{Available: true, Cost: 5000}},
		stubHotels{offer: travel.HotelOffer{Available: true, CostPerNight: 900}})

	result := h.Check(context.Background(), models.TripQuery{
		OriginLocation: "SFO",
		TravelDates:    "summer",
	}, testCandidate)

	assert.True(t, result.IsFeasible)
	assert.Equal(t, 1.0, result.Score)
	assert.True(t, result.WithinBudget)
}

func TestCheck_SuggestsAlternativesBelowThreshold(t *testing.T) {
	h := newTestHandler(t, stubFlights{offer: travel.FlightOffer{Available: true, Cost: 900}},
		stubHotels{offer: travel.HotelOffer{Available: true, CostPerNight: 120}})

	result := h.Check(context.Background(), models.TripQuery{
		OriginLocation: "SFO",
		Budget:         "$1000",
		TravelDates:    "summer",
	}, testCandidate)

	require.False(t, result.IsFeasible)
	require.NotEmpty(t, result.Alternatives)
	assert.LessOrEqual(t, len(result.Alternatives), 3)
	for _, alt := range result.Alternatives {
		assert.NotEqual(t, "Monterey, CA", alt, "the failed destination is never suggested")
	}
}

func TestAlternativesFor_ExcludesByExactName(t *testing.T) {
	alts := AlternativesFor("SFO", "monterey, ca")
	assert.Len(t, alts, 3)
	assert.NotContains(t, alts, "Monterey, CA", "case-insensitive exact match excluded")

	partial := AlternativesFor("SFO", "CA")
	assert.Len(t, partial, 3, "a partial name never empties the pool")
	assert.Contains(t, partial, "Monterey, CA")
}

func TestAlternativesFor_UnknownOrigin(t *testing.T) {
	assert.Nil(t, AlternativesFor("Denver", "Monterey, CA"))
}

// ==========================
// Batch Tests
// ==========================

func TestExecute_SortsByScore(t *testing.T) {
	// Hotels exist in Monterey only, so it must sort first.
	h := newTestHandler(t, goodFlight(), selectiveHotels{available: map[string]bool{
		"Monterey, CA": true,
	}})

	out, err := h.Execute(context.Background(), &Input{
		Query: models.TripQuery{OriginLocation: "SFO", Budget: "$2000", TravelDates: "summer"},
		Candidates: []models.DestinationCandidate{
			{Name: "Santa Barbara, CA"},
			{Name: "Monterey, CA"},
		},
	})

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "Monterey, CA", out.Results[0].Name)
	assert.GreaterOrEqual(t, out.Results[0].Result.Score, out.Results[1].Result.Score)
}

type selectiveHotels struct {
	available map[string]bool
}

func (s selectiveHotels) CheapestOffer(ctx context.Context, destination, checkIn, checkOut string) (travel.HotelOffer, error) {
	if s.available[destination] {
		return travel.HotelOffer{Available: true, CostPerNight: 50, HotelName: "Inn"}, nil
	}
	return travel.HotelOffer{Available: false}, nil
}

func TestGetFeasible(t *testing.T) {
	results := []models.CandidateFeasibility{
		{Name: "A", Result: models.FeasibilityResult{IsFeasible: true, Score: 0.9}},
		{Name: "B", Result: models.FeasibilityResult{IsFeasible: false, Score: 0.7}},
		{Name: "C", Result: models.FeasibilityResult{IsFeasible: true, Score: 0.5}},
	}

	feasible := GetFeasible(results, 0.6)

	require.Len(t, feasible, 1)
	assert.Equal(t, "A", feasible[0].Name)
}

func TestSuggestBudgetAdjustment(t *testing.T) {
	h := newTestHandler(t, goodFlight(), goodHotel())

	adj := h.SuggestBudgetAdjustment(800, 1000)
	assert.InDelta(t, 200.0, adj.Shortfall, 1e-9)
	assert.InDelta(t, 25.0, adj.IncreasePercent, 1e-9)
	assert.InDelta(t, 1100.0, adj.SuggestedBudget, 1e-9)

	within := h.SuggestBudgetAdjustment(2000, 1000)
	assert.Zero(t, within.Shortfall)
	assert.Zero(t, within.IncreasePercent)
	assert.InDelta(t, 1100.0, within.SuggestedBudget, 1e-9)
}
