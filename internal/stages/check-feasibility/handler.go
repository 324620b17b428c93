// internal/stages/check-feasibility/handler.go
package checkfeasibility

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
	"trip-planner/internal/providers/travel"
)

const StageName = "check-feasibility"

// Score penalties, applied in order against a starting score of 1.0.
const (
	penaltyNoFlight        = 0.4
	penaltyFlightOverShare = 0.3
	penaltyNoHotel         = 0.3
	penaltyHotelOverShare  = 0.2
	penaltyTotalOverBudget = 0.2
)

type Handler struct {
	config  *Config
	flights travel.FlightProvider
	hotels  travel.HotelProvider
	logger  logger.Logger
	now     func() time.Time
}

func NewHandler(config *Config, flights travel.FlightProvider, hotels travel.HotelProvider, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		flights: flights,
		hotels:  hotels,
		logger:  log.WithFields(map[string]interface{}{"stage": StageName}),
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Execute checks every candidate and returns the results sorted by score,
// highest first.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	results := make([]models.CandidateFeasibility, 0, len(input.Candidates))
	for _, candidate := range input.Candidates {
		result := h.Check(ctx, input.Query, candidate)
		results = append(results, models.CandidateFeasibility{
			Name:   candidate.Name,
			Result: result,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.Score > results[j].Result.Score
	})

	return &Output{Results: results}, nil
}

// Check prices one candidate against the query's budget and dates. The
// score starts at 1.0 and loses a fixed penalty for each problem found;
// feasibility additionally requires flight and hotel availability and every
// budget check passing, category shares included.
func (h *Handler) Check(ctx context.Context, query models.TripQuery, candidate models.DestinationCandidate) models.FeasibilityResult {
	departure, returnDate := ResolveDates(query.TravelDates, h.now())
	nights := nightsBetween(departure, returnDate, h.config.DefaultNights)

	budget := math.Inf(1)
	if query.Budget != "" {
		budget = ParseBudget(query.Budget, h.config.DefaultBudget)
	}
	travelerType := string(query.TravelerType)
	flightLimit := budget * h.config.flightShareFor(travelerType)
	hotelLimit := budget * h.config.hotelShareFor(travelerType)

	score := 1.0
	withinBudget := true
	var issues []string
	details := make(map[string]models.CategoryDetail)
	totalCost := 0.0

	flight, err := h.flights.CheapestOffer(ctx, query.OriginLocation, candidate.Name, departure, returnDate)
	flightAvailable := err == nil && flight.Available
	if !flightAvailable {
		score -= penaltyNoFlight
		issues = append(issues, "no flights found")
		if err != nil {
			h.logger.Warn("flight lookup failed", map[string]interface{}{
				"destination": candidate.Name,
				"error":       err.Error(),
			})
		}
	} else {
		totalCost += flight.Cost
		details["flight"] = models.CategoryDetail{
			Cost:     flight.Cost,
			Duration: flight.Duration,
			Name:     flight.Airline,
		}
		if flight.Cost > flightLimit {
			score -= penaltyFlightOverShare
			withinBudget = false
			issues = append(issues, fmt.Sprintf("flight cost $%.0f exceeds flight budget $%.0f", flight.Cost, flightLimit))
		}
	}

	hotel, err := h.hotels.CheapestOffer(ctx, candidate.Name, departure, returnDate)
	hotelAvailable := err == nil && hotel.Available
	if !hotelAvailable {
		score -= penaltyNoHotel
		issues = append(issues, "no hotels found")
		if err != nil {
			h.logger.Warn("hotel lookup failed", map[string]interface{}{
				"destination": candidate.Name,
				"error":       err.Error(),
			})
		}
	} else {
		hotelTotal := hotel.CostPerNight * float64(nights)
		totalCost += hotelTotal
		details["hotel"] = models.CategoryDetail{
			Cost:   hotelTotal,
			Name:   hotel.HotelName,
			Rating: hotel.Rating,
		}
		if hotelTotal > hotelLimit {
			score -= penaltyHotelOverShare
			withinBudget = false
			issues = append(issues, fmt.Sprintf("hotel cost $%.0f exceeds hotel budget $%.0f", hotelTotal, hotelLimit))
		}
	}

	if totalCost > budget {
		score -= penaltyTotalOverBudget
		withinBudget = false
		issues = append(issues, fmt.Sprintf("total cost $%.0f exceeds budget $%.0f", totalCost, budget))
	}

	score = math.Max(0, math.Min(1, score))

	result := models.FeasibilityResult{
		IsFeasible:      score >= h.config.MinScore && flightAvailable && hotelAvailable && withinBudget,
		Score:           score,
		Issues:          issues,
		EstimatedCost:   totalCost,
		FlightAvailable: flightAvailable,
		HotelAvailable:  hotelAvailable,
		WithinBudget:    withinBudget,
		Details:         details,
	}

	if score < h.config.MinScore {
		result.Alternatives = AlternativesFor(query.OriginLocation, candidate.Name)
	}

	h.logger.Info("feasibility checked", map[string]interface{}{
		"destination":   candidate.Name,
		"score":         score,
		"feasible":      result.IsFeasible,
		"estimatedCost": totalCost,
	})

	return result
}

// GetFeasible filters a sorted result set down to entries at or above the
// threshold that also pass every availability gate.
func GetFeasible(results []models.CandidateFeasibility, threshold float64) []models.CandidateFeasibility {
	feasible := make([]models.CandidateFeasibility, 0, len(results))
	for _, r := range results {
		if r.Result.IsFeasible && r.Result.Score >= threshold {
			feasible = append(feasible, r)
		}
	}
	return feasible
}

// SuggestBudgetAdjustment proposes a budget that would cover the estimated
// cost with the configured headroom and reports the shortfall against the
// current budget.
func (h *Handler) SuggestBudgetAdjustment(currentBudget, estimatedCost float64) BudgetAdjustment {
	adj := BudgetAdjustment{
		CurrentBudget:   currentBudget,
		EstimatedCost:   estimatedCost,
		SuggestedBudget: estimatedCost * (1 + h.config.Buffer),
	}
	if estimatedCost > currentBudget {
		adj.Shortfall = estimatedCost - currentBudget
		if currentBudget > 0 {
			adj.IncreasePercent = adj.Shortfall / currentBudget * 100
		}
	}
	return adj
}
