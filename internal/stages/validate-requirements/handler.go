// internal/stages/validate-requirements/handler.go
package validaterequirements

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/preferences"
)

const StageName = "validate-requirements"

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// seasonMonths maps each season to its member months and the window used
// for next-occurrence year resolution.
var seasonMonths = map[string][]time.Month{
	"summer": {time.June, time.July, time.August},
	"winter": {time.December, time.January, time.February},
	"spring": {time.March, time.April, time.May},
	"fall":   {time.September, time.October, time.November},
	"autumn": {time.September, time.October, time.November},
}

var seasonStart = map[string]time.Month{
	"summer": time.June,
	"winter": time.December,
	"spring": time.March,
	"fall":   time.September,
	"autumn": time.September,
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var unspecifiedValues = map[string]bool{
	"":              true,
	"none":          true,
	"not specified": true,
}

type Handler struct {
	config *Config
	prefs  preferences.Store
	logger logger.Logger

	// now is swappable for deterministic date tests.
	now func() time.Time
}

func NewHandler(config *Config, prefs preferences.Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		prefs:  prefs,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
		now:    time.Now,
	}
}

// Execute checks the three mandatory preconditions in fixed order and
// returns a normalized copy of the query. Only the first missing field is
// reported per call. Dates drive date-dependent pricing downstream so they
// are resolved first; budget has a safe default and cannot block; origin
// comes last because stored preferences can satisfy it without new input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	query := input.Query.Clone()

	// 1. Dates
	if strings.TrimSpace(query.TravelDates) == "" {
		h.logger.Info("validation halted: travel dates missing", nil)
		return &Output{Outcome: OutcomeMissingDates, Query: query}, nil
	}
	query.TravelDates = NormalizeDates(query.TravelDates, h.now())

	// 2. Budget: default-injection, never a failure.
	if unspecifiedValues[strings.ToLower(strings.TrimSpace(query.Budget))] {
		query.Budget = h.config.DefaultBudget
		h.logger.Debug("budget defaulted", map[string]interface{}{
			"budget": query.Budget,
		})
	}

	// 3. Origin: explicit value or home airport from preferences.
	origin := strings.ToLower(strings.TrimSpace(query.OriginLocation))
	if origin == "" || origin == "none" || origin == "not specified" || origin == "unknown" {
		home := h.prefs.GetHomeAirport()
		if home == "" {
			h.logger.Info("validation halted: origin missing", nil)
			return &Output{Outcome: OutcomeMissingOrigin, Query: query}, nil
		}
		query.OriginLocation = home
		h.logger.Debug("origin resolved from preferences", map[string]interface{}{
			"origin": home,
		})
	}

	return &Output{Outcome: OutcomeOK, Query: query}, nil
}

// NormalizeDates rolls a relative season or month expression to its next
// occurrence and appends the resolved year. Strings that already carry a
// 4-digit year are returned unchanged, which makes normalization idempotent.
func NormalizeDates(dates string, now time.Time) string {
	if yearPattern.MatchString(dates) {
		return dates
	}

	lower := strings.ToLower(dates)

	for season, members := range seasonMonths {
		if !strings.Contains(lower, season) {
			continue
		}
		return fmt.Sprintf("%s %d", dates, nextSeasonYear(season, members, now))
	}

	for name, month := range monthsByName {
		if !strings.Contains(lower, name) {
			continue
		}
		year := now.Year()
		if now.Month() >= month {
			year++
		}
		return fmt.Sprintf("%s %d", dates, year)
	}

	return dates
}

// nextSeasonYear applies the next-occurrence rule: while the season is in
// progress or already over this calendar year, roll to next year.
func nextSeasonYear(season string, members []time.Month, now time.Time) int {
	current := now.Month()
	for _, m := range members {
		if current == m {
			return now.Year() + 1
		}
	}
	if current < seasonStart[season] {
		return now.Year()
	}
	return now.Year() + 1
}
