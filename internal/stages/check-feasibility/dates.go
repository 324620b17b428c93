// internal/stages/check-feasibility/dates.go
package checkfeasibility

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	yearPattern    = regexp.MustCompile(`\b(20\d{2})\b`)
)

// seasonWindowMonth maps a season keyword to the month whose 15th-22nd
// window stands in for the whole season when pricing the trip.
var seasonWindowMonth = map[string]time.Month{
	"summer": time.June,
	"winter": time.December,
	"spring": time.April,
	"fall":   time.October,
	"autumn": time.October,
}

// seasonSpan gives the first and last month of each season, used to decide
// whether a season is upcoming, in progress, or already past this year.
var seasonSpan = map[string][2]time.Month{
	"summer": {time.June, time.August},
	"winter": {time.December, time.February},
	"spring": {time.March, time.May},
	"fall":   {time.September, time.November},
	"autumn": {time.September, time.November},
}

var monthNumbers = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ResolveDates turns a free-form travel date phrase into concrete departure
// and return dates in YYYY-MM-DD form. Seasons and month names resolve to
// the 15th through 22nd of their representative month, picking the next
// occurrence relative to now; explicit ISO dates pass through; anything
// else defaults to a one-week trip starting a week from now.
func ResolveDates(travelDates string, now time.Time) (departure, returnDate string) {
	phrase := strings.ToLower(strings.TrimSpace(travelDates))

	if isoDates := isoDatePattern.FindAllString(phrase, 2); len(isoDates) > 0 {
		departure = isoDates[0]
		if len(isoDates) > 1 {
			return departure, isoDates[1]
		}
		if dep, err := time.Parse("2006-01-02", departure); err == nil {
			return departure, dep.AddDate(0, 0, 7).Format("2006-01-02")
		}
	}

	explicitYear := 0
	if match := yearPattern.FindString(phrase); match != "" {
		parsed, _ := time.Parse("2006", match)
		explicitYear = parsed.Year()
	}

	for season, month := range seasonWindowMonth {
		if strings.Contains(phrase, season) {
			year := explicitYear
			if year == 0 {
				year = nextSeasonYear(season, now)
			}
			return windowFor(year, month)
		}
	}

	for name, month := range monthNumbers {
		if strings.Contains(phrase, name) {
			year := explicitYear
			if year == 0 {
				year = now.Year()
				if now.Month() >= month {
					year++
				}
			}
			return windowFor(year, month)
		}
	}

	dep := now.AddDate(0, 0, 7)
	return dep.Format("2006-01-02"), dep.AddDate(0, 0, 7).Format("2006-01-02")
}

// nextSeasonYear picks the year of the next occurrence of a season: a
// season currently in progress or already past rolls to next year, one
// still ahead uses the current year. Winter spans the year boundary, so a
// January or February date is treated as in progress.
func nextSeasonYear(season string, now time.Time) int {
	span, ok := seasonSpan[season]
	if !ok {
		return now.Year()
	}
	start, end := span[0], span[1]
	month := now.Month()

	inProgress := false
	if start <= end {
		inProgress = month >= start && month <= end
	} else {
		inProgress = month >= start || month <= end
	}
	if inProgress {
		return now.Year() + 1
	}
	if month < start {
		return now.Year()
	}
	return now.Year() + 1
}

func windowFor(year int, month time.Month) (string, string) {
	dep := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
	ret := time.Date(year, month, 22, 0, 0, 0, 0, time.UTC)
	return dep.Format("2006-01-02"), ret.Format("2006-01-02")
}

// nightsBetween returns the whole nights between two ISO dates, or fallback
// when either date fails to parse or the span is not positive.
func nightsBetween(departure, returnDate string, fallback int) int {
	dep, err1 := time.Parse("2006-01-02", departure)
	ret, err2 := time.Parse("2006-01-02", returnDate)
	if err1 != nil || err2 != nil {
		return fallback
	}
	nights := int(ret.Sub(dep).Hours() / 24)
	if nights <= 0 {
		return fallback
	}
	return nights
}
