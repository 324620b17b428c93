// internal/stages/check-feasibility/budget.go
package checkfeasibility

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseBudget reads a free-form budget phrase into a dollar amount. Ranges
// resolve to their lower bound and a trailing "k" multiplies by a thousand;
// anything unparseable falls back to defaultAmount.
func ParseBudget(budget string, defaultAmount float64) float64 {
	cleaned := strings.ToLower(strings.TrimSpace(budget))
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	if cleaned == "" {
		return defaultAmount
	}

	// a range like "200-400" resolves to its lower bound
	if idx := strings.Index(cleaned, "-"); idx > 0 {
		cleaned = cleaned[:idx]
	}

	match := numberPattern.FindString(cleaned)
	if match == "" {
		return defaultAmount
	}

	amount, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return defaultAmount
	}

	if rest := cleaned[strings.Index(cleaned, match)+len(match):]; strings.HasPrefix(strings.TrimSpace(rest), "k") {
		amount *= 1000
	}

	return amount
}
