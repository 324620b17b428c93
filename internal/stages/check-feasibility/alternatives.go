// internal/stages/check-feasibility/alternatives.go
package checkfeasibility

import "strings"

// nearbyAlternatives lists closer substitute destinations per origin
// airport, ordered by preference.
var nearbyAlternatives = map[string][]string{
	"SFO": {
		"Monterey, CA", "Carmel, CA", "Napa Valley, CA",
		"Lake Tahoe, CA", "Santa Barbara, CA", "San Diego, CA",
	},
	"NYC": {
		"Boston, MA", "Washington, DC", "Philadelphia, PA",
		"Montreal, Canada", "Toronto, Canada", "Miami, FL",
	},
	"LAX": {
		"San Diego, CA", "Las Vegas, NV", "San Francisco, CA",
		"Phoenix, AZ", "Seattle, WA", "Portland, OR",
	},
}

var alternativeOriginGroups = map[string]string{
	"SFO":           "SFO",
	"SAN FRANCISCO": "SFO",
	"NYC":           "NYC",
	"NEW YORK":      "NYC",
	"JFK":           "NYC",
	"LGA":           "NYC",
	"LAX":           "LAX",
	"LOS ANGELES":   "LAX",
}

// AlternativesFor suggests up to three substitute destinations near the
// origin, excluding the one that failed the check.
func AlternativesFor(origin, excludeDestination string) []string {
	upper := strings.ToUpper(strings.TrimSpace(origin))

	var pool []string
	for spelling, group := range alternativeOriginGroups {
		if strings.Contains(upper, spelling) {
			pool = nearbyAlternatives[group]
			break
		}
	}
	if pool == nil {
		return nil
	}

	alternatives := make([]string, 0, 3)
	for _, alt := range pool {
		if strings.EqualFold(alt, strings.TrimSpace(excludeDestination)) {
			continue
		}
		alternatives = append(alternatives, alt)
		if len(alternatives) == 3 {
			break
		}
	}
	return alternatives
}
