// internal/stages/filter-constraints/handler.go
package filterconstraints

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
)

const StageName = "filter-constraints"

// farRegions lists destination tokens that cannot be reached within a short
// travel window from the keyed origin group. Matching is by uppercase
// substring over name, country and region.
var farRegions = map[string][]string{
	"SFO": {
		"GREECE", "HYDRA", "EUROPE", "FRANCE", "ITALY", "SPAIN", "GERMANY",
		"ASIA", "JAPAN", "CHINA", "KOREA", "THAILAND", "SINGAPORE",
		"AUSTRALIA", "NEW ZEALAND", "AFRICA", "SOUTH AMERICA",
	},
	"NYC": {
		"GREECE", "EUROPE", "FRANCE", "ITALY", "SPAIN", "GERMANY",
		"ASIA", "JAPAN", "CHINA", "KOREA", "THAILAND", "SINGAPORE",
		"AUSTRALIA", "NEW ZEALAND", "AFRICA", "SOUTH AMERICA",
	},
}

// originGroups maps origin spellings to a deny-list key.
var originGroups = map[string]string{
	"SFO":           "SFO",
	"SAN FRANCISCO": "SFO",
	"CALIFORNIA":    "SFO",
	"NYC":           "NYC",
	"NEW YORK":      "NYC",
	"JFK":           "NYC",
	"LGA":           "NYC",
}

var hoursPattern = regexp.MustCompile(`(\d+)`)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute drops candidates that are plainly unreachable within the query's
// travel-time limit. The filter only applies when both a maximum travel
// time and an origin are set, and it fails open: unknown origins or
// unparseable limits pass every candidate through unchanged.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	_ = ctx

	out := &Output{Kept: input.Candidates}

	if input.Query.MaxTravelTime == "" || input.Query.OriginLocation == "" {
		return out, nil
	}
	if _, ok := parseHours(input.Query.MaxTravelTime); !ok {
		h.logger.Debug("travel time limit not parseable, skipping filter", map[string]interface{}{
			"maxTravelTime": input.Query.MaxTravelTime,
		})
		return out, nil
	}

	denyList, ok := denyListFor(input.Query.OriginLocation)
	if !ok {
		h.logger.Debug("no distance heuristics for origin, skipping filter", map[string]interface{}{
			"origin": input.Query.OriginLocation,
		})
		return out, nil
	}

	kept := make([]models.DestinationCandidate, 0, len(input.Candidates))
	var dropped []DroppedCandidate

	for _, candidate := range input.Candidates {
		haystack := strings.ToUpper(candidate.Name + " " + candidate.Country + " " + candidate.Region)
		if token, hit := matchDenyList(haystack, denyList); hit {
			dropped = append(dropped, DroppedCandidate{
				Name:   candidate.Name,
				Reason: "beyond travel time limit (" + token + ")",
			})
			continue
		}
		kept = append(kept, candidate)
	}

	if len(dropped) > 0 {
		h.logger.Info("filtered unreachable candidates", map[string]interface{}{
			"origin":  input.Query.OriginLocation,
			"kept":    len(kept),
			"dropped": len(dropped),
		})
	}

	out.Kept = kept
	out.Dropped = dropped
	out.Applied = true
	return out, nil
}

// parseHours reads the first integer in the limit string as a number of
// hours.
func parseHours(limit string) (int, bool) {
	match := hoursPattern.FindString(limit)
	if match == "" {
		return 0, false
	}
	hours, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return hours, true
}

func denyListFor(origin string) ([]string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(origin))
	for spelling, group := range originGroups {
		if strings.Contains(upper, spelling) {
			return farRegions[group], true
		}
	}
	return nil, false
}

func matchDenyList(haystack string, denyList []string) (string, bool) {
	for _, token := range denyList {
		if strings.Contains(haystack, token) {
			return token, true
		}
	}
	return "", false
}
