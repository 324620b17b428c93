// internal/stages/extract-parameters/handler.go
package extractparameters

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/validation"
	"trip-planner/internal/models"
	"trip-planner/internal/providers/llm"
)

const StageName = "extract-parameters"

// querySchema is the fixed shape the LLM is instructed to emit. Responses
// that fail this schema are discarded in favor of the regex fallback.
const querySchema = `{
	"type": "object",
	"properties": {
		"query": {"type": ["string", "null"]},
		"origin_location": {"type": ["string", "null"]},
		"max_travel_time": {"type": ["string", "null"]},
		"travel_dates": {"type": ["string", "null"]},
		"budget": {"type": ["string", "null"]},
		"interests": {"type": ["array", "null"], "items": {"type": "string"}},
		"travel_style": {"type": ["string", "null"]},
		"traveler_type": {"type": ["string", "null"]},
		"group_size": {"type": ["integer", "null"]},
		"age_range": {"type": ["string", "null"]},
		"mobility_requirements": {"type": ["string", "null"]},
		"seasonal_preference": {"type": ["string", "null"]}
	},
	"required": ["query"]
}`

var (
	// Capitalization is significant here: origins are proper nouns or
	// airport codes, and (?i) would turn every lowercase word into a match.
	originFromPattern = regexp.MustCompile(`\b(?:from|From)\s+([A-Z]{3}\b|[A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)?)`)
	originToPattern   = regexp.MustCompile(`\b([A-Z]{3}|[A-Z][a-zA-Z]+)\s+to\b`)
	durationPattern   = regexp.MustCompile(`(?i)(\d+)\s*hours?`)
	budgetPattern     = regexp.MustCompile(`\$\s?[\d,]+(?:\.\d+)?k?`)
)

// Keyword vocabularies for the deterministic fallback extractor.
var travelerTypeKeywords = []struct {
	keywords []string
	value    models.TravelerType
}{
	{[]string{"family", "kids", "children"}, models.TravelerFamilyWithKids},
	{[]string{"couple", "romantic", "honeymoon", "anniversary"}, models.TravelerCouple},
	{[]string{"solo", "alone", "by myself"}, models.TravelerSolo},
	{[]string{"senior", "elderly", "older adults", "retired"}, models.TravelerOlderAdults},
	{[]string{"friends", "group of", "bachelor", "bachelorette"}, models.TravelerGroupFriends},
	{[]string{"business", "conference", "work trip"}, models.TravelerBusiness},
}

var interestKeywords = []string{
	"beach", "beaches", "hiking", "history", "food", "culture", "museums",
	"nightlife", "skiing", "wine", "shopping", "wildlife", "snorkeling",
	"surfing", "golf", "spa",
}

var seasonKeywords = []string{"summer", "winter", "spring", "fall", "autumn"}

var monthKeywords = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

type Handler struct {
	config    *Config
	completer llm.Completer
	logger    logger.Logger
}

func NewHandler(config *Config, completer llm.Completer, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute turns free text into a structured TripQuery. It never fails: any
// LLM or parse problem falls back to the deterministic extractor, so the
// returned error is always nil and kept only for interface symmetry with the
// other stages.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if query, ok := h.extractViaLLM(ctx, input.Request); ok {
		return &Output{Query: query}, nil
	}

	h.logger.Warn("falling back to heuristic extraction", map[string]interface{}{
		"requestChars": len(input.Request),
	})

	return &Output{
		Query:        ExtractHeuristic(input.Request),
		UsedFallback: true,
	}, nil
}

func (h *Handler) extractViaLLM(ctx context.Context, request string) (models.TripQuery, bool) {
	prompt := buildExtractionPrompt(request)

	response, err := h.completer.Complete(ctx, prompt)
	if err != nil {
		h.logger.Warn("extraction completion failed", map[string]interface{}{
			"error": err.Error(),
		})
		return models.TripQuery{}, false
	}

	raw := llm.ExtractJSONObject(response)
	if raw == "" {
		return models.TripQuery{}, false
	}

	result, err := validation.ValidateJSON(raw, querySchema)
	if err != nil || !result.Valid {
		h.logger.Warn("extraction response failed schema validation", map[string]interface{}{
			"valid": result != nil && result.Valid,
		})
		return models.TripQuery{}, false
	}

	var payload struct {
		Query                *string  `json:"query"`
		OriginLocation       *string  `json:"origin_location"`
		MaxTravelTime        *string  `json:"max_travel_time"`
		TravelDates          *string  `json:"travel_dates"`
		Budget               *string  `json:"budget"`
		Interests            []string `json:"interests"`
		TravelStyle          *string  `json:"travel_style"`
		TravelerType         *string  `json:"traveler_type"`
		GroupSize            *int     `json:"group_size"`
		AgeRange             *string  `json:"age_range"`
		MobilityRequirements *string  `json:"mobility_requirements"`
		SeasonalPreference   *string  `json:"seasonal_preference"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.TripQuery{}, false
	}

	query := models.TripQuery{
		Query:                deref(payload.Query),
		OriginLocation:       deref(payload.OriginLocation),
		MaxTravelTime:        deref(payload.MaxTravelTime),
		TravelDates:          deref(payload.TravelDates),
		Budget:               deref(payload.Budget),
		Interests:            payload.Interests,
		TravelStyle:          deref(payload.TravelStyle),
		TravelerType:         models.TravelerType(deref(payload.TravelerType)),
		AgeRange:             deref(payload.AgeRange),
		MobilityRequirements: deref(payload.MobilityRequirements),
		SeasonalPreference:   deref(payload.SeasonalPreference),
	}
	if payload.GroupSize != nil {
		query.GroupSize = *payload.GroupSize
	}
	if query.Query == "" {
		query.Query = request
	}

	return query, true
}

func buildExtractionPrompt(request string) string {
	return fmt.Sprintf(`Extract destination research parameters from this travel request:

Request: %q

Extract and return a JSON object with these fields:
{
  "query": "The main destination query or description",
  "origin_location": "Starting location if mentioned (e.g., 'SFO', 'New York', 'London')",
  "max_travel_time": "Maximum travel time if specified (e.g., '3 hours', '5 hours')",
  "travel_dates": "Travel dates if mentioned (e.g., 'June 2024', 'summer', 'next month')",
  "budget": "Budget constraints if mentioned (e.g., '$2000', 'budget-friendly', 'luxury')",
  "interests": ["List of interests mentioned (e.g., 'beaches', 'history', 'food')"],
  "travel_style": "Travel style if mentioned (e.g., 'relaxing', 'adventure', 'cultural')",
  "traveler_type": "One of: family_with_kids, couple, solo, older_adults, group_friends, business, leisure",
  "group_size": 2,
  "age_range": "Age range if mentioned",
  "mobility_requirements": "Mobility requirements if mentioned",
  "seasonal_preference": "Preferred season if mentioned"
}

If a field is not mentioned, use null. Be specific and accurate. Respond with only the JSON object.`, request)
}

// ExtractHeuristic is the deterministic regex-based extractor used when the
// LLM response is unusable. It always produces a best-effort TripQuery.
func ExtractHeuristic(request string) models.TripQuery {
	lower := strings.ToLower(request)

	query := models.TripQuery{
		Query:        request,
		TravelerType: models.TravelerLeisure,
	}

	// Origin: "from SFO" wins over "<city> to".
	if m := originFromPattern.FindStringSubmatch(request); m != nil {
		query.OriginLocation = m[1]
	} else if m := originToPattern.FindStringSubmatch(request); m != nil {
		query.OriginLocation = m[1]
	}

	// Travel time: an hour count only counts as a constraint when it sits in
	// a travel context.
	if m := durationPattern.FindStringSubmatch(request); m != nil {
		if strings.Contains(lower, "from") || strings.Contains(lower, "flight") || strings.Contains(lower, "drive") {
			query.MaxTravelTime = m[1] + " hours"
		}
	}

	// Budget: explicit dollar amount, else style keywords.
	if m := budgetPattern.FindString(request); m != "" {
		query.Budget = strings.ReplaceAll(m, " ", "")
	} else if strings.Contains(lower, "budget-friendly") || strings.Contains(lower, "cheap") {
		query.Budget = "budget-friendly"
	} else if strings.Contains(lower, "luxury") {
		query.Budget = "luxury"
	}

	for _, entry := range travelerTypeKeywords {
		if containsAny(lower, entry.keywords) {
			query.TravelerType = entry.value
			break
		}
	}

	switch {
	case containsAny(lower, []string{"kids", "children"}):
		query.AgeRange = "family"
	case containsAny(lower, []string{"senior", "elderly", "retired"}):
		query.AgeRange = "senior"
	case strings.Contains(lower, "young"):
		query.AgeRange = "young_adult"
	}

	if containsAny(lower, []string{"wheelchair", "accessible", "mobility"}) {
		query.MobilityRequirements = "limited_mobility"
	}

	for _, season := range seasonKeywords {
		if strings.Contains(lower, season) {
			query.SeasonalPreference = season
			query.TravelDates = season
			break
		}
	}
	if query.TravelDates == "" {
		for _, month := range monthKeywords {
			if strings.Contains(lower, month) {
				query.TravelDates = month
				break
			}
		}
	}

	for _, interest := range interestKeywords {
		if strings.Contains(lower, interest) {
			query.Interests = appendUnique(query.Interests, canonicalInterest(interest))
		}
	}

	return query
}

func canonicalInterest(interest string) string {
	if interest == "beach" {
		return "beaches"
	}
	return interest
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
