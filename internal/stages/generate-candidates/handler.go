// internal/stages/generate-candidates/handler.go
package generatecandidates

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
	"trip-planner/internal/providers/llm"
	"trip-planner/internal/providers/websearch"
)

const StageName = "generate-candidates"

// Search query weights. Higher weight means the query targets a harder
// constraint, so its hits carry more relevance.
const (
	weightGeneral      = 1.0
	weightInterest     = 1.1
	weightSeasonal     = 1.1
	weightBudget       = 1.2
	weightTravelerType = 1.3
	weightDistance     = 1.4
)

type Handler struct {
	config    *Config
	completer llm.Completer
	searcher  websearch.Searcher
	logger    logger.Logger
}

func NewHandler(config *Config, completer llm.Completer, searcher websearch.Searcher, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		searcher:  searcher,
		logger:    log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute produces 3-5 scored destination candidates for the query, split
// into primary and alternative sets. Web search evidence seeds the
// extraction when available; otherwise the model's own knowledge is the
// only source.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	var hits []models.ScoredHit
	if h.searcher != nil && h.searcher.Available() {
		hits = h.gatherScoredHits(ctx, input.Query)
	} else {
		h.logger.Info("web search unavailable, relying on model knowledge", nil)
	}

	candidates, recommendation := h.extractCandidates(ctx, input, hits)

	primary := candidates
	var alternatives []models.DestinationCandidate
	if len(candidates) > h.config.PrimaryCount {
		primary = candidates[:h.config.PrimaryCount]
		alternatives = candidates[h.config.PrimaryCount:]
	}

	h.logger.Info("candidates generated", map[string]interface{}{
		"requestType":  string(input.Type),
		"hits":         len(hits),
		"primary":      len(primary),
		"alternatives": len(alternatives),
	})

	return &Output{
		Primary:        primary,
		Alternatives:   alternatives,
		Recommendation: recommendation,
		Hits:           hits,
	}, nil
}

// gatherScoredHits runs every weighted query, names each snippet, scores it
// against the query's criteria, and dedupes by destination name keeping the
// maximum score.
func (h *Handler) gatherScoredHits(ctx context.Context, query models.TripQuery) []models.ScoredHit {
	byName := make(map[string]*models.ScoredHit)

	for _, wq := range BuildSearchQueries(query) {
		results := h.searcher.Search(ctx, wq.text, h.config.ResultsPerQuery)
		if len(results) == 0 {
			continue
		}

		names := h.nameSnippets(ctx, results)

		for i, result := range results {
			if i >= len(names) || names[i] == "" {
				continue
			}
			name := names[i]

			breakdown := scoreSnippet(result.Title+" "+result.Snippet, wq.criteria, query)
			score := 0.0
			for _, v := range breakdown {
				score += v
			}
			score *= wq.weight

			key := strings.ToLower(name)
			if existing, ok := byName[key]; ok {
				if score > existing.Score {
					existing.Score = score
					existing.Snippet = result.Snippet
					existing.Link = result.Link
					existing.QueryLabel = wq.label
				}
				for k, v := range breakdown {
					if v > existing.Breakdown[k] {
						existing.Breakdown[k] = v
					}
				}
				continue
			}

			byName[key] = &models.ScoredHit{
				Name:       name,
				Snippet:    result.Snippet,
				Link:       result.Link,
				Score:      score,
				Breakdown:  breakdown,
				QueryLabel: wq.label,
			}
		}
	}

	hits := make([]models.ScoredHit, 0, len(byName))
	for _, hit := range byName {
		hits = append(hits, *hit)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > h.config.MaxHits {
		hits = hits[:h.config.MaxHits]
	}
	return hits
}

// nameSnippets asks the model for one destination name per snippet, aligned
// by index; an empty string discards the snippet.
func (h *Handler) nameSnippets(ctx context.Context, results []websearch.Result) []string {
	var sb strings.Builder
	sb.WriteString("For each numbered travel search snippet below, name the single destination it is about (city or place name, with state/country if clear). If a snippet names no destination, use \"\".\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, r.Title, r.Snippet)
	}
	sb.WriteString("\nRespond with only a JSON array of strings, one entry per snippet, in order.")

	response, err := h.completer.Complete(ctx, sb.String())
	if err != nil {
		h.logger.Warn("snippet naming failed, discarding batch", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	cleaned := llm.StripCodeFences(response)
	var names []string
	if err := json.Unmarshal([]byte(cleaned), &names); err != nil {
		return nil
	}
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}
	return names
}

// BuildSearchQueries produces the weighted query set for a trip query: one
// general query plus one per specified constraint dimension.
func BuildSearchQueries(query models.TripQuery) []weightedQuery {
	queries := []weightedQuery{
		{
			label:    "general",
			text:     "best travel destinations " + query.Query,
			weight:   weightGeneral,
			criteria: []string{"general"},
		},
	}

	for _, interest := range query.Interests {
		queries = append(queries, weightedQuery{
			label:    "interest:" + interest,
			text:     fmt.Sprintf("best destinations for %s %s", interest, query.Query),
			weight:   weightInterest,
			criteria: []string{"interest:" + interest},
		})
	}

	if query.Budget != "" {
		queries = append(queries, weightedQuery{
			label:    "budget",
			text:     fmt.Sprintf("%s destinations %s budget", query.Query, query.Budget),
			weight:   weightBudget,
			criteria: []string{"budget"},
		})
	}

	if query.SeasonalPreference != "" || query.TravelDates != "" {
		season := query.SeasonalPreference
		if season == "" {
			season = query.TravelDates
		}
		queries = append(queries, weightedQuery{
			label:    "seasonal",
			text:     fmt.Sprintf("best destinations to visit in %s %s", season, query.Query),
			weight:   weightSeasonal,
			criteria: []string{"seasonal"},
		})
	}

	if query.TravelerType != "" && query.TravelerType != models.TravelerLeisure {
		queries = append(queries, weightedQuery{
			label:    "traveler:" + string(query.TravelerType),
			text:     fmt.Sprintf("best %s destinations %s", travelerSearchTerm(query.TravelerType), query.Query),
			weight:   weightTravelerType,
			criteria: []string{"traveler:" + string(query.TravelerType)},
		})
	}

	if query.MaxTravelTime != "" && query.OriginLocation != "" {
		queries = append(queries, weightedQuery{
			label:    "distance",
			text:     fmt.Sprintf("destinations within %s of %s %s", query.MaxTravelTime, query.OriginLocation, query.Query),
			weight:   weightDistance,
			criteria: []string{"distance"},
		})
	}

	return queries
}

func travelerSearchTerm(t models.TravelerType) string {
	switch t {
	case models.TravelerFamilyWithKids:
		return "family friendly"
	case models.TravelerCouple:
		return "romantic"
	case models.TravelerSolo:
		return "solo travel"
	case models.TravelerOlderAdults:
		return "senior friendly"
	case models.TravelerGroupFriends:
		return "group trip"
	case models.TravelerBusiness:
		return "business travel"
	default:
		return string(t)
	}
}

// scoreSnippet applies the fixed per-criterion heuristics against a snippet.
func scoreSnippet(text string, criteria []string, query models.TripQuery) map[string]float64 {
	lower := strings.ToLower(text)
	breakdown := make(map[string]float64, len(criteria))

	for _, criterion := range criteria {
		switch {
		case criterion == "general":
			if matchesAnyToken(lower, query.Query) {
				breakdown[criterion] = 0.5
			}

		case strings.HasPrefix(criterion, "interest:"):
			interest := strings.TrimPrefix(criterion, "interest:")
			if strings.Contains(lower, strings.ToLower(interest)) {
				breakdown[criterion] = 0.9
			}

		case criterion == "budget":
			if strings.Contains(lower, "budget") || strings.Contains(lower, "cheap") ||
				strings.Contains(lower, "affordable") || strings.Contains(lower, "luxury") {
				breakdown[criterion] = 0.8
			}

		case criterion == "seasonal":
			season := strings.ToLower(query.SeasonalPreference)
			if season == "" {
				season = strings.ToLower(query.TravelDates)
			}
			if season != "" && matchesAnyToken(lower, season) {
				breakdown[criterion] = 0.7
			}

		case strings.HasPrefix(criterion, "traveler:"):
			if travelerScore(lower, query.TravelerType) {
				breakdown[criterion] = 0.9
			}

		case criterion == "distance":
			if strings.Contains(lower, "hour") || strings.Contains(lower, "drive") ||
				strings.Contains(lower, "flight") || strings.Contains(lower, "nearby") {
				breakdown[criterion] = 0.8
			}
		}
	}

	return breakdown
}

func travelerScore(lower string, t models.TravelerType) bool {
	switch t {
	case models.TravelerFamilyWithKids:
		return strings.Contains(lower, "family") || strings.Contains(lower, "kids")
	case models.TravelerCouple:
		return strings.Contains(lower, "romantic") || strings.Contains(lower, "couple")
	case models.TravelerSolo:
		return strings.Contains(lower, "solo")
	case models.TravelerOlderAdults:
		return strings.Contains(lower, "senior") || strings.Contains(lower, "accessible")
	case models.TravelerGroupFriends:
		return strings.Contains(lower, "group") || strings.Contains(lower, "friends")
	case models.TravelerBusiness:
		return strings.Contains(lower, "business")
	default:
		return false
	}
}

func matchesAnyToken(lower, source string) bool {
	for _, token := range strings.Fields(strings.ToLower(source)) {
		if len(token) < 4 {
			continue
		}
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// extractCandidates turns the query plus ordered search evidence into full
// candidate records via one model call, instructing the model to respect the
// hit ordering as a relevance prior.
func (h *Handler) extractCandidates(ctx context.Context, input *Input, hits []models.ScoredHit) ([]models.DestinationCandidate, string) {
	prompt := h.buildCandidatePrompt(input, hits)

	response, err := h.completer.Complete(ctx, prompt)
	if err != nil {
		h.logger.Warn("candidate extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ""
	}

	candidates := parseCandidates(response)
	for i := range candidates {
		// carry the search relevance onto the extracted records
		for _, hit := range hits {
			if strings.EqualFold(hit.Name, candidates[i].Name) {
				candidates[i].RelevanceScore = hit.Score
				break
			}
		}
	}

	if len(candidates) > h.config.MaxCandidates {
		candidates = candidates[:h.config.MaxCandidates]
	}

	return candidates, extractRecommendation(response)
}

func (h *Handler) buildCandidatePrompt(input *Input, hits []models.ScoredHit) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Research travel destinations for this request: %s\n\n", input.Query.Query)

	if input.Query.OriginLocation != "" {
		fmt.Fprintf(&sb, "Origin: %s\n", input.Query.OriginLocation)
	}
	if input.Query.MaxTravelTime != "" {
		fmt.Fprintf(&sb, "Maximum travel time: %s\n", input.Query.MaxTravelTime)
	}
	if input.Query.TravelDates != "" {
		fmt.Fprintf(&sb, "Travel dates: %s\n", input.Query.TravelDates)
	}
	if input.Query.Budget != "" {
		fmt.Fprintf(&sb, "Budget: %s\n", input.Query.Budget)
	}
	if len(input.Query.Interests) > 0 {
		fmt.Fprintf(&sb, "Interests: %s\n", strings.Join(input.Query.Interests, ", "))
	}
	if input.Query.TravelerType != "" {
		fmt.Fprintf(&sb, "Traveler type: %s\n", input.Query.TravelerType)
	}

	if len(hits) > 0 {
		sb.WriteString("\nWeb search found these destinations, ordered most-relevant first. Treat this ordering as a relevance prior and prefer the top entries when they fit the constraints:\n")
		for i, hit := range hits {
			fmt.Fprintf(&sb, "%d. %s (score %.2f): %s\n", i+1, hit.Name, hit.Score, hit.Snippet)
		}
	}

	fmt.Fprintf(&sb, `
Suggest %d to %d destinations that satisfy every stated constraint. Respond with JSON only:
{
  "destinations": [
    {
      "name": "...",
      "country": "...",
      "region": "...",
      "description": "...",
      "best_time_to_visit": "...",
      "attractions": ["..."],
      "activities": ["..."],
      "climate": "...",
      "visa_requirements": "...",
      "language": "...",
      "currency": "...",
      "safety_rating": "...",
      "family_friendly_score": 7,
      "romantic_appeal": 6,
      "nightlife_rating": 5,
      "business_friendly": false,
      "crowd_level": "moderate"
    }
  ],
  "recommendation": "A short narrative recommendation comparing the options."
}`, 3, h.config.MaxCandidates)

	return sb.String()
}

type candidatePayload struct {
	Destinations []struct {
		Name                string   `json:"name"`
		Country             string   `json:"country"`
		Region              string   `json:"region"`
		Description         string   `json:"description"`
		BestTimeToVisit     string   `json:"best_time_to_visit"`
		Attractions         []string `json:"attractions"`
		Activities          []string `json:"activities"`
		Climate             string   `json:"climate"`
		VisaRequirements    string   `json:"visa_requirements"`
		Language            string   `json:"language"`
		Currency            string   `json:"currency"`
		SafetyRating        string   `json:"safety_rating"`
		FamilyFriendlyScore int      `json:"family_friendly_score"`
		RomanticAppeal      int      `json:"romantic_appeal"`
		NightlifeRating     int      `json:"nightlife_rating"`
		BusinessFriendly    bool     `json:"business_friendly"`
		CrowdLevel          string   `json:"crowd_level"`
	} `json:"destinations"`
	Recommendation string `json:"recommendation"`
}

func parseCandidates(response string) []models.DestinationCandidate {
	raw := llm.ExtractJSONObject(response)
	if raw == "" {
		return nil
	}

	var payload candidatePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	candidates := make([]models.DestinationCandidate, 0, len(payload.Destinations))
	for _, d := range payload.Destinations {
		if strings.TrimSpace(d.Name) == "" {
			continue
		}
		candidates = append(candidates, models.DestinationCandidate{
			Name:                d.Name,
			Country:             d.Country,
			Region:              d.Region,
			Description:         d.Description,
			BestTimeToVisit:     d.BestTimeToVisit,
			Attractions:         d.Attractions,
			Activities:          d.Activities,
			Climate:             d.Climate,
			VisaRequirements:    d.VisaRequirements,
			Language:            d.Language,
			Currency:            d.Currency,
			SafetyRating:        d.SafetyRating,
			FamilyFriendlyScore: d.FamilyFriendlyScore,
			RomanticAppeal:      d.RomanticAppeal,
			NightlifeRating:     d.NightlifeRating,
			BusinessFriendly:    d.BusinessFriendly,
			CrowdLevel:          d.CrowdLevel,
		})
	}

	return candidates
}

func extractRecommendation(response string) string {
	raw := llm.ExtractJSONObject(response)
	if raw == "" {
		return ""
	}
	var payload candidatePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ""
	}
	return payload.Recommendation
}
