// internal/stages/generate-candidates/handler_test.go
package generatecandidates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
	"trip-planner/internal/providers/websearch"
)

// ==========================
// Test Helper Functions
// ==========================

// scriptedCompleter answers prompts by substring match so one stub can
// serve both the snippet-naming and candidate-extraction calls.
type scriptedCompleter struct {
	namingResponse    string
	candidateResponse string
	calls             int
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if strings.Contains(prompt, "numbered travel search snippet") {
		return s.namingResponse, nil
	}
	return s.candidateResponse, nil
}

type stubSearcher struct {
	results   []websearch.Result
	available bool
	queries   []string
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) []websearch.Result {
	s.queries = append(s.queries, query)
	return s.results
}

func (s *stubSearcher) Available() bool { return s.available }

func candidateJSON(names ...string) string {
	var sb strings.Builder
	sb.WriteString(`{"destinations": [`)
	for i, name := range names {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"name": "` + name + `", "country": "USA"}`)
	}
	sb.WriteString(`], "recommendation": "Go with the first one."}`)
	return sb.String()
}

// ==========================
// Query Construction Tests
// ==========================

func TestBuildSearchQueries(t *testing.T) {
	query := models.TripQuery{
		Query:              "relaxing beach trip",
		OriginLocation:     "SFO",
		MaxTravelTime:      "3 hours",
		Budget:             "$2000",
		Interests:          []string{"beaches", "food"},
		TravelerType:       models.TravelerFamilyWithKids,
		SeasonalPreference: "summer",
	}

	queries := BuildSearchQueries(query)

	weights := make(map[string]float64, len(queries))
	for _, q := range queries {
		weights[q.label] = q.weight
	}

	assert.Equal(t, 1.0, weights["general"])
	assert.Equal(t, 1.1, weights["interest:beaches"])
	assert.Equal(t, 1.1, weights["interest:food"])
	assert.Equal(t, 1.2, weights["budget"])
	assert.Equal(t, 1.1, weights["seasonal"])
	assert.Equal(t, 1.3, weights["traveler:family_with_kids"])
	assert.Equal(t, 1.4, weights["distance"])
	assert.Len(t, queries, 7)
}

func TestBuildSearchQueries_MinimalQuery(t *testing.T) {
	queries := BuildSearchQueries(models.TripQuery{Query: "somewhere quiet"})

	require.Len(t, queries, 1)
	assert.Equal(t, "general", queries[0].label)
}

func TestBuildSearchQueries_DistanceNeedsBothFields(t *testing.T) {
	queries := BuildSearchQueries(models.TripQuery{
		Query:         "getaway",
		MaxTravelTime: "3 hours",
	})

	for _, q := range queries {
		assert.NotEqual(t, "distance", q.label)
	}
}

// ==========================
// Snippet Scoring Tests
// ==========================

func TestScoreSnippet(t *testing.T) {
	query := models.TripQuery{
		Query:              "beach vacation",
		TravelerType:       models.TravelerFamilyWithKids,
		SeasonalPreference: "summer",
	}

	tests := []struct {
		name     string
		text     string
		criteria []string
		want     map[string]float64
	}{
		{
			name:     "family keyword scores high",
			text:     "Top 10 family resorts with kids clubs",
			criteria: []string{"traveler:family_with_kids"},
			want:     map[string]float64{"traveler:family_with_kids": 0.9},
		},
		{
			name:     "interest match",
			text:     "The best beaches on the west coast",
			criteria: []string{"interest:beaches"},
			want:     map[string]float64{"interest:beaches": 0.9},
		},
		{
			name:     "budget vocabulary",
			text:     "Affordable weekend escapes",
			criteria: []string{"budget"},
			want:     map[string]float64{"budget": 0.8},
		},
		{
			name:     "seasonal match",
			text:     "Where to go this summer",
			criteria: []string{"seasonal"},
			want:     map[string]float64{"seasonal": 0.7},
		},
		{
			name:     "no match scores nothing",
			text:     "Corporate retreat venues",
			criteria: []string{"interest:beaches"},
			want:     map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreSnippet(tt.text, tt.criteria, query)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_WithSearchEvidence(t *testing.T) {
	searcher := &stubSearcher{
		available: true,
		results: []websearch.Result{
			{Title: "Santa Barbara beaches", Snippet: "Great beaches for families with kids", Link: "https://example.com/sb"},
			{Title: "Monterey guide", Snippet: "Aquarium and coastal drives", Link: "https://example.com/mt"},
		},
	}
	completer := &scriptedCompleter{
		namingResponse:    `["Santa Barbara, CA", "Monterey, CA"]`,
		candidateResponse: candidateJSON("Santa Barbara, CA", "Monterey, CA", "Carmel, CA", "San Diego, CA"),
	}

	h := NewHandler(LoadConfig(), completer, searcher, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{
		Query: models.TripQuery{
			Query:        "beach trip",
			Interests:    []string{"beaches"},
			TravelerType: models.TravelerFamilyWithKids,
		},
		Type: models.RequestAbstract,
	})

	require.NoError(t, err)
	assert.Len(t, out.Primary, 3)
	assert.Len(t, out.Alternatives, 1)
	assert.Equal(t, "Go with the first one.", out.Recommendation)
	assert.NotEmpty(t, out.Hits)
	assert.GreaterOrEqual(t, len(searcher.queries), 3, "general, interest and traveler queries expected")

	// The extracted record inherits the search relevance score.
	assert.Greater(t, out.Primary[0].RelevanceScore+out.Primary[1].RelevanceScore, 0.0)
}

func TestExecute_DedupesHitsByName(t *testing.T) {
	searcher := &stubSearcher{
		available: true,
		results: []websearch.Result{
			{Title: "Santa Barbara", Snippet: "beaches and family fun with kids", Link: "https://example.com/a"},
		},
	}
	completer := &scriptedCompleter{
		namingResponse:    `["Santa Barbara, CA"]`,
		candidateResponse: candidateJSON("Santa Barbara, CA"),
	}

	h := NewHandler(LoadConfig(), completer, searcher, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{
		Query: models.TripQuery{
			Query:        "beach trip",
			Interests:    []string{"beaches"},
			TravelerType: models.TravelerFamilyWithKids,
		},
	})

	require.NoError(t, err)
	// The same destination surfaces from several queries but appears once,
	// carrying the best score.
	require.Len(t, out.Hits, 1)
	assert.Equal(t, "Santa Barbara, CA", out.Hits[0].Name)
	assert.Greater(t, out.Hits[0].Score, 0.0)
}

func TestExecute_SearchUnavailable(t *testing.T) {
	completer := &scriptedCompleter{
		candidateResponse: candidateJSON("Lisbon", "Porto", "Seville"),
	}

	h := NewHandler(LoadConfig(), completer, &stubSearcher{available: false}, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{
		Query: models.TripQuery{Query: "european city break"},
	})

	require.NoError(t, err)
	assert.Empty(t, out.Hits)
	assert.Len(t, out.Primary, 3)
	assert.Empty(t, out.Alternatives)
	assert.Equal(t, 1, completer.calls, "no snippet naming without search results")
}

func TestExecute_CapsCandidates(t *testing.T) {
	completer := &scriptedCompleter{
		candidateResponse: candidateJSON("A", "B", "C", "D", "E", "F", "G"),
	}

	h := NewHandler(LoadConfig(), completer, &stubSearcher{}, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{
		Query: models.TripQuery{Query: "anywhere"},
	})

	require.NoError(t, err)
	assert.Len(t, out.Primary, 3)
	assert.Len(t, out.Alternatives, 2, "total capped at five candidates")
}
