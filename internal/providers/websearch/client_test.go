// internal/providers/websearch/client_test.go
package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/logger"
)

func searchPayload(items ...[3]string) string {
	type item struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	}
	payload := struct {
		Items []item `json:"items"`
	}{}
	for _, it := range items {
		payload.Items = append(payload.Items, item{Title: it[0], Snippet: it[1], Link: it[2]})
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// ==========================
// Search Tests
// ==========================

func TestSearch_Success(t *testing.T) {
	var gotQuery, gotKey, gotCx, gotNum string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		gotCx = r.URL.Query().Get("cx")
		gotNum = r.URL.Query().Get("num")
		w.Write([]byte(searchPayload(
			[3]string{"Santa Barbara", "beaches and wine country", "https://example.com/sb"},
			[3]string{"Monterey", "aquarium town", "https://example.com/mt"},
		)))
	}))
	defer server.Close()

	client := NewClient(&Config{
		BaseURL:  server.URL,
		APIKey:   "k",
		EngineID: "cx-1",
	}, logger.NewTestLogger(t))

	results := client.Search(context.Background(), "best california beaches", 5)

	require.Len(t, results, 2)
	assert.Equal(t, "Santa Barbara", results[0].Title)
	assert.Equal(t, "best california beaches", gotQuery)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "cx-1", gotCx)
	assert.Equal(t, "5", gotNum)
}

func TestSearch_DedupesLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPayload(
			[3]string{"A", "first", "https://example.com/x"},
			[3]string{"B", "duplicate link", "https://example.com/x"},
			[3]string{"C", "third", "https://example.com/y"},
		)))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "k", EngineID: "cx"}, logger.NewTestLogger(t))
	results := client.Search(context.Background(), "q", 5)

	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Title)
	assert.Equal(t, "C", results[1].Title)
}

func TestSearch_DegradesOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "k", EngineID: "cx"}, logger.NewTestLogger(t))
	results := client.Search(context.Background(), "q", 5)

	assert.Empty(t, results, "failures degrade to no results, never an error")
}

func TestSearch_UnavailableWithoutCredentials(t *testing.T) {
	client := NewClient(&Config{}, logger.NewTestLogger(t))

	assert.False(t, client.Available())
	assert.Nil(t, client.Search(context.Background(), "q", 5))
}

func TestSearch_CapsResultCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPayload(
			[3]string{"A", "", "https://example.com/a"},
			[3]string{"B", "", "https://example.com/b"},
			[3]string{"C", "", "https://example.com/c"},
		)))
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "k", EngineID: "cx"}, logger.NewTestLogger(t))
	results := client.Search(context.Background(), "q", 2)

	assert.Len(t, results, 2)
}
