// internal/preferences/store_test.go
package preferences

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/logger"
)

func TestNewFileStore_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"home_airport": "JFK",
		"default_budget": "$3000",
		"preferred_airlines": ["Delta"],
		"dietary_restrictions": ["vegetarian"]
	}`), 0o644))

	store := NewFileStore(path, logger.NewTestLogger(t))

	assert.Equal(t, "JFK", store.GetHomeAirport())
	assert.Equal(t, "$3000", store.GetDefaultBudget())
	assert.Equal(t, []string{"Delta"}, store.GetPreferredAirlines())
	assert.Equal(t, []string{"vegetarian"}, store.GetDietaryRestrictions())
}

func TestNewFileStore_HotelBlockAndSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"home_airport": "SFO",
		"travel_style": "comfortable",
		"preferred_airlines": ["United"],
		"hotels": {"preferred_chains": ["Hyatt"], "min_rating": 4}
	}`), 0o644))

	store := NewFileStore(path, logger.NewTestLogger(t))

	hotels := store.GetHotelPreferences()
	assert.Equal(t, []string{"Hyatt"}, hotels.PreferredChains)
	assert.InDelta(t, 4.0, hotels.MinRating, 1e-9)
	assert.Equal(t, "comfortable", store.GetTravelStyle())
	assert.Equal(t, "home airport SFO; comfortable travel style; prefers United", store.Summary())
}

func TestGetHotelPreferences_DefaultsWhenAbsent(t *testing.T) {
	store := NewStaticStore(Defaults())

	assert.Empty(t, store.GetHotelPreferences().PreferredChains)
	assert.Zero(t, store.GetHotelPreferences().MinRating)
}

func TestNewFileStore_MissingFileFallsBack(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"), logger.NewTestLogger(t))

	assert.Equal(t, "SFO", store.GetHomeAirport())
	assert.Empty(t, store.GetDefaultBudget())
}

func TestNewFileStore_CorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileStore(path, logger.NewTestLogger(t))

	assert.Equal(t, "SFO", store.GetHomeAirport())
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store := NewFileStore(path, logger.NewNoOpLogger())
	require.NoError(t, store.Save())

	reloaded := NewFileStore(path, logger.NewNoOpLogger())
	assert.Equal(t, "SFO", reloaded.GetHomeAirport())
}

func TestStaticStore_HasNoBackingFile(t *testing.T) {
	store := NewStaticStore(Preferences{HomeAirport: "LAX"})

	assert.Equal(t, "LAX", store.GetHomeAirport())
	assert.Error(t, store.Save())
}
