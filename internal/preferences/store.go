// internal/preferences/store.go
package preferences

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"trip-planner/internal/common/logger"
)

// Store is the read-only preferences capability the pipeline depends on.
type Store interface {
	GetHomeAirport() string
	GetDefaultBudget() string
	GetPreferredAirlines() []string
	GetDietaryRestrictions() []string
}

// Preferences is the traveler preferences blob persisted as JSON.
type Preferences struct {
	HomeAirport         string      `json:"home_airport"`
	DefaultBudget       string      `json:"default_budget,omitempty"`
	PreferredAirlines   []string    `json:"preferred_airlines,omitempty"`
	DietaryRestrictions []string    `json:"dietary_restrictions,omitempty"`
	TravelStyle         string      `json:"travel_style,omitempty"`
	AccessibilityNeeds  []string    `json:"accessibility_needs,omitempty"`
	Hotels              *HotelPrefs `json:"hotels,omitempty"`
}

// HotelPrefs narrows hotel selection when the traveler has stated chains or
// a minimum rating.
type HotelPrefs struct {
	PreferredChains []string `json:"preferred_chains,omitempty"`
	MinRating       float64  `json:"min_rating,omitempty"`
}

// Defaults returns the preferences used when no file exists.
func Defaults() Preferences {
	return Preferences{
		HomeAirport: "SFO",
		TravelStyle: "comfortable",
	}
}

// FileStore loads a preferences JSON file once at construction. Missing or
// unreadable files fall back to Defaults.
type FileStore struct {
	mu    sync.RWMutex
	prefs Preferences
	path  string
}

func NewFileStore(path string, log logger.Logger) *FileStore {
	s := &FileStore{
		path:  path,
		prefs: Defaults(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("preferences file not found, using defaults", map[string]interface{}{
			"path": path,
		})
		return s
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		log.Warn("preferences file unreadable, using defaults", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return s
	}

	s.prefs = prefs
	return s
}

// NewStaticStore wraps fixed preferences, mainly for tests.
func NewStaticStore(prefs Preferences) *FileStore {
	return &FileStore{prefs: prefs}
}

func (s *FileStore) GetHomeAirport() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.HomeAirport
}

func (s *FileStore) GetDefaultBudget() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.DefaultBudget
}

func (s *FileStore) GetPreferredAirlines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.PreferredAirlines
}

func (s *FileStore) GetDietaryRestrictions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.DietaryRestrictions
}

func (s *FileStore) GetTravelStyle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.TravelStyle
}

func (s *FileStore) GetHotelPreferences() HotelPrefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prefs.Hotels == nil {
		return HotelPrefs{}
	}
	return *s.prefs.Hotels
}

// Summary renders a one-paragraph description of the stored preferences,
// suitable for inclusion in a prompt or a log line.
func (s *FileStore) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts := []string{fmt.Sprintf("home airport %s", s.prefs.HomeAirport)}
	if s.prefs.TravelStyle != "" {
		parts = append(parts, fmt.Sprintf("%s travel style", s.prefs.TravelStyle))
	}
	if s.prefs.DefaultBudget != "" {
		parts = append(parts, fmt.Sprintf("typical budget %s", s.prefs.DefaultBudget))
	}
	if len(s.prefs.PreferredAirlines) > 0 {
		parts = append(parts, "prefers "+strings.Join(s.prefs.PreferredAirlines, ", "))
	}
	if len(s.prefs.DietaryRestrictions) > 0 {
		parts = append(parts, "dietary: "+strings.Join(s.prefs.DietaryRestrictions, ", "))
	}
	return strings.Join(parts, "; ")
}

// Save writes the current preferences back to the store's path.
func (s *FileStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.path == "" {
		return fmt.Errorf("preferences store has no backing file")
	}

	data, err := json.MarshalIndent(s.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}
