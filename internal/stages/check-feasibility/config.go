// internal/stages/check-feasibility/config.go
package checkfeasibility

import "time"

type Config struct {
	Timeout time.Duration `json:"timeout"`

	// MinScore is the feasibility threshold; candidates scoring below it
	// are considered infeasible and trigger alternative suggestions.
	MinScore float64 `json:"minScore"`

	// FlightShare and HotelShare split the total budget into per-category
	// limits, keyed by traveler type with a "default" fallback.
	FlightShare map[string]float64 `json:"flightShare"`
	HotelShare  map[string]float64 `json:"hotelShare"`

	// DefaultBudget is used when a budget string fails to parse.
	DefaultBudget float64 `json:"defaultBudget"`

	// Buffer is the fractional headroom added when suggesting a workable
	// budget for an over-budget trip.
	Buffer float64 `json:"buffer"`

	DefaultNights int `json:"defaultNights"`
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		MinScore: 0.6,
		FlightShare: map[string]float64{
			"business":         0.6,
			"family_with_kids": 0.4,
			"default":          0.5,
		},
		HotelShare: map[string]float64{
			"business":         0.4,
			"family_with_kids": 0.5,
			"default":          0.35,
		},
		DefaultBudget: 1000.0,
		Buffer:        0.10,
		DefaultNights: 7,
	}
}

func (c *Config) flightShareFor(travelerType string) float64 {
	if share, ok := c.FlightShare[travelerType]; ok {
		return share
	}
	return c.FlightShare["default"]
}

func (c *Config) hotelShareFor(travelerType string) float64 {
	if share, ok := c.HotelShare[travelerType]; ok {
		return share
	}
	return c.HotelShare["default"]
}
