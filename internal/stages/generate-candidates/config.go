// internal/stages/generate-candidates/config.go
package generatecandidates

import "time"

type Config struct {
	Timeout         time.Duration
	ResultsPerQuery int
	MaxHits         int // scored hits fed into candidate extraction
	MaxCandidates   int // full candidates requested from the model
	PrimaryCount    int // first N candidates become primary
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         60 * time.Second,
		ResultsPerQuery: 5,
		MaxHits:         10,
		MaxCandidates:   5,
		PrimaryCount:    3,
	}
}
