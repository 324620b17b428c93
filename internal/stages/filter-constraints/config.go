// internal/stages/filter-constraints/config.go
package filterconstraints

import "time"

type Config struct {
	Timeout time.Duration `json:"timeout"`
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
