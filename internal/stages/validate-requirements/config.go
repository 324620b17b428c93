// internal/stages/validate-requirements/config.go
package validaterequirements

// DefaultBudgetLabel is injected when the request carries no budget at all.
// Downstream budget parsing treats it as "no numeric ceiling".
const DefaultBudgetLabel = "luxury"

type Config struct {
	DefaultBudget string
}

func LoadConfig() *Config {
	return &Config{
		DefaultBudget: DefaultBudgetLabel,
	}
}
