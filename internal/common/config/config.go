// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig              `mapstructure:"app"`
	Database    DatabaseConfig         `mapstructure:"database"`
	Stages      map[string]StageConfig `mapstructure:"stages"`
	APIs        APIsConfig             `mapstructure:"apis"`
	Pipeline    PipelineConfig         `mapstructure:"pipeline"`
	Budget      BudgetConfig           `mapstructure:"budget"`
	Preferences PreferencesConfig      `mapstructure:"preferences"`
	Logging     LoggingConfig          `mapstructure:"logging"`
	Metrics     MetricsConfig          `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StageConfig holds the core settings applicable to every pipeline stage.
type StageConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries int  `mapstructure:"max_retries"` // For upstream API calls
}

// --- Specific Configuration Sections ---

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`

	WebSearch struct {
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
		EngineID string `mapstructure:"engine_id"`
		Timeout  int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"web_search"`

	Travel struct {
		BaseURL   string `mapstructure:"base_url"`
		APIKey    string `mapstructure:"api_key"`
		APISecret string `mapstructure:"api_secret"`
		Mode      string `mapstructure:"mode"` // "live" or "mock"
		Timeout   int    `mapstructure:"timeout"`
		CacheTTL  int    `mapstructure:"cache_ttl"` // seconds
	} `mapstructure:"travel"`
}

// PipelineConfig holds settings for the research coordinator.
type PipelineConfig struct {
	MaxBacktrackAttempts int  `mapstructure:"max_backtrack_attempts"`
	MaxCandidates        int  `mapstructure:"max_candidates"`
	PrimaryCandidates    int  `mapstructure:"primary_candidates"`
	HistoryEnabled       bool `mapstructure:"history_enabled"`
	AuditEnabled         bool `mapstructure:"audit_enabled"`
}

// BudgetConfig holds the budget-split fractions per traveler type and the
// feasibility thresholds used when scoring destinations.
type BudgetConfig struct {
	FlightShare   map[string]float64 `mapstructure:"flight_share"`
	HotelShare    map[string]float64 `mapstructure:"hotel_share"`
	DefaultAmount float64            `mapstructure:"default_amount"`
	MinScore      float64            `mapstructure:"min_score"`
	Buffer        float64            `mapstructure:"buffer"` // fraction added when suggesting increases
}

// PreferencesConfig locates the traveler preferences file.
type PreferencesConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
