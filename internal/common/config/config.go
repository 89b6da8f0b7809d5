// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. It is built once at
// program entry and handed to each component constructor; nothing reads the
// process environment after Load returns.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Database      DatabaseConfig     `mapstructure:"database"`
	LLM           LLMConfig          `mapstructure:"llm"`
	Taxonomy      TaxonomyConfig     `mapstructure:"taxonomy"`
	Analysis      AnalysisConfig     `mapstructure:"analysis"`
	Course        CourseConfig       `mapstructure:"course"`
	Batch         BatchConfig        `mapstructure:"batch"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
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
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Domain Configuration Sections ---

// LLMConfig holds settings for the skill-extraction completion endpoint.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// TaxonomyConfig holds settings for the taxonomy mapper.
type TaxonomyConfig struct {
	Index            string  `mapstructure:"index"`
	ScoreNorm        float64 `mapstructure:"score_norm"`
	FallbackScore    float64 `mapstructure:"fallback_score"`
	CacheTTLMinutes  int     `mapstructure:"cache_ttl_minutes"`
	SearchTimeout    int     `mapstructure:"search_timeout"` // milliseconds
}

// AnalysisConfig holds the gap-calculator thresholds.
type AnalysisConfig struct {
	// MatchStrategy decides when a required skill counts as "matched" for the
	// skills match score: "presence" (present at any level) or "meets-level".
	MatchStrategy string `mapstructure:"match_strategy"`

	// Severity bands on gap_size: [0]=none, [1,MinorMax]=minor,
	// (MinorMax,ModerateMax]=moderate, above=critical.
	MinorMaxGap    int `mapstructure:"minor_max_gap"`
	ModerateMaxGap int `mapstructure:"moderate_max_gap"`

	// Readiness penalties per gap level, mandatory vs nice-to-have.
	MandatoryGapPenalty float64 `mapstructure:"mandatory_gap_penalty"`
	OptionalGapPenalty  float64 `mapstructure:"optional_gap_penalty"`
}

// CourseConfig holds the course-spec builder knobs.
type CourseConfig struct {
	MaxGaps          int `mapstructure:"max_gaps"`
	MaxFocusAreas    int `mapstructure:"max_focus_areas"`
	MaxKeyTools      int `mapstructure:"max_key_tools"`
	HoursPerGapLevel int `mapstructure:"hours_per_gap_level"`
	HoursPerWeek     int `mapstructure:"hours_per_week"`
	MaxWeeks         int `mapstructure:"max_weeks"`
	CriticalForHigh  int `mapstructure:"critical_for_high"`
}

// BatchConfig holds the course-generation driver settings.
type BatchConfig struct {
	Concurrency  int `mapstructure:"concurrency"`
	DelayMillis  int `mapstructure:"delay_millis"`
	StageTimeout int `mapstructure:"stage_timeout"` // milliseconds, per employee
}

// NotificationConfig holds settings for course-assignment notifications.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled           bool   `mapstructure:"enabled"`
		PriorityThreshold string `mapstructure:"priority_threshold"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
