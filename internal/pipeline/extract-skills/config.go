// internal/pipeline/extract-skills/config.go
package extractskills

import "time"

// Config for the LLM skill extraction stage.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   4096,
		Timeout:     45 * time.Second,
		MaxRetries:  2,
	}
}
