// internal/pipeline/map-taxonomy/config.go
package maptaxonomy

import "time"

// Config for the taxonomy mapping stage.
type Config struct {
	// Index is the search index holding the skills taxonomy.
	Index string
	// ScoreNorm divides the raw search relevance score when deriving match
	// confidence. Scores at or above it clamp to 1.0.
	ScoreNorm float64
	// FallbackScore is the confidence assigned when the search backend does
	// not report a relevance score for a hit.
	FallbackScore float64
	// CacheTTL bounds how long a resolved match is reused before the index
	// is consulted again.
	CacheTTL      time.Duration
	SearchTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Index:         "skills-taxonomy",
		ScoreNorm:     10,
		FallbackScore: 0.8,
		CacheTTL:      60 * time.Minute,
		SearchTimeout: 5 * time.Second,
	}
}
