// internal/pipeline/calculate-gaps/config.go
package calculategaps

// MatchStrategy selects how the skills match score counts a required skill
// as covered.
type MatchStrategy string

const (
	// StrategyPresence counts a requirement as covered when the employee has
	// the skill at any level.
	StrategyPresence MatchStrategy = "presence"
	// StrategyMeetsLevel counts a requirement as covered only when the
	// employee's level meets or exceeds the required level.
	StrategyMeetsLevel MatchStrategy = "meets-level"
)

// Config for the gap analysis stage.
type Config struct {
	Strategy MatchStrategy
	// MinorMaxGap and ModerateMaxGap are the inclusive upper bounds of the
	// minor and moderate severity bands. Anything above ModerateMaxGap is
	// critical; a zero gap is always severity none.
	MinorMaxGap    int
	ModerateMaxGap int
	// MandatoryGapPenalty and OptionalGapPenalty are the readiness points
	// deducted per gap level on mandatory and optional requirements.
	MandatoryGapPenalty float64
	OptionalGapPenalty  float64
}

func DefaultConfig() *Config {
	return &Config{
		Strategy:            StrategyPresence,
		MinorMaxGap:         1,
		ModerateMaxGap:      2,
		MandatoryGapPenalty: 8,
		OptionalGapPenalty:  3,
	}
}
