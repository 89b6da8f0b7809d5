// internal/pipeline/build-course/config.go
package buildcourse

// Config for course spec generation.
type Config struct {
	// MaxGaps caps how many gaps a single course addresses. Remaining gaps
	// wait for the next analysis cycle.
	MaxGaps       int
	MaxFocusAreas int
	MaxKeyTools   int
	// HoursPerGapLevel converts one proficiency level of gap into estimated
	// study hours.
	HoursPerGapLevel int
	// HoursPerWeek is the assumed study pace when deriving duration.
	HoursPerWeek int
	MaxWeeks     int
	// CriticalForHigh is the number of critical gaps above which the course
	// is marked high priority.
	CriticalForHigh int
}

func DefaultConfig() *Config {
	return &Config{
		MaxGaps:          7,
		MaxFocusAreas:    3,
		MaxKeyTools:      5,
		HoursPerGapLevel: 20,
		HoursPerWeek:     40,
		MaxWeeks:         6,
		CriticalForHigh:  2,
	}
}
