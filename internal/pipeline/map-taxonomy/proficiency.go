// internal/pipeline/map-taxonomy/proficiency.go
package maptaxonomy

// DeriveProficiency maps years of experience onto the 1-5 proficiency scale.
// Unknown experience lands on 2: the CV evidenced the skill, so the employee
// is past novice, but nothing supports a higher claim.
func DeriveProficiency(years *float64) int {
	if years == nil {
		return 2
	}
	y := *years
	switch {
	case y < 1:
		return 1
	case y < 2:
		return 2
	case y < 4:
		return 3
	case y < 7:
		return 4
	default:
		return 5
	}
}
