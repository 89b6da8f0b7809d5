// internal/pipeline/map-taxonomy/models.go
package maptaxonomy

import "skillforge/internal/models"

// MapOutcome classifies how a single extracted skill was resolved.
type MapOutcome string

const (
	// OutcomeMatched means the skill resolved to a taxonomy entry.
	OutcomeMatched MapOutcome = "matched"
	// OutcomeCustom means no taxonomy entry matched and the skill is kept
	// verbatim as an employee-specific entry.
	OutcomeCustom MapOutcome = "custom"
	// OutcomeFailed means the lookup itself errored. The skill is excluded
	// from the profile but stays in Results so callers can see what failed
	// and why.
	OutcomeFailed MapOutcome = "failed"
)

// Input is the extraction stage's skill list for one employee.
type Input struct {
	EmployeeID string               `json:"employeeId"`
	Skills     []models.SkillRecord `json:"skills"`
}

// SkillResult pairs one mapped skill with how its mapping went. Err is set
// only for OutcomeFailed.
type SkillResult struct {
	Skill   models.MappedSkill `json:"skill"`
	Outcome MapOutcome         `json:"outcome"`
	Err     error              `json:"-"`
}

// Output is the per-skill mapping result set. Len(Results) always equals
// len(Input.Skills); failures are reported in place, never silently lost.
type Output struct {
	EmployeeID string        `json:"employeeId"`
	Results    []SkillResult `json:"results"`
}

// MappedSkills returns the skills that belong in the profile, in input
// order. Failed lookups are excluded.
func (o *Output) MappedSkills() []models.MappedSkill {
	out := make([]models.MappedSkill, 0, len(o.Results))
	for _, r := range o.Results {
		if r.Outcome == OutcomeFailed {
			continue
		}
		out = append(out, r.Skill)
	}
	return out
}

// taxonomyHit is the index document shape for one taxonomy entry.
type taxonomyHit struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Aliases  []string `json:"aliases"`
}

// cachedMatch is the redis-serialized resolution for one skill name.
type cachedMatch struct {
	Matched    bool    `json:"matched"`
	SkillID    string  `json:"skill_id,omitempty"`
	SkillName  string  `json:"skill_name,omitempty"`
	Confidence float64 `json:"confidence"`
}
