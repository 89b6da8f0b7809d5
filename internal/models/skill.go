// internal/models/skill.go
package models

// SkillCategory classifies an extracted skill.
type SkillCategory string

const (
	CategoryTechnical SkillCategory = "technical"
	CategorySoft      SkillCategory = "soft"
	CategoryDomain    SkillCategory = "domain"
	CategoryTool      SkillCategory = "tool"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c SkillCategory) bool {
	switch c {
	case CategoryTechnical, CategorySoft, CategoryDomain, CategoryTool:
		return true
	}
	return false
}

// SkillRecord is one skill as extracted from free resume text. Immutable once
// created; it lives only for the duration of one analysis run.
type SkillRecord struct {
	Name            string        `json:"name"`
	Category        SkillCategory `json:"category"`
	YearsExperience *float64      `json:"yearsExperience"`
	Evidence        string        `json:"evidence"`
	SourceContext   string        `json:"sourceContext"`
}

// MappedSkill is a SkillRecord resolved against the controlled taxonomy.
// Invariant: IsTaxonomyMatch == (TaxonomyID != nil).
type MappedSkill struct {
	SkillRecord

	TaxonomyID       *string `json:"taxonomyId"`
	TaxonomyName     *string `json:"taxonomyName"`
	ProficiencyLevel int     `json:"proficiencyLevel"`
	IsTaxonomyMatch  bool    `json:"isTaxonomyMatch"`
	MatchConfidence  float64 `json:"matchConfidence"`
}

// WorkExperience is one employment entry recovered from a CV.
type WorkExperience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is one degree or program entry recovered from a CV.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// CVBackground holds the non-skill facts recovered from a CV. Persisted with
// the profile so course content can reference prior roles and credentials.
type CVBackground struct {
	WorkExperience       []WorkExperience `json:"workExperience,omitempty"`
	Education            []Education      `json:"education,omitempty"`
	Certifications       []string         `json:"certifications,omitempty"`
	Languages            []string         `json:"languages,omitempty"`
	TotalExperienceYears *float64         `json:"totalExperienceYears,omitempty"`
}

// TaxonomySkill is one entry of the controlled vocabulary, as stored in the
// skills table and indexed for fuzzy search.
type TaxonomySkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description,omitempty"`
}
