// internal/models/gap.go
package models

import "time"

// GapSeverity is a coarse ordinal label for one skill shortfall.
type GapSeverity string

const (
	SeverityNone     GapSeverity = "none"
	SeverityMinor    GapSeverity = "minor"
	SeverityModerate GapSeverity = "moderate"
	SeverityCritical GapSeverity = "critical"
)

// SkillGap is one required skill compared against the employee's current
// level. Computed fresh on every run; persisted only inside a report snapshot.
type SkillGap struct {
	SkillName     string      `json:"skillName"`
	SkillID       string      `json:"skillId,omitempty"`
	CurrentLevel  int         `json:"currentLevel"`
	RequiredLevel int         `json:"requiredLevel"`
	GapSize       int         `json:"gapSize"`
	GapSeverity   GapSeverity `json:"gapSeverity"`
	IsMandatory   bool        `json:"isMandatory"`
	Evidence      string      `json:"evidence,omitempty"`
}

// GapAnalysis is the full result of one gap-calculation run.
type GapAnalysis struct {
	EmployeeID           string     `json:"employeeId"`
	PositionID           string     `json:"positionId"`
	PositionTitle        string     `json:"positionTitle"`
	Gaps                 []SkillGap `json:"gaps"`
	SkillsMatchScore     float64    `json:"skillsMatchScore"`
	CareerReadinessScore float64    `json:"careerReadinessScore"`
	AnalyzedAt           time.Time  `json:"analyzedAt"`
}
