// internal/models/employee.go
package models

import "time"

// Employee is the subject of an analysis run. Position assignment comes from
// the onboarding workflow; this service only reads it.
type Employee struct {
	ID               string `json:"id"`
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	TargetPositionID string `json:"targetPositionId"`
}

// Position is a target role with a required-skill list.
type Position struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PositionRequirement is one entry of a position's required-skill list.
// Defined by the position-setup workflow; read-only input here.
type PositionRequirement struct {
	PositionID    string `json:"positionId"`
	SkillName     string `json:"skillName"`
	RequiredLevel int    `json:"requiredLevel"`
	IsMandatory   bool   `json:"isMandatory"`
}

// SkillsProfile aggregates one employee's mapped skills and scores. Upserted
// once per CV analysis run; superseded by the next run.
type SkillsProfile struct {
	ID                   string        `json:"id"`
	EmployeeID           string        `json:"employeeId"`
	Summary              string        `json:"summary"`
	Skills               []MappedSkill `json:"skills"`
	Background           CVBackground  `json:"background"`
	SkillsMatchScore     float64       `json:"skillsMatchScore"`
	CareerReadinessScore float64       `json:"careerReadinessScore"`
	AnalyzedAt           time.Time     `json:"analyzedAt"`
}
