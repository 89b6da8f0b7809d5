// internal/pipeline/calculate-gaps/models.go
package calculategaps

import "skillforge/internal/models"

// Input identifies the employee/position pair to analyze. Skills may carry
// the freshly mapped profile from the previous stage; when empty, the stored
// profile is loaded instead.
type Input struct {
	EmployeeID string               `json:"employeeId"`
	PositionID string               `json:"positionId"`
	Skills     []models.MappedSkill `json:"skills,omitempty"`
}

// Output wraps the computed gap analysis.
type Output struct {
	Analysis *models.GapAnalysis `json:"analysis"`
}
