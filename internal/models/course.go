// internal/models/course.go
package models

import "time"

// CoursePriority ranks a generated training module.
type CoursePriority string

const (
	PriorityLow    CoursePriority = "low"
	PriorityMedium CoursePriority = "medium"
	PriorityHigh   CoursePriority = "high"
)

// LearningObjective is one target of a generated course, derived from a gap.
type LearningObjective struct {
	Skill      string `json:"skill"`
	FromLevel  int    `json:"fromLevel"`
	ToLevel    int    `json:"toLevel"`
	Importance string `json:"importance"`
}

// CourseSpec is a structured training-module specification built from a
// prioritized gap list. One-to-one with a course-assignment record.
type CourseSpec struct {
	ModuleName         string              `json:"moduleName"`
	Description        string              `json:"description"`
	DurationWeeks      int                 `json:"durationWeeks"`
	EstimatedHours     int                 `json:"estimatedHours"`
	LearningObjectives []LearningObjective `json:"learningObjectives"`
	FocusAreas         []string            `json:"focusAreas"`
	KeyTools           []string            `json:"keyTools"`
	PriorityLevel      CoursePriority      `json:"priorityLevel"`
}

// CourseAssignment binds a generated course spec to an employee.
type CourseAssignment struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	PositionID string     `json:"positionId"`
	Spec       CourseSpec `json:"spec"`
	Status     string     `json:"status"`
	AssignedAt time.Time  `json:"assignedAt"`
}
