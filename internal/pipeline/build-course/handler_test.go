// internal/pipeline/build-course/handler_test.go
package buildcourse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillforge/internal/common/logger"
	"skillforge/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestAnalysis(gaps []models.SkillGap) *models.GapAnalysis {
	return &models.GapAnalysis{
		EmployeeID:    "emp-001",
		PositionID:    "pos-001",
		PositionTitle: "Data Engineer",
		Gaps:          gaps,
		AnalyzedAt:    time.Now().UTC(),
	}
}

func gap(name string, size int, severity models.GapSeverity, mandatory bool) models.SkillGap {
	return models.SkillGap{
		SkillName:     name,
		CurrentLevel:  1,
		RequiredLevel: 1 + size,
		GapSize:       size,
		GapSeverity:   severity,
		IsMandatory:   mandatory,
	}
}

func newTestHandler() *Handler {
	return NewHandler(DefaultConfig(), logger.NewNoOpLogger())
}

// ==========================
// Course Generation Tests
// ==========================

func TestHandler_Execute_NoTrainableGapsYieldsNoCourse(t *testing.T) {
	tests := []struct {
		name string
		gaps []models.SkillGap
	}{
		{"no gaps at all", nil},
		{
			"only none and minor gaps",
			[]models.SkillGap{
				gap("SQL", 0, models.SeverityNone, true),
				gap("Python", 1, models.SeverityMinor, false),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := newTestHandler().Execute(context.Background(), &Input{
				Analysis: createTestAnalysis(tt.gaps),
			})
			assert.NoError(t, err)
			assert.Nil(t, output.Spec)
		})
	}
}

func TestHandler_Execute_BuildsCourseFromModerateAndCriticalGaps(t *testing.T) {
	analysis := createTestAnalysis([]models.SkillGap{
		gap("SQL", 2, models.SeverityModerate, true),
		gap("Kafka", 3, models.SeverityCritical, true),
		gap("Mentoring", 1, models.SeverityMinor, false),
	})

	output, err := newTestHandler().Execute(context.Background(), &Input{Analysis: analysis})
	assert.NoError(t, err)
	require.NotNil(t, output.Spec)
	spec := output.Spec

	assert.Equal(t, "Data Engineer Readiness Program", spec.ModuleName)
	// 2*20 + 3*20 hours; the minor gap contributes nothing.
	assert.Equal(t, 100, spec.EstimatedHours)
	assert.Equal(t, 3, spec.DurationWeeks) // ceil(100/40)
	assert.Equal(t, models.PriorityMedium, spec.PriorityLevel)

	require.Len(t, spec.LearningObjectives, 2)
	// Critical gap ordered first.
	assert.Equal(t, "Kafka", spec.LearningObjectives[0].Skill)
	assert.Equal(t, "mandatory", spec.LearningObjectives[0].Importance)
	assert.Equal(t, "SQL", spec.LearningObjectives[1].Skill)
}

func TestHandler_Execute_DurationAlwaysWithinBounds(t *testing.T) {
	tests := []struct {
		name          string
		gaps          []models.SkillGap
		expectedWeeks int
	}{
		{
			"tiny course floors at one week",
			[]models.SkillGap{gap("SQL", 2, models.SeverityModerate, true)},
			1, // 40 hours
		},
		{
			"large course caps at six weeks",
			[]models.SkillGap{
				gap("SQL", 4, models.SeverityCritical, true),
				gap("Kafka", 4, models.SeverityCritical, true),
				gap("Spark", 4, models.SeverityCritical, true),
				gap("Airflow", 4, models.SeverityCritical, true),
				gap("Python", 4, models.SeverityCritical, true),
			},
			6, // 400 hours would be 10 weeks uncapped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := newTestHandler().Execute(context.Background(), &Input{
				Analysis: createTestAnalysis(tt.gaps),
			})
			assert.NoError(t, err)
			require.NotNil(t, output.Spec)
			assert.Equal(t, tt.expectedWeeks, output.Spec.DurationWeeks)
			assert.GreaterOrEqual(t, output.Spec.DurationWeeks, 1)
			assert.LessOrEqual(t, output.Spec.DurationWeeks, 6)
		})
	}
}

func TestHandler_Execute_PriorityFollowsCriticalCount(t *testing.T) {
	tests := []struct {
		name     string
		gaps     []models.SkillGap
		expected models.CoursePriority
	}{
		{
			"two critical gaps stay medium",
			[]models.SkillGap{
				gap("SQL", 3, models.SeverityCritical, true),
				gap("Kafka", 3, models.SeverityCritical, true),
			},
			models.PriorityMedium,
		},
		{
			"three critical gaps go high",
			[]models.SkillGap{
				gap("SQL", 3, models.SeverityCritical, true),
				gap("Kafka", 3, models.SeverityCritical, true),
				gap("Spark", 3, models.SeverityCritical, true),
			},
			models.PriorityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := newTestHandler().Execute(context.Background(), &Input{
				Analysis: createTestAnalysis(tt.gaps),
			})
			assert.NoError(t, err)
			require.NotNil(t, output.Spec)
			assert.Equal(t, tt.expected, output.Spec.PriorityLevel)
		})
	}
}

func TestHandler_Execute_CapsGapCount(t *testing.T) {
	var gaps []models.SkillGap
	names := []string{"SQL", "Kafka", "Spark", "Airflow", "Python", "Scala", "Terraform", "Kubernetes", "Docker"}
	for _, name := range names {
		gaps = append(gaps, gap(name, 3, models.SeverityCritical, true))
	}

	output, err := newTestHandler().Execute(context.Background(), &Input{
		Analysis: createTestAnalysis(gaps),
	})
	assert.NoError(t, err)
	require.NotNil(t, output.Spec)
	assert.Len(t, output.Spec.LearningObjectives, 7)
}

func TestHandler_Execute_KeyToolsFromProfile(t *testing.T) {
	analysis := createTestAnalysis([]models.SkillGap{
		gap("Kafka", 3, models.SeverityCritical, true),
	})
	skills := []models.MappedSkill{
		{SkillRecord: models.SkillRecord{Name: "Docker", Category: models.CategoryTool}},
		{SkillRecord: models.SkillRecord{Name: "Leadership", Category: models.CategorySoft}},
		{SkillRecord: models.SkillRecord{Name: "Python", Category: models.CategoryTechnical}},
		{SkillRecord: models.SkillRecord{Name: "Git", Category: models.CategoryTool}},
	}

	output, err := newTestHandler().Execute(context.Background(), &Input{
		Analysis: analysis,
		Skills:   skills,
	})
	assert.NoError(t, err)
	require.NotNil(t, output.Spec)
	// Tool and technical skills qualify; soft skills do not.
	assert.Equal(t, []string{"Docker", "Python", "Git"}, output.Spec.KeyTools)
}

// ==========================
// Focus Area Tests
// ==========================

func TestHandler_Execute_FocusAreasAreCategoriesNotSkillNames(t *testing.T) {
	analysis := createTestAnalysis([]models.SkillGap{
		gap("SQL", 3, models.SeverityCritical, true),
		gap("Python", 3, models.SeverityCritical, true),
		gap("Kafka", 3, models.SeverityCritical, true),
		gap("Airflow", 3, models.SeverityCritical, true),
		gap("dbt", 3, models.SeverityCritical, true),
	})
	skills := []models.MappedSkill{
		{SkillRecord: models.SkillRecord{Name: "SQL", Category: models.CategoryTechnical}},
		{SkillRecord: models.SkillRecord{Name: "Airflow", Category: models.CategoryTool}},
		{SkillRecord: models.SkillRecord{Name: "dbt", Category: models.CategoryTool}},
	}

	output, err := newTestHandler().Execute(context.Background(), &Input{
		Analysis: analysis,
		Skills:   skills,
	})
	assert.NoError(t, err)
	require.NotNil(t, output.Spec)
	// Five gaps collapse to two distinct categories; unprofiled skills count
	// as technical.
	assert.Equal(t, []string{"technical", "tool"}, output.Spec.FocusAreas)
	assert.LessOrEqual(t, len(output.Spec.FocusAreas), 3)
}

func TestHandler_Execute_FocusAreasCappedAtThree(t *testing.T) {
	analysis := createTestAnalysis([]models.SkillGap{
		gap("SQL", 3, models.SeverityCritical, true),
		gap("Leadership", 3, models.SeverityCritical, true),
		gap("Healthcare", 2, models.SeverityModerate, false),
		gap("Airflow", 2, models.SeverityModerate, false),
	})
	skills := []models.MappedSkill{
		{SkillRecord: models.SkillRecord{Name: "SQL", Category: models.CategoryTechnical}},
		{SkillRecord: models.SkillRecord{Name: "Leadership", Category: models.CategorySoft}},
		{SkillRecord: models.SkillRecord{Name: "Healthcare", Category: models.CategoryDomain}},
		{SkillRecord: models.SkillRecord{Name: "Airflow", Category: models.CategoryTool}},
	}

	output, err := newTestHandler().Execute(context.Background(), &Input{
		Analysis: analysis,
		Skills:   skills,
	})
	assert.NoError(t, err)
	require.NotNil(t, output.Spec)
	// Four distinct categories in gap order, trimmed to the three hardest.
	assert.Equal(t, []string{"technical", "soft", "domain"}, output.Spec.FocusAreas)
}
