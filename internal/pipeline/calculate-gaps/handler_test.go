// internal/pipeline/calculate-gaps/handler_test.go
package calculategaps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeStore struct {
	position     *models.Position
	requirements []models.PositionRequirement
	profile      *models.SkillsProfile
	err          error
}

func (f *fakeStore) GetLatestProfile(ctx context.Context, employeeID string) (*models.SkillsProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return nil, stderrors.NewProfileNotFoundError(employeeID)
	}
	return f.profile, nil
}

func (f *fakeStore) GetPosition(ctx context.Context, positionID string) (*models.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.position, nil
}

func (f *fakeStore) ListRequirements(ctx context.Context, positionID string) ([]models.PositionRequirement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.requirements, nil
}

func createTestStore(requirements []models.PositionRequirement) *fakeStore {
	return &fakeStore{
		position:     &models.Position{ID: "pos-001", Title: "Data Engineer"},
		requirements: requirements,
	}
}

func mappedSkill(name string, level int) models.MappedSkill {
	return models.MappedSkill{
		SkillRecord:      models.SkillRecord{Name: name},
		ProficiencyLevel: level,
	}
}

func requirement(name string, level int, mandatory bool) models.PositionRequirement {
	return models.PositionRequirement{
		PositionID:    "pos-001",
		SkillName:     name,
		RequiredLevel: level,
		IsMandatory:   mandatory,
	}
}

// ==========================
// Gap Size and Severity Tests
// ==========================

func TestHandler_Execute_GapSizeNeverNegative(t *testing.T) {
	tests := []struct {
		name          string
		requiredLevel int
		currentLevel  int
		expectedGap   int
	}{
		{"required above current", 4, 2, 2},
		{"required equals current", 3, 3, 0},
		{"current above required", 2, 5, 0},
		{"skill absent", 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := createTestStore([]models.PositionRequirement{
				requirement("SQL", tt.requiredLevel, true),
			})
			var skills []models.MappedSkill
			if tt.currentLevel > 0 {
				skills = append(skills, mappedSkill("SQL", tt.currentLevel))
			}

			handler := NewHandler(DefaultConfig(), st, logger.NewNoOpLogger())
			output, err := handler.Execute(context.Background(), &Input{
				EmployeeID: "emp-001",
				PositionID: "pos-001",
				Skills:     skills,
			})

			assert.NoError(t, err)
			assert.Len(t, output.Analysis.Gaps, 1)
			assert.Equal(t, tt.expectedGap, output.Analysis.Gaps[0].GapSize)
			assert.GreaterOrEqual(t, output.Analysis.Gaps[0].GapSize, 0)
		})
	}
}

func TestHandler_Severity_PartitionsGapSizes(t *testing.T) {
	handler := NewHandler(DefaultConfig(), createTestStore(nil), logger.NewNoOpLogger())

	tests := []struct {
		gapSize  int
		expected models.GapSeverity
	}{
		{0, models.SeverityNone},
		{1, models.SeverityMinor},
		{2, models.SeverityModerate},
		{3, models.SeverityCritical},
		{4, models.SeverityCritical},
		{5, models.SeverityCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, handler.severity(tt.gapSize), "gap size %d", tt.gapSize)
	}
}

// ==========================
// Match Score Tests
// ==========================

func TestHandler_Execute_MatchStrategies(t *testing.T) {
	// SQL required at 4 but held at 2, Leadership required at 2 but absent.
	requirements := []models.PositionRequirement{
		requirement("SQL", 4, true),
		requirement("Leadership", 2, true),
	}
	skills := []models.MappedSkill{mappedSkill("SQL", 2)}

	tests := []struct {
		name          string
		strategy      MatchStrategy
		expectedScore float64
	}{
		{"presence counts held skills", StrategyPresence, 50},
		{"meets-level requires full level", StrategyMeetsLevel, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = tt.strategy
			handler := NewHandler(cfg, createTestStore(requirements), logger.NewNoOpLogger())

			output, err := handler.Execute(context.Background(), &Input{
				EmployeeID: "emp-001",
				PositionID: "pos-001",
				Skills:     skills,
			})

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedScore, output.Analysis.SkillsMatchScore)

			// Both gaps come out moderate regardless of strategy.
			assert.Len(t, output.Analysis.Gaps, 2)
			for _, gap := range output.Analysis.Gaps {
				assert.Equal(t, 2, gap.GapSize)
				assert.Equal(t, models.SeverityModerate, gap.GapSeverity)
			}
		})
	}
}

func TestHandler_Execute_NoRequirementsIsFullMatch(t *testing.T) {
	handler := NewHandler(DefaultConfig(), createTestStore(nil), logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), &Input{
		EmployeeID: "emp-001",
		PositionID: "pos-001",
		Skills:     []models.MappedSkill{mappedSkill("Go", 4)},
	})

	assert.NoError(t, err)
	assert.Equal(t, float64(100), output.Analysis.SkillsMatchScore)
	assert.Empty(t, output.Analysis.Gaps)
}

func TestHandler_Execute_MatchScoreWithinBounds(t *testing.T) {
	requirements := []models.PositionRequirement{
		requirement("SQL", 5, true),
		requirement("Python", 5, true),
		requirement("Kafka", 5, true),
	}
	handler := NewHandler(DefaultConfig(), createTestStore(requirements), logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), &Input{
		EmployeeID: "emp-001",
		PositionID: "pos-001",
		Skills:     nil,
	})

	assert.Error(t, err) // empty skills triggers profile load, fake has none
	_ = output

	st := createTestStore(requirements)
	st.profile = &models.SkillsProfile{EmployeeID: "emp-001"}
	handler = NewHandler(DefaultConfig(), st, logger.NewNoOpLogger())

	output, err = handler.Execute(context.Background(), &Input{
		EmployeeID: "emp-001",
		PositionID: "pos-001",
	})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, output.Analysis.SkillsMatchScore, float64(0))
	assert.LessOrEqual(t, output.Analysis.SkillsMatchScore, float64(100))
	assert.GreaterOrEqual(t, output.Analysis.CareerReadinessScore, float64(0))
	assert.LessOrEqual(t, output.Analysis.CareerReadinessScore, float64(100))
}

// ==========================
// Skill Matching Tests
// ==========================

func TestFindSkill_SubstringBothDirections(t *testing.T) {
	taxonomyName := "PostgreSQL"
	skills := []models.MappedSkill{
		{
			SkillRecord:      models.SkillRecord{Name: "postgres administration"},
			TaxonomyName:     &taxonomyName,
			ProficiencyLevel: 3,
		},
	}

	tests := []struct {
		name            string
		requirementName string
		expectFound     bool
	}{
		{"requirement inside skill name", "postgres", true},
		{"skill name inside requirement", "senior postgres administration track", true},
		{"matches canonical taxonomy name", "PostgreSQL", true},
		{"case insensitive", "POSTGRES", true},
		{"unrelated skill", "Kubernetes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := findSkill(skills, tt.requirementName)
			if tt.expectFound {
				assert.NotNil(t, found)
			} else {
				assert.Nil(t, found)
			}
		})
	}
}

// ==========================
// Readiness Score Tests
// ==========================

func TestHandler_Readiness_MandatoryGapsCostMore(t *testing.T) {
	handler := NewHandler(DefaultConfig(), createTestStore(nil), logger.NewNoOpLogger())

	mandatoryGap := []models.SkillGap{{GapSize: 2, IsMandatory: true}}
	optionalGap := []models.SkillGap{{GapSize: 2, IsMandatory: false}}

	mandatoryScore := handler.readiness(80, mandatoryGap)
	optionalScore := handler.readiness(80, optionalGap)

	assert.Less(t, mandatoryScore, optionalScore)
	assert.Equal(t, float64(64), mandatoryScore) // 80 - 8*2
	assert.Equal(t, float64(74), optionalScore)  // 80 - 3*2
}

func TestHandler_Readiness_ClampsToZero(t *testing.T) {
	handler := NewHandler(DefaultConfig(), createTestStore(nil), logger.NewNoOpLogger())

	gaps := []models.SkillGap{
		{GapSize: 5, IsMandatory: true},
		{GapSize: 5, IsMandatory: true},
		{GapSize: 5, IsMandatory: true},
	}
	assert.Equal(t, float64(0), handler.readiness(20, gaps))
}
