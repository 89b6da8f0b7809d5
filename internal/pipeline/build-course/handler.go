// internal/pipeline/build-course/handler.go
package buildcourse

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"skillforge/internal/common/logger"
	"skillforge/internal/common/metrics"
	"skillforge/internal/models"
)

const StageName = "build-course"

// Input carries the gap analysis plus the employee's mapped skills, which
// inform the tooling section of the course.
type Input struct {
	Analysis *models.GapAnalysis  `json:"analysis"`
	Skills   []models.MappedSkill `json:"skills,omitempty"`
}

// Output wraps the generated spec. Spec is nil when the employee has no gap
// worth training for.
type Output struct {
	Spec *models.CourseSpec `json:"spec"`
}

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

var severityRank = map[models.GapSeverity]int{
	models.SeverityCritical: 3,
	models.SeverityModerate: 2,
	models.SeverityMinor:    1,
	models.SeverityNone:     0,
}

// Execute turns a gap analysis into one course spec. Only moderate and
// critical gaps justify a course; none and minor gaps are left to on-the-job
// learning.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	gaps := selectGaps(input.Analysis.Gaps, h.config.MaxGaps)
	if len(gaps) == 0 {
		h.logger.Info("no trainable gaps, skipping course", map[string]interface{}{
			"employeeId": input.Analysis.EmployeeID,
			"positionId": input.Analysis.PositionID,
		})
		return &Output{Spec: nil}, nil
	}

	totalHours := 0
	criticalCount := 0
	objectives := make([]models.LearningObjective, 0, len(gaps))

	for _, gap := range gaps {
		totalHours += gap.GapSize * h.config.HoursPerGapLevel
		if gap.GapSeverity == models.SeverityCritical {
			criticalCount++
		}
		importance := "recommended"
		if gap.IsMandatory {
			importance = "mandatory"
		}
		objectives = append(objectives, models.LearningObjective{
			Skill:      gap.SkillName,
			FromLevel:  gap.CurrentLevel,
			ToLevel:    gap.RequiredLevel,
			Importance: importance,
		})
	}

	weeks := int(math.Ceil(float64(totalHours) / float64(h.config.HoursPerWeek)))
	if weeks < 1 {
		weeks = 1
	}
	if weeks > h.config.MaxWeeks {
		weeks = h.config.MaxWeeks
	}

	priority := models.PriorityMedium
	if criticalCount > h.config.CriticalForHigh {
		priority = models.PriorityHigh
	}

	spec := &models.CourseSpec{
		ModuleName:         fmt.Sprintf("%s Readiness Program", input.Analysis.PositionTitle),
		Description:        h.describe(input.Analysis, gaps, criticalCount),
		DurationWeeks:      weeks,
		EstimatedHours:     totalHours,
		LearningObjectives: objectives,
		FocusAreas:         h.focusAreas(gaps, input.Skills),
		KeyTools:           h.keyTools(input.Skills),
		PriorityLevel:      priority,
	}

	h.logger.Info("course spec built", map[string]interface{}{
		"employeeId":    input.Analysis.EmployeeID,
		"moduleName":    spec.ModuleName,
		"durationWeeks": spec.DurationWeeks,
		"priority":      spec.PriorityLevel,
	})
	metrics.CoursesGenerated.Inc()
	metrics.PipelineRunsCompleted.WithLabelValues(StageName).Inc()
	metrics.PipelineRunDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())

	return &Output{Spec: spec}, nil
}

// selectGaps keeps moderate and critical gaps, hardest first, mandatory
// before optional at equal severity.
func selectGaps(gaps []models.SkillGap, limit int) []models.SkillGap {
	var selected []models.SkillGap
	for _, gap := range gaps {
		if gap.GapSeverity == models.SeverityModerate || gap.GapSeverity == models.SeverityCritical {
			selected = append(selected, gap)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if severityRank[selected[i].GapSeverity] != severityRank[selected[j].GapSeverity] {
			return severityRank[selected[i].GapSeverity] > severityRank[selected[j].GapSeverity]
		}
		if selected[i].IsMandatory != selected[j].IsMandatory {
			return selected[i].IsMandatory
		}
		return selected[i].GapSize > selected[j].GapSize
	})
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

func (h *Handler) describe(analysis *models.GapAnalysis, gaps []models.SkillGap, criticalCount int) string {
	names := make([]string, 0, len(gaps))
	for _, gap := range gaps {
		names = append(names, gap.SkillName)
	}
	desc := fmt.Sprintf("Targeted upskilling toward the %s role, covering %s.",
		analysis.PositionTitle, strings.Join(names, ", "))
	if criticalCount > 0 {
		desc += fmt.Sprintf(" %d of the addressed gaps are critical for the role.", criticalCount)
	}
	return desc
}

// focusAreas labels the course with the distinct skill categories the gaps
// fall into, in gap order. A gap whose skill is absent from the employee's
// mapped skills counts as technical.
func (h *Handler) focusAreas(gaps []models.SkillGap, skills []models.MappedSkill) []string {
	seen := make(map[models.SkillCategory]bool)
	areas := make([]string, 0, h.config.MaxFocusAreas)
	for _, gap := range gaps {
		category := gapCategory(gap, skills)
		if seen[category] {
			continue
		}
		seen[category] = true
		areas = append(areas, string(category))
		if len(areas) == h.config.MaxFocusAreas {
			break
		}
	}
	return areas
}

// gapCategory resolves a gap's skill category through the employee's mapped
// skills, matching names the same way the gap calculator does.
func gapCategory(gap models.SkillGap, skills []models.MappedSkill) models.SkillCategory {
	want := strings.ToLower(gap.SkillName)
	for _, skill := range skills {
		names := []string{skill.Name}
		if skill.TaxonomyName != nil {
			names = append(names, *skill.TaxonomyName)
		}
		for _, name := range names {
			have := strings.ToLower(name)
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return skill.Category
			}
		}
	}
	return models.CategoryTechnical
}

// keyTools lists the tooling and technology the employee already knows, so
// course content can anchor new material to familiar ground.
func (h *Handler) keyTools(skills []models.MappedSkill) []string {
	var tools []string
	for _, skill := range skills {
		if skill.Category != models.CategoryTool && skill.Category != models.CategoryTechnical {
			continue
		}
		tools = append(tools, skill.Name)
		if len(tools) == h.config.MaxKeyTools {
			break
		}
	}
	return tools
}
