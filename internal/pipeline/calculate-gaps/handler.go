// internal/pipeline/calculate-gaps/handler.go
package calculategaps

import (
	"context"
	"math"
	"strings"
	"time"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/common/metrics"
	"skillforge/internal/models"
)

const StageName = "calculate-gaps"

// dataStore is the slice of the persistence adapter this stage reads from.
type dataStore interface {
	GetLatestProfile(ctx context.Context, employeeID string) (*models.SkillsProfile, error)
	GetPosition(ctx context.Context, positionID string) (*models.Position, error)
	ListRequirements(ctx context.Context, positionID string) ([]models.PositionRequirement, error)
}

type Handler struct {
	config *Config
	store  dataStore
	logger logger.Logger
}

func NewHandler(config *Config, store dataStore, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	position, err := h.store.GetPosition(ctx, input.PositionID)
	if err != nil {
		h.recordFailure(err)
		return nil, err
	}
	requirements, err := h.store.ListRequirements(ctx, input.PositionID)
	if err != nil {
		h.recordFailure(err)
		return nil, err
	}

	skills := input.Skills
	if len(skills) == 0 {
		profile, err := h.store.GetLatestProfile(ctx, input.EmployeeID)
		if err != nil {
			h.recordFailure(err)
			return nil, err
		}
		skills = profile.Skills
	}

	analysis := h.analyze(input.EmployeeID, position, requirements, skills)

	h.logger.Info("gap analysis complete", map[string]interface{}{
		"employeeId":     input.EmployeeID,
		"positionId":     input.PositionID,
		"gapCount":       len(analysis.Gaps),
		"matchScore":     analysis.SkillsMatchScore,
		"readinessScore": analysis.CareerReadinessScore,
	})
	metrics.PipelineRunsCompleted.WithLabelValues(StageName).Inc()
	metrics.PipelineRunDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())

	return &Output{Analysis: analysis}, nil
}

func (h *Handler) analyze(employeeID string, position *models.Position, requirements []models.PositionRequirement, skills []models.MappedSkill) *models.GapAnalysis {
	analysis := &models.GapAnalysis{
		EmployeeID:    employeeID,
		PositionID:    position.ID,
		PositionTitle: position.Title,
		AnalyzedAt:    time.Now().UTC(),
	}

	covered := 0
	for _, req := range requirements {
		skill := findSkill(skills, req.SkillName)

		currentLevel := 0
		evidence := ""
		var skillID string
		if skill != nil {
			currentLevel = skill.ProficiencyLevel
			evidence = skill.Evidence
			if skill.TaxonomyID != nil {
				skillID = *skill.TaxonomyID
			}
		}

		gapSize := req.RequiredLevel - currentLevel
		if gapSize < 0 {
			gapSize = 0
		}

		switch h.config.Strategy {
		case StrategyMeetsLevel:
			if skill != nil && gapSize == 0 {
				covered++
			}
		default:
			if skill != nil {
				covered++
			}
		}

		analysis.Gaps = append(analysis.Gaps, models.SkillGap{
			SkillName:    req.SkillName,
			SkillID:      skillID,
			CurrentLevel: currentLevel,
			RequiredLevel: req.RequiredLevel,
			GapSize:      gapSize,
			GapSeverity:  h.severity(gapSize),
			IsMandatory:  req.IsMandatory,
			Evidence:     evidence,
		})
	}

	if len(requirements) == 0 {
		analysis.SkillsMatchScore = 100
	} else {
		analysis.SkillsMatchScore = math.Round(float64(covered)/float64(len(requirements))*10000) / 100
	}
	analysis.CareerReadinessScore = h.readiness(analysis.SkillsMatchScore, analysis.Gaps)

	return analysis
}

// findSkill matches a requirement against the employee's skills by
// case-insensitive substring in either direction, preferring the canonical
// taxonomy name over the raw CV spelling. First match wins.
func findSkill(skills []models.MappedSkill, requirementName string) *models.MappedSkill {
	want := strings.ToLower(strings.TrimSpace(requirementName))
	for i := range skills {
		names := []string{skills[i].Name}
		if skills[i].TaxonomyName != nil {
			names = append(names, *skills[i].TaxonomyName)
		}
		for _, name := range names {
			have := strings.ToLower(strings.TrimSpace(name))
			if have == "" {
				continue
			}
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return &skills[i]
			}
		}
	}
	return nil
}

func (h *Handler) severity(gapSize int) models.GapSeverity {
	switch {
	case gapSize <= 0:
		return models.SeverityNone
	case gapSize <= h.config.MinorMaxGap:
		return models.SeverityMinor
	case gapSize <= h.config.ModerateMaxGap:
		return models.SeverityModerate
	default:
		return models.SeverityCritical
	}
}

// readiness deducts weighted gap penalties from the match score. Mandatory
// gaps cost more than optional ones; the result clamps to [0, 100].
func (h *Handler) readiness(matchScore float64, gaps []models.SkillGap) float64 {
	score := matchScore
	for _, gap := range gaps {
		if gap.GapSize == 0 {
			continue
		}
		if gap.IsMandatory {
			score -= h.config.MandatoryGapPenalty * float64(gap.GapSize)
		} else {
			score -= h.config.OptionalGapPenalty * float64(gap.GapSize)
		}
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return math.Round(score*100) / 100
}

func (h *Handler) recordFailure(err error) {
	code := string(stderrors.ErrCodePersistenceFailed)
	if stdErr, ok := err.(*stderrors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.PipelineRunsFailed.WithLabelValues(StageName, code).Inc()
}
