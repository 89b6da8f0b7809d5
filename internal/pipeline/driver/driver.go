// internal/pipeline/driver/driver.go
package driver

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"skillforge/internal/common/logger"
	"skillforge/internal/models"
	buildcourse "skillforge/internal/pipeline/build-course"
	calculategaps "skillforge/internal/pipeline/calculate-gaps"
	extractskills "skillforge/internal/pipeline/extract-skills"
	extracttext "skillforge/internal/pipeline/extract-text"
	maptaxonomy "skillforge/internal/pipeline/map-taxonomy"
)

// Stage contracts the driver runs. Each is satisfied by the corresponding
// pipeline handler; tests substitute fakes.
type (
	TextExtractor interface {
		Execute(ctx context.Context, input *extracttext.Input) (*extracttext.Output, error)
	}
	SkillExtractor interface {
		Execute(ctx context.Context, input *extractskills.Input) (*extractskills.Output, error)
	}
	TaxonomyMapper interface {
		Execute(ctx context.Context, input *maptaxonomy.Input) (*maptaxonomy.Output, error)
	}
	GapCalculator interface {
		Execute(ctx context.Context, input *calculategaps.Input) (*calculategaps.Output, error)
	}
	CourseBuilder interface {
		Execute(ctx context.Context, input *buildcourse.Input) (*buildcourse.Output, error)
	}
)

// profileStore is the slice of the persistence adapter the driver uses.
type profileStore interface {
	GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error)
	GetLatestProfile(ctx context.Context, employeeID string) (*models.SkillsProfile, error)
	UpsertProfile(ctx context.Context, profile *models.SkillsProfile) error
	UpdateProfileScores(ctx context.Context, employeeID string, matchScore, readinessScore float64) error
	InsertCourseAssignment(ctx context.Context, assignment *models.CourseAssignment) error
}

// Notifier delivers the course assignment to the employee. Delivery is best
// effort; a notification failure never fails the run.
type Notifier interface {
	NotifyAssignment(ctx context.Context, employee *models.Employee, assignment *models.CourseAssignment) error
}

// Config controls batch execution.
type Config struct {
	// Concurrency bounds how many employees are processed at once.
	Concurrency int
	// DelayBetween spaces out run starts, mostly to stay under provider
	// rate limits.
	DelayBetween time.Duration
	// RunTimeout bounds one employee's full run.
	RunTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Concurrency: 1,
		RunTimeout:  5 * time.Minute,
	}
}

// AnalyzeRequest names one employee's CV document.
type AnalyzeRequest struct {
	EmployeeID   string
	DocumentPath string
}

// EmployeeResult reports one employee's run. Err is nil on success; CourseID
// is empty when no course was warranted.
type EmployeeResult struct {
	EmployeeID string
	CourseID   string
	Err        error
}

// Summary aggregates a batch run.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
	Courses   int
	Results   []EmployeeResult
}

type Driver struct {
	config   *Config
	text     TextExtractor
	skills   SkillExtractor
	taxonomy TaxonomyMapper
	gaps     GapCalculator
	course   CourseBuilder
	store    profileStore
	notifier Notifier
	logger   logger.Logger
}

func New(config *Config, text TextExtractor, skills SkillExtractor, taxonomy TaxonomyMapper, gaps GapCalculator, course CourseBuilder, store profileStore, notifier Notifier, log logger.Logger) *Driver {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Driver{
		config:   config,
		text:     text,
		skills:   skills,
		taxonomy: taxonomy,
		gaps:     gaps,
		course:   course,
		store:    store,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "driver"}),
	}
}

// AnalyzeCV runs one employee's CV through extraction and mapping and
// persists the resulting skills profile. When the employee has a target
// position the profile scores are refreshed in the same run.
func (d *Driver) AnalyzeCV(ctx context.Context, req AnalyzeRequest) EmployeeResult {
	ctx, cancel := d.withRunTimeout(ctx)
	defer cancel()

	result := EmployeeResult{EmployeeID: req.EmployeeID}

	employee, err := d.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		result.Err = err
		return result
	}

	textOut, err := d.text.Execute(ctx, &extracttext.Input{
		EmployeeID:   req.EmployeeID,
		DocumentPath: req.DocumentPath,
	})
	if err != nil {
		result.Err = err
		return result
	}

	skillsOut, err := d.skills.Execute(ctx, &extractskills.Input{
		EmployeeID: req.EmployeeID,
		Text:       textOut.Text,
	})
	if err != nil {
		result.Err = err
		return result
	}

	mapOut, err := d.taxonomy.Execute(ctx, &maptaxonomy.Input{
		EmployeeID: req.EmployeeID,
		Skills:     skillsOut.Skills,
	})
	if err != nil {
		result.Err = err
		return result
	}
	mappedSkills := mapOut.MappedSkills()

	profile := &models.SkillsProfile{
		EmployeeID: req.EmployeeID,
		Summary:    skillsOut.Summary,
		Skills:     mappedSkills,
		Background: skillsOut.Background,
		AnalyzedAt: time.Now().UTC(),
	}
	if err := d.store.UpsertProfile(ctx, profile); err != nil {
		result.Err = err
		return result
	}

	if employee.TargetPositionID == "" {
		d.logger.Info("profile persisted, no target position set", map[string]interface{}{
			"employeeId": req.EmployeeID,
		})
		return result
	}

	gapsOut, err := d.gaps.Execute(ctx, &calculategaps.Input{
		EmployeeID: req.EmployeeID,
		PositionID: employee.TargetPositionID,
		Skills:     mappedSkills,
	})
	if err != nil {
		result.Err = err
		return result
	}
	if err := d.store.UpdateProfileScores(ctx, req.EmployeeID,
		gapsOut.Analysis.SkillsMatchScore, gapsOut.Analysis.CareerReadinessScore); err != nil {
		result.Err = err
		return result
	}
	return result
}

// GenerateCourse runs gap analysis against the stored profile and, when the
// gaps warrant it, persists and announces a course assignment.
func (d *Driver) GenerateCourse(ctx context.Context, employeeID string) EmployeeResult {
	ctx, cancel := d.withRunTimeout(ctx)
	defer cancel()

	log := d.logger.WithFields(map[string]interface{}{"employeeId": employeeID})
	result := EmployeeResult{EmployeeID: employeeID}

	employee, err := d.store.GetEmployee(ctx, employeeID)
	if err != nil {
		result.Err = err
		return result
	}
	if employee.TargetPositionID == "" {
		log.Info("no target position, skipping", nil)
		return result
	}

	profile, err := d.store.GetLatestProfile(ctx, employeeID)
	if err != nil {
		result.Err = err
		return result
	}

	gapsOut, err := d.gaps.Execute(ctx, &calculategaps.Input{
		EmployeeID: employeeID,
		PositionID: employee.TargetPositionID,
		Skills:     profile.Skills,
	})
	if err != nil {
		result.Err = err
		return result
	}
	analysis := gapsOut.Analysis

	if err := d.store.UpdateProfileScores(ctx, employeeID,
		analysis.SkillsMatchScore, analysis.CareerReadinessScore); err != nil {
		result.Err = err
		return result
	}

	courseOut, err := d.course.Execute(ctx, &buildcourse.Input{
		Analysis: analysis,
		Skills:   profile.Skills,
	})
	if err != nil {
		result.Err = err
		return result
	}
	if courseOut.Spec == nil {
		return result
	}

	assignment := &models.CourseAssignment{
		EmployeeID: employeeID,
		PositionID: analysis.PositionID,
		Spec:       *courseOut.Spec,
	}
	if err := d.store.InsertCourseAssignment(ctx, assignment); err != nil {
		result.Err = err
		return result
	}
	result.CourseID = assignment.ID

	if d.notifier != nil {
		if err := d.notifier.NotifyAssignment(ctx, employee, assignment); err != nil {
			log.Warn("assignment notification failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return result
}

// RunBatch generates courses for every listed employee. One employee's
// failure is recorded and the batch moves on; only context cancellation
// stops it.
func (d *Driver) RunBatch(ctx context.Context, employeeIDs []string) *Summary {
	summary := &Summary{Results: make([]EmployeeResult, len(employeeIDs))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.Concurrency)

	var mu sync.Mutex
	for i, employeeID := range employeeIDs {
		if d.config.DelayBetween > 0 && i > 0 {
			select {
			case <-time.After(d.config.DelayBetween):
			case <-gctx.Done():
			}
		}
		if gctx.Err() != nil {
			summary.Results[i] = EmployeeResult{EmployeeID: employeeID, Err: gctx.Err()}
			continue
		}

		i, employeeID := i, employeeID
		g.Go(func() error {
			result := d.GenerateCourse(gctx, employeeID)
			mu.Lock()
			summary.Results[i] = result
			mu.Unlock()
			// Per-employee errors live in the result, not the group, so the
			// batch keeps going.
			return nil
		})
	}
	g.Wait()

	for _, result := range summary.Results {
		summary.Processed++
		if result.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if result.CourseID != "" {
			summary.Courses++
		}
	}

	d.logger.Info("batch complete", map[string]interface{}{
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"courses":   summary.Courses,
	})
	return summary
}

func (d *Driver) withRunTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.config.RunTimeout > 0 {
		return context.WithTimeout(ctx, d.config.RunTimeout)
	}
	return ctx, func() {}
}
