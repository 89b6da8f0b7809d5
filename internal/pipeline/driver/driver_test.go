// internal/pipeline/driver/driver_test.go
package driver

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/models"
	buildcourse "skillforge/internal/pipeline/build-course"
	calculategaps "skillforge/internal/pipeline/calculate-gaps"
	extractskills "skillforge/internal/pipeline/extract-skills"
	extracttext "skillforge/internal/pipeline/extract-text"
	maptaxonomy "skillforge/internal/pipeline/map-taxonomy"
)

// ==========================
// Test Fakes
// ==========================

type memStore struct {
	mu          sync.Mutex
	employees   map[string]*models.Employee
	profiles    map[string]*models.SkillsProfile
	assignments []*models.CourseAssignment
	failUpsert  bool
}

func newMemStore() *memStore {
	return &memStore{
		employees: map[string]*models.Employee{},
		profiles:  map[string]*models.SkillsProfile{},
	}
}

func (m *memStore) GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.employees[employeeID]
	if !ok {
		return nil, stderrors.NewEmployeeNotFoundError(employeeID)
	}
	return emp, nil
}

func (m *memStore) GetLatestProfile(ctx context.Context, employeeID string) (*models.SkillsProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[employeeID]
	if !ok {
		return nil, stderrors.NewProfileNotFoundError(employeeID)
	}
	return profile, nil
}

func (m *memStore) UpsertProfile(ctx context.Context, profile *models.SkillsProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert {
		return stderrors.NewPersistenceFailedError("upsert_profile", context.DeadlineExceeded)
	}
	m.profiles[profile.EmployeeID] = profile
	return nil
}

func (m *memStore) UpdateProfileScores(ctx context.Context, employeeID string, matchScore, readinessScore float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile, ok := m.profiles[employeeID]; ok {
		profile.SkillsMatchScore = matchScore
		profile.CareerReadinessScore = readinessScore
	}
	return nil
}

func (m *memStore) InsertCourseAssignment(ctx context.Context, assignment *models.CourseAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	assignment.ID = "assign-" + assignment.EmployeeID
	m.assignments = append(m.assignments, assignment)
	return nil
}

type fakeText struct{ text string }

func (f *fakeText) Execute(ctx context.Context, input *extracttext.Input) (*extracttext.Output, error) {
	return &extracttext.Output{EmployeeID: input.EmployeeID, Text: f.text, Format: "txt"}, nil
}

type fakeSkills struct {
	skills []models.SkillRecord
	err    error
}

func (f *fakeSkills) Execute(ctx context.Context, input *extractskills.Input) (*extractskills.Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &extractskills.Output{
		EmployeeID: input.EmployeeID,
		Summary:    "summary",
		Skills:     f.skills,
		Background: models.CVBackground{Certifications: []string{"CKA"}},
	}, nil
}

type fakeTaxonomy struct{}

func (f *fakeTaxonomy) Execute(ctx context.Context, input *maptaxonomy.Input) (*maptaxonomy.Output, error) {
	results := make([]maptaxonomy.SkillResult, len(input.Skills))
	for i, record := range input.Skills {
		results[i] = maptaxonomy.SkillResult{
			Skill: models.MappedSkill{
				SkillRecord:      record,
				ProficiencyLevel: maptaxonomy.DeriveProficiency(record.YearsExperience),
				MatchConfidence:  1.0,
			},
			Outcome: maptaxonomy.OutcomeCustom,
		}
	}
	return &maptaxonomy.Output{EmployeeID: input.EmployeeID, Results: results}, nil
}

type fakeGaps struct {
	gaps    []models.SkillGap
	failFor map[string]bool
}

func (f *fakeGaps) Execute(ctx context.Context, input *calculategaps.Input) (*calculategaps.Output, error) {
	if f.failFor[input.EmployeeID] {
		return nil, stderrors.NewPersistenceFailedError("list_requirements", context.DeadlineExceeded)
	}
	return &calculategaps.Output{Analysis: &models.GapAnalysis{
		EmployeeID:       input.EmployeeID,
		PositionID:       input.PositionID,
		PositionTitle:    "Data Engineer",
		Gaps:             f.gaps,
		SkillsMatchScore: 50,
	}}, nil
}

type fakeCourse struct{ spec *models.CourseSpec }

func (f *fakeCourse) Execute(ctx context.Context, input *buildcourse.Input) (*buildcourse.Output, error) {
	return &buildcourse.Output{Spec: f.spec}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	notified []string
	err      error
}

func (r *recordingNotifier) NotifyAssignment(ctx context.Context, employee *models.Employee, assignment *models.CourseAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, employee.ID)
	return r.err
}

// ==========================
// Test Helper Functions
// ==========================

func yearsPtr(f float64) *float64 { return &f }

func seedEmployee(st *memStore, id, targetPosition string) {
	st.employees[id] = &models.Employee{
		ID:               id,
		FullName:         "Test Person",
		Email:            id + "@example.com",
		TargetPositionID: targetPosition,
	}
	st.profiles[id] = &models.SkillsProfile{
		EmployeeID: id,
		Skills:     []models.MappedSkill{{SkillRecord: models.SkillRecord{Name: "SQL"}, ProficiencyLevel: 2}},
	}
}

func testSpec() *models.CourseSpec {
	return &models.CourseSpec{
		ModuleName:    "Data Engineer Readiness Program",
		DurationWeeks: 3,
		PriorityLevel: models.PriorityMedium,
	}
}

func newTestDriver(st *memStore, gaps *fakeGaps, course *fakeCourse, notifier Notifier) *Driver {
	return New(
		DefaultConfig(),
		&fakeText{text: "cv text"},
		&fakeSkills{skills: []models.SkillRecord{{Name: "Go", YearsExperience: yearsPtr(5)}}},
		&fakeTaxonomy{},
		gaps,
		course,
		st,
		notifier,
		logger.NewNoOpLogger(),
	)
}

// ==========================
// AnalyzeCV Tests
// ==========================

func TestDriver_AnalyzeCV_PersistsProfileAndScores(t *testing.T) {
	st := newMemStore()
	seedEmployee(st, "emp-001", "pos-001")

	d := newTestDriver(st, &fakeGaps{}, &fakeCourse{}, nil)
	result := d.AnalyzeCV(context.Background(), AnalyzeRequest{
		EmployeeID:   "emp-001",
		DocumentPath: "/tmp/cv.txt",
	})

	assert.NoError(t, result.Err)
	profile := st.profiles["emp-001"]
	require.NotNil(t, profile)
	require.Len(t, profile.Skills, 1)
	assert.Equal(t, "Go", profile.Skills[0].Name)
	assert.Equal(t, []string{"CKA"}, profile.Background.Certifications)
	assert.Equal(t, float64(50), profile.SkillsMatchScore)
}

func TestDriver_AnalyzeCV_UnknownEmployee(t *testing.T) {
	d := newTestDriver(newMemStore(), &fakeGaps{}, &fakeCourse{}, nil)

	result := d.AnalyzeCV(context.Background(), AnalyzeRequest{
		EmployeeID:   "emp-404",
		DocumentPath: "/tmp/cv.txt",
	})
	assert.Error(t, result.Err)
}

func TestDriver_AnalyzeCV_NoTargetPositionSkipsScoring(t *testing.T) {
	st := newMemStore()
	seedEmployee(st, "emp-001", "")

	gaps := &fakeGaps{failFor: map[string]bool{"emp-001": true}}
	d := newTestDriver(st, gaps, &fakeCourse{}, nil)

	result := d.AnalyzeCV(context.Background(), AnalyzeRequest{
		EmployeeID:   "emp-001",
		DocumentPath: "/tmp/cv.txt",
	})

	// Gap stage would fail if it ran; the run still succeeds because it is
	// skipped for employees without a target position.
	assert.NoError(t, result.Err)
	assert.NotNil(t, st.profiles["emp-001"])
}

// ==========================
// Course Generation Tests
// ==========================

func TestDriver_GenerateCourse_AssignsAndNotifies(t *testing.T) {
	st := newMemStore()
	seedEmployee(st, "emp-001", "pos-001")
	notifier := &recordingNotifier{}

	d := newTestDriver(st, &fakeGaps{}, &fakeCourse{spec: testSpec()}, notifier)
	result := d.GenerateCourse(context.Background(), "emp-001")

	assert.NoError(t, result.Err)
	assert.Equal(t, "assign-emp-001", result.CourseID)
	require.Len(t, st.assignments, 1)
	assert.Equal(t, []string{"emp-001"}, notifier.notified)
}

func TestDriver_GenerateCourse_NoGapsMeansNoAssignment(t *testing.T) {
	st := newMemStore()
	seedEmployee(st, "emp-001", "pos-001")
	notifier := &recordingNotifier{}

	d := newTestDriver(st, &fakeGaps{}, &fakeCourse{spec: nil}, notifier)
	result := d.GenerateCourse(context.Background(), "emp-001")

	assert.NoError(t, result.Err)
	assert.Empty(t, result.CourseID)
	assert.Empty(t, st.assignments)
	assert.Empty(t, notifier.notified)
}

func TestDriver_GenerateCourse_NotificationFailureDoesNotFailRun(t *testing.T) {
	st := newMemStore()
	seedEmployee(st, "emp-001", "pos-001")
	notifier := &recordingNotifier{err: stderrors.NewNotificationSendFailedError("email", context.DeadlineExceeded)}

	d := newTestDriver(st, &fakeGaps{}, &fakeCourse{spec: testSpec()}, notifier)
	result := d.GenerateCourse(context.Background(), "emp-001")

	assert.NoError(t, result.Err)
	assert.NotEmpty(t, result.CourseID)
}

// ==========================
// Batch Tests
// ==========================

func TestDriver_RunBatch_IsolatesFailures(t *testing.T) {
	st := newMemStore()
	seedEmployee(st, "emp-001", "pos-001")
	seedEmployee(st, "emp-002", "pos-001")
	seedEmployee(st, "emp-003", "pos-001")

	gaps := &fakeGaps{failFor: map[string]bool{"emp-002": true}}
	d := newTestDriver(st, gaps, &fakeCourse{spec: testSpec()}, nil)

	summary := d.RunBatch(context.Background(), []string{"emp-001", "emp-002", "emp-003"})

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Courses)

	require.Len(t, summary.Results, 3)
	assert.NoError(t, summary.Results[0].Err)
	assert.Error(t, summary.Results[1].Err)
	assert.NoError(t, summary.Results[2].Err)
}

func TestDriver_RunBatch_ConcurrentRunsComplete(t *testing.T) {
	st := newMemStore()
	var ids []string
	for _, id := range []string{"emp-001", "emp-002", "emp-003", "emp-004", "emp-005"} {
		seedEmployee(st, id, "pos-001")
		ids = append(ids, id)
	}

	d := New(
		&Config{Concurrency: 3},
		&fakeText{text: "cv"},
		&fakeSkills{},
		&fakeTaxonomy{},
		&fakeGaps{},
		&fakeCourse{spec: testSpec()},
		st,
		nil,
		logger.NewNoOpLogger(),
	)

	summary := d.RunBatch(context.Background(), ids)
	assert.Equal(t, 5, summary.Succeeded)
	assert.Equal(t, 5, summary.Courses)
}
