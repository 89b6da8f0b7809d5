// internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/models"
)

// Store is the persistence adapter over the hosted relational datastore.
// Consistency is whatever single-row-write atomicity the store provides; no
// client-side transactions are held across pipeline stages.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// GetEmployee loads one employee by id.
func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error) {
	var emp models.Employee
	var phone, positionID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, target_position_id
		FROM employees WHERE id = $1`, employeeID).
		Scan(&emp.ID, &emp.FullName, &emp.Email, &phone, &positionID)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewEmployeeNotFoundError(employeeID)
	}
	if err != nil {
		return nil, stderrors.NewPersistenceFailedError("get_employee", err)
	}
	emp.Phone = phone.String
	emp.TargetPositionID = positionID.String
	return &emp, nil
}

// ListEmployees returns every employee with a target position assigned.
func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, email, phone, target_position_id
		FROM employees
		WHERE target_position_id IS NOT NULL
		ORDER BY full_name`)
	if err != nil {
		return nil, stderrors.NewPersistenceFailedError("list_employees", err)
	}
	defer rows.Close()

	var out []models.Employee
	for rows.Next() {
		var emp models.Employee
		var phone, positionID sql.NullString
		if err := rows.Scan(&emp.ID, &emp.FullName, &emp.Email, &phone, &positionID); err != nil {
			return nil, stderrors.NewPersistenceFailedError("list_employees", err)
		}
		emp.Phone = phone.String
		emp.TargetPositionID = positionID.String
		out = append(out, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewPersistenceFailedError("list_employees", err)
	}
	return out, nil
}

// GetPosition loads one position by id.
func (s *Store) GetPosition(ctx context.Context, positionID string) (*models.Position, error) {
	var pos models.Position
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title FROM positions WHERE id = $1`, positionID).
		Scan(&pos.ID, &pos.Title)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewPositionNotFoundError(positionID)
	}
	if err != nil {
		return nil, stderrors.NewPersistenceFailedError("get_position", err)
	}
	return &pos, nil
}

// ListRequirements returns the required-skill list of a position.
func (s *Store) ListRequirements(ctx context.Context, positionID string) ([]models.PositionRequirement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position_id, skill_name, required_level, is_mandatory
		FROM position_requirements
		WHERE position_id = $1
		ORDER BY is_mandatory DESC, skill_name`, positionID)
	if err != nil {
		return nil, stderrors.NewPersistenceFailedError("list_requirements", err)
	}
	defer rows.Close()

	var out []models.PositionRequirement
	for rows.Next() {
		var req models.PositionRequirement
		if err := rows.Scan(&req.PositionID, &req.SkillName, &req.RequiredLevel, &req.IsMandatory); err != nil {
			return nil, stderrors.NewPersistenceFailedError("list_requirements", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewPersistenceFailedError("list_requirements", err)
	}
	return out, nil
}

// UpsertProfile writes one employee's skills profile, replacing any previous
// run's profile for that employee.
func (s *Store) UpsertProfile(ctx context.Context, profile *models.SkillsProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	skillsJSON, err := json.Marshal(profile.Skills)
	if err != nil {
		return stderrors.NewPersistenceFailedError("upsert_profile", err)
	}
	backgroundJSON, err := json.Marshal(profile.Background)
	if err != nil {
		return stderrors.NewPersistenceFailedError("upsert_profile", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO skills_profiles (
			id, employee_id, summary, skills, background,
			skills_match_score, career_readiness_score, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			skills = EXCLUDED.skills,
			background = EXCLUDED.background,
			skills_match_score = EXCLUDED.skills_match_score,
			career_readiness_score = EXCLUDED.career_readiness_score,
			analyzed_at = EXCLUDED.analyzed_at`,
		profile.ID,
		profile.EmployeeID,
		profile.Summary,
		skillsJSON,
		backgroundJSON,
		profile.SkillsMatchScore,
		profile.CareerReadinessScore,
		profile.AnalyzedAt,
	)
	if err != nil {
		return stderrors.NewPersistenceFailedError("upsert_profile", err)
	}

	s.logger.Info("skills profile upserted", map[string]interface{}{
		"employeeId": profile.EmployeeID,
		"skillCount": len(profile.Skills),
	})
	return nil
}

// GetLatestProfile loads the current skills profile for an employee.
func (s *Store) GetLatestProfile(ctx context.Context, employeeID string) (*models.SkillsProfile, error) {
	var profile models.SkillsProfile
	var skillsJSON, backgroundJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, summary, skills, background,
		       skills_match_score, career_readiness_score, analyzed_at
		FROM skills_profiles
		WHERE employee_id = $1`, employeeID).
		Scan(&profile.ID, &profile.EmployeeID, &profile.Summary, &skillsJSON, &backgroundJSON,
			&profile.SkillsMatchScore, &profile.CareerReadinessScore, &profile.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewProfileNotFoundError(employeeID)
	}
	if err != nil {
		return nil, stderrors.NewPersistenceFailedError("get_latest_profile", err)
	}
	if err := json.Unmarshal(skillsJSON, &profile.Skills); err != nil {
		return nil, stderrors.NewPersistenceFailedError("get_latest_profile", err)
	}
	if len(backgroundJSON) > 0 {
		if err := json.Unmarshal(backgroundJSON, &profile.Background); err != nil {
			return nil, stderrors.NewPersistenceFailedError("get_latest_profile", err)
		}
	}
	return &profile, nil
}

// UpdateProfileScores refreshes the aggregate scores after a gap run without
// touching the mapped skill list.
func (s *Store) UpdateProfileScores(ctx context.Context, employeeID string, matchScore, readinessScore float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE skills_profiles
		SET skills_match_score = $2, career_readiness_score = $3
		WHERE employee_id = $1`, employeeID, matchScore, readinessScore)
	if err != nil {
		return stderrors.NewPersistenceFailedError("update_profile_scores", err)
	}
	return nil
}

// InsertCourseAssignment records one generated course spec for an employee.
func (s *Store) InsertCourseAssignment(ctx context.Context, assignment *models.CourseAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	if assignment.Status == "" {
		assignment.Status = "assigned"
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}

	specJSON, err := json.Marshal(assignment.Spec)
	if err != nil {
		return stderrors.NewPersistenceFailedError("insert_course_assignment", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO course_assignments (
			id, employee_id, position_id, module_name, spec,
			priority, status, assigned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		assignment.ID,
		assignment.EmployeeID,
		assignment.PositionID,
		assignment.Spec.ModuleName,
		specJSON,
		string(assignment.Spec.PriorityLevel),
		assignment.Status,
		assignment.AssignedAt,
	)
	if err != nil {
		return stderrors.NewPersistenceFailedError("insert_course_assignment", err)
	}

	s.logger.Info("course assignment created", map[string]interface{}{
		"assignmentId": assignment.ID,
		"employeeId":   assignment.EmployeeID,
		"moduleName":   assignment.Spec.ModuleName,
		"priority":     assignment.Spec.PriorityLevel,
	})
	return nil
}

// ListTaxonomySkills returns the full controlled vocabulary, for indexing.
func (s *Store) ListTaxonomySkills(ctx context.Context) ([]models.TaxonomySkill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, aliases, COALESCE(description, '')
		FROM skills ORDER BY name`)
	if err != nil {
		return nil, stderrors.NewPersistenceFailedError("list_taxonomy_skills", err)
	}
	defer rows.Close()

	var out []models.TaxonomySkill
	for rows.Next() {
		var sk models.TaxonomySkill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Category, pq.Array(&sk.Aliases), &sk.Description); err != nil {
			return nil, stderrors.NewPersistenceFailedError("list_taxonomy_skills", err)
		}
		out = append(out, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewPersistenceFailedError("list_taxonomy_skills", err)
	}
	return out, nil
}
