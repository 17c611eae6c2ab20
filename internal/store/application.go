package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/empleo-corredor/apiserver/types"
)

// ApplicationRepository handles persistence for applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new pending application. The unique
// (vacancy_id, applicant_id) constraint is the authoritative duplicate
// guard: a racing second insert fails here with ErrDuplicateApplication
// even when the caller's existence check passed.
func (r *ApplicationRepository) Create(ctx context.Context, application types.Application) (types.Application, error) {
	application.Status = types.ApplicationStatusPending
	application.SubmittedAt = time.Now()

	const query = `
		INSERT INTO applications (vacancy_id, applicant_id, message, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		application.VacancyID,
		application.ApplicantID,
		application.Message,
		application.Status,
		application.SubmittedAt,
	).Scan(&application.ID); err != nil {
		if isUniqueViolation(err, applicationUniqueConstraint) {
			return types.Application{}, ErrDuplicateApplication
		}
		return types.Application{}, err
	}
	return application, nil
}

// Exists reports whether an application already exists for the
// (vacancy, applicant) pair.
func (r *ApplicationRepository) Exists(ctx context.Context, vacancyID, applicantID int) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM applications WHERE vacancy_id = $1 AND applicant_id = $2
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, vacancyID, applicantID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByApplicant returns one applicant's applications enriched with
// vacancy and company fields, newest first.
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID int) ([]types.ApplicantApplication, error) {
	const query = `
		SELECT a.id, a.vacancy_id, a.applicant_id, a.message, a.status, a.submitted_at,
		       v.title, v.location, v.salary, v.contract_type, c.name
		FROM applications a
		JOIN vacancies v ON v.id = a.vacancy_id
		JOIN companies c ON c.id = v.company_id
		WHERE a.applicant_id = $1
		ORDER BY a.submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := make([]types.ApplicantApplication, 0)
	for rows.Next() {
		var app types.ApplicantApplication
		if err := rows.Scan(
			&app.ID,
			&app.VacancyID,
			&app.ApplicantID,
			&app.Message,
			&app.Status,
			&app.SubmittedAt,
			&app.VacancyTitle,
			&app.VacancyLocation,
			&app.Salary,
			&app.ContractType,
			&app.CompanyName,
		); err != nil {
			return nil, err
		}
		applications = append(applications, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return applications, nil
}

// ListByVacancy returns one vacancy's applications enriched with applicant
// contact fields, newest first.
func (r *ApplicationRepository) ListByVacancy(ctx context.Context, vacancyID int) ([]types.VacancyApplication, error) {
	const query = `
		SELECT a.id, a.vacancy_id, a.applicant_id, a.message, a.status, a.submitted_at,
		       u.full_name, u.email, u.phone, u.location, u.resume_key
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		WHERE a.vacancy_id = $1
		ORDER BY a.submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, vacancyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := make([]types.VacancyApplication, 0)
	for rows.Next() {
		var app types.VacancyApplication
		if err := rows.Scan(
			&app.ID,
			&app.VacancyID,
			&app.ApplicantID,
			&app.Message,
			&app.Status,
			&app.SubmittedAt,
			&app.ApplicantName,
			&app.ApplicantEmail,
			&app.ApplicantPhone,
			&app.ApplicantLocation,
			&app.ResumeKey,
		); err != nil {
			return nil, err
		}
		applications = append(applications, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return applications, nil
}

// UpdateStatus overwrites the review status of an application.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	const query = `UPDATE applications SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
