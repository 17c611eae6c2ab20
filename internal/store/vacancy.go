package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/empleo-corredor/apiserver/types"
)

// VacancyRepository handles persistence for vacancies.
type VacancyRepository struct {
	db *sql.DB
}

func NewVacancyRepository(db *sql.DB) *VacancyRepository {
	return &VacancyRepository{db: db}
}

func (r *VacancyRepository) Create(ctx context.Context, vacancy types.Vacancy) (types.Vacancy, error) {
	vacancy.State = types.VacancyStateActive
	vacancy.PublishedAt = time.Now()

	const query = `
		INSERT INTO vacancies (company_id, title, description, location, contract_type, salary, state, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		vacancy.CompanyID,
		vacancy.Title,
		vacancy.Description,
		vacancy.Location,
		vacancy.ContractType,
		vacancy.Salary,
		vacancy.State,
		vacancy.PublishedAt,
	).Scan(&vacancy.ID); err != nil {
		return types.Vacancy{}, err
	}
	return vacancy, nil
}

// List returns vacancies enriched with the publishing company's name and
// location, newest first. With onlyActive set, closed vacancies are omitted.
func (r *VacancyRepository) List(ctx context.Context, onlyActive bool) ([]types.VacancyListing, error) {
	query := `
		SELECT v.id, v.company_id, v.title, v.description, v.location, v.contract_type,
		       v.salary, v.state, v.published_at, c.name, u.location
		FROM vacancies v
		JOIN companies c ON c.id = v.company_id
		JOIN users u ON u.id = c.user_id`
	if onlyActive {
		query += `
		WHERE v.state = 'active'`
	}
	query += `
		ORDER BY v.published_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]types.VacancyListing, 0)
	for rows.Next() {
		var listing types.VacancyListing
		if err := rows.Scan(
			&listing.ID,
			&listing.CompanyID,
			&listing.Title,
			&listing.Description,
			&listing.Location,
			&listing.ContractType,
			&listing.Salary,
			&listing.State,
			&listing.PublishedAt,
			&listing.CompanyName,
			&listing.CompanyLocation,
		); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// ListByCompany returns one company's vacancies annotated with application
// counts, newest first.
func (r *VacancyRepository) ListByCompany(ctx context.Context, companyID int) ([]types.VacancyWithStats, error) {
	const query = `
		SELECT v.id, v.company_id, v.title, v.description, v.location, v.contract_type,
		       v.salary, v.state, v.published_at, COUNT(a.id)
		FROM vacancies v
		LEFT JOIN applications a ON a.vacancy_id = v.id
		WHERE v.company_id = $1
		GROUP BY v.id
		ORDER BY v.published_at DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vacancies := make([]types.VacancyWithStats, 0)
	for rows.Next() {
		var vacancy types.VacancyWithStats
		if err := rows.Scan(
			&vacancy.ID,
			&vacancy.CompanyID,
			&vacancy.Title,
			&vacancy.Description,
			&vacancy.Location,
			&vacancy.ContractType,
			&vacancy.Salary,
			&vacancy.State,
			&vacancy.PublishedAt,
			&vacancy.ApplicationCount,
		); err != nil {
			return nil, err
		}
		vacancies = append(vacancies, vacancy)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vacancies, nil
}

// Get returns one vacancy enriched with the publishing company's contact
// information.
func (r *VacancyRepository) Get(ctx context.Context, id int) (types.VacancyDetail, error) {
	const query = `
		SELECT v.id, v.company_id, v.title, v.description, v.location, v.contract_type,
		       v.salary, v.state, v.published_at, c.name, c.description, u.email, u.phone
		FROM vacancies v
		JOIN companies c ON c.id = v.company_id
		JOIN users u ON u.id = c.user_id
		WHERE v.id = $1`
	var detail types.VacancyDetail
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.CompanyID,
		&detail.Title,
		&detail.Description,
		&detail.Location,
		&detail.ContractType,
		&detail.Salary,
		&detail.State,
		&detail.PublishedAt,
		&detail.CompanyName,
		&detail.CompanyDescription,
		&detail.CompanyEmail,
		&detail.CompanyPhone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.VacancyDetail{}, ErrNotFound
		}
		return types.VacancyDetail{}, err
	}
	return detail, nil
}

// GetState returns the lifecycle state of a vacancy.
func (r *VacancyRepository) GetState(ctx context.Context, id int) (string, error) {
	const query = `SELECT state FROM vacancies WHERE id = $1`
	var state string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return state, nil
}

// Update applies only the populated fields of upd to the vacancy row.
func (r *VacancyRepository) Update(ctx context.Context, id int, upd types.VacancyUpdate) error {
	assignments := make([]string, 0, 6)
	args := make([]any, 0, 7)

	appendField := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendField("title", upd.Title)
	appendField("description", upd.Description)
	appendField("location", upd.Location)
	appendField("salary", upd.Salary)
	appendField("contract_type", upd.ContractType)
	appendField("state", upd.State)

	if len(assignments) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE vacancies SET %s WHERE id = $%d",
		strings.Join(assignments, ", "),
		len(args),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
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

// Delete removes a vacancy and its applications in one transaction.
func (r *VacancyRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE vacancy_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM vacancies WHERE id = $1`, id)
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

	return tx.Commit()
}
