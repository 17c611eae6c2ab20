package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/empleo-corredor/apiserver/types"
)

// CompanyRepository handles persistence for company profiles.
type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int) (types.CompanyProfile, error) {
	const query = `
		SELECT id, user_id, name, description
		FROM companies
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *CompanyRepository) GetByUserID(ctx context.Context, userID int) (types.CompanyProfile, error) {
	const query = `
		SELECT id, user_id, name, description
		FROM companies
		WHERE user_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *CompanyRepository) scanOne(row *sql.Row) (types.CompanyProfile, error) {
	var company types.CompanyProfile
	err := row.Scan(
		&company.ID,
		&company.UserID,
		&company.Name,
		&company.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.CompanyProfile{}, ErrNotFound
		}
		return types.CompanyProfile{}, err
	}
	return company, nil
}
