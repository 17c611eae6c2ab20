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

// Placeholder description given to company profiles created at registration.
const defaultCompanyDescription = "Description pending"

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, full_name, email, phone, location, kind, password_hash, resume_key, created_at
		FROM users
		WHERE id = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.Location,
		&user.Kind,
		&user.PasswordHash,
		&user.ResumeKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, full_name, email, phone, location, kind, password_hash, resume_key, created_at
		FROM users
		WHERE email = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.Location,
		&user.Kind,
		&user.PasswordHash,
		&user.ResumeKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT id, full_name, email, phone, location, kind, password_hash, resume_key, created_at
		FROM users
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		var user types.User
		if err := rows.Scan(
			&user.ID,
			&user.FullName,
			&user.Email,
			&user.Phone,
			&user.Location,
			&user.Kind,
			&user.PasswordHash,
			&user.ResumeKey,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a user and, for company-kind users, the linked company
// profile in the same transaction. Either both rows exist afterwards or
// neither does. A unique-email violation surfaces as ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.CreatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertUser = `
		INSERT INTO users (full_name, email, phone, location, kind, password_hash, resume_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertUser,
		user.FullName,
		user.Email,
		user.Phone,
		user.Location,
		user.Kind,
		user.PasswordHash,
		user.ResumeKey,
		user.CreatedAt,
	).Scan(&user.ID); err != nil {
		if isUniqueViolation(err, emailUniqueConstraint) {
			return types.User{}, ErrDuplicateEmail
		}
		return types.User{}, err
	}

	if user.Kind == types.UserKindCompany {
		const insertCompany = `
			INSERT INTO companies (user_id, name, description)
			VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, insertCompany, user.ID, user.FullName, defaultCompanyDescription); err != nil {
			return types.User{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// UpdateProfile applies only the populated fields of upd to the user row.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int, upd types.UserUpdate) error {
	assignments := make([]string, 0, 4)
	args := make([]any, 0, 5)

	appendField := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendField("full_name", upd.FullName)
	appendField("phone", upd.Phone)
	appendField("location", upd.Location)
	appendField("resume_key", upd.ResumeKey)

	if len(assignments) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE id = $%d",
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

// Delete removes a user together with every dependent row: applications the
// user submitted, and for company-kind users the company profile with its
// vacancies and their applications. The deletion order respects foreign
// keys and runs in a single transaction.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE applicant_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM applications
		WHERE vacancy_id IN (
			SELECT v.id FROM vacancies v
			JOIN companies c ON c.id = v.company_id
			WHERE c.user_id = $1
		)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vacancies
		WHERE company_id IN (SELECT id FROM companies WHERE user_id = $1)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE user_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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
