package services

import (
	"context"
	"strings"

	"github.com/empleo-corredor/apiserver/types"
)

// VacancyStore defines persistence operations for vacancies.
type VacancyStore interface {
	Create(ctx context.Context, vacancy types.Vacancy) (types.Vacancy, error)
	List(ctx context.Context, onlyActive bool) ([]types.VacancyListing, error)
	ListByCompany(ctx context.Context, companyID int) ([]types.VacancyWithStats, error)
	Get(ctx context.Context, id int) (types.VacancyDetail, error)
	GetState(ctx context.Context, id int) (string, error)
	Update(ctx context.Context, id int, upd types.VacancyUpdate) error
	Delete(ctx context.Context, id int) error
}

// VacancyService encapsulates vacancy use-cases.
type VacancyService struct {
	vacancies VacancyStore
	companies CompanyStore
}

func NewVacancyService(vacancies VacancyStore, companies CompanyStore) *VacancyService {
	return &VacancyService{
		vacancies: vacancies,
		companies: companies,
	}
}

// Create publishes a new vacancy in the active state. The company must
// exist; title, description and location are required.
func (s *VacancyService) Create(ctx context.Context, vacancy types.Vacancy) (types.Vacancy, error) {
	vacancy.Title = strings.TrimSpace(vacancy.Title)
	vacancy.Description = strings.TrimSpace(vacancy.Description)
	vacancy.Location = strings.TrimSpace(vacancy.Location)
	if vacancy.Title == "" || vacancy.Description == "" || vacancy.Location == "" {
		return types.Vacancy{}, ErrInvalidInput
	}

	if _, err := s.companies.GetByID(ctx, vacancy.CompanyID); err != nil {
		return types.Vacancy{}, err
	}

	return s.vacancies.Create(ctx, vacancy)
}

// List returns the public board, newest first. With onlyActive set, closed
// vacancies are omitted.
func (s *VacancyService) List(ctx context.Context, onlyActive bool) ([]types.VacancyListing, error) {
	return s.vacancies.List(ctx, onlyActive)
}

// ListByCompany returns one company's vacancies with application counts.
func (s *VacancyService) ListByCompany(ctx context.Context, companyID int) ([]types.VacancyWithStats, error) {
	return s.vacancies.ListByCompany(ctx, companyID)
}

// Get returns one vacancy with company contact information.
func (s *VacancyService) Get(ctx context.Context, id int) (types.VacancyDetail, error) {
	return s.vacancies.Get(ctx, id)
}

// Update applies a partial update. At least one field must be supplied,
// and a supplied state must be "active" or "closed".
func (s *VacancyService) Update(ctx context.Context, id int, upd types.VacancyUpdate) error {
	if upd.Title == nil && upd.Description == nil && upd.Location == nil &&
		upd.Salary == nil && upd.ContractType == nil && upd.State == nil {
		return ErrInvalidInput
	}
	if upd.State != nil && *upd.State != types.VacancyStateActive && *upd.State != types.VacancyStateClosed {
		return ErrInvalidInput
	}
	return s.vacancies.Update(ctx, id, upd)
}

// Delete removes a vacancy and its applications.
func (s *VacancyService) Delete(ctx context.Context, id int) error {
	return s.vacancies.Delete(ctx, id)
}
