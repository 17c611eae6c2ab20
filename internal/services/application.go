package services

import (
	"context"

	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/empleo-corredor/apiserver/types"
)

// ApplicationStore defines persistence operations for applications.
type ApplicationStore interface {
	Create(ctx context.Context, application types.Application) (types.Application, error)
	Exists(ctx context.Context, vacancyID, applicantID int) (bool, error)
	ListByApplicant(ctx context.Context, applicantID int) ([]types.ApplicantApplication, error)
	ListByVacancy(ctx context.Context, vacancyID int) ([]types.VacancyApplication, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

// VacancyStateStore is the slice of the vacancy store the application
// service needs for eligibility checks.
type VacancyStateStore interface {
	GetState(ctx context.Context, id int) (string, error)
}

// ApplicationService encapsulates application use-cases.
type ApplicationService struct {
	applications ApplicationStore
	vacancies    VacancyStateStore
	notifier     *Notifier
}

func NewApplicationService(applications ApplicationStore, vacancies VacancyStateStore, notifier *Notifier) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		vacancies:    vacancies,
		notifier:     notifier,
	}
}

// Submit creates a pending application. The vacancy must exist and be
// active, and the applicant must not have applied to it before. The
// existence check here is only a fast path for a friendlier error; the
// store's unique constraint is what closes the check-then-insert race.
func (s *ApplicationService) Submit(ctx context.Context, vacancyID, applicantID int, message string) (types.Application, error) {
	state, err := s.vacancies.GetState(ctx, vacancyID)
	if err != nil {
		return types.Application{}, err
	}
	if state != types.VacancyStateActive {
		return types.Application{}, ErrVacancyClosed
	}

	exists, err := s.applications.Exists(ctx, vacancyID, applicantID)
	if err != nil {
		return types.Application{}, err
	}
	if exists {
		return types.Application{}, store.ErrDuplicateApplication
	}

	application, err := s.applications.Create(ctx, types.Application{
		VacancyID:   vacancyID,
		ApplicantID: applicantID,
		Message:     message,
	})
	if err != nil {
		return types.Application{}, err
	}

	s.notifier.ApplicationSubmitted(ctx, application)
	return application, nil
}

// ListByApplicant returns one applicant's applications with vacancy and
// company fields, newest first.
func (s *ApplicationService) ListByApplicant(ctx context.Context, applicantID int) ([]types.ApplicantApplication, error) {
	return s.applications.ListByApplicant(ctx, applicantID)
}

// ListByVacancy returns one vacancy's applications with applicant contact
// fields, newest first.
func (s *ApplicationService) ListByVacancy(ctx context.Context, vacancyID int) ([]types.VacancyApplication, error) {
	return s.applications.ListByVacancy(ctx, vacancyID)
}

// SetStatus overwrites the review status. Any of the three states may be
// written, including moving back to pending; accepted/rejected are terminal
// by convention only.
func (s *ApplicationService) SetStatus(ctx context.Context, id int, status string) error {
	if !types.ValidApplicationStatus(status) {
		return ErrInvalidInput
	}
	if err := s.applications.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.notifier.ApplicationStatusChanged(ctx, id, status)
	return nil
}
