package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/empleo-corredor/apiserver/internal/storage"
	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/empleo-corredor/apiserver/types"
)

// MaxResumeBytes caps uploaded résumé size at 2MB.
const MaxResumeBytes = 2 << 20

var pdfMagic = []byte("%PDF-")

// UserStore defines persistence operations for user accounts.
type UserStore interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, id int, upd types.UserUpdate) error
	Delete(ctx context.Context, id int) error
}

// CompanyStore defines persistence operations for company profiles.
type CompanyStore interface {
	GetByID(ctx context.Context, id int) (types.CompanyProfile, error)
	GetByUserID(ctx context.Context, userID int) (types.CompanyProfile, error)
}

// RegisterParams carries a registration request. Phone, Location and Resume
// are optional.
type RegisterParams struct {
	FullName string
	Email    string
	Kind     string
	Password string
	Phone    string
	Location string
	Resume   []byte
}

// ProfileUpdateParams carries a partial profile update. Nil fields are left
// untouched; a non-empty Resume replaces the stored résumé.
type ProfileUpdateParams struct {
	FullName *string
	Phone    *string
	Location *string
	Resume   []byte
}

// AccountService encapsulates account use-cases: registration,
// authentication, profile management and deletion.
type AccountService struct {
	users     UserStore
	companies CompanyStore
	resumes   *storage.ResumeStore
}

func NewAccountService(users UserStore, companies CompanyStore, resumes *storage.ResumeStore) *AccountService {
	return &AccountService{
		users:     users,
		companies: companies,
		resumes:   resumes,
	}
}

// Register creates a user account. Company-kind registrations also create
// the linked company profile (the store does both atomically). The résumé,
// when present, is validated before any row is written.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (types.User, error) {
	params.FullName = strings.TrimSpace(params.FullName)
	params.Email = strings.TrimSpace(params.Email)
	if params.FullName == "" || params.Email == "" || params.Kind == "" || params.Password == "" {
		return types.User{}, ErrInvalidInput
	}
	if params.Kind != types.UserKindApplicant && params.Kind != types.UserKindCompany {
		return types.User{}, ErrInvalidInput
	}
	if err := validateResume(params.Resume); err != nil {
		return types.User{}, err
	}

	hashed, err := HashPassword(params.Password)
	if err != nil {
		return types.User{}, err
	}

	resumeKey := ""
	if len(params.Resume) > 0 {
		resumeKey, err = s.storeResume(ctx, params.Resume)
		if err != nil {
			return types.User{}, err
		}
	}

	user, err := s.users.Create(ctx, types.User{
		FullName:     params.FullName,
		Email:        params.Email,
		Phone:        params.Phone,
		Location:     params.Location,
		Kind:         params.Kind,
		PasswordHash: hashed,
		ResumeKey:    resumeKey,
	})
	if err != nil {
		return types.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return types.User{}, err
	}
	if !ok {
		return types.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *AccountService) Get(ctx context.Context, id int) (types.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AccountService) List(ctx context.Context) ([]types.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateProfile applies a partial update. At least one field or a résumé
// must be supplied.
func (s *AccountService) UpdateProfile(ctx context.Context, id int, params ProfileUpdateParams) error {
	if params.FullName == nil && params.Phone == nil && params.Location == nil && len(params.Resume) == 0 {
		return ErrInvalidInput
	}
	if err := validateResume(params.Resume); err != nil {
		return err
	}

	upd := types.UserUpdate{
		FullName: params.FullName,
		Phone:    params.Phone,
		Location: params.Location,
	}
	if len(params.Resume) > 0 {
		key, err := s.storeResume(ctx, params.Resume)
		if err != nil {
			return err
		}
		upd.ResumeKey = &key
	}

	return s.users.UpdateProfile(ctx, id, upd)
}

// Delete removes the account and all dependent rows. The stored résumé
// object is removed best-effort afterwards.
func (s *AccountService) Delete(ctx context.Context, id int) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	if user.ResumeKey != "" && s.resumes != nil {
		_ = s.resumes.Delete(ctx, user.ResumeKey)
	}
	return nil
}

// CompanyForUser returns the company profile linked to a user account.
func (s *AccountService) CompanyForUser(ctx context.Context, userID int) (types.CompanyProfile, error) {
	return s.companies.GetByUserID(ctx, userID)
}

// OpenResume opens a reader for a user's stored résumé PDF.
func (s *AccountService) OpenResume(ctx context.Context, userID int) (io.ReadCloser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ResumeKey == "" || s.resumes == nil {
		return nil, store.ErrNotFound
	}
	return s.resumes.Get(ctx, user.ResumeKey)
}

func (s *AccountService) storeResume(ctx context.Context, data []byte) (string, error) {
	if s.resumes == nil {
		return "", errors.New("resume storage is not configured")
	}
	key := fmt.Sprintf("cvs/cv-%d.pdf", time.Now().UnixNano())
	if err := s.resumes.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		return "", err
	}
	return key, nil
}

// validateResume rejects résumés over the size cap or without a PDF header.
// An empty upload is fine (the résumé is optional).
func validateResume(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if len(data) > MaxResumeBytes {
		return fmt.Errorf("%w: resume exceeds %d bytes", ErrInvalidInput, MaxResumeBytes)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("%w: only PDF resumes are accepted", ErrInvalidInput)
	}
	return nil
}
