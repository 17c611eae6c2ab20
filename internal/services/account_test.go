package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/empleo-corredor/apiserver/internal/storage"
	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/empleo-corredor/apiserver/types"
)

type memUserStore struct {
	nextID    int
	users     map[int]types.User
	companies map[int]types.CompanyProfile
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		nextID:    1,
		users:     map[int]types.User{},
		companies: map[int]types.CompanyProfile{},
	}
}

func (m *memUserStore) GetByID(ctx context.Context, id int) (types.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserStore) List(ctx context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *memUserStore) Create(ctx context.Context, user types.User) (types.User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	m.users[user.ID] = user
	if user.Kind == types.UserKindCompany {
		m.companies[user.ID] = types.CompanyProfile{
			ID:          user.ID,
			UserID:      user.ID,
			Name:        user.FullName,
			Description: "Description pending",
		}
	}
	return user, nil
}

func (m *memUserStore) UpdateProfile(ctx context.Context, id int, upd types.UserUpdate) error {
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		user.Phone = *upd.Phone
	}
	if upd.Location != nil {
		user.Location = *upd.Location
	}
	if upd.ResumeKey != nil {
		user.ResumeKey = *upd.ResumeKey
	}
	m.users[id] = user
	return nil
}

func (m *memUserStore) Delete(ctx context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	delete(m.companies, id)
	return nil
}

func (m *memUserStore) GetByUserID(ctx context.Context, userID int) (types.CompanyProfile, error) {
	if company, ok := m.companies[userID]; ok {
		return company, nil
	}
	return types.CompanyProfile{}, store.ErrNotFound
}

func (m *memUserStore) companyByID(id int) (types.CompanyProfile, bool) {
	for _, company := range m.companies {
		if company.ID == id {
			return company, true
		}
	}
	return types.CompanyProfile{}, false
}

// memUserStore doubles as the CompanyStore for tests.
func (m *memUserStore) GetByIDCompany(ctx context.Context, id int) (types.CompanyProfile, error) {
	if company, ok := m.companyByID(id); ok {
		return company, nil
	}
	return types.CompanyProfile{}, store.ErrNotFound
}

type memCompanyStore struct {
	backing *memUserStore
}

func (m memCompanyStore) GetByID(ctx context.Context, id int) (types.CompanyProfile, error) {
	return m.backing.GetByIDCompany(ctx, id)
}

func (m memCompanyStore) GetByUserID(ctx context.Context, userID int) (types.CompanyProfile, error) {
	return m.backing.GetByUserID(ctx, userID)
}

type memObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjectStorage() *memObjectStorage {
	return &memObjectStorage{objects: map[string][]byte{}}
}

func (m *memObjectStorage) EnsureBucket(ctx context.Context) error { return nil }

func (m *memObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjectStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memObjectStorage) Bucket() string { return "test-bucket" }

func newTestAccountService(backing *memUserStore, objects *memObjectStorage) *AccountService {
	var resumes *storage.ResumeStore
	if objects != nil {
		resumes = storage.NewResumeStore(objects)
	}
	return NewAccountService(backing, memCompanyStore{backing: backing}, resumes)
}

func validPDF(size int) []byte {
	data := make([]byte, size)
	copy(data, "%PDF-1.4")
	return data
}

func TestRegisterApplicant(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	user, err := svc.Register(context.Background(), RegisterParams{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Kind:     types.UserKindApplicant,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Fatalf("unexpected email: %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash must not be returned")
	}
	if _, err := svc.CompanyForUser(context.Background(), user.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("applicant must not get a company profile, got err: %v", err)
	}
}

func TestRegisterCompanyCreatesProfile(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	user, err := svc.Register(context.Background(), RegisterParams{
		FullName: "Acme",
		Email:    "hr@acme.com",
		Kind:     types.UserKindCompany,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	company, err := svc.CompanyForUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CompanyForUser error: %v", err)
	}
	if company.UserID != user.ID {
		t.Fatalf("company linked to wrong user: %d", company.UserID)
	}
	if company.Name != "Acme" {
		t.Fatalf("unexpected company name: %q", company.Name)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	params := RegisterParams{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Kind:     types.UserKindApplicant,
		Password: "secret123",
	}
	if _, err := svc.Register(context.Background(), params); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, err := svc.Register(context.Background(), params); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	cases := []struct {
		name   string
		params RegisterParams
	}{
		{"missing name", RegisterParams{Email: "a@b.c", Kind: types.UserKindApplicant, Password: "x"}},
		{"missing email", RegisterParams{FullName: "A", Kind: types.UserKindApplicant, Password: "x"}},
		{"missing password", RegisterParams{FullName: "A", Email: "a@b.c", Kind: types.UserKindApplicant}},
		{"bad kind", RegisterParams{FullName: "A", Email: "a@b.c", Kind: "admin", Password: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.params); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got: %v", err)
			}
		})
	}
	if len(backing.users) != 0 {
		t.Fatalf("no user rows should exist, got %d", len(backing.users))
	}
}

func TestRegisterOversizedResume(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, newMemObjectStorage())

	_, err := svc.Register(context.Background(), RegisterParams{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Kind:     types.UserKindApplicant,
		Password: "secret123",
		Resume:   validPDF(3 << 20),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
	if len(backing.users) != 0 {
		t.Fatal("no user row should be created for a rejected upload")
	}
}

func TestRegisterNonPDFResume(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, newMemObjectStorage())

	_, err := svc.Register(context.Background(), RegisterParams{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Kind:     types.UserKindApplicant,
		Password: "secret123",
		Resume:   []byte("PK\x03\x04 definitely a zip"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestRegisterStoresResume(t *testing.T) {
	backing := newMemUserStore()
	objects := newMemObjectStorage()
	svc := newTestAccountService(backing, objects)

	user, err := svc.Register(context.Background(), RegisterParams{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Kind:     types.UserKindApplicant,
		Password: "secret123",
		Resume:   validPDF(1024),
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	stored := backing.users[user.ID]
	if stored.ResumeKey == "" {
		t.Fatal("expected resume key on user row")
	}
	if _, ok := objects.objects[stored.ResumeKey]; !ok {
		t.Fatalf("resume object %q not stored", stored.ResumeKey)
	}

	reader, err := svc.OpenResume(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("OpenResume error: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read resume: %v", err)
	}
	if len(data) != 1024 {
		t.Fatalf("unexpected resume size: %d", len(data))
	}
}

func TestAuthenticate(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	if _, err := svc.Register(context.Background(), RegisterParams{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Kind:     types.UserKindApplicant,
		Password: "secret123",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(context.Background(), "jane@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got: %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	user, err := svc.Register(context.Background(), RegisterParams{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Kind:     types.UserKindApplicant,
		Password: "secret123",
		Phone:    "555-0100",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	location := "Madrid"
	if err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdateParams{Location: &location}); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}

	updated := backing.users[user.ID]
	if updated.Location != "Madrid" {
		t.Fatalf("location not applied: %q", updated.Location)
	}
	if updated.FullName != "Jane Doe" || updated.Phone != "555-0100" {
		t.Fatalf("unsupplied fields changed: %+v", updated)
	}
}

func TestUpdateProfileNoFields(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	if err := svc.UpdateProfile(context.Background(), 1, ProfileUpdateParams{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestDeleteUnknownUser(t *testing.T) {
	backing := newMemUserStore()
	svc := newTestAccountService(backing, nil)

	if err := svc.Delete(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}
