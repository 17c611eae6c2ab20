package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/empleo-corredor/apiserver/internal/services"
	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL    = 24 * time.Hour
	maxMultipartMemory = 8 << 20
	formFieldFullName  = "full_name"
	formFieldEmail     = "email"
	formFieldKind      = "kind"
	formFieldPassword  = "password"
	formFieldPhone     = "phone"
	formFieldLocation  = "location"
	formFieldResume    = "cv"
)

// UserHandler provides account endpoints: registration, login, profile
// CRUD and résumé download.
type UserHandler struct {
	accounts *services.AccountService
	secret   []byte
	tokenTTL time.Duration
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(accounts *services.AccountService, jwtSecret string) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		secret:   []byte(jwtSecret),
		tokenTTL: defaultTokenTTL,
	}
}

// UserRouter registers account routes on the given router.
func UserRouter(r chi.Router, accounts *services.AccountService, jwtSecret string) {
	handler := NewUserHandler(accounts, jwtSecret)

	r.Post("/registro", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/", handler.ListUsers)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
		r.Get("/cv", handler.DownloadResume)
	})
}

// RequireAuth enforces JWT authentication and injects the subject into context.
func (h *UserHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		subject, err := parseTokenSubject(tokenString, h.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), contextSubjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthPayload is the account data returned after registration and login.
type AuthPayload struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Kind     string `json:"kind"`
	Token    string `json:"token,omitempty"`
}

// Register creates a new user account from a multipart form with an
// optional résumé PDF under the "cv" field.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	resume, err := parseResumeFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Register(r.Context(), services.RegisterParams{
		FullName: r.FormValue(formFieldFullName),
		Email:    r.FormValue(formFieldEmail),
		Kind:     r.FormValue(formFieldKind),
		Password: r.FormValue(formFieldPassword),
		Phone:    r.FormValue(formFieldPhone),
		Location: r.FormValue(formFieldLocation),
		Resume:   resume,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeInternal(w, "failed to register user", err)
		}
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeInternal(w, "failed to create token", err)
		return
	}

	writeData(w, http.StatusCreated, "user registered successfully", AuthPayload{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Kind:     user.Kind,
		Token:    token,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the account with a JWT.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeInternal(w, "failed to authenticate", err)
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeInternal(w, "failed to create token", err)
		return
	}

	writeData(w, http.StatusOK, "login successful", AuthPayload{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Kind:     user.Kind,
		Token:    token,
	})
}

// Me returns the current authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.accounts.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeInternal(w, "failed to load user", err)
		return
	}

	writeData(w, http.StatusOK, "", user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		writeInternal(w, "failed to list users", err)
		return
	}
	writeList(w, users, len(users))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeInternal(w, "failed to load user", err)
		return
	}

	writeData(w, http.StatusOK, "", user)
}

// UpdateUser applies a partial profile update from a multipart form. Only
// supplied fields change; an uploaded "cv" file replaces the stored résumé.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	resume, err := parseResumeFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := services.ProfileUpdateParams{
		FullName: formValuePtr(r.MultipartForm, formFieldFullName),
		Phone:    formValuePtr(r.MultipartForm, formFieldPhone),
		Location: formValuePtr(r.MultipartForm, formFieldLocation),
		Resume:   resume,
	}

	if err := h.accounts.UpdateProfile(r.Context(), id, params); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "no fields to update")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeInternal(w, "failed to update user", err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "user updated successfully")
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeInternal(w, "failed to delete user", err)
		return
	}

	writeMessage(w, http.StatusOK, "user deleted successfully")
}

// DownloadResume streams the stored résumé PDF.
func (h *UserHandler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, err := h.accounts.OpenResume(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "resume not found")
			return
		}
		writeInternal(w, "failed to load resume", err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

// formValuePtr returns the field value when it was present in the form,
// nil otherwise. Presence matters for partial updates.
func formValuePtr(form *multipart.Form, key string) *string {
	if form == nil {
		return nil
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

// parseResumeFile reads the optional "cv" upload, capped just above the
// résumé size limit so oversized files are rejected without buffering them.
func parseResumeFile(form *multipart.Form) ([]byte, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[formFieldResume]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one cv file is allowed")
	}

	file, err := files[0].Open()
	if err != nil {
		return nil, errors.New("failed to read cv file")
	}
	defer file.Close()

	limited := io.LimitReader(file, services.MaxResumeBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read cv file")
	}
	return data, nil
}
