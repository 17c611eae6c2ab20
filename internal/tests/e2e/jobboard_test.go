//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/empleo-corredor/apiserver/config"
	"github.com/empleo-corredor/apiserver/internal/server"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestHiringFlow(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	suffix := time.Now().UnixNano()

	companyEmail := fmt.Sprintf("hr_%d@acme.test", suffix)
	applicantEmail := fmt.Sprintf("jane_%d@example.test", suffix)

	companyAuth, err := registerAccount(t, baseURL, "Acme", companyEmail, "company")
	if err != nil {
		t.Fatalf("register company: %v", err)
	}
	applicantAuth, err := registerAccount(t, baseURL, "Jane Doe", applicantEmail, "applicant")
	if err != nil {
		t.Fatalf("register applicant: %v", err)
	}

	profile, err := companyProfile(t, baseURL, companyAuth.ID)
	if err != nil {
		t.Fatalf("load company profile: %v", err)
	}

	vacancy, err := createVacancy(t, baseURL, profile.ID)
	if err != nil {
		t.Fatalf("create vacancy: %v", err)
	}
	if vacancy.State != "active" {
		t.Fatalf("new vacancy must be active, got %q", vacancy.State)
	}

	application, err := submitApplication(t, baseURL, vacancy.ID, applicantAuth.ID)
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	if application.Status != "pending" {
		t.Fatalf("new application must be pending, got %q", application.Status)
	}

	// A second submission from the same applicant must be rejected.
	if _, err := submitApplication(t, baseURL, vacancy.ID, applicantAuth.ID); err == nil {
		t.Fatal("expected duplicate application to fail")
	}

	if err := setApplicationStatus(t, baseURL, application.ID, "accepted"); err != nil {
		t.Fatalf("accept application: %v", err)
	}

	mine, err := applicantApplications(t, baseURL, applicantAuth.ID)
	if err != nil {
		t.Fatalf("list applicant applications: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != "accepted" {
		t.Fatalf("unexpected applicant applications: %+v", mine)
	}

	if err := deleteAccount(t, baseURL, companyAuth.ID); err != nil {
		t.Fatalf("delete company account: %v", err)
	}
	if _, err := getVacancy(t, baseURL, vacancy.ID); err == nil {
		t.Fatal("expected vacancy to be removed with its company")
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type authPayload struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
}

type companyPayload struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}

type vacancyPayload struct {
	ID    int    `json:"id"`
	State string `json:"state"`
}

type applicationPayload struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

func registerAccount(t *testing.T, baseURL, fullName, email, kind string) (authPayload, error) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("full_name", fullName)
	_ = writer.WriteField("email", email)
	_ = writer.WriteField("kind", kind)
	_ = writer.WriteField("password", "testpass123!")
	if err := writer.Close(); err != nil {
		return authPayload{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/usuarios/registro", &body)
	if err != nil {
		return authPayload{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	env, err := doJSON(req, http.StatusCreated)
	if err != nil {
		return authPayload{}, err
	}

	var parsed authPayload
	if err := json.Unmarshal(env.Data, &parsed); err != nil {
		return authPayload{}, err
	}
	if parsed.Token == "" {
		return authPayload{}, fmt.Errorf("missing token in register response")
	}
	return parsed, nil
}

func companyProfile(t *testing.T, baseURL string, userID int) (companyPayload, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/empresas/usuario/%d", baseURL, userID), nil)
	if err != nil {
		return companyPayload{}, err
	}

	env, err := doJSON(req, http.StatusOK)
	if err != nil {
		return companyPayload{}, err
	}

	var parsed companyPayload
	if err := json.Unmarshal(env.Data, &parsed); err != nil {
		return companyPayload{}, err
	}
	return parsed, nil
}

func createVacancy(t *testing.T, baseURL string, companyID int) (vacancyPayload, error) {
	t.Helper()

	payload := map[string]any{
		"company_id":    companyID,
		"title":         "Backend Engineer",
		"description":   "Build and operate the hiring API",
		"location":      "Remote",
		"salary":        "60k-80k",
		"contract_type": "full-time",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return vacancyPayload{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/vacantes/", bytes.NewReader(body))
	if err != nil {
		return vacancyPayload{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	env, err := doJSON(req, http.StatusCreated)
	if err != nil {
		return vacancyPayload{}, err
	}

	var parsed vacancyPayload
	if err := json.Unmarshal(env.Data, &parsed); err != nil {
		return vacancyPayload{}, err
	}
	return parsed, nil
}

func getVacancy(t *testing.T, baseURL string, id int) (vacancyPayload, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/vacantes/%d", baseURL, id), nil)
	if err != nil {
		return vacancyPayload{}, err
	}

	env, err := doJSON(req, http.StatusOK)
	if err != nil {
		return vacancyPayload{}, err
	}

	var parsed vacancyPayload
	if err := json.Unmarshal(env.Data, &parsed); err != nil {
		return vacancyPayload{}, err
	}
	return parsed, nil
}

func submitApplication(t *testing.T, baseURL string, vacancyID, applicantID int) (applicationPayload, error) {
	t.Helper()

	payload := map[string]any{
		"vacancy_id":   vacancyID,
		"applicant_id": applicantID,
		"message":      "Interested",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return applicationPayload{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/postulaciones/", bytes.NewReader(body))
	if err != nil {
		return applicationPayload{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	env, err := doJSON(req, http.StatusCreated)
	if err != nil {
		return applicationPayload{}, err
	}

	var parsed applicationPayload
	if err := json.Unmarshal(env.Data, &parsed); err != nil {
		return applicationPayload{}, err
	}
	return parsed, nil
}

func setApplicationStatus(t *testing.T, baseURL string, id int, status string) error {
	t.Helper()

	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/api/postulaciones/%d", baseURL, id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = doJSON(req, http.StatusOK)
	return err
}

func applicantApplications(t *testing.T, baseURL string, applicantID int) ([]applicationPayload, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/postulaciones/postulante/%d", baseURL, applicantID), nil)
	if err != nil {
		return nil, err
	}

	env, err := doJSON(req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var parsed []applicationPayload
	if err := json.Unmarshal(env.Data, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func deleteAccount(t *testing.T, baseURL string, id int) error {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/usuarios/%d", baseURL, id), nil)
	if err != nil {
		return err
	}

	_, err = doJSON(req, http.StatusOK)
	return err
}

func doJSON(req *http.Request, wantStatus int) (envelope, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		return envelope{}, fmt.Errorf("%s %s status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, err
	}
	if !env.Success {
		return envelope{}, fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, env.Message)
	}
	return env, nil
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}
	host := fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		host,
		cfg.Database.DBName,
		sslmode,
	)
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "empleo")
	_ = os.Setenv("DB_PASSWORD", "password")
	_ = os.Setenv("DB_NAME", "empleo_corredor")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("STORAGE_BACKEND", "none")
	_ = os.Setenv("MQ_BACKEND", "none")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
