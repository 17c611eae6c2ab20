package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/empleo-corredor/apiserver/config"
	"github.com/empleo-corredor/apiserver/internal/db"
	"github.com/empleo-corredor/apiserver/internal/handlers"
	"github.com/empleo-corredor/apiserver/internal/mq"
	"github.com/empleo-corredor/apiserver/internal/services"
	"github.com/empleo-corredor/apiserver/internal/storage"
	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resumes, err := newResumeStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if resumes != nil {
		if err := resumes.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	broker, err := newBroker(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	companyRepo := store.NewCompanyRepository(dbConn)
	vacancyRepo := store.NewVacancyRepository(dbConn)
	applicationRepo := store.NewApplicationRepository(dbConn)

	notifier := services.NewNotifier(broker)
	accountService := services.NewAccountService(userRepo, companyRepo, resumes)
	vacancyService := services.NewVacancyService(vacancyRepo, companyRepo)
	applicationService := services.NewApplicationService(applicationRepo, vacancyRepo, notifier)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.NotFound(handlers.NotFoundRoute)
	router.Route("/api/usuarios", func(r chi.Router) {
		handlers.UserRouter(r, accountService, jwtSecret)
	})
	router.Route("/api/empresas", func(r chi.Router) {
		handlers.CompanyRouter(r, accountService)
	})
	router.Route("/api/vacantes", func(r chi.Router) {
		handlers.VacancyRouter(r, vacancyService)
	})
	router.Route("/api/postulaciones", func(r chi.Router) {
		handlers.ApplicationRouter(r, applicationService)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newResumeStore(ctx context.Context, cfg config.Config) (*storage.ResumeStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewResumeStore(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewResumeStore(backend), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQBackend {
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQBackend)
	}
}
