// Package server wires the router, the request pipeline and the handlers,
// and runs the HTTP listener with graceful shutdown.
//
// Every request passes through the same pipeline, outermost first:
//
//	Recover → Observe → Authenticate → router → handler
//
// This is the composition root: main.go builds the dependencies (storage,
// tracer provider, token verifier) and New assembles everything else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/sakif/employee-service/internal/apperror"
	"github.com/sakif/employee-service/internal/auth"
	"github.com/sakif/employee-service/internal/handler"
	"github.com/sakif/employee-service/internal/middleware"
	"github.com/sakif/employee-service/internal/repository"
	"github.com/sakif/employee-service/internal/service"
)

// Config holds listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Resource is served by the index route.
	Resource string
}

// Deps are the collaborators created by main.
type Deps struct {
	Users    repository.UserRepository
	Verifier auth.TokenVerifier   // nil means auth.Passthrough
	Tracer   trace.TracerProvider // nil means the global provider
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New creates a Server. It does not listen until Start is called.
func New(cfg Config, logger *slog.Logger, deps Deps) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s
}

// setupRoutes configures the pipeline and route handlers.
//
// ROUTES:
// GET   /employee/            → resource + caller identity
// GET   /employee/users/{id}  → one user
// PATCH /employee/users/{id}  → partial update of one user
func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(middleware.Chain(
		middleware.Recover(s.logger),
		middleware.Observe(s.logger, deps.Tracer),
		middleware.Authenticate(deps.Verifier, s.logger),
	))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteResponse(w, apperror.NotFound("Not Found"))
	})

	userService := service.NewUserService(deps.Users, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	indexHandler := handler.NewIndexHandler(s.config.Resource)

	s.router.Route("/employee", func(r chi.Router) {
		r.Get("/", indexHandler.HandleIndex)
		r.Get("/users/{id}", userHandler.HandleGet)
		r.Patch("/users/{id}", userHandler.HandleUpdate)
	})
}

// Handler exposes the fully wired router, pipeline included.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on Config.Addr and blocks until SIGINT/SIGTERM, then drains
// in-flight requests for up to Config.ShutdownTimeout.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Addr, err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return s.serve(ln, quit)
}

func (s *Server) serve(ln net.Listener, quit <-chan os.Signal) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
