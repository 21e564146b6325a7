// Package main is the entry point for the employee service.
//
// main only reads configuration, creates the long-lived dependencies
// (logger, tracer provider, connection pool, token verifier) and hands them
// to internal/server. All request handling lives in internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/employee-service/internal/auth"
	"github.com/sakif/employee-service/internal/config"
	"github.com/sakif/employee-service/internal/repository/sqlstore"
	"github.com/sakif/employee-service/internal/server"
	"github.com/sakif/employee-service/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// === 1. CONFIGURATION ===
	// config/default.yaml → config/$RUN_MODE.yaml → config/local.yaml → APP_* env
	cfg, err := config.Load("config")
	if err != nil {
		return err
	}

	// === 2. LOGGING ===
	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger(os.Stdout, level)
	slog.SetDefault(logger)

	// === 3. TRACING ===
	tp, shutdownTracing, err := telemetry.Init(context.Background(), telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Timeout:     cfg.Telemetry.Timeout,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()
	if cfg.Telemetry.Endpoint == "" {
		logger.Info("telemetry endpoint not set; spans are not exported")
	}

	// === 4. DATABASE ===
	db, err := sqlstore.Open(sqlstore.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MinConnections,
		ConnMaxIdleTime: cfg.Database.IdleTimeout,
		ConnMaxLifetime: cfg.Database.MaxLifetime,
		AcquireTimeout:  cfg.Database.AcquireTimeout,
		Hooks: []sqlstore.Hook{
			sqlstore.LogHook{Logger: logger},
			sqlstore.NewTraceHook(tp),
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		return err
	}

	// === 5. AUTHENTICATION ===
	// Without a secret the bearer token itself is the caller's identity.
	var verifier auth.TokenVerifier = auth.Passthrough{}
	if cfg.Auth.JWTSecret != "" {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
		if err != nil {
			return err
		}
		verifier = jwtVerifier
		logger.Info("JWT verification enabled")
	}

	// === 6. SERVE ===
	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Resource:        cfg.App.Resource,
	}, logger, server.Deps{
		Users:    db,
		Verifier: verifier,
		Tracer:   tp,
	})

	// Start blocks until SIGINT/SIGTERM.
	return srv.Start()
}
