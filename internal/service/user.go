// Package service contains the business logic between the HTTP handlers and
// the repository.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → orchestrates, logs business events
//	Repository (data layer)  → reads/writes the users table
//
// UserService takes a repository.UserRepository (interface), not a concrete
// store, so tests pass a fake and main.go decides between Postgres and
// SQLite.
package service

import (
	"context"
	"log/slog"

	"github.com/sakif/employee-service/internal/apperror"
	"github.com/sakif/employee-service/internal/auth"
	"github.com/sakif/employee-service/internal/model"
	"github.com/sakif/employee-service/internal/repository"
)

// UserService handles reads and partial updates of employee records.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, logger: logger}
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies the fields present in update and returns the stored row.
// An update with no field present fails with BadRequest without touching
// storage.
func (s *UserService) Update(ctx context.Context, id int64, update model.UserUpdate) (*model.User, error) {
	if update.Empty() {
		return nil, apperror.BadRequest(model.MsgNoFieldToUpdate)
	}

	user, err := s.repo.UpdateByID(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.Int64("id", user.ID),
		slog.String("actor", actor(ctx)),
		slog.Any("fields", update.Fields()),
	)
	return user, nil
}

func actor(ctx context.Context) string {
	if id, ok := auth.IdentityFromContext(ctx); ok {
		return id.ID
	}
	return ""
}
