package repository

import (
	"context"

	"github.com/sakif/employee-service/internal/model"
)

// UserRepository is the data access contract for users. Every error it
// returns is classified (*apperror.AppError).
type UserRepository interface {
	// GetByID returns the user or NotFound.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// UpdateByID applies a partial update and returns the row as committed.
	// An empty update fails with BadRequest before touching storage.
	UpdateByID(ctx context.Context, id int64, update model.UserUpdate) (*model.User, error)
}
