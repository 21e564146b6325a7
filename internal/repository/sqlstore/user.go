package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/sakif/employee-service/internal/model"
	"github.com/sakif/employee-service/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// userColumns is the scan order used by scanUser.
var userColumns = []string{"id", "age", "f_name", "l_name", "gender", "created_at", "updated_at"}

func (db *DB) selectUserByID() string {
	return "SELECT " + strings.Join(userColumns, ", ") + " FROM users WHERE id = " + db.placeholder.format(1)
}

// GetByID fetches one user inside its own transaction.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User

	err := db.inTx(ctx, func(ctx context.Context, tx *Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, db.selectUserByID(), id))
		if err != nil {
			appErr := translate(err, id)
			db.logger.WarnContext(ctx, "fetching user failed",
				slog.Int64("id", id),
				slog.String("kind", appErr.Kind.String()),
				slog.String("error", appErr.Message),
			)
			return appErr
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateByID runs exactly one UPDATE ... RETURNING inside a transaction, so
// the returned row is the committed state with nothing interleaved between
// write and read-back.
func (db *DB) UpdateByID(ctx context.Context, id int64, update model.UserUpdate) (*model.User, error) {
	query, args, err := BuildUserUpdate(update, id, db.placeholder)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = db.inTx(ctx, func(ctx context.Context, tx *Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, query, args...))
		if err != nil {
			appErr := translate(err, id)
			db.logger.WarnContext(ctx, "updating user failed",
				slog.Int64("id", id),
				slog.String("kind", appErr.Kind.String()),
				slog.String("error", appErr.Message),
			)
			return appErr
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// scanUser reads columns in userColumns order.
func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Age,
		&u.FirstName,
		&u.LastName,
		&u.Gender,
		timestamp{&u.CreatedAt},
		timestamp{&u.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
