package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/employee-service/internal/apperror"
)

// classify maps a storage failure to a taxonomy kind. It is total: anything
// it does not recognise (connectivity, constraint violations, pool timeout,
// context deadlines) is Internal.
func classify(err error) apperror.Kind {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Kind
	case errors.Is(err, sql.ErrNoRows):
		return apperror.KindNotFound
	case isInvalidArgument(err):
		return apperror.KindBadRequest
	default:
		return apperror.KindInternal
	}
}

// isInvalidArgument reports driver errors caused by a bad value rather than
// by the backend: SQLSTATE class 22 (data exception) on Postgres, type
// mismatch / bind range / too big on SQLite.
func isInvalidArgument(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "22"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff { // primary result code
		case sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_RANGE, sqlite3.SQLITE_TOOBIG:
			return true
		}
	}
	return false
}

// translate classifies err for an operation on the user with the given id.
func translate(err error, id int64) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	kind := classify(err)
	if kind == apperror.KindNotFound {
		return apperror.Wrap(kind, err, "%s", notFoundMessage(id))
	}
	return apperror.Wrap(kind, err, "%s", err.Error())
}

func notFoundMessage(id int64) string {
	return fmt.Sprintf("No user found for id '%d'", id)
}
