package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/sakif/employee-service/internal/apperror"
)

// Tx is one open transaction. Statements issued through it pass through the
// configured hooks.
type Tx struct {
	tx    *sql.Tx
	hooks hookChain
}

// QueryRow runs a statement expected to return at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.hooks.After(ctx, query, args, time.Since(start), row.Err())
	return row
}

// inTx acquires a connection, begins a transaction, runs fn and commits.
//
// fn's error is returned unchanged after a rollback. A panic in fn rolls back
// and keeps unwinding with its original stack. Failures to acquire, begin or
// commit are Internal.
//
// The context handed to fn is detached from the caller's cancellation: a
// client that disconnects mid-request does not abort the transaction here;
// the backend's own connection-loss handling decides.
func (db *DB) inTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	ctx = context.WithoutCancel(ctx)

	conn, err := db.acquire(ctx)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, err, "sqlstore: acquiring connection: %v", err)
	}
	defer conn.Close()

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, err, "sqlstore: begin: %v", err)
	}

	// No recover here: re-panicking would replace the fault's stack.
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.WarnContext(ctx, "rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(ctx, &Tx{tx: sqlTx, hooks: db.hooks}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return apperror.Wrap(apperror.KindInternal, err, "sqlstore: commit: %v", err)
	}
	committed = true
	return nil
}
