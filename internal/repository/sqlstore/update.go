package sqlstore

import (
	"strconv"
	"strings"

	"github.com/sakif/employee-service/internal/apperror"
	"github.com/sakif/employee-service/internal/model"
)

// MsgNoFieldToUpdate is returned for an update with no field present.
const MsgNoFieldToUpdate = model.MsgNoFieldToUpdate

// Placeholder is the bind-parameter syntax of a driver.
type Placeholder int

const (
	Question Placeholder = iota // ?, ?, ?
	Dollar                      // $1, $2, $3
)

func (p Placeholder) format(n int) string {
	if p == Dollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// UpdateBuilder assembles a single parameterised
//
//	UPDATE <table> SET a = $1, b = $2 WHERE <key> = $3 RETURNING ...
//
// Values are only ever bound, never written into the SQL text. A comma is
// written before an assignment only when an earlier one was appended.
type UpdateBuilder struct {
	ph       Placeholder
	sql      strings.Builder
	args     []any
	hasField bool
}

// NewUpdateBuilder starts an UPDATE on table. table and column names are
// trusted identifiers supplied by code, never by clients.
func NewUpdateBuilder(table string, ph Placeholder) *UpdateBuilder {
	b := &UpdateBuilder{ph: ph}
	b.sql.WriteString("UPDATE ")
	b.sql.WriteString(table)
	b.sql.WriteString(" SET")
	return b
}

// Set appends "column = <placeholder>".
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	if b.hasField {
		b.sql.WriteString(",")
	}
	b.sql.WriteString(" ")
	b.sql.WriteString(column)
	b.sql.WriteString(" = ")
	b.bind(value)
	b.hasField = true
	return b
}

// HasField reports whether at least one assignment was appended.
func (b *UpdateBuilder) HasField() bool {
	return b.hasField
}

// Build appends the key predicate and RETURNING list and returns the
// statement with its arguments in placeholder order.
func (b *UpdateBuilder) Build(keyColumn string, key any, returning ...string) (string, []any, error) {
	if !b.hasField {
		return "", nil, apperror.BadRequest(MsgNoFieldToUpdate)
	}

	b.sql.WriteString(" WHERE ")
	b.sql.WriteString(keyColumn)
	b.sql.WriteString(" = ")
	b.bind(key)

	if len(returning) > 0 {
		b.sql.WriteString(" RETURNING ")
		b.sql.WriteString(strings.Join(returning, ", "))
	}

	return b.sql.String(), b.args, nil
}

func (b *UpdateBuilder) bind(value any) {
	b.args = append(b.args, value)
	b.sql.WriteString(b.ph.format(len(b.args)))
}

// BuildUserUpdate builds the partial update for one user. Assignments are
// always in the order age, f_name, l_name. An empty update fails before any
// SQL is produced.
func BuildUserUpdate(update model.UserUpdate, id int64, ph Placeholder) (string, []any, error) {
	if update.Empty() {
		return "", nil, apperror.BadRequest(MsgNoFieldToUpdate)
	}

	b := NewUpdateBuilder("users", ph)
	if update.Age != nil {
		b.Set("age", *update.Age)
	}
	if update.FirstName != nil {
		b.Set("f_name", *update.FirstName)
	}
	if update.LastName != nil {
		b.Set("l_name", *update.LastName)
	}

	return b.Build("id", id, userColumns...)
}
