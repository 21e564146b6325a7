package sqlstore

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/employee-service/internal/apperror"
	"github.com/sakif/employee-service/internal/model"
)

const returningUser = " RETURNING id, age, f_name, l_name, gender, created_at, updated_at"

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// =========================================================================
// BUILDUSERUPDATE
// =========================================================================

func TestBuildUserUpdate(t *testing.T) {
	tests := []struct {
		name     string
		update   model.UserUpdate
		ph       Placeholder
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "age only",
			update:   model.UserUpdate{Age: intPtr(21)},
			ph:       Question,
			wantSQL:  "UPDATE users SET age = ? WHERE id = ?" + returningUser,
			wantArgs: []any{21, int64(1)},
		},
		{
			name:     "last name only",
			update:   model.UserUpdate{LastName: strPtr("Roe")},
			ph:       Dollar,
			wantSQL:  "UPDATE users SET l_name = $1 WHERE id = $2" + returningUser,
			wantArgs: []any{"Roe", int64(1)},
		},
		{
			name:     "names",
			update:   model.UserUpdate{FirstName: strPtr("Jane"), LastName: strPtr("Roe")},
			ph:       Dollar,
			wantSQL:  "UPDATE users SET f_name = $1, l_name = $2 WHERE id = $3" + returningUser,
			wantArgs: []any{"Jane", "Roe", int64(1)},
		},
		{
			name:     "all fields",
			update:   model.UserUpdate{Age: intPtr(30), FirstName: strPtr("Jane"), LastName: strPtr("Roe")},
			ph:       Question,
			wantSQL:  "UPDATE users SET age = ?, f_name = ?, l_name = ? WHERE id = ?" + returningUser,
			wantArgs: []any{30, "Jane", "Roe", int64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := BuildUserUpdate(tt.update, 1, tt.ph)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildUserUpdate_OrderIgnoresInputOrder(t *testing.T) {
	var update model.UserUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"l_name":"Roe","f_name":"Jane","age":30}`), &update))

	query, _, err := BuildUserUpdate(update, 7, Question)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET age = ?, f_name = ?, l_name = ? WHERE id = ?"+returningUser, query)
}

func TestBuildUserUpdate_OneCommaPerAdditionalField(t *testing.T) {
	updates := []model.UserUpdate{
		{Age: intPtr(1)},
		{Age: intPtr(1), LastName: strPtr("x")},
		{Age: intPtr(1), FirstName: strPtr("x"), LastName: strPtr("y")},
	}
	for i, u := range updates {
		query, _, err := BuildUserUpdate(u, 1, Dollar)
		require.NoError(t, err)

		set := query[strings.Index(query, " SET ")+len(" SET ") : strings.Index(query, " WHERE ")]
		assert.Equal(t, i, strings.Count(set, ","), "SET clause %q", set)
		assert.Equal(t, 1, strings.Count(query, " WHERE "))
		assert.NotContains(t, query, ",,")
		assert.NotContains(t, query, ", WHERE")
	}
}

func TestBuildUserUpdate_Empty(t *testing.T) {
	query, args, err := BuildUserUpdate(model.UserUpdate{}, 1, Dollar)

	require.Error(t, err)
	assert.Empty(t, query)
	assert.Nil(t, args)

	appErr := apperror.As(err)
	assert.Equal(t, apperror.KindBadRequest, appErr.Kind)
	assert.Equal(t, MsgNoFieldToUpdate, appErr.Message)
}

func TestBuildUserUpdate_ValuesAreBound(t *testing.T) {
	hostile := "Robert'); DROP TABLE users;--"

	query, args, err := BuildUserUpdate(model.UserUpdate{FirstName: &hostile}, 1, Question)
	require.NoError(t, err)
	assert.NotContains(t, query, "Robert")
	assert.Equal(t, []any{hostile, int64(1)}, args)
}

// =========================================================================
// UPDATEBUILDER
// =========================================================================

func TestUpdateBuilder_NoReturning(t *testing.T) {
	query, args, err := NewUpdateBuilder("accounts", Dollar).
		Set("balance", 10).
		Build("account_id", "a-1")

	require.NoError(t, err)
	assert.Equal(t, "UPDATE accounts SET balance = $1 WHERE account_id = $2", query)
	assert.Equal(t, []any{10, "a-1"}, args)
}

func TestUpdateBuilder_HasField(t *testing.T) {
	b := NewUpdateBuilder("users", Question)
	assert.False(t, b.HasField())

	_, _, err := b.Build("id", 1)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	b.Set("age", 2)
	assert.True(t, b.HasField())
}
