package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/employee-service/internal/apperror"
	"github.com/sakif/employee-service/internal/auth"
	"github.com/sakif/employee-service/internal/model"
	"github.com/sakif/employee-service/internal/service"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

type fakeUserRepo struct {
	users map[int64]model.User
	calls int
	err   error
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("No user found for id '" + itoa(id) + "'")
	}
	return &u, nil
}

func (f *fakeUserRepo) UpdateByID(_ context.Context, id int64, update model.UserUpdate) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("No user found for id '" + itoa(id) + "'")
	}
	if update.Age != nil {
		u.Age = *update.Age
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	f.users[id] = u
	return &u, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newRepo() *fakeUserRepo {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &fakeUserRepo{users: map[int64]model.User{
		1: {ID: 1, Age: 20, FirstName: "John", LastName: "Doe", Gender: "male", CreatedAt: ts, UpdatedAt: ts},
	}}
}

func newRouter(repo *fakeUserRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := NewUserHandler(service.NewUserService(repo, logger), logger)

	r := chi.NewRouter()
	r.Get("/employee/", NewIndexHandler("Hello World").HandleIndex)
	r.Get("/employee/users/{id}", users.HandleGet)
	r.Patch("/employee/users/{id}", users.HandleUpdate)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{ID: "token-123"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) model.UserResponse {
	t.Helper()
	var resp model.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apperror.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

// =========================================================================
// GET /employee/users/{id}
// =========================================================================

func TestHandleGet(t *testing.T) {
	rec := do(t, newRouter(newRepo()), http.MethodGet, "/employee/users/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeUser(t, rec)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, 20, resp.Age)
	assert.Equal(t, "John Doe", resp.Name)
	assert.Equal(t, "male", resp.Gender)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"id", "age", "name", "gender", "created_at", "updated_at"} {
		assert.Contains(t, raw, key)
	}
	assert.Len(t, raw, 6)
}

func TestHandleGet_NotFound(t *testing.T) {
	rec := do(t, newRouter(newRepo()), http.MethodGet, "/employee/users/999", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No user found for id '999'", errorMessage(t, rec))
}

func TestHandleGet_InvalidID(t *testing.T) {
	tests := []string{"abc", "1.5", "2147483648", "-2147483649"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			repo := newRepo()
			rec := do(t, newRouter(repo), http.MethodGet, "/employee/users/"+raw, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid user id '"+raw+"'", errorMessage(t, rec))
			assert.Zero(t, repo.calls)
		})
	}
}

func TestHandleGet_InternalHidesCause(t *testing.T) {
	repo := newRepo()
	repo.err = apperror.Internal("pq: password authentication failed")

	rec := do(t, newRouter(repo), http.MethodGet, "/employee/users/1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.InternalMessage, errorMessage(t, rec))
	assert.NotContains(t, rec.Body.String(), "password")
}

// =========================================================================
// PATCH /employee/users/{id}
// =========================================================================

func TestHandleUpdate(t *testing.T) {
	h := newRouter(newRepo())

	rec := do(t, h, http.MethodPatch, "/employee/users/1", `{"age": 21}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeUser(t, rec)
	assert.Equal(t, 21, resp.Age)
	assert.Equal(t, "John Doe", resp.Name)
	assert.Equal(t, "male", resp.Gender)

	// A later GET sees the update.
	rec = do(t, h, http.MethodGet, "/employee/users/1", "")
	assert.Equal(t, 21, decodeUser(t, rec).Age)
}

func TestHandleUpdate_Names(t *testing.T) {
	rec := do(t, newRouter(newRepo()), http.MethodPatch, "/employee/users/1", `{"l_name":"Roe","f_name":"Jane","nickname":"JR"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Roe", decodeUser(t, rec).Name)
}

func TestHandleUpdate_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty object", `{}`, model.MsgNoFieldToUpdate},
		{"only nulls", `{"age": null, "f_name": null}`, model.MsgNoFieldToUpdate},
		{"only unknown fields", `{"gender": "female"}`, model.MsgNoFieldToUpdate},
		{"not json", `age=21`, MsgInvalidBody},
		{"no body", ``, MsgInvalidBody},
		{"wrong type", `{"age": "old"}`, MsgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo()
			rec := do(t, newRouter(repo), http.MethodPatch, "/employee/users/1", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, rec))
			assert.Zero(t, repo.calls, "storage must not be reached")
		})
	}
}

func TestHandleUpdate_NotFound(t *testing.T) {
	rec := do(t, newRouter(newRepo()), http.MethodPatch, "/employee/users/404", `{"age": 1}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No user found for id '404'", errorMessage(t, rec))
}

// =========================================================================
// GET /employee/
// =========================================================================

func TestHandleIndex(t *testing.T) {
	rec := do(t, newRouter(newRepo()), http.MethodGet, "/employee/", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp IndexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, IndexResponse{Val: "Hello World", User: "token-123"}, resp)
}

func TestHandleIndex_OutsideIdentityScopePanics(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/employee/", nil)
	rec := httptest.NewRecorder()

	assert.Panics(t, func() {
		NewIndexHandler("x").HandleIndex(rec, req)
	})
}
