package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/employee-service/internal/apperror"
	"github.com/sakif/employee-service/internal/model"
	"github.com/sakif/employee-service/internal/service"
)

// MsgInvalidBody is returned when a PATCH body is not valid JSON.
const MsgInvalidBody = "invalid request body"

// UserHandler serves /employee/users/{id}.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleGet returns one user.
//
// HTTP: GET /employee/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewUserResponse(user))
}

// HandleUpdate applies a partial update and returns the updated user.
//
// HTTP: PATCH /employee/users/{id}
// REQUEST BODY: any subset of {"age": 21, "f_name": "Jane", "l_name": "Roe"}
//
// Unknown fields are ignored and an explicit null counts as absent.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var update model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if !errors.Is(err, io.EOF) {
			h.logger.WarnContext(r.Context(), "invalid user update JSON", slog.String("error", err.Error()))
		}
		writeError(w, r, h.logger, apperror.BadRequest(MsgInvalidBody))
		return
	}

	user, err := h.users.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewUserResponse(user))
}

// userID parses the {id} path parameter as a signed 32-bit integer.
func userID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, apperror.BadRequest("invalid user id '" + raw + "'")
	}
	return id, nil
}
