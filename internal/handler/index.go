package handler

import (
	"net/http"

	"github.com/sakif/employee-service/internal/auth"
)

// IndexResponse is the body of GET /employee/.
type IndexResponse struct {
	Val  string `json:"val"`
	User string `json:"user"`
}

// IndexHandler echoes the configured resource and the caller's identity.
type IndexHandler struct {
	resource string
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(resource string) *IndexHandler {
	return &IndexHandler{resource: resource}
}

// HandleIndex must run inside the authentication stage; it reads the
// identity with auth.CurrentIdentity.
//
// HTTP: GET /employee/
func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	id := auth.CurrentIdentity(r.Context())
	writeJSON(w, http.StatusOK, IndexResponse{Val: h.resource, User: id.ID})
}
