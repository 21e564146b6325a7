// Package handler contains the HTTP handlers of the employee service.
//
// Handlers only translate between HTTP and the service layer: they parse
// path parameters and bodies, call UserService, and write JSON. Every error
// response goes through apperror.WriteResponse so the wire shape is always
// {"error": "<message>"}.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/employee-service/internal/apperror"
)

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set before the body: once Encode writes, the
// header is sent and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError renders err as the classified error envelope. Internal
// failures are logged here with their real cause since the client only
// sees the generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	appErr := apperror.As(err)
	if appErr.Kind == apperror.KindInternal {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
			slog.String("error", appErr.Error()),
		)
	}
	apperror.WriteResponse(w, appErr)
}
