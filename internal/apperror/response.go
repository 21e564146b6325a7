package apperror

// ERROR ENVELOPE:
// Every classified error leaves the service with the same shape:
//
//	{"error": "<OutputMessage()>"}
//
// and the status from StatusCode(). No other error body is ever produced by
// this package.

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body for all classified failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteResponse renders err as the JSON error envelope.
func WriteResponse(w http.ResponseWriter, err error) {
	appErr := As(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: appErr.OutputMessage()}); encErr != nil {
		// Headers are gone by now; logging is all that is left.
		slog.Error("failed to encode error response", slog.String("error", encErr.Error()))
	}
}
