package auth

import (
	"net/http"
	"strings"

	"github.com/sakif/employee-service/internal/apperror"
)

const bearerPrefix = "Bearer "

// Rejection messages returned to the client.
const (
	MsgNoAuthHeader        = "No auth header"
	MsgIncorrectAuthFormat = "Incorrect auth header format"
)

// BearerToken extracts the raw token from the Authorization header.
//
// The prefix match is exact and case-sensitive: "bearer x" and "Bearer" (no
// space) are both rejected. Whatever follows the prefix is returned verbatim.
func BearerToken(h http.Header) (string, error) {
	values, present := h[http.CanonicalHeaderKey("Authorization")]
	if !present || len(values) == 0 {
		return "", apperror.Unauthorized(MsgNoAuthHeader)
	}

	token, ok := strings.CutPrefix(values[0], bearerPrefix)
	if !ok {
		return "", apperror.Unauthorized(MsgIncorrectAuthFormat)
	}
	return token, nil
}
