package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/employee-service/internal/apperror"
	"github.com/sakif/employee-service/internal/auth"
)

// Authenticate returns the authentication stage.
//
// Missing or malformed Authorization headers end the request with a 401
// envelope and next is never called. On success the resolved identity is
// bound for the rest of the pipeline and the response is exactly what next
// produces.
func Authenticate(verifier auth.TokenVerifier, logger *slog.Logger) Stage {
	if verifier == nil {
		verifier = auth.Passthrough{}
	}

	return StageFunc(func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		ctx := r.Context()

		id, err := resolveIdentity(r, verifier)
		if err != nil {
			logger.WarnContext(ctx, "authentication rejected", slog.String("reason", err.Error()))
			apperror.WriteResponse(w, err)
			return
		}

		logger.InfoContext(ctx, "auth data", slog.String("identity", id.ID))

		auth.RunWithIdentity(ctx, id, func(ctx context.Context) {
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
}

func resolveIdentity(r *http.Request, verifier auth.TokenVerifier) (auth.Identity, error) {
	token, err := auth.BearerToken(r.Header)
	if err != nil {
		return auth.Identity{}, err
	}
	return verifier.Verify(token)
}
