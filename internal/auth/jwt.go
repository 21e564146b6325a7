// Package auth turns a request's bearer credential into an Identity and
// carries that Identity through the request's context.
//
// VERIFICATION:
// By default the bearer token is accepted as-is and becomes the identity id
// (Passthrough). This performs no authenticity check at all. Setting
// auth.jwt_secret switches the service to JWTVerifier, which requires an
// HS256-signed token and uses its "sub" claim as the identity id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/employee-service/internal/apperror"
)

// TokenVerifier resolves a raw bearer token into an Identity.
// Returned errors are classified (Unauthorized).
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// Passthrough treats the token itself as the identity id.
type Passthrough struct{}

func (Passthrough) Verify(token string) (Identity, error) {
	return Identity{ID: token}, nil
}

// JWTVerifier validates HS256 tokens.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier creates a JWTVerifier. The secret must be at least 16
// characters; an empty issuer disables the issuer check.
func NewJWTVerifier(secret, issuer string) (*JWTVerifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}, nil
}

// Generate signs a token for subject, valid for d. Used by operators and
// tests to mint credentials.
func (v *JWTVerifier) Generate(subject string, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    v.issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and issuer, then returns the
// subject as the identity.
func (v *JWTVerifier) Verify(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var c jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperror.Wrap(apperror.KindUnauthorized, err, "Token expired")
		}
		return Identity{}, apperror.Wrap(apperror.KindUnauthorized, err, "Invalid token")
	}
	if !parsed.Valid || c.Subject == "" {
		return Identity{}, apperror.Unauthorized("Invalid token")
	}

	return Identity{ID: c.Subject}, nil
}

// compile-time checks
var (
	_ TokenVerifier = Passthrough{}
	_ TokenVerifier = (*JWTVerifier)(nil)
)
