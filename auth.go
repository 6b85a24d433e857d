package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// PermissionManageMovies is the permission a credential must declare for
// every mutating endpoint. Reads never require a specific permission.
const PermissionManageMovies = "manage-movies"

// permissionsClaim is the token claim carrying the caller's permission set.
const permissionsClaim = "permissions"

// Authentication errors raised before token validation. Validation failures
// (signature, expiry, issuer, audience) surface as wrapped jwt/v5 sentinel
// errors, so the failing step stays visible in logs.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrBadScheme    = errors.New("authorization header is not a bearer token")
)

// Identity is the request-scoped view of an authenticated caller: who the
// credential says they are and what it lets them do. Never persisted.
type Identity struct {
	Subject     string
	Permissions []string
}

// HasPermission reports whether the identity's credential declared the
// given permission.
func (id Identity) HasPermission(permission string) bool {
	for _, p := range id.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// TokenVerifier validates HS256 bearer tokens against the configured
// issuer and audience and extracts the caller's permission set. It holds
// only static trust configuration and is safe for concurrent use.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewTokenVerifier(cfg Config) *TokenVerifier {
	return &TokenVerifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}
}

// Verify checks an Authorization header value and returns the caller's
// identity. Tokens must be signed with the shared secret, carry an expiry,
// and match the configured issuer and audience.
func (v *TokenVerifier) Verify(authorization string) (Identity, error) {
	if authorization == "" {
		return Identity{}, ErrMissingToken
	}

	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, ErrBadScheme
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("validating token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("validating token: %w", jwt.ErrTokenInvalidClaims)
	}

	subject, _ := claims.GetSubject()

	return Identity{
		Subject:     subject,
		Permissions: stringListClaim(claims[permissionsClaim]),
	}, nil
}

// stringListClaim normalizes a claim that may arrive as a JSON array or a
// single string into a string slice.
func stringListClaim(value any) []string {
	switch typed := value.(type) {
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string{}, typed...)
	case string:
		return []string{typed}
	default:
		return nil
	}
}
