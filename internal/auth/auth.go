// Package auth validates bearer tokens issued by the external identity
// provider. The API never issues tokens itself; it verifies the HS256
// signature with the shared secret and reads identity and role claims.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/pkg/httputil"
)

type contextKey string

const identityKey contextKey = "auth.identity"

// Identity is the authenticated caller extracted from token claims.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin reports whether the caller carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == "admin"
}

// Middleware guards API routes with bearer-token auth.
type Middleware struct {
	secret  []byte
	enabled bool
}

// NewMiddleware creates the auth middleware. With auth disabled (dev
// mode), every request passes as a synthetic admin.
func NewMiddleware(cfg config.AuthConfig, devMode bool) *Middleware {
	return &Middleware{
		secret:  []byte(cfg.JWTSecret),
		enabled: cfg.Enabled && !devMode,
	}
}

// Parse validates a bearer token and returns the caller identity.
func (m *Middleware) Parse(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	id := &Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		id.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	return id, nil
}

// RequireAuth rejects requests without a valid bearer token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			ctx := context.WithValue(r.Context(), identityKey, &Identity{UserID: "dev", Role: "admin"})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httputil.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := m.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httputil.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated callers without the admin role.
// Must run inside RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := FromContext(r.Context())
		if identity == nil || !identity.IsAdmin() {
			httputil.Error(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the caller identity set by RequireAuth, or nil.
func FromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityKey).(*Identity)
	return identity
}
