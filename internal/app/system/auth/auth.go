// internal/app/system/auth/auth.go

// Package auth is the session directory: it mints and verifies the bearer
// tokens mobile clients hold, and resolves a request to the authenticated
// principal. Tokens are stateless; logout is client-side disposal.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Principal identifies the authenticated user on a request.
type Principal struct {
	UserID   string
	Email    string
	FullName string
	IssuedAt time.Time
}

// Claims is the JWT payload.
type Claims struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// Manager signs and verifies tokens and carries the reauth freshness window
// for sensitive mutations.
type Manager struct {
	secret       []byte
	ttl          time.Duration
	reauthWindow time.Duration
	log          *zap.Logger
}

// NewManager builds a Manager. ttl is the token lifetime; reauthWindow is
// how recently a token must have been minted for sensitive operations like
// account deletion.
func NewManager(secret string, ttl, reauthWindow time.Duration, log *zap.Logger) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, reauthWindow: reauthWindow, log: log}
}

// Issue mints a token for the user.
func (m *Manager) Issue(userID, email, fullName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:    email,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses a token and returns the principal it identifies.
func (m *Manager) Verify(tokenString string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, jwt.ErrSignatureInvalid
	}
	p := Principal{
		UserID:   claims.Subject,
		Email:    claims.Email,
		FullName: claims.FullName,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	return p, nil
}

// IsFresh reports whether the principal's token is recent enough for
// sensitive mutations. A stale token means the caller must reauthenticate
// first; the operation is refused before any effect is attempted.
func (m *Manager) IsFresh(p Principal) bool {
	return !p.IssuedAt.IsZero() && time.Since(p.IssuedAt) <= m.reauthWindow
}

// RequireUser is chi middleware that resolves the bearer token and stores
// the principal in the request context, rejecting unauthenticated requests.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpjson.Write(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		p, err := m.Verify(token)
		if err != nil {
			if m.log != nil {
				m.log.Debug("token rejected", zap.Error(err))
			}
			httpjson.Write(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithPrincipal returns ctx carrying p. Exposed for handler tests.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// CurrentUser returns the principal set by RequireUser.
func CurrentUser(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(ctxKey{}).(Principal)
	return p, ok
}
