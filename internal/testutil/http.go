package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/domain/models"
)

// WithPrincipal injects an authenticated principal for the given user into
// the request context, bypassing token verification in handler tests.
func WithPrincipal(r *http.Request, user models.User) *http.Request {
	p := auth.Principal{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName(),
		IssuedAt: time.Now().UTC(),
	}
	return r.WithContext(auth.WithPrincipal(r.Context(), p))
}

// WithStalePrincipal injects a principal whose token was issued long enough
// ago to fail any freshness check.
func WithStalePrincipal(r *http.Request, user models.User) *http.Request {
	p := auth.Principal{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName(),
		IssuedAt: time.Now().UTC().Add(-time.Hour),
	}
	return r.WithContext(auth.WithPrincipal(r.Context(), p))
}

// NewJSONRequest creates a request whose body is the JSON encoding of v.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if v != nil {
		if err := json.NewEncoder(&body).Encode(v); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &body)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// DecodeJSON decodes a recorded response body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
