// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the request/response helpers shared by all JSON
// feature handlers.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/tagauto/tagauto/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Write encodes v as the response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err using the apperr mapping. Remote failures are
// logged with full detail and collapsed to a generic client message.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	Write(w, status, map[string]string{"error": apperr.ClientMessage(err)})
}

// Decode parses the request body into dst. Returns a Validation error on
// malformed JSON so handlers can pass it straight to WriteError.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}
