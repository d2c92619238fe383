// internal/app/system/sanitize/sanitize.go

// Package sanitize strips markup from user-supplied text before it is
// persisted. Car notes and names come straight from mobile clients and are
// rendered by other members' apps.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
