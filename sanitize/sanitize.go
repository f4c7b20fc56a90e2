// Package sanitize strips markup from user-supplied text before it is
// validated or stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean removes all HTML markup from s, resolves the entities bluemonday
// escapes on the way out, and trims surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}
