package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// content goes through the strict policy before persistence, never at render time
var policy = bluemonday.StrictPolicy()

// Content strips executable markup from free-text content.
func Content(raw string) string {
	return strings.TrimSpace(policy.Sanitize(raw))
}
