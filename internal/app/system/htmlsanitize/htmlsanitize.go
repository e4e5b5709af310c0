// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize strips markup from free-text profile fields
// (address, activities) before they are stored. Profiles are served as
// JSON to arbitrary clients, so stored values must never carry HTML.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Strip removes every HTML tag from s, keeping only the text content.
func Strip(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
