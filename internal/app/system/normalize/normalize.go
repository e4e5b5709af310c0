// internal/app/system/normalize/normalize.go
package normalize

import (
	"regexp"
	"strings"
)

// emailPattern matches the address shape accepted at signup. It is a
// sanity gate, not a full RFC 5322 validator.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail reports whether s (already normalized or not) looks like a
// deliverable email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Contact trims a contact number. Digits-only enforcement is left to the
// caller because some deployments store numbers with a country prefix.
func Contact(s string) string {
	return strings.TrimSpace(s)
}

// Status canonicalizes a status value to "Active"/"Inactive" casing.
// Unrecognized values are returned trimmed so the store can reject them.
func Status(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return "Active"
	case "inactive":
		return "Inactive"
	}
	return strings.TrimSpace(s)
}

// QueryParam trims a free-text query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
