// internal/app/system/normalize/normalize.go

// Package normalize provides canonical forms for user-entered identity and
// organization strings. Matching saved/joined organizations against
// recommendation candidates depends on every name passing through OrgName
// before comparison or storage in a *_ci field.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case for display.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// OrgName is the canonical comparison form of an organization name:
// lowercase, trimmed, inner whitespace collapsed to single spaces.
func OrgName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
