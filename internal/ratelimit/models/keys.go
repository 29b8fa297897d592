package models

import "strings"

// SanitizeKeySegment escapes the ':' delimiter in key segments so a
// client-supplied identifier cannot address an adjacent bucket. IPv6
// addresses are rewritten the same way.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
