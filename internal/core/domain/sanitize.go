package domain

import (
	"regexp"
	"strings"
)

// UnnamedField is the fallback wire key for names that sanitize to nothing.
const UnnamedField = "unnamed_field"

var nonWireChars = regexp.MustCompile(`[^a-z0-9_]+`)
var underscoreRuns = regexp.MustCompile(`_{2,}`)

// SanitizeFieldName derives the wire-safe key for a field from its display
// name: lowercase, every run of characters outside [a-z0-9_] becomes a
// single underscore, runs of underscores collapse, leading/trailing
// underscores are trimmed. An empty result maps to UnnamedField.
// The function is deterministic and idempotent.
func SanitizeFieldName(name string) string {
	s := strings.ToLower(name)
	s = nonWireChars.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return UnnamedField
	}
	return s
}
