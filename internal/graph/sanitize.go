package graph

import (
	"regexp"
	"strings"
)

// maxIdentifierLen caps sanitized labels and property keys.
const maxIdentifierLen = 63

var unsafeIdentChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// SafeIdentifier restricts a caller-supplied name to [A-Za-z0-9_] and caps
// its length. Every label, property key, and relationship type passes
// through here exactly once, before any query text is assembled.
func SafeIdentifier(name string) string {
	safe := unsafeIdentChars.ReplaceAllString(name, "_")
	if len(safe) > maxIdentifierLen {
		safe = safe[:maxIdentifierLen]
	}
	if safe == "" {
		return "_"
	}
	return safe
}

// ReferenceRelName derives the relationship type for an inferred reference
// column. Deterministic: repeated runs produce the same name.
func ReferenceRelName(column string) string {
	return SafeIdentifier("REFERENCES_" + strings.ToUpper(column))
}

// CategoryRelName derives the relationship type linking rows to a shared
// category value node.
func CategoryRelName(column string) string {
	return SafeIdentifier("HAS_" + strings.ToUpper(column))
}
