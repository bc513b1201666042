package graph

import (
	"strings"
	"testing"
)

func TestSafeIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "employees", "employees"},
		{"spaces", "my table", "my_table"},
		{"punctuation", "order-items!", "order_items_"},
		{"quotes", `tab"le`, "tab_le"},
		{"backticks", "tab`le", "tab_le"},
		{"unicode", "caffé", "caff_"},
		{"empty", "", "_"},
		{"only unsafe", "!!!", "___"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeIdentifier(tt.input); got != tt.expected {
				t.Errorf("SafeIdentifier(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSafeIdentifierCapsLength(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := SafeIdentifier(long)
	if len(got) != maxIdentifierLen {
		t.Errorf("expected length %d, got %d", maxIdentifierLen, len(got))
	}
}

func TestRelationshipNames(t *testing.T) {
	if got := ReferenceRelName("customer_id"); got != "REFERENCES_CUSTOMER_ID" {
		t.Errorf("ReferenceRelName = %q", got)
	}
	if got := CategoryRelName("department"); got != "HAS_DEPARTMENT" {
		t.Errorf("CategoryRelName = %q", got)
	}
	// Unsafe characters must not survive into relationship types.
	if got := ReferenceRelName("bad col"); got != "REFERENCES_BAD_COL" {
		t.Errorf("ReferenceRelName with space = %q", got)
	}
}

func TestRelationshipNamesDeterministic(t *testing.T) {
	a := ReferenceRelName("manager_id")
	b := ReferenceRelName("manager_id")
	if a != b {
		t.Errorf("expected identical names, got %q and %q", a, b)
	}
}
