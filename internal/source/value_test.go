package source

import (
	"math"
	"testing"
	"time"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name         string
		input        any
		expectedKind Kind
		expectedStr  string
	}{
		{"nil", nil, KindNull, ""},
		{"bool true", true, KindInteger, "1"},
		{"bool false", false, KindInteger, "0"},
		{"int", 42, KindInteger, "42"},
		{"int64", int64(-7), KindInteger, "-7"},
		{"uint32", uint32(9), KindInteger, "9"},
		{"uint64 in range", uint64(9), KindInteger, "9"},
		{"uint64 past signed range", uint64(math.MaxInt64) + 1, KindText, "9223372036854775808"},
		{"uint64 max", uint64(math.MaxUint64), KindText, "18446744073709551615"},
		{"float64", 3.5, KindReal, "3.5"},
		{"float32", float32(2), KindReal, "2"},
		{"string", "hello", KindText, "hello"},
		{"bytes", []byte{0xde, 0xad}, KindBlob, "dead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FromAny(tt.input)
			if v.Kind() != tt.expectedKind {
				t.Errorf("kind = %v, want %v", v.Kind(), tt.expectedKind)
			}
			if v.String() != tt.expectedStr {
				t.Errorf("String() = %q, want %q", v.String(), tt.expectedStr)
			}
		})
	}
}

func TestFromAnyTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	v := FromAny(ts)
	if v.Kind() != KindText {
		t.Fatalf("kind = %v, want KindText", v.Kind())
	}
	if v.String() != "2024-03-01T12:00:00Z" {
		t.Errorf("String() = %q", v.String())
	}
}

func TestValueNative(t *testing.T) {
	if got := IntegerValue(5).Native(); got != int64(5) {
		t.Errorf("integer Native() = %v (%T)", got, got)
	}
	if got := TextValue("x").Native(); got != "x" {
		t.Errorf("text Native() = %v", got)
	}
	if got := NullValue().Native(); got != nil {
		t.Errorf("null Native() = %v, want nil", got)
	}
	if !NullValue().IsNull() {
		t.Error("NullValue().IsNull() = false")
	}
	if IntegerValue(0).IsNull() {
		t.Error("IntegerValue(0).IsNull() = true")
	}
}

func TestFromAnyCopiesBytes(t *testing.T) {
	raw := []byte{1, 2, 3}
	v := FromAny(raw)
	raw[0] = 99
	if b := v.Native().([]byte); b[0] != 1 {
		t.Error("blob value shares memory with the driver buffer")
	}
}
