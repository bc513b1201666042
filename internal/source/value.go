package source

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the storage class of a scanned value.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
)

// Value is a tagged union for row data flowing untyped through the
// pipeline. Column types are unknown ahead of time, so every scanned cell
// is normalized into one of five storage classes at the boundary.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Row is one table row keyed by column name.
type Row map[string]Value

func NullValue() Value           { return Value{kind: KindNull} }
func IntegerValue(i int64) Value { return Value{kind: KindInteger, i: i} }
func RealValue(f float64) Value  { return Value{kind: KindReal, f: f} }
func TextValue(s string) Value   { return Value{kind: KindText, s: s} }
func BlobValue(b []byte) Value   { return Value{kind: KindBlob, b: b} }

// FromAny normalizes a driver-provided value into a Value.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return NullValue()
	case bool:
		if x {
			return IntegerValue(1)
		}
		return IntegerValue(0)
	case int:
		return IntegerValue(int64(x))
	case int8:
		return IntegerValue(int64(x))
	case int16:
		return IntegerValue(int64(x))
	case int32:
		return IntegerValue(int64(x))
	case int64:
		return IntegerValue(x)
	case uint8:
		return IntegerValue(int64(x))
	case uint16:
		return IntegerValue(int64(x))
	case uint32:
		return IntegerValue(int64(x))
	case uint64:
		// Values past the signed range would flip negative; keep them as text.
		if x > math.MaxInt64 {
			return TextValue(strconv.FormatUint(x, 10))
		}
		return IntegerValue(int64(x))
	case float32:
		return RealValue(float64(x))
	case float64:
		return RealValue(x)
	case string:
		return TextValue(x)
	case []byte:
		return BlobValue(append([]byte(nil), x...))
	case time.Time:
		return TextValue(x.Format(time.RFC3339))
	default:
		return TextValue(fmt.Sprint(x))
	}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Native returns the Go value suitable for query parameters and graph
// properties. Null maps to nil.
func (v Value) Native() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	default:
		return nil
	}
}

// String renders the value for display and for category node identity.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("%d", v.i)
	case KindReal:
		return fmt.Sprintf("%g", v.f)
	case KindText:
		return v.s
	case KindBlob:
		return fmt.Sprintf("%x", v.b)
	default:
		return ""
	}
}
