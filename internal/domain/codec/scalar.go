package codec

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/kailas-cloud/searchmap/internal/domain"
)

const (
	signBit  = uint64(1) << 63
	hexWidth = 16
)

// String stores strings verbatim.
type String struct{}

// Kind returns KindString.
func (String) Kind() Kind { return KindString }

// Numeric returns false.
func (String) Numeric() bool { return false }

// Encode returns v unchanged when it is a string (or a named string type).
func (String) Encode(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", domain.NewEncodingError(string(KindString), v, "not a string")
	}
	return rv.String(), nil
}

// Decode returns raw unchanged.
func (String) Decode(raw string) (any, error) { return raw, nil }

// Int encodes 64-bit signed integers as 16 hex digits with the sign bit flipped.
type Int struct{}

// Kind returns KindInt.
func (Int) Kind() Kind { return KindInt }

// Numeric returns true.
func (Int) Numeric() bool { return true }

// Encode accepts any Go integer kind, and floats with no fractional part.
func (Int) Encode(v any) (string, error) {
	n, err := toInt64(v)
	if err != nil {
		return "", err
	}
	return encodeUint(uint64(n) ^ signBit), nil //nolint:gosec // two's complement reinterpretation
}

// Decode returns an int64.
func (Int) Decode(raw string) (any, error) {
	u, err := decodeUint(KindInt, raw)
	if err != nil {
		return nil, err
	}
	return int64(u ^ signBit), nil //nolint:gosec // inverse of Encode
}

// Float encodes float64 values so that byte order matches numeric order.
type Float struct{}

// Kind returns KindFloat.
func (Float) Kind() Kind { return KindFloat }

// Numeric returns true.
func (Float) Numeric() bool { return true }

// Encode accepts float and integer kinds. NaN has no position in the order
// and is rejected; negative zero encodes as zero.
func (Float) Encode(v any) (string, error) {
	f, err := toFloat64(v)
	if err != nil {
		return "", err
	}
	if math.IsNaN(f) {
		return "", domain.NewEncodingError(string(KindFloat), v, "NaN is not orderable")
	}
	if f == 0 {
		f = 0
	}
	bits := math.Float64bits(f)
	if bits&signBit != 0 {
		bits = ^bits
	} else {
		bits |= signBit
	}
	return encodeUint(bits), nil
}

// Decode returns a float64.
func (Float) Decode(raw string) (any, error) {
	bits, err := decodeUint(KindFloat, raw)
	if err != nil {
		return nil, err
	}
	if bits&signBit != 0 {
		bits &^= signBit
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

var (
	minTime = time.Unix(0, math.MinInt64)
	maxTime = time.Unix(0, math.MaxInt64)
)

// Time encodes instants as epoch nanoseconds using the Int encoding.
type Time struct{}

// Kind returns KindTime.
func (Time) Kind() Kind { return KindTime }

// Numeric returns true.
func (Time) Numeric() bool { return true }

// Encode accepts time.Time values representable as int64 nanoseconds.
func (Time) Encode(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", domain.NewEncodingError(string(KindTime), v, "not a time.Time")
	}
	if t.Before(minTime) || t.After(maxTime) {
		return "", domain.NewEncodingError(string(KindTime), v, "outside the int64 nanosecond range")
	}
	return Int{}.Encode(t.UnixNano())
}

// Decode returns a time.Time in UTC.
func (Time) Decode(raw string) (any, error) {
	n, err := Int{}.Decode(raw)
	if err != nil {
		return nil, err
	}
	return time.Unix(0, n.(int64)).UTC(), nil
}

// Bool encodes booleans as "0" and "1".
type Bool struct{}

// Kind returns KindBool.
func (Bool) Kind() Kind { return KindBool }

// Numeric returns false.
func (Bool) Numeric() bool { return false }

// Encode accepts bool kinds.
func (Bool) Encode(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return "", domain.NewEncodingError(string(KindBool), v, "not a bool")
	}
	if rv.Bool() {
		return "1", nil
	}
	return "0", nil
}

// Decode returns a bool.
func (Bool) Decode(raw string) (any, error) {
	switch raw {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return nil, domain.NewEncodingError(string(KindBool), raw, "want 0 or 1")
	}
}

func toInt64(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, domain.NewEncodingError(string(KindInt), v, "exceeds int64 range")
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, domain.NewEncodingError(string(KindInt), v, "not an integral value")
		}
		// 2^63 is exactly representable; anything at or above it overflows.
		if f < -(1<<63) || f >= 1<<63 {
			return 0, domain.NewEncodingError(string(KindInt), v, "exceeds int64 range")
		}
		return int64(f), nil
	default:
		return 0, domain.NewEncodingError(string(KindInt), v, "not an integer")
	}
}

func toFloat64(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	default:
		return 0, domain.NewEncodingError(string(KindFloat), v, "not a number")
	}
}

func encodeUint(u uint64) string {
	return fmt.Sprintf("%0*x", hexWidth, u)
}

func decodeUint(k Kind, raw string) (uint64, error) {
	if len(raw) != hexWidth {
		return 0, domain.NewEncodingError(string(k), raw, "want 16 hex digits")
	}
	u, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, domain.NewEncodingError(string(k), raw, err.Error())
	}
	return u, nil
}
