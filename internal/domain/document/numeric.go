package document

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/kailas-cloud/searchmap/internal/domain"
)

// Number lists the Go types GetNumeric can decode into.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// GetNumeric decodes a numeric field into T. It returns nil, not an error,
// when the field is absent.
func GetNumeric[T Number](h *Holder, name string) (*T, error) {
	raw, ok := h.Get(name)
	if !ok {
		return nil, nil
	}

	var out T
	target := reflect.ValueOf(&out).Elem()

	c, err := h.decoderFor(name, out)
	if err != nil {
		return nil, err
	}
	if !c.Numeric() {
		return nil, domain.NewEncodingError(string(c.Kind()), raw, "not a numeric codec")
	}
	decoded, err := c.Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := assign(target, decoded); err != nil {
		return nil, err
	}
	return &out, nil
}

// assign stores a decoded codec value into target, allocating pointers and
// rejecting values the target type cannot hold.
func assign(target reflect.Value, decoded any) error {
	if target.Kind() == reflect.Pointer {
		elem := reflect.New(target.Type().Elem())
		if err := assign(elem.Elem(), decoded); err != nil {
			return err
		}
		target.Set(elem)
		return nil
	}

	switch v := decoded.(type) {
	case string:
		if target.Kind() != reflect.String {
			return mismatch(target, decoded)
		}
		target.SetString(v)
	case bool:
		if target.Kind() != reflect.Bool {
			return mismatch(target, decoded)
		}
		target.SetBool(v)
	case time.Time:
		if target.Type() != reflect.TypeOf(time.Time{}) {
			return mismatch(target, decoded)
		}
		target.Set(reflect.ValueOf(v))
	case int64:
		return assignInt(target, v)
	case float64:
		return assignFloat(target, v)
	default:
		return mismatch(target, decoded)
	}
	return nil
}

func assignInt(target reflect.Value, n int64) error {
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if target.OverflowInt(n) {
			return overflow(target, n)
		}
		target.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || target.OverflowUint(uint64(n)) {
			return overflow(target, n)
		}
		target.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		target.SetFloat(float64(n))
	default:
		return mismatch(target, n)
	}
	return nil
}

func assignFloat(target reflect.Value, f float64) error {
	switch target.Kind() {
	case reflect.Float32, reflect.Float64:
		if target.OverflowFloat(f) {
			return overflow(target, f)
		}
		target.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
			return overflow(target, f)
		}
		return assignInt(target, int64(f))
	default:
		return mismatch(target, f)
	}
	return nil
}

func overflow(target reflect.Value, v any) error {
	return domain.NewEncodingError(target.Type().String(), v, "does not fit the target type")
}

func mismatch(target reflect.Value, v any) error {
	return domain.NewEncodingError(target.Type().String(), v, fmt.Sprintf("cannot assign %T", v))
}
