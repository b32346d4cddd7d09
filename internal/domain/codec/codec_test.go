package codec

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/searchmap/internal/domain"
)

func TestInt_RoundTrip(t *testing.T) {
	values := []int64{math.MinInt64, -1 << 40, -12, -1, 0, 1, 11, 12, 99, 1 << 40, math.MaxInt64}
	for _, v := range values {
		raw, err := Int{}.Encode(v)
		if err != nil {
			t.Fatalf("Encode(%d): %v", v, err)
		}
		if len(raw) != 16 {
			t.Errorf("Encode(%d) = %q, want 16 chars", v, raw)
		}
		got, err := Int{}.Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw, err)
		}
		if got != v {
			t.Errorf("round trip %d = %v", v, got)
		}
	}
}

func TestInt_AcceptsGoIntegerKinds(t *testing.T) {
	type level int8
	inputs := []any{int(7), int8(7), int16(7), int32(7), uint(7), uint8(7), uint32(7), uint64(7), level(7), float64(7)}
	want, _ := Int{}.Encode(int64(7))
	for _, in := range inputs {
		got, err := Int{}.Encode(in)
		if err != nil {
			t.Fatalf("Encode(%T): %v", in, err)
		}
		if got != want {
			t.Errorf("Encode(%T) = %q, want %q", in, got, want)
		}
	}
}

func TestInt_EncodingErrors(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"uint64 overflow", uint64(math.MaxInt64) + 1},
		{"fractional", 1.5},
		{"float overflow", 1e19},
		{"infinity", math.Inf(1)},
		{"string", "12"},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Int{}.Encode(tt.in)
			if !errors.Is(err, domain.ErrEncoding) {
				t.Fatalf("err = %v, want ErrEncoding", err)
			}
			var encErr *domain.EncodingError
			if !errors.As(err, &encErr) || encErr.Kind != string(KindInt) {
				t.Errorf("err = %#v, want *EncodingError for int", err)
			}
		})
	}
}

func TestInt_DecodeErrors(t *testing.T) {
	for _, raw := range []string{"", "12", "zzzzzzzzzzzzzzzz", "00000000000000000"} {
		if _, err := (Int{}).Decode(raw); !errors.Is(err, domain.ErrEncoding) {
			t.Errorf("Decode(%q) err = %v, want ErrEncoding", raw, err)
		}
	}
}

func TestFloat_RoundTrip(t *testing.T) {
	values := []float64{
		math.Inf(-1), -math.MaxFloat64, -1e10, -1.5, -math.SmallestNonzeroFloat64,
		0, math.SmallestNonzeroFloat64, 0.25, 1, 3.14159, 1e300, math.Inf(1),
	}
	for _, v := range values {
		raw, err := Float{}.Encode(v)
		if err != nil {
			t.Fatalf("Encode(%g): %v", v, err)
		}
		got, err := Float{}.Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw, err)
		}
		if got != v {
			t.Errorf("round trip %g = %v", v, got)
		}
	}
}

func TestFloat_NegativeZeroEncodesAsZero(t *testing.T) {
	neg, _ := Float{}.Encode(math.Copysign(0, -1))
	pos, _ := Float{}.Encode(0.0)
	if neg != pos {
		t.Errorf("-0 = %q, +0 = %q, want equal", neg, pos)
	}
}

func TestFloat_NaN(t *testing.T) {
	if _, err := (Float{}).Encode(math.NaN()); !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("err = %v, want ErrEncoding", err)
	}
}

func TestNumeric_OrderPreserved(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	ints := make([]int64, 0, 500)
	for range 500 {
		ints = append(ints, int64(rng.Uint64()))
	}
	slices.Sort(ints)
	assertSortedEncoding(t, Int{}, ints)

	floats := make([]float64, 0, 500)
	for range 500 {
		floats = append(floats, (rng.Float64()-0.5)*math.Pow(10, float64(rng.IntN(40)-20)))
	}
	slices.Sort(floats)
	assertSortedEncoding(t, Float{}, floats)
}

func assertSortedEncoding[T int64 | float64](t *testing.T, c Codec, sorted []T) {
	t.Helper()
	prev := ""
	for i, v := range sorted {
		raw, err := c.Encode(v)
		if err != nil {
			t.Fatalf("Encode(%v): %v", v, err)
		}
		if i > 0 && sorted[i-1] < v && !(prev < raw) {
			t.Fatalf("%s: encode(%v)=%q not < encode(%v)=%q", c.Kind(), sorted[i-1], prev, v, raw)
		}
		prev = raw
	}
}

func TestTime_RoundTrip(t *testing.T) {
	values := []time.Time{
		time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC),
		time.Unix(0, 0).UTC(),
		time.Date(2024, 2, 29, 12, 30, 15, 123456789, time.UTC),
	}
	for _, v := range values {
		raw, err := Time{}.Encode(v)
		if err != nil {
			t.Fatalf("Encode(%v): %v", v, err)
		}
		got, err := Time{}.Decode(raw)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !got.(time.Time).Equal(v) {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
}

func TestTime_OutOfRange(t *testing.T) {
	_, err := Time{}.Encode(time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("err = %v, want ErrEncoding", err)
	}
}

func TestTime_Order(t *testing.T) {
	a, _ := Time{}.Encode(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC))
	b, _ := Time{}.Encode(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if !(a < b) {
		t.Errorf("encode(1960)=%q not < encode(2020)=%q", a, b)
	}
}

func TestStringAndBool_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "My Document", "X.Z.1.3", "Ünïcödé"} {
		raw, err := String{}.Encode(s)
		if err != nil || raw != s {
			t.Errorf("String.Encode(%q) = %q, %v", s, raw, err)
		}
		got, _ := String{}.Decode(raw)
		if got != s {
			t.Errorf("String.Decode(%q) = %v", raw, got)
		}
	}
	for _, b := range []bool{true, false} {
		raw, _ := Bool{}.Encode(b)
		got, err := Bool{}.Decode(raw)
		if err != nil || got != b {
			t.Errorf("Bool round trip %v = %v, %v", b, got, err)
		}
	}
	if _, err := (Bool{}).Decode("yes"); !errors.Is(err, domain.ErrEncoding) {
		t.Errorf("Bool.Decode(yes) err = %v", err)
	}
}

func TestRegistry_KindOf(t *testing.T) {
	r := NewRegistry()
	var s *string
	tests := []struct {
		in   any
		want Kind
	}{
		{"", KindString},
		{s, KindString},
		{int32(1), KindInt},
		{uint16(1), KindInt},
		{float32(1), KindFloat},
		{time.Time{}, KindTime},
		{&time.Time{}, KindTime},
		{true, KindBool},
	}
	for _, tt := range tests {
		got, ok := r.KindOf(reflect.TypeOf(tt.in))
		if !ok || got != tt.want {
			t.Errorf("KindOf(%T) = %q, %v, want %q", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := r.KindOf(reflect.TypeOf([]string{})); ok {
		t.Error("KindOf([]string) should not resolve")
	}
}

func TestFold(t *testing.T) {
	if Fold("X.Z.1.3") != Fold("x.z.1.3") {
		t.Error("Fold should equate case variants")
	}
	if Fold("ÄBC Ω") != Fold("äbc ω") {
		t.Errorf("Fold(ÄBC Ω)=%q, Fold(äbc ω)=%q", Fold("ÄBC Ω"), Fold("äbc ω"))
	}
}
