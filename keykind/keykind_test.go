package keykind

import (
	"math/rand"
	"testing"
)

func TestInt32OrderTotalOrder(t *testing.T) {
	o := Int32Order{}
	values := []int32{-5, -1, 0, 1, 5, 100}
	for i, a := range values {
		for j, b := range values {
			switch {
			case i == j:
				if !o.Equal(a, b) {
					t.Fatalf("Equal(%d, %d) = false, want true", a, b)
				}
			case i < j:
				if !o.Less(a, b) {
					t.Fatalf("Less(%d, %d) = false, want true", a, b)
				}
				if o.Greater(a, b) {
					t.Fatalf("Greater(%d, %d) = true, want false", a, b)
				}
			default:
				if !o.Greater(a, b) {
					t.Fatalf("Greater(%d, %d) = false, want true", a, b)
				}
			}
		}
	}
}

func TestFloat64OrderEpsilonEquality(t *testing.T) {
	o := Float64Order{}
	a, b := 1.0, 1.0+epsilon/2
	if !o.Equal(a, b) {
		t.Fatalf("Equal(%v, %v) = false, want true within epsilon", a, b)
	}
	if o.Less(a, b) {
		t.Fatalf("Less(%v, %v) = true, want false for epsilon-equal values", a, b)
	}
	if !o.LessOrEqual(a, b) {
		t.Fatalf("LessOrEqual(%v, %v) = false, want true", a, b)
	}

	if !o.Less(1.0, 2.0) {
		t.Fatal("Less(1.0, 2.0) = false, want true")
	}
}

func TestStringOrderLexical(t *testing.T) {
	o := StringOrder{}
	if !o.Less("apple", "banana") {
		t.Fatal(`Less("apple", "banana") = false, want true`)
	}
	if !o.Equal("x", "x") {
		t.Fatal(`Equal("x", "x") = false, want true`)
	}
	if o.Greater("a", "b") {
		t.Fatal(`Greater("a", "b") = true, want false`)
	}
}

func TestValueAccessorsPanicOnKindMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic accessing I64 on an I32 value")
		}
	}()
	v := NewI32(7)
	_ = v.I64()
}

// checkTotalOrder samples every pair (and triple, for transitivity) of
// values and checks the properties a total order must hold regardless of
// which concrete values it's handed: Less is antisymmetric, Less and
// Greater are each other's mirror image, LessOrEqual agrees with Less or
// Equal, and Less chains transitively.
func checkTotalOrder[T any](t *testing.T, name string, ord Ordered[T], values []T) {
	t.Helper()
	for _, a := range values {
		for _, b := range values {
			if ord.Less(a, b) && ord.Less(b, a) {
				t.Fatalf("%s: Less(%v, %v) and Less(%v, %v) both true; want antisymmetry", name, a, b, b, a)
			}
			if ord.Less(a, b) != ord.Greater(b, a) {
				t.Fatalf("%s: Less(%v, %v) = %v, Greater(%v, %v) = %v; want mirror images",
					name, a, b, ord.Less(a, b), b, a, ord.Greater(b, a))
			}
			if ord.LessOrEqual(a, b) != (ord.Less(a, b) || ord.Equal(a, b)) {
				t.Fatalf("%s: LessOrEqual(%v, %v) disagrees with Less-or-Equal", name, a, b)
			}
		}
	}
	for _, a := range values {
		for _, b := range values {
			if !ord.Less(a, b) {
				continue
			}
			for _, c := range values {
				if ord.Less(b, c) && !ord.Less(a, c) {
					t.Fatalf("%s: Less(%v,%v) && Less(%v,%v) but not Less(%v,%v)", name, a, b, b, c, a, c)
				}
			}
		}
	}
}

func TestOrdersAreAntisymmetricAndTransitiveOverGeneratedValues(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	i32s := make([]int32, 40)
	i64s := make([]int64, 40)
	f64s := make([]float64, 40)
	strs := make([]string, 40)
	for i := range i32s {
		i32s[i] = rng.Int31n(2000) - 1000
		i64s[i] = rng.Int63n(2000) - 1000
		f64s[i] = rng.Float64()*2000 - 1000
		buf := make([]byte, 1+rng.Intn(6))
		for j := range buf {
			buf[j] = byte('a' + rng.Intn(26))
		}
		strs[i] = string(buf)
	}

	checkTotalOrder(t, "Int32Order", Int32Order{}, i32s)
	checkTotalOrder(t, "Int64Order", Int64Order{}, i64s)
	checkTotalOrder(t, "Float64Order", Float64Order{}, f64s)
	checkTotalOrder(t, "StringOrder", StringOrder{}, strs)
}

func TestValueConstructorsSetKind(t *testing.T) {
	cases := []struct {
		v    Value
		kind Kind
	}{
		{NewI32(42), I32},
		{NewI64(-9), I64},
		{NewF64(3.5), F64},
		{NewString("hi"), String},
	}
	for _, c := range cases {
		if c.v.Kind() != c.kind {
			t.Errorf("Kind() = %v, want %v", c.v.Kind(), c.kind)
		}
	}
}
