package keykind

import "fmt"

// Value is a tagged union holding exactly one of the four supported key
// kinds. It is the Go-idiomatic stand-in for the original Rust
// MetaEnum/DataArray split: a single concrete type instead of a generic
// parameterized over a trait, since Go's comparable generics cannot carry
// a per-kind method set without boxing anyway.
type Value struct {
	kind Kind
	i32  int32
	i64  int64
	f64  float64
	str  string
}

func NewI32(v int32) Value  { return Value{kind: I32, i32: v} }
func NewI64(v int64) Value  { return Value{kind: I64, i64: v} }
func NewF64(v float64) Value { return Value{kind: F64, f64: v} }
func NewString(v string) Value { return Value{kind: String, str: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) I32() int32 {
	if v.kind != I32 {
		panic(fmt.Sprintf("keykind: Value is %s, not I32", v.kind))
	}
	return v.i32
}

func (v Value) I64() int64 {
	if v.kind != I64 {
		panic(fmt.Sprintf("keykind: Value is %s, not I64", v.kind))
	}
	return v.i64
}

func (v Value) F64() float64 {
	if v.kind != F64 {
		panic(fmt.Sprintf("keykind: Value is %s, not F64", v.kind))
	}
	return v.f64
}

func (v Value) Str() string {
	if v.kind != String {
		panic(fmt.Sprintf("keykind: Value is %s, not STRING", v.kind))
	}
	return v.str
}

// String renders the value the way the engine's demo driver and the
// original RawData::data_as_str reference print decoded rows.
func (v Value) String() string {
	switch v.kind {
	case I32:
		return fmt.Sprintf("INTEGER:%d", v.i32)
	case I64:
		return fmt.Sprintf("BIGINT:%d", v.i64)
	case F64:
		return fmt.Sprintf("DOUBLE:%v", v.f64)
	case String:
		return fmt.Sprintf("STRING:%q", v.str)
	default:
		return "INVALID"
	}
}
