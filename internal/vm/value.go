// Package vm implements a register-based interpreter over the program
// model: a call stack of register frames, a monotonic-id heap, a lazily
// materialised static area, and instance-dispatch rules matching Dalvik's
// direct/static/virtual/interface/super call sites.
package vm

import "dexlens/internal/model"

// Kind tags the concrete shape a Value holds.
type Kind int

const (
	KindUnknown Kind = iota
	KindBool
	KindByte
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindReference
	KindString
	KindArray
	// kindWideHigh marks the high half of a wide (long/double) register
	// pair. Reading it as a value in its own right is a bug in the
	// bytecode (or in this interpreter) and is reported as BadRegister.
	kindWideHigh
)

// ObjectId addresses an object in the VM heap. Zero is the null reference;
// real objects are allocated starting at 1 (spec: "ObjectId is a
// monotonically increasing 64-bit counter").
type ObjectId uint64

// Null is the zero-valued, always-invalid reference.
const Null ObjectId = 0

// Value is the tagged union of every value a Dalvik register or static
// field can hold (spec §4.5 value taxonomy).
type Value struct {
	Kind Kind

	I32 int32
	I64 int64 // also backs Char/Short/Byte/Bool as a 32-bit-range int in I32; Long uses I64
	F32 float32
	F64 float64
	Ref ObjectId
	Str string

	// ArrayElem names the element type of a KindArray value. Arrays made
	// by new-array/filled-new-array live in the heap, and Ref points at
	// the backing Object.
	ArrayElem model.Type
}

func VInt(v int32) Value    { return Value{Kind: KindInt, I32: v} }
func VLong(v int64) Value   { return Value{Kind: KindLong, I64: v} }
func VFloat(v float32) Value { return Value{Kind: KindFloat, F32: v} }
func VDouble(v float64) Value { return Value{Kind: KindDouble, F64: v} }
func VBool(v bool) Value {
	var i int32
	if v {
		i = 1
	}
	return Value{Kind: KindBool, I32: i}
}
func VByte(v int8) Value  { return Value{Kind: KindByte, I32: int32(v)} }
func VChar(v uint16) Value { return Value{Kind: KindChar, I32: int32(v)} }
func VShort(v int16) Value { return Value{Kind: KindShort, I32: int32(v)} }
func VRef(id ObjectId) Value { return Value{Kind: KindReference, Ref: id} }
func VNullRef() Value        { return Value{Kind: KindReference, Ref: Null} }
func VString(s string) Value { return Value{Kind: KindString, Str: s} }
func VUnknown() Value        { return Value{Kind: KindUnknown} }

// IsWide reports whether this kind occupies two consecutive registers.
func (k Kind) IsWide() bool { return k == KindLong || k == KindDouble }

// IsUnknown reports whether v carries no concrete information — the VM's
// best-effort fallback for anything it can't model (spec: "unknown methods
// yield Value::Unknown and do not abort").
func (v Value) IsUnknown() bool { return v.Kind == KindUnknown }

// Bool extracts the boolean value of a KindBool value (nonzero I32 is true).
func (v Value) Bool() bool { return v.I32 != 0 }

// AsInt64 widens any integral-kind value to int64 for comparisons and
// arithmetic prep; returns 0, false for non-integral kinds.
func (v Value) AsInt64() (int64, bool) {
	switch v.Kind {
	case KindLong:
		return v.I64, true
	case KindInt, KindShort, KindChar, KindByte, KindBool:
		return int64(v.I32), true
	default:
		return 0, false
	}
}
