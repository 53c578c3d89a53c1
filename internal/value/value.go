// Package value implements the tagged runtime value universe (spec.md §3).
// Small scalars live inline in a Value struct (Tag + 64-bit payload); every
// heap-ish or variable-size kind boxes through the Object interface. This
// mirrors the teacher's stack-allocated tagged Value in internal/vm/value.go
// (Type ValueType, Data uint64, Obj evaluator.Object), generalized from four
// primitive tags to the full Julia numeric tower plus sentinels.
package value

import (
	"math"

	"github.com/google/uuid"

	"github.com/jlvm/jlvm/internal/types"
)

// Tag identifies which alternative of the tagged union a Value holds.
type Tag uint8

const (
	TagNothing Tag = iota
	TagMissing
	TagUndef
	TagBool
	TagChar
	TagInt8
	TagInt16
	TagInt32
	TagInt64
	TagUInt8
	TagUInt16
	TagUInt32
	TagUInt64
	TagFloat16
	TagFloat32
	TagFloat64
	TagObj // heap/boxed: String, Symbol, Tuple, NamedTuple, Range, Array,
	// Struct, Dict, Set, Type, Function, AST values, Broadcasted, SubArray,
	// Int128/UInt128.
)

// Object is satisfied by every boxed (heap or variable-size) value kind.
type Object interface {
	// JLType returns this object's runtime type, used by dispatch and typeof().
	JLType() types.Type
	// Show renders the value the way Julia's `show` would (spec.md §C supplement).
	Show() string
	// Hash is a seeded 64-bit hash consistent with IsEqual (spec.md §3.2,
	// generalized from the teacher's Object.Hash() uint32 in
	// internal/evaluator/object.go to a seeded 64-bit form so Dict/Set can
	// chain hashes the way Julia's hash(x, h) protocol does).
	Hash(seed uint64) uint64
}

// Value is the stack-allocated tagged union every expression evaluates to.
type Value struct {
	Tag  Tag
	Bits uint64 // int/float/bool/char payload, reinterpreted per Tag
	Obj  Object // populated iff Tag == TagObj
}

// --- Constructors ---

func Nothing() Value { return Value{Tag: TagNothing} }
func Missing() Value { return Value{Tag: TagMissing} }
func Undef() Value   { return Value{Tag: TagUndef} }

func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{Tag: TagBool, Bits: bits}
}

func Char(r rune) Value { return Value{Tag: TagChar, Bits: uint64(uint32(r))} }

func Int8(v int8) Value   { return Value{Tag: TagInt8, Bits: uint64(uint8(v))} }
func Int16(v int16) Value { return Value{Tag: TagInt16, Bits: uint64(uint16(v))} }
func Int32(v int32) Value { return Value{Tag: TagInt32, Bits: uint64(uint32(v))} }
func Int64(v int64) Value { return Value{Tag: TagInt64, Bits: uint64(v)} }

func UInt8(v uint8) Value   { return Value{Tag: TagUInt8, Bits: uint64(v)} }
func UInt16(v uint16) Value { return Value{Tag: TagUInt16, Bits: uint64(v)} }
func UInt32(v uint32) Value { return Value{Tag: TagUInt32, Bits: uint64(v)} }
func UInt64(v uint64) Value { return Value{Tag: TagUInt64, Bits: v} }

func Float16(bits uint16) Value { return Value{Tag: TagFloat16, Bits: uint64(bits)} }
func Float32(v float32) Value   { return Value{Tag: TagFloat32, Bits: uint64(math.Float32bits(v))} }
func Float64(v float64) Value   { return Value{Tag: TagFloat64, Bits: math.Float64bits(v)} }

func Obj(o Object) Value { return Value{Tag: TagObj, Obj: o} }

// --- Accessors (caller must know the Tag is appropriate) ---

func (v Value) AsBool() bool    { return v.Bits == 1 }
func (v Value) AsChar() rune    { return rune(int32(uint32(v.Bits))) }
func (v Value) AsInt8() int8    { return int8(uint8(v.Bits)) }
func (v Value) AsInt16() int16  { return int16(uint16(v.Bits)) }
func (v Value) AsInt32() int32  { return int32(uint32(v.Bits)) }
func (v Value) AsInt64() int64  { return int64(v.Bits) }
func (v Value) AsUInt8() uint8  { return uint8(v.Bits) }
func (v Value) AsUInt16() uint16 { return uint16(v.Bits) }
func (v Value) AsUInt32() uint32 { return uint32(v.Bits) }
func (v Value) AsUInt64() uint64 { return v.Bits }
func (v Value) AsFloat32() float32 { return math.Float32frombits(uint32(v.Bits)) }
func (v Value) AsFloat64() float64 { return math.Float64frombits(v.Bits) }

// AsFloat64Generic widens any numeric tag to float64, for cross-type
// arithmetic fallback paths that don't want a full promotion round-trip.
func (v Value) AsFloat64Generic() float64 {
	switch v.Tag {
	case TagBool:
		if v.AsBool() {
			return 1
		}
		return 0
	case TagInt8:
		return float64(v.AsInt8())
	case TagInt16:
		return float64(v.AsInt16())
	case TagInt32:
		return float64(v.AsInt32())
	case TagInt64:
		return float64(v.AsInt64())
	case TagUInt8:
		return float64(v.AsUInt8())
	case TagUInt16:
		return float64(v.AsUInt16())
	case TagUInt32:
		return float64(v.AsUInt32())
	case TagUInt64:
		return float64(v.AsUInt64())
	case TagFloat32:
		return float64(v.AsFloat32())
	case TagFloat64:
		return v.AsFloat64()
	}
	return 0
}

// AsInt64Generic widens any integral tag to int64, used by index
// computation (getindex/setindex always take an Int).
func (v Value) AsInt64Generic() int64 {
	switch v.Tag {
	case TagBool:
		if v.AsBool() {
			return 1
		}
		return 0
	case TagInt8:
		return int64(v.AsInt8())
	case TagInt16:
		return int64(v.AsInt16())
	case TagInt32:
		return int64(v.AsInt32())
	case TagInt64:
		return v.AsInt64()
	case TagUInt8:
		return int64(v.AsUInt8())
	case TagUInt16:
		return int64(v.AsUInt16())
	case TagUInt32:
		return int64(v.AsUInt32())
	case TagUInt64:
		return int64(v.AsUInt64())
	case TagChar:
		return int64(v.AsChar())
	}
	return 0
}

func (v Value) IsNothing() bool { return v.Tag == TagNothing }
func (v Value) IsMissing() bool { return v.Tag == TagMissing }
func (v Value) IsUndef() bool   { return v.Tag == TagUndef }
func (v Value) IsObj() bool     { return v.Tag == TagObj }

// IsNumeric reports whether the tag is one of the inline numeric kinds
// (Bool counts, matching Julia's Bool<:Number-adjacent promotion role).
func (v Value) IsNumeric() bool {
	switch v.Tag {
	case TagBool, TagInt8, TagInt16, TagInt32, TagInt64,
		TagUInt8, TagUInt16, TagUInt32, TagUInt64,
		TagFloat16, TagFloat32, TagFloat64:
		return true
	}
	return false
}

func (v Value) IsFloat() bool {
	return v.Tag == TagFloat16 || v.Tag == TagFloat32 || v.Tag == TagFloat64
}

// JLType returns the runtime Type of v, the value every `typeof(x)` call
// and every dispatch decision consults.
func (v Value) JLType() types.Type {
	switch v.Tag {
	case TagNothing:
		return types.NothingT
	case TagMissing:
		return types.MissingT
	case TagUndef:
		return types.NothingT // Undef is host-internal, never observed as typeof()
	case TagBool:
		return types.Bool
	case TagChar:
		return types.CharT
	case TagInt8:
		return types.Int8
	case TagInt16:
		return types.Int16
	case TagInt32:
		return types.Int32
	case TagInt64:
		return types.Int64
	case TagUInt8:
		return types.UInt8
	case TagUInt16:
		return types.UInt16
	case TagUInt32:
		return types.UInt32
	case TagUInt64:
		return types.UInt64
	case TagFloat16:
		return types.Float16
	case TagFloat32:
		return types.Float32
	case TagFloat64:
		return types.Float64
	case TagObj:
		return v.Obj.JLType()
	}
	return types.Any
}

// NewUUID mints a fresh heap-object identity tag, used by Array/Struct/Dict/
// Set allocation (internal/heap) and by gensym (internal/macro) — the
// google/uuid dependency wired per SPEC_FULL's domain stack table.
func NewUUID() uuid.UUID { return uuid.New() }
