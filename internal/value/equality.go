package value

import (
	"math"
	"strconv"
)

// TriState is the result of a comparison that may be indeterminate because
// one side is `missing` (spec.md §3.2: op(missing, x) === missing).
type TriState int

const (
	TriFalse TriState = iota
	TriTrue
	TriMissing
)

func (t TriState) ToValue() Value {
	switch t {
	case TriTrue:
		return Bool(true)
	case TriFalse:
		return Bool(false)
	default:
		return Missing()
	}
}

// EqualsTri implements Julia's `==`: three-valued when either side is
// missing, NaN-aware (NaN == NaN is false, -0.0 == 0.0 is true) otherwise.
func EqualsTri(a, b Value) TriState {
	if a.IsMissing() || b.IsMissing() {
		return TriMissing
	}
	if a.IsNumeric() && b.IsNumeric() {
		if boolOf(a.AsFloat64Generic() == b.AsFloat64Generic()) {
			return TriTrue
		}
		return TriFalse
	}
	if a.Tag == TagObj && b.Tag == TagObj {
		return boolOf(objEqual(a.Obj, b.Obj))
	}
	return TriFalse
}

func boolOf(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

func objEqual(a, b Object) bool {
	switch av := a.(type) {
	case *JLString:
		bv, ok := b.(*JLString)
		return ok && av.Go() == bv.Go()
	case *Symbol:
		return a == b // interned identity
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if EqualsTri(av.Elems[i], bv.Elems[i]) != TriTrue {
				return false
			}
		}
		return true
	}
	return a == b // identity fallback for heap objects (Array/Struct/Dict/Set)
}

// Identical implements Julia's `===`: always returns a definite Bool, never
// missing, even when comparing missing to missing (spec.md §3.2).
func Identical(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagNothing, TagMissing, TagUndef:
		return true
	case TagObj:
		if sa, ok := a.Obj.(*Symbol); ok {
			sb, ok2 := b.Obj.(*Symbol)
			return ok2 && sa == sb
		}
		if na, ok := a.Obj.(numericObj); ok {
			nb, ok2 := b.Obj.(numericObj)
			return ok2 && na.equalBits(nb)
		}
		return a.Obj == b.Obj // pointer identity for mutable heap objects
	default:
		return a.Bits == b.Bits
	}
}

// numericObj is implemented by boxed wide-integer values (Int128/UInt128) so
// Identical can compare them by value rather than pointer.
type numericObj interface {
	equalBits(other numericObj) bool
}

// IsEqual implements Julia's `isequal`: total order, NaN isequal NaN, but
// -0.0 isequal 0.0 is false (spec.md §3.2, §8.1).
func IsEqual(a, b Value) bool {
	if a.IsFloat() && b.IsFloat() {
		fa, fb := a.AsFloat64Generic(), b.AsFloat64Generic()
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		if fa == 0 && fb == 0 {
			return math.Signbit(fa) == math.Signbit(fb)
		}
		return fa == fb
	}
	if a.IsMissing() && b.IsMissing() {
		return true
	}
	if a.IsNothing() && b.IsNothing() {
		return true
	}
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat64Generic() == b.AsFloat64Generic()
	}
	if a.Tag == TagObj && b.Tag == TagObj {
		return objEqual(a.Obj, b.Obj)
	}
	return Identical(a, b)
}

// IsLess implements Julia's `isless`: a total order used for sorting, where
// NaN sorts after every other float (spec.md §3.2's "isless is total").
func IsLess(a, b Value) bool {
	if a.IsFloat() || b.IsFloat() {
		fa, fb := a.AsFloat64Generic(), b.AsFloat64Generic()
		aNaN, bNaN := math.IsNaN(fa), math.IsNaN(fb)
		if aNaN && bNaN {
			return false
		}
		if aNaN {
			return false
		}
		if bNaN {
			return true
		}
		return fa < fb
	}
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat64Generic() < b.AsFloat64Generic()
	}
	if a.Tag == TagObj {
		if sa, ok := a.Obj.(*JLString); ok {
			if sb, ok2 := b.Obj.(*JLString); ok2 {
				return sa.Go() < sb.Go()
			}
		}
	}
	return false
}

// Hash computes a seed-chained hash consistent with IsEqual (spec.md §3.2,
// §8.1): hash(x) == hash(y) whenever isequal(x,y).
func Hash(v Value, seed uint64) uint64 {
	switch v.Tag {
	case TagNothing:
		return seed ^ 0x1
	case TagMissing:
		return seed ^ 0x2
	case TagChar:
		return seed ^ uint64(v.AsChar())*2654435761
	case TagFloat16, TagFloat32, TagFloat64:
		// An integral float hashes like the equal integer (isequal(3, 3.0)).
		// -0.0 and 0.0 are isequal-distinct, so -0.0 keeps the bit-pattern
		// hash; Float64bits preserves the sign bit.
		f := v.AsFloat64Generic()
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 && !(f == 0 && math.Signbit(f)) {
			return seed ^ uint64(int64(f))*0x2545F4914F6CDD1D
		}
		bits := math.Float64bits(f)
		return seed ^ bits*0x2545F4914F6CDD1D
	case TagBool, TagInt8, TagInt16, TagInt32, TagInt64, TagUInt8, TagUInt16, TagUInt32, TagUInt64:
		return seed ^ uint64(v.AsInt64Generic())*0x2545F4914F6CDD1D
	case TagObj:
		return v.Obj.Hash(seed)
	}
	return seed
}

func boolHash(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Coalesce returns the first non-missing value among vs, or missing if all
// are missing (spec.md §7: explicit predicates recover a definite value).
func Coalesce(vs ...Value) Value {
	for _, v := range vs {
		if !v.IsMissing() {
			return v
		}
	}
	return Missing()
}

// IsMissingVal implements `ismissing`.
func IsMissingVal(v Value) bool { return v.IsMissing() }

// Show renders v the way Julia's `show`/REPL echo would (spec.md §C supplement).
func Show(v Value) string {
	switch v.Tag {
	case TagNothing:
		return "nothing"
	case TagMissing:
		return "missing"
	case TagUndef:
		return "#undef"
	case TagBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case TagChar:
		return "'" + string(v.AsChar()) + "'"
	case TagInt8, TagInt16, TagInt32, TagInt64, TagUInt8, TagUInt16, TagUInt32, TagUInt64:
		return int64Show(v)
	case TagFloat16, TagFloat32, TagFloat64:
		return floatShow(v.AsFloat64Generic())
	case TagObj:
		return v.Obj.Show()
	}
	return "<?>"
}

func int64Show(v Value) string {
	switch v.Tag {
	case TagUInt8, TagUInt16, TagUInt32, TagUInt64:
		return strconv.FormatUint(v.AsUInt64(), 10)
	default:
		return strconv.FormatInt(v.AsInt64Generic(), 10)
	}
}

func floatShow(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	s := formatFloat(f)
	return s
}

// formatFloat is a minimal %g-style formatter that always keeps a decimal
// point, matching Julia's float `show` (1.0, not 1).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	hasDot := false
	for _, c := range s {
		if c == '.' || c == 'e' {
			hasDot = true
			break
		}
	}
	if !hasDot {
		s += ".0"
	}
	return s
}
