// Package broadcast implements the lazy elementwise-broadcast engine of
// spec.md §4.4: the Broadcasted wrapper, BroadcastStyle combination lattice,
// shape resolution, nested flattening/fusion, and materialize with its
// fast paths. Grounded structurally on the teacher's per-type instruction
// specialization pattern in internal/vm (one fast loop per concrete shape,
// falling back to a generic path), generalized from "one opcode per
// arithmetic type" to "one loop per broadcast shape class."
package broadcast

import "github.com/jlvm/jlvm/internal/jlerror"

// Style classifies a broadcast participant and combines pairwise under Combine
// (spec.md §4.4.1): Unknown < Scalar < Array{0} < Array{1} < ... < Conflict.
type Style struct {
	kind string // "unknown", "scalar", "array", "tuple", "conflict"
	ndim int    // meaningful only when kind == "array"
}

var (
	UnknownStyle  = Style{kind: "unknown"}
	ScalarStyle   = Style{kind: "scalar"}
	TupleStyle    = Style{kind: "tuple"}
	ConflictStyle = Style{kind: "conflict"}
)

func ArrayStyle(ndim int) Style { return Style{kind: "array", ndim: ndim} }

func (s Style) IsArray() bool    { return s.kind == "array" }
func (s Style) IsConflict() bool { return s.kind == "conflict" }
func (s Style) NDim() int        { return s.ndim }

func (s Style) rank() int {
	switch s.kind {
	case "unknown":
		return 0
	case "scalar":
		return 1
	case "array":
		return 2
	case "tuple":
		return 2
	case "conflict":
		return 100
	}
	return 0
}

// Combine merges two participant styles (spec.md §4.4.1's total order).
// Differing ndim always combines to the wider array style rather than a
// conflict, since shape resolution (not style resolution) is what rejects
// incompatible shapes. Combine returns Conflict when either side is already
// Conflict or when a tuple style meets an array style.
func Combine(a, b Style) Style {
	if a.kind == "conflict" || b.kind == "conflict" {
		return ConflictStyle
	}
	if a.kind == "unknown" {
		return b
	}
	if b.kind == "unknown" {
		return a
	}
	if a.kind == "tuple" || b.kind == "tuple" {
		if a.kind == "tuple" && b.kind == "tuple" {
			return TupleStyle
		}
		if a.kind == "scalar" {
			return b
		}
		if b.kind == "scalar" {
			return a
		}
		return ConflictStyle
	}
	if a.kind == "array" && b.kind == "array" {
		if a.ndim >= b.ndim {
			return a
		}
		return b
	}
	if a.kind == "array" {
		return a
	}
	if b.kind == "array" {
		return b
	}
	return ScalarStyle // both scalar
}

// CombineAll folds Combine over every participant style, left to right.
func CombineAll(styles ...Style) Style {
	out := UnknownStyle
	for _, s := range styles {
		out = Combine(out, s)
	}
	return out
}

// BroadcastShape folds broadcast_shape over every participant shape
// (spec.md §4.4.2): shorter shapes are right-padded with implicit 1s,
// per-dimension resolved by bcs1.
func BroadcastShape(shapes ...[]int) ([]int, error) {
	n := 0
	for _, s := range shapes {
		if len(s) > n {
			n = len(s)
		}
	}
	out := make([]int, n)
	for d := 0; d < n; d++ {
		out[d] = 1
		for _, s := range shapes {
			dim := 1
			if d < len(s) {
				dim = s[d]
			}
			merged, err := bcs1(out[d], dim)
			if err != nil {
				return nil, err
			}
			out[d] = merged
		}
	}
	return out, nil
}

// bcs1 implements spec.md §4.4.2's per-dimension rule exactly.
func bcs1(a, b int) (int, error) {
	if a == 1 {
		return b, nil
	}
	if b == 1 {
		return a, nil
	}
	if a == b {
		return a, nil
	}
	return 0, jlerror.NewDimensionMismatch([]int{a}, []int{b})
}
