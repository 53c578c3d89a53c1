package value

import (
	"fmt"

	"github.com/jlvm/jlvm/internal/types"
)

// Range is the common surface of the four range variants in spec.md §3.1:
// UnitRange{Int}, StepRange, StepRangeLen, LinRange. All know their length
// in O(1) and are iterable without allocating.
type Range interface {
	Object
	Length() int64
	At(i int64) Value // 1-based
}

// UnitRange is start:stop with an implicit step of 1.
type UnitRange struct {
	Start, Stop int64
}

func (r *UnitRange) Length() int64 {
	if r.Stop < r.Start {
		return 0
	}
	return r.Stop - r.Start + 1
}
func (r *UnitRange) At(i int64) Value       { return Int64(r.Start + i - 1) }
func (r *UnitRange) JLType() types.Type     { return rangeType }
func (r *UnitRange) Show() string           { return fmt.Sprintf("%d:%d", r.Start, r.Stop) }
func (r *UnitRange) Hash(seed uint64) uint64 {
	return seed ^ uint64(r.Start)*31 ^ uint64(r.Stop)
}

// StepRange is start:step:stop over integers (or any type with integral step).
type StepRange struct {
	Start, Step, Stop int64
}

func (r *StepRange) Length() int64 {
	if r.Step == 0 {
		return 0
	}
	if r.Step > 0 {
		if r.Stop < r.Start {
			return 0
		}
		return (r.Stop-r.Start)/r.Step + 1
	}
	if r.Stop > r.Start {
		return 0
	}
	return (r.Start-r.Stop)/(-r.Step) + 1
}
func (r *StepRange) At(i int64) Value   { return Int64(r.Start + (i-1)*r.Step) }
func (r *StepRange) JLType() types.Type { return rangeType }
func (r *StepRange) Show() string       { return fmt.Sprintf("%d:%d:%d", r.Start, r.Step, r.Stop) }
func (r *StepRange) Hash(seed uint64) uint64 {
	return seed ^ uint64(r.Start)*31 ^ uint64(r.Step)*37 ^ uint64(r.Stop)
}

// StepRangeLen is a floating-point range given by (start, step, length),
// avoiding cumulative rounding error by computing start+i*step at each access.
type StepRangeLen struct {
	Start, Step float64
	Len         int64
}

func (r *StepRangeLen) Length() int64 { return r.Len }
func (r *StepRangeLen) At(i int64) Value {
	return Float64(r.Start + float64(i-1)*r.Step)
}
func (r *StepRangeLen) JLType() types.Type { return rangeType }
func (r *StepRangeLen) Show() string {
	return fmt.Sprintf("%g:%g:%v", r.Start, r.Step, r.Start+float64(r.Len-1)*r.Step)
}
func (r *StepRangeLen) Hash(seed uint64) uint64 {
	return seed ^ uint64(r.Len)
}

// LinRange is `range(start, stop, length=n)`: n evenly spaced points
// including both endpoints exactly.
type LinRange struct {
	Start, Stop float64
	Len         int64
}

func (r *LinRange) Length() int64 { return r.Len }
func (r *LinRange) At(i int64) Value {
	if r.Len == 1 {
		return Float64(r.Start)
	}
	frac := float64(i-1) / float64(r.Len-1)
	return Float64(r.Start + frac*(r.Stop-r.Start))
}
func (r *LinRange) JLType() types.Type { return rangeType }
func (r *LinRange) Show() string {
	return fmt.Sprintf("LinRange(%g, %g, %d)", r.Start, r.Stop, r.Len)
}
func (r *LinRange) Hash(seed uint64) uint64 {
	return seed ^ uint64(r.Len)
}

var rangeType = types.NewConcrete("Range", types.Any, nil, nil, false)

// RangeValues materializes a Range into a slice, for iteration contexts
// that need a concrete slice (e.g. collect(range)).
func RangeValues(r Range) []Value {
	n := r.Length()
	out := make([]Value, n)
	for i := int64(0); i < n; i++ {
		out[i] = r.At(i + 1)
	}
	return out
}
