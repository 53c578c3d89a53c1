package value

import (
	"math/bits"

	"github.com/jlvm/jlvm/internal/types"
)

// Int128 is a two's-complement 128-bit signed integer, boxed because it
// doesn't fit Value's 64-bit inline payload. Arithmetic is implemented
// directly on (Hi, Lo uint64) pairs via math/bits rather than through
// modernc.org/mathutil: mathutil reaches this module only transitively
// through modernc.org/sqlite (see DESIGN.md), so its API is not grounded
// anywhere in the retrieved pack and is not called directly.
type Int128 struct {
	Hi int64
	Lo uint64
}

func (i *Int128) JLType() types.Type { return types.Int128 }
func (i *Int128) Show() string       { return i.String() }
func (i *Int128) Hash(seed uint64) uint64 {
	return seed ^ uint64(i.Hi)*0x9e3779b1 ^ i.Lo
}
func (i *Int128) equalBits(o numericObj) bool {
	oi, ok := o.(*Int128)
	return ok && oi.Hi == i.Hi && oi.Lo == i.Lo
}

func Int128FromInt64(v int64) *Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return &Int128{Hi: hi, Lo: uint64(v)}
}

func (i *Int128) Add(o *Int128) (*Int128, bool) {
	lo, carry := bits.Add64(i.Lo, o.Lo, 0)
	hi := i.Hi + o.Hi + int64(carry)
	overflow := sameSign(i.Hi, o.Hi) && !sameSign(i.Hi, hi)
	return &Int128{Hi: hi, Lo: lo}, overflow
}

func sameSign(a, b int64) bool { return (a < 0) == (b < 0) }

func (i *Int128) String() string {
	return longDiv10(i.Hi, i.Lo, i.Hi < 0)
}

// longDiv10 renders the 128-bit unsigned magnitude (hi,lo) to decimal,
// prefixing a '-' if neg.
func longDiv10(hiSigned int64, lo uint64, neg bool) string {
	hi := uint64(hiSigned)
	if neg {
		lo = ^lo + 1
		carry := uint64(0)
		if lo == 0 {
			carry = 1
		}
		hi = ^hi + carry
	}
	if hi == 0 && lo == 0 {
		return "0"
	}
	var buf []byte
	for hi != 0 || lo != 0 {
		q1, r1 := bits.Div64(0, hi, 10)
		q0, r0 := bits.Div64(r1, lo, 10)
		hi, lo = q1, q0
		buf = append([]byte{byte('0' + r0)}, buf...)
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}

// UInt128 is the unsigned 128-bit counterpart.
type UInt128 struct {
	Hi, Lo uint64
}

func (u *UInt128) JLType() types.Type { return types.NewConcrete("UInt128", types.Any, nil, nil, false) }
func (u *UInt128) Show() string       { return longDiv10(int64(u.Hi), u.Lo, false) }
func (u *UInt128) Hash(seed uint64) uint64 {
	return seed ^ u.Hi*0x9e3779b1 ^ u.Lo
}
func (u *UInt128) equalBits(o numericObj) bool {
	ou, ok := o.(*UInt128)
	return ok && ou.Hi == u.Hi && ou.Lo == u.Lo
}
