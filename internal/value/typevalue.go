package value

import "github.com/jlvm/jlvm/internal/types"

// TypeVal wraps a types.Type as a first-class runtime value: Type{T}'s sole
// instance is T itself (spec.md §3.1, §4.1).
type TypeVal struct {
	T types.Type
}

func NewTypeVal(t types.Type) Value { return Obj(&TypeVal{T: t}) }

func (t *TypeVal) JLType() types.Type { return &types.TypeType{T: t.T} }
func (t *TypeVal) Show() string       { return t.T.String() }
func (t *TypeVal) Hash(seed uint64) uint64 {
	h := seed ^ 0x27d4eb2f165667c5
	s := t.T.String()
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 0x100000001b3
	}
	return h
}

// AsType extracts the wrapped types.Type from a Value known to hold a TypeVal.
func AsType(v Value) (types.Type, bool) {
	if v.Tag != TagObj {
		return nil, false
	}
	tv, ok := v.Obj.(*TypeVal)
	if !ok {
		return nil, false
	}
	return tv.T, true
}
