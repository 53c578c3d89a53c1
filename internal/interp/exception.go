package interp

import (
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
)

// jlerrObj boxes a raised jlerror.Error as an ordinary catchable value (the
// `e` bound by `catch e`), so exception objects are first-class citizens in
// the same Value universe as everything else (spec.md §7).
type jlerrObj struct {
	err jlerror.Error
}

func (e jlerrObj) JLType() types.Type {
	return types.NewConcrete(e.err.Kind(), types.Any, nil, nil, false)
}
func (e jlerrObj) Show() string             { return e.err.Error() }
func (e jlerrObj) Hash(seed uint64) uint64  { return seed ^ 0x9e3779b97f4a7c15 }
