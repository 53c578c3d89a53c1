package value

import (
	"sync"

	"github.com/jlvm/jlvm/internal/types"
)

// Symbol is interned: two occurrences of the same name always share the
// same *Symbol pointer, so `:x === :x` holds for any two occurrences
// (spec.md §3.2), mirroring the teacher's global symbol-table singleton
// pattern used for identifier resolution (internal/symbols/symbol_table*.go),
// here narrowed to pure interning rather than scoped binding.
type Symbol struct {
	name string
}

func (s *Symbol) Name() string         { return s.name }
func (s *Symbol) JLType() types.Type   { return symbolType }
func (s *Symbol) Show() string         { return ":" + s.name }
func (s *Symbol) Hash(seed uint64) uint64 {
	h := seed ^ 0xcbf29ce484222325
	for i := 0; i < len(s.name); i++ {
		h ^= uint64(s.name[i])
		h *= 0x100000001b3
	}
	return h
}

var symbolType = types.NewConcrete("Symbol", types.Any, nil, nil, false)

var (
	internMu   sync.Mutex
	internPool = map[string]*Symbol{}
)

// Intern returns the unique *Symbol for name, creating it on first use.
func Intern(name string) *Symbol {
	internMu.Lock()
	defer internMu.Unlock()
	if s, ok := internPool[name]; ok {
		return s
	}
	s := &Symbol{name: name}
	internPool[name] = s
	return s
}

// SymVal wraps an interned Symbol as a Value.
func SymVal(name string) Value { return Obj(Intern(name)) }
