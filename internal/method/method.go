// Package method implements the generic-function method table and the
// dispatch pipeline: specificity ordering, kwargs binding, and the diagonal
// rule (spec.md §4.2). It is grounded on the teacher's
// trait/witness dispatch (internal/evaluator/evaluator.go's
// lookupTraitMethod + WitnessStack, internal/symbols/symbol_table_dispatch.go,
// internal/typesystem/dispatch.go's DispatchSource), generalized from
// Funxy's single-parameter-per-trait lookup to Julia's full ordered,
// specificity-ranked multiple-dispatch method table.
package method

import (
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// Param is one positional parameter of a method signature. Type may mention
// a TypeVar from WhereVars.
type Param struct {
	Name string
	Type types.Type
}

// Body is implemented by both bytecode-compiled methods (in internal/interp)
// and builtin (Go-native) methods, kept as an opaque interface here so
// internal/method never needs to import internal/bytecode or internal/interp
// (breaking what would otherwise be an import cycle, since interp depends on
// method to perform Call dispatch).
type Body interface {
	// Arity-independent marker; concrete implementations live in
	// internal/interp (CompiledBody) and this package (BuiltinBody).
	methodBody()
}

// BodyMarker lets a type defined outside this package (internal/interp's
// CompiledBody) satisfy Body by embedding it — Go's unexported-method
// interface trick requires the method to originate from an embeddable type
// in this package, since methodBody's name isn't otherwise reachable from
// another package.
type BodyMarker struct{}

func (BodyMarker) methodBody() {}

// BuiltinBody wraps a native Go implementation, used for the handful of
// operators/builtins the interpreter core itself provides (arithmetic,
// isequal/ismissing/coalesce, length, sin/cos, show/string/print,
// copy/deepcopy, hash — see internal/interp's builtins.go) as opposed to the pure-Julia-source standard library loaded
// by internal/stdlib (spec.md §4.6).
type BuiltinBody struct {
	Fn func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)
}

func (*BuiltinBody) methodBody() {}

// Method is one (signature, body) entry in a generic function's table
// (spec.md §4.2).
type Method struct {
	Params       []Param
	Variadic     bool       // last param repeats: f(x, ys...)
	VariadicType types.Type // element type the repeated tail must match
	WhereVars    []types.TypeVar
	// Diagonal marks which WhereVars must bind to a *concrete* type because
	// they appear at least twice in covariant position and nowhere in
	// invariant position (spec.md §4.2 "Diagonal rule").
	Diagonal map[string]bool
	KwNames  []string
	KwDefault map[string]value.Value // resolved default values (non-complex case)
	KwSplat  string                  // name of the kwargs... vararg collector, if any
	Body     Body
	Order    int // registration order, used to break specificity ties
}

// GenericFunction owns an ordered method list plus a cache keyed by the
// concrete argument-type tuple of a call (spec.md §4.2's "at minimum the
// interpreter caches (signature-tuple -> method)").
type GenericFunction struct {
	Name       string
	Methods    []*Method
	cache      map[string]*Method
	generation uint64
}

func NewGenericFunction(name string) *GenericFunction {
	return &GenericFunction{Name: name, cache: map[string]*Method{}}
}

// AddMethod registers m, invalidating the dispatch cache — a method that
// outranks a cached pick must be observed on the next call (spec.md §4.2,
// §9's "method-cache entries carry a validity generation incremented on
// method addition").
func (gf *GenericFunction) AddMethod(m *Method) {
	m.Order = len(gf.Methods)
	gf.Methods = append(gf.Methods, m)
	gf.generation++
	gf.cache = map[string]*Method{}
}

// cacheKey builds a string key from the concrete argument types of a call.
// Concrete types only: a cache entry is only ever consulted for a call
// whose every argument already resolved to a definite runtime type, so this
// is injective enough in practice (collisions would only under-cache, never
// mis-dispatch, since a cache miss always falls through to full resolution).
func cacheKey(argTypes []types.Type) string {
	s := ""
	for _, t := range argTypes {
		s += t.String() + "\x00"
	}
	return s
}

// Dispatch implements the call contract of spec.md §4.2 steps 1-6. args is
// the positional argument list exactly as internal/interp's OpCall handler
// collected it; no splat expansion happens here or in that handler.
func (gf *GenericFunction) Dispatch(args []value.Value, kwargs map[string]value.Value) (*Method, map[string]types.Type, error) {
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.JLType()
	}
	key := cacheKey(argTypes)
	if m, ok := gf.cache[key]; ok {
		bindings, ok := matchSignature(m, argTypes)
		if ok {
			return m, bindings, nil
		}
		// Stale entry (shouldn't normally happen since cache is cleared on
		// AddMethod, but defensive): fall through to full resolution.
	}

	type candidate struct {
		m        *Method
		bindings map[string]types.Type
	}
	var matches []candidate
	for _, m := range gf.Methods {
		if bindings, ok := matchSignature(m, argTypes); ok {
			matches = append(matches, candidate{m, bindings})
		}
	}
	if len(matches) == 0 {
		names := make([]string, len(argTypes))
		for i, t := range argTypes {
			names[i] = t.String()
		}
		return nil, nil, jlerror.NewMethodError(gf.Name, names)
	}

	best := matches[0]
	var ties []candidate
	ties = append(ties, best)
	for _, c := range matches[1:] {
		switch compareSpecificity(c.m, best.m) {
		case moreSpecific:
			best = c
			ties = ties[:0]
			ties = append(ties, best)
		case tie:
			ties = append(ties, c)
		}
	}
	if len(ties) > 1 {
		// Break ties by registration order as a last resort (spec.md §4.2:
		// "ties broken by registration order"), but only among entries that
		// are mutually indistinguishable by compareSpecificity; genuinely
		// ambiguous candidates (neither dominates the other AND neither was
		// registered to resolve the tie) raise MethodAmbiguity.
		// compareSpecificity reports tie both for equivalent signatures and
		// for incomparable ones, so check mutual subtyping per position.
		allTrulyAmbiguous := false
		for i := 1; i < len(ties); i++ {
			a, b := ties[i].m, ties[0].m
			if len(a.Params) != len(b.Params) {
				allTrulyAmbiguous = true
				continue
			}
			for j := range a.Params {
				at, bt := paramBound(a.Params[j].Type), paramBound(b.Params[j].Type)
				if !types.Subtype(at, bt) || !types.Subtype(bt, at) {
					allTrulyAmbiguous = true
				}
			}
		}
		if allTrulyAmbiguous {
			return nil, nil, jlerror.NewMethodAmbiguity(gf.Name, len(ties))
		}
		earliest := ties[0]
		for _, c := range ties[1:] {
			if c.m.Order < earliest.m.Order {
				earliest = c
			}
		}
		best = earliest
	}

	gf.cache[key] = best.m
	return best.m, best.bindings, nil
}
