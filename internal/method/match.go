package method

import "github.com/jlvm/jlvm/internal/types"

// matchSignature attempts to bind m's WhereVars against the concrete
// argTypes of a call, enforcing the diagonal rule (spec.md §4.2): a TypeVar
// that appears in more than one covariant parameter position must bind to
// the SAME concrete type at every occurrence. The concreteness check
// applies only to variables marked in m.Diagonal; any other TypeVar binds
// to whatever argument type satisfies its bounds.
func matchSignature(m *Method, argTypes []types.Type) (map[string]types.Type, bool) {
	if m.Variadic {
		if len(argTypes) < len(m.Params)-1 {
			return nil, false
		}
	} else if len(argTypes) != len(m.Params) {
		return nil, false
	}

	bindings := map[string]types.Type{}
	fixed := m.Params
	if m.Variadic {
		fixed = m.Params[:len(m.Params)-1]
	}
	for i, p := range fixed {
		if !matchOne(p.Type, argTypes[i], m, bindings) {
			return nil, false
		}
	}
	if m.Variadic {
		for i := len(fixed); i < len(argTypes); i++ {
			if !matchOne(m.VariadicType, argTypes[i], m, bindings) {
				return nil, false
			}
		}
	}
	return bindings, true
}

// matchOne matches a single declared parameter type (possibly mentioning a
// WhereVar) against a concrete argument type, recording/checking diagonal
// bindings in bindings.
func matchOne(declared types.Type, actual types.Type, m *Method, bindings map[string]types.Type) bool {
	tv, isVar := declared.(types.TypeVar)
	if !isVar {
		return types.Subtype(actual, declared)
	}
	upper := tv.Upper
	if upper == nil {
		upper = types.Any // an unset bound means `where T` with no constraint
	}
	if !types.Subtype(actual, upper) {
		return false
	}
	if tv.Lower != nil && !types.Subtype(tv.Lower, actual) {
		return false
	}
	prior, seen := bindings[tv.Name]
	if !seen {
		if m.Diagonal[tv.Name] && !types.IsConcrete(actual) {
			return false
		}
		bindings[tv.Name] = actual
		return true
	}
	// Second-or-later occurrence of a diagonal variable: must be identical
	// to the first binding (spec.md §4.2's diagonal-rule example,
	// `f(x::T, y::T) where T` rejecting (Int, Float64)).
	return sameType(prior, actual)
}

func sameType(a, b types.Type) bool {
	return a.String() == b.String()
}

type specificityResult int

const (
	moreSpecific specificityResult = iota
	lessSpecific
	tie
)

// compareSpecificity orders two methods by Julia's partial specificity
// order (spec.md §4.2): a is more specific than b if every one of a's
// parameter types is a subtype of the corresponding parameter in b, and at
// least one is a strict subtype (not also a supertype). Arity differences
// (fixed vs variadic) resolve in favor of the fixed-arity method for calls
// both would accept.
func compareSpecificity(a, b *Method) specificityResult {
	if a.Variadic != b.Variadic {
		if !a.Variadic {
			return moreSpecific
		}
		return lessSpecific
	}
	n := len(a.Params)
	if len(b.Params) < n {
		n = len(b.Params)
	}
	aLeq, bLeq := true, true
	for i := 0; i < n; i++ {
		at, bt := paramBound(a.Params[i].Type), paramBound(b.Params[i].Type)
		if !types.Subtype(at, bt) {
			aLeq = false
		}
		if !types.Subtype(bt, at) {
			bLeq = false
		}
	}
	switch {
	case aLeq && !bLeq:
		return moreSpecific
	case bLeq && !aLeq:
		return lessSpecific
	default:
		return tie
	}
}

// paramBound returns the type used for specificity comparison: a TypeVar
// contributes its upper bound (spec.md §4.2: `where T` without further
// constraint is exactly as specific as `::Any` at that position).
func paramBound(t types.Type) types.Type {
	if tv, ok := t.(types.TypeVar); ok {
		if tv.Upper == nil {
			return types.Any
		}
		return tv.Upper
	}
	return t
}
