package ast

import "github.com/jlvm/jlvm/internal/value"

// Walk recursively applies fn to every Node reachable from root (Expr args
// that are themselves Node-shaped), depth-first, pre-order. Used by
// internal/macro's CollectIntroducedNames and by internal/eval to find
// macro definitions before expansion.
func Walk(root Node, fn func(Node)) {
	fn(root)
	e, ok := root.(*Expr)
	if !ok {
		return
	}
	for _, a := range e.Args {
		if a.Tag != value.TagObj {
			continue
		}
		if n, ok := a.Obj.(Node); ok {
			Walk(n, fn)
		}
	}
}

// Transform rebuilds root, replacing each Node with fn(Node) (returning the
// same node leaves it unchanged); used by internal/eval to replace macro
// invocations with their expansions.
func Transform(root Node, fn func(Node) Node) Node {
	replaced := fn(root)
	e, ok := replaced.(*Expr)
	if !ok {
		return replaced
	}
	newArgs := make([]value.Value, len(e.Args))
	changed := false
	for i, a := range e.Args {
		if a.Tag != value.TagObj {
			newArgs[i] = a
			continue
		}
		if n, ok := a.Obj.(Node); ok {
			tn := Transform(n, fn)
			newArgs[i] = value.Obj(tn)
			if tn != n {
				changed = true
			}
			continue
		}
		newArgs[i] = a
	}
	if !changed {
		return e
	}
	return &Expr{Head: e.Head, Args: newArgs}
}
