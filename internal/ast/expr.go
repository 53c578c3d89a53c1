// Package ast implements the first-class, inspectable AST value kinds
// spec.md §4.5 requires: Expr, QuoteNode, LineNumberNode, and GlobalRef
// (Symbol itself lives in internal/value, already a boxed Object shared by
// the rest of the runtime). Every node here implements value.Object so
// quoted code is an ordinary Julia value the user can pattern-match,
// traverse, and splice, matching spec.md's "Expr, Symbol, QuoteNode,
// LineNumberNode, GlobalRef are first-class values the user may inspect and
// construct."
//
// Grounded on the teacher's internal/ast package for the Node/Visitor
// traversal shape (Accept(v Visitor)), but regrammared from Funxy's
// statement/expression/type node hierarchy (ConstantDeclaration,
// PackageDeclaration, ...) down to Julia's actual single-node-kind model,
// where program syntax itself IS an Expr tree (`Expr.head` a Symbol,
// `Expr.args` a Vector{Any}) rather than a separate Statement/Expression
// class hierarchy.
package ast

import (
	"strings"

	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// Node is implemented by every quoted-code value kind.
type Node interface {
	value.Object
	Accept(v Visitor)
}

// Visitor lets internal/eval's lowering stage and internal/macro's expander
// traverse a Node tree without a type switch at every call site.
type Visitor interface {
	VisitExpr(e *Expr)
	VisitSymbol(s *value.Symbol)
	VisitQuoteNode(q *QuoteNode)
	VisitLineNumberNode(l *LineNumberNode)
	VisitGlobalRef(g *GlobalRef)
}

// Expr is the universal syntax-tree node (spec.md §4.5): `head` names the
// node kind (:call, :if, :function, :block, :(=), :tuple, ...) and `args`
// holds the children, which may themselves be Expr, Symbol, QuoteNode,
// LineNumberNode, GlobalRef, or any literal Value (spec.md: "Expr.args is a
// Vector{Any}").
type Expr struct {
	Head *value.Symbol
	Args []value.Value
}

func NewExpr(head string, args ...value.Value) *Expr {
	return &Expr{Head: value.Intern(head), Args: args}
}

func (e *Expr) JLType() types.Type { return exprType }
func (e *Expr) Hash(seed uint64) uint64 {
	h := seed ^ 0xa5a5a5a5a5a5a5a5
	h = value.Hash(value.Obj(e.Head), h)
	for _, a := range e.Args {
		h = value.Hash(a, h)
	}
	return h
}
func (e *Expr) Show() string {
	var b strings.Builder
	b.WriteString(":(")
	b.WriteString(e.Head.Name())
	for _, a := range e.Args {
		b.WriteString(" ")
		b.WriteString(value.Show(a))
	}
	b.WriteString(")")
	return b.String()
}
func (e *Expr) Accept(v Visitor) { v.VisitExpr(e) }

// QuoteNode wraps a single value that should NOT be macro-expanded or
// interpolated further — `:(:x)` quotes the symbol x itself rather than
// evaluating it (spec.md §4.5).
type QuoteNode struct {
	Value value.Value
}

func NewQuoteNode(v value.Value) *QuoteNode { return &QuoteNode{Value: v} }

func (q *QuoteNode) JLType() types.Type       { return quoteNodeType }
func (q *QuoteNode) Hash(seed uint64) uint64  { return value.Hash(q.Value, seed^0x5a5a5a5a) }
func (q *QuoteNode) Show() string             { return ":(" + value.Show(q.Value) + ")" }
func (q *QuoteNode) Accept(v Visitor)         { v.VisitQuoteNode(q) }

// LineNumberNode marks the source position of the statement that follows it
// inside a `quote ... end` block (spec.md §4.5: "Block quotes insert
// LineNumberNode before each statement").
type LineNumberNode struct {
	Line int
	File string
}

func (l *LineNumberNode) JLType() types.Type      { return lineNumberNodeType }
func (l *LineNumberNode) Hash(seed uint64) uint64 { return seed ^ uint64(l.Line)*0x9e3779b1 }
func (l *LineNumberNode) Show() string {
	return "#= " + l.File + ":" + itoa(l.Line) + " =#"
}
func (l *LineNumberNode) Accept(v Visitor) { v.VisitLineNumberNode(l) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// GlobalRef resolves a symbol to a specific module binding, disambiguating
// shadowed names the way the macro expander must when it rewrites a symbol
// captured from a different scope than the macro call site (spec.md §4.5).
type GlobalRef struct {
	Module string
	Name   string
}

func (g *GlobalRef) JLType() types.Type      { return globalRefType }
func (g *GlobalRef) Hash(seed uint64) uint64 { return seed ^ value.Intern(g.Module+"."+g.Name).Hash(seed) }
func (g *GlobalRef) Show() string            { return g.Module + "." + g.Name }
func (g *GlobalRef) Accept(v Visitor)        { v.VisitGlobalRef(g) }

var (
	exprType           = types.NewConcrete("Expr", types.Any, []string{"head", "args"}, nil, true)
	quoteNodeType      = types.NewConcrete("QuoteNode", types.Any, []string{"value"}, nil, true)
	lineNumberNodeType = types.NewConcrete("LineNumberNode", types.Any, []string{"line", "file"}, nil, false)
	globalRefType      = types.NewConcrete("GlobalRef", types.Any, []string{"mod", "name"}, nil, false)
)
