// Package jlerror defines the closed set of error kinds the VM can raise,
// mirroring Julia's built-in exception hierarchy (spec.md §7).
package jlerror

import "fmt"

// Frame is one entry of a captured call stack, used for best-effort
// source-line reporting by the host shell (spec.md §6.4).
type Frame struct {
	Func   string
	File   string
	Line   int
	Column int
}

// Error is the interface every raised value in the VM's exception model
// satisfies. Kind is the Julia-visible type name ("BoundsError", ...).
type Error interface {
	error
	Kind() string
	Message() string
	Backtrace() []Frame
}

// base carries the fields shared by every concrete error kind.
type base struct {
	kind      string
	msg       string
	backtrace []Frame
}

func (b *base) Kind() string        { return b.kind }
func (b *base) Message() string     { return b.msg }
func (b *base) Backtrace() []Frame  { return b.backtrace }
func (b *base) Error() string       { return fmt.Sprintf("%s: %s", b.kind, b.msg) }
func (b *base) WithBacktrace(f []Frame) *base {
	nb := *b
	nb.backtrace = f
	return &nb
}

func newBase(kind, msg string) *base { return &base{kind: kind, msg: msg} }

// BoundsError reports an out-of-range getindex/setindex (spec.md §3.2, §4.3).
type BoundsError struct{ *base }

func NewBoundsError(shapeOrLen string, index string) *BoundsError {
	return &BoundsError{newBase("BoundsError",
		fmt.Sprintf("attempt to access %s at index [%s]", shapeOrLen, index))}
}

// DimensionMismatch reports incompatible array/broadcast shapes (spec.md §4.4.2).
type DimensionMismatch struct{ *base }

func NewDimensionMismatch(a, b []int) *DimensionMismatch {
	return &DimensionMismatch{newBase("DimensionMismatch",
		fmt.Sprintf("arrays could not be broadcast to a common size: %s vs %s", shapeStr(a), shapeStr(b)))}
}

func shapeStr(s []int) string {
	out := "("
	for i, d := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", d)
	}
	if len(s) == 1 {
		out += ","
	}
	return out + ")"
}

// DomainError reports an argument outside a function's valid domain (e.g. sqrt(-1)).
type DomainError struct{ *base }

func NewDomainError(value, fn string) *DomainError {
	return &DomainError{newBase("DomainError", fmt.Sprintf("%s not in domain of %s", value, fn))}
}

// DivideError reports integer division by zero.
type DivideError struct{ *base }

func NewDivideError() *DivideError {
	return &DivideError{newBase("DivideError", "integer division error")}
}

// MethodError reports that no method of a generic function matches the call.
type MethodError struct {
	*base
	Function string
	ArgTypes []string
}

func NewMethodError(function string, argTypes []string) *MethodError {
	return &MethodError{
		base:     newBase("MethodError", fmt.Sprintf("no method matching %s(%s)", function, joinTypes(argTypes))),
		Function: function,
		ArgTypes: argTypes,
	}
}

func joinTypes(ts []string) string {
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += ", "
		}
		out += "::" + t
	}
	return out
}

// MethodAmbiguity reports that more than one maximally-specific method matched.
type MethodAmbiguity struct{ *base }

func NewMethodAmbiguity(function string, candidates int) *MethodAmbiguity {
	return &MethodAmbiguity{newBase("MethodAmbiguity",
		fmt.Sprintf("%s has %d ambiguous candidate methods", function, candidates))}
}

// UndefVarError reports a reference to an unbound global/local binding.
type UndefVarError struct{ *base }

func NewUndefVarError(name string) *UndefVarError {
	return &UndefVarError{newBase("UndefVarError", fmt.Sprintf("%s not defined", name))}
}

// UndefFieldError reports access to a struct field that doesn't exist.
type UndefFieldError struct{ *base }

func NewUndefFieldError(typeName, field string) *UndefFieldError {
	return &UndefFieldError{newBase("UndefFieldError", fmt.Sprintf("type %s has no field %s", typeName, field))}
}

// ArgumentError reports a structurally invalid argument to a builtin.
type ArgumentError struct{ *base }

func NewArgumentError(msg string) *ArgumentError {
	return &ArgumentError{newBase("ArgumentError", msg)}
}

// KeyError reports a missing key in Dict getindex.
type KeyError struct{ *base }

func NewKeyError(key string) *KeyError {
	return &KeyError{newBase("KeyError", fmt.Sprintf("key %s not found", key))}
}

// TypeError reports a value failing a declared type constraint.
type TypeError struct{ *base }

func NewTypeError(context, expected, got string) *TypeError {
	return &TypeError{newBase("TypeError",
		fmt.Sprintf("in %s, expected %s, got %s", context, expected, got))}
}

// OverflowError reports a trapped host-level typed-arithmetic overflow.
type OverflowError struct{ *base }

func NewOverflowError(op string) *OverflowError {
	return &OverflowError{newBase("OverflowError", fmt.Sprintf("%s overflowed", op))}
}

// TaskFailedException wraps the error a failed Task raised, surfaced by wait/fetch.
type TaskFailedException struct {
	*base
	Cause Error
}

func NewTaskFailedException(cause Error) *TaskFailedException {
	return &TaskFailedException{
		base:  newBase("TaskFailedException", "task failed: "+cause.Message()),
		Cause: cause,
	}
}

// ParseError is raised by the external parser (spec.md §6.1) and surfaced by
// include_string/evalfile.
type ParseError struct{ *base }

func NewParseError(msg string, line, col int) *ParseError {
	return &ParseError{newBase("ParseError", fmt.Sprintf("%s at line %d, col %d", msg, line, col))}
}

// LoadError wraps a ParseError/runtime error encountered while loading a file,
// attaching the file name (spec.md §7).
type LoadError struct {
	*base
	File  string
	Cause error
}

func NewLoadError(file string, cause error) *LoadError {
	return &LoadError{
		base:  newBase("LoadError", fmt.Sprintf("%s: %v", file, cause)),
		File:  file,
		Cause: cause,
	}
}

func (e *LoadError) Unwrap() error { return e.Cause }
