package interp

import (
	"fmt"

	"github.com/jlvm/jlvm/internal/ast"
	"github.com/jlvm/jlvm/internal/bytecode"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/method"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// Compiler lowers an ast.Expr tree into a bytecode.Chunk (spec.md §4.3). It
// compiles a single flat scope of named locals per chunk (one per top-level
// form or function body) — this subset doesn't nest closures-within-
// closures inside one compiled chunk; a nested `function`/`->` literal gets
// its own chunk via compileClosure and is captured as an OpMakeClosure
// constant, the same split the teacher's compiler.go/compiler_scope.go
// makes between a Compiler's own chunk and a child FunctionProto.
type Compiler struct {
	chunk     *bytecode.Chunk
	locals    map[string]uint16
	nextLocal uint16
	// global is true for a chunk compiled by CompileTopLevel: assignments
	// and unresolved references go straight to vm.Globals instead of a
	// local slot, the same way Julia's top-level scope (and the teacher's
	// REPL-mode Evaluator) has no enclosing function frame to bind
	// locals into — each statement a session evaluates must see the
	// previous statement's bindings.
	global bool
	// localTypes records the concrete numeric type of a parameter annotated
	// `x::Int64`/`x::Float64`, letting typedBinaryOp emit the per-type
	// arithmetic opcodes (spec.md §4.3's "type preservation") instead of
	// always falling back to *Dyn generic dispatch. This is a minimal,
	// single-pass inference: it only ever looks at a symbol's declared
	// parameter type or a literal's own tag, never propagates through
	// assignments or control flow.
	localTypes map[string]types.Type
	// loops tracks the enclosing while/for loops so break/continue know
	// which jump list to patch once the loop's start/end positions are known.
	loops []*loopCtx
	// tempCounter names compiler-internal local slots used to stage
	// compound-assignment targets (spec.md gives these no surface syntax, so
	// `%t0` etc. can never collide with a real Julia identifier).
	tempCounter int
}

type loopCtx struct {
	breakJumps    []int
	continueJumps []int
}

func NewCompiler(file string) *Compiler {
	return &Compiler{chunk: bytecode.NewChunk(file), locals: map[string]uint16{}, localTypes: map[string]types.Type{}}
}

// Compile lowers body (typically a :block Expr) into a complete chunk,
// appending a final OpHalt so a top-level Run with no explicit `return`
// resolves to the value of body's last expression. Assignments bind local slots scoped to this single
// chunk (used for function bodies, where paramNames seeds the locals).
func Compile(file string, body ast.Node, paramNames []string) (*bytecode.Chunk, error) {
	return CompileMethodBody(file, body, paramNames, nil)
}

// CompileMethodBody is Compile plus paramTypes, the concrete type (if any)
// each parameter was annotated with — used by compileFunctionDef to seed
// localTypes so arithmetic on typed parameters can lower to the typed
// opcodes rather than the always-correct-but-always-dynamic fallback.
func CompileMethodBody(file string, body ast.Node, paramNames []string, paramTypes []types.Type) (*bytecode.Chunk, error) {
	c := NewCompiler(file)
	for i, p := range paramNames {
		c.localSlot(p)
		if i < len(paramTypes) && paramTypes[i] != nil {
			c.localTypes[p] = paramTypes[i]
		}
	}
	return c.finish(body)
}

// CompileTopLevel lowers body the way internal/eval's Session evaluates
// one REPL/include_string form at a time: assignments bind VM globals
// rather than chunk-local slots, so a name bound by one call is visible
// to the next call's chunk.
func CompileTopLevel(file string, body ast.Node) (*bytecode.Chunk, error) {
	c := NewCompiler(file)
	c.global = true
	return c.finish(body)
}

func (c *Compiler) finish(body ast.Node) (*bytecode.Chunk, error) {
	if err := c.compileNode(body); err != nil {
		return nil, err
	}
	c.chunk.WriteOp(bytecode.OpHalt, 0, 0)
	c.chunk.NumLocals = int(c.nextLocal)
	return c.chunk, nil
}

func (c *Compiler) localSlot(name string) uint16 {
	if slot, ok := c.locals[name]; ok {
		return slot
	}
	slot := c.nextLocal
	c.locals[name] = slot
	c.nextLocal++
	return slot
}

// tempLocal allocates a fresh compiler-internal local slot.
func (c *Compiler) tempLocal() uint16 {
	name := fmt.Sprintf("%%t%d", c.tempCounter)
	c.tempCounter++
	return c.localSlot(name)
}

// compileNode compiles n for its side effects, leaving exactly one value on
// the stack (popped by the caller if unused — e.g. non-final statements of
// a :block).
func (c *Compiler) compileNode(n ast.Node) error {
	switch e := n.(type) {
	case nil:
		c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
		return nil
	case *ast.LineNumberNode:
		c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), e.Line, 0)
		return nil
	case *ast.QuoteNode:
		c.chunk.WriteOpU16(bytecode.OpQuoteLoad, c.constant(e.Value), 0, 0)
		return nil
	case *ast.Expr:
		return c.compileExpr(e)
	}
	return nil
}

func (c *Compiler) constant(v value.Value) uint16 { return c.chunk.AddConstant(v) }

// compileValue compiles one Expr argument slot, which may be a literal
// scalar (embed directly), a boxed Symbol (variable reference), or a nested
// Expr/QuoteNode/LineNumberNode (recurse via compileNode).
func (c *Compiler) compileValue(v value.Value) error {
	if v.Tag != value.TagObj {
		c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(v), 0, 0)
		return nil
	}
	switch o := v.Obj.(type) {
	case *value.Symbol:
		return c.compileSymbolRef(o)
	case ast.Node:
		return c.compileNode(o)
	default:
		c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(v), 0, 0)
		return nil
	}
}

func (c *Compiler) compileSymbolRef(s *value.Symbol) error {
	if !c.global {
		if slot, ok := c.locals[s.Name()]; ok {
			c.chunk.WriteOpU16(bytecode.OpLocalLoad, slot, 0, 0)
			return nil
		}
	}
	c.chunk.WriteOpU16(bytecode.OpGlobalLoad, c.constant(value.Obj(s)), 0, 0)
	return nil
}

var binaryOps = map[string]bytecode.Opcode{
	"+": bytecode.OpAddDyn, "-": bytecode.OpSubDyn, "*": bytecode.OpMulDyn,
	"/": bytecode.OpDivDyn, "%": bytecode.OpModDyn, "^": bytecode.OpPowDyn,
	"==": bytecode.OpEq, "!=": bytecode.OpNe, "<": bytecode.OpLt,
	"<=": bytecode.OpLe, ">": bytecode.OpGt, ">=": bytecode.OpGe,
	"&&": bytecode.OpAnd, "||": bytecode.OpOr,
}

var typedIntOps = map[string]bytecode.Opcode{"+": bytecode.OpAddI64, "-": bytecode.OpSubI64, "*": bytecode.OpMulI64}
var typedFloatOps = map[string]bytecode.Opcode{"+": bytecode.OpAddF64, "-": bytecode.OpSubF64, "*": bytecode.OpMulF64, "/": bytecode.OpDivF64}

// valueType returns the statically-known concrete numeric type of v, if
// any: a literal's own tag, or a parameter symbol's declared annotation.
func (c *Compiler) valueType(v value.Value) (types.Type, bool) {
	switch v.Tag {
	case value.TagInt64:
		return types.Int64, true
	case value.TagFloat64:
		return types.Float64, true
	case value.TagObj:
		if sym, ok := v.Obj.(*value.Symbol); ok {
			t, ok := c.localTypes[sym.Name()]
			return t, ok
		}
	}
	return nil, false
}

// typedBinaryOp picks OpAddI64/OpAddF64/... over the dynamic fallback when
// both operands of head are statically known to be the same concrete
// numeric type (spec.md §4.3's "type preservation"); it never fires for
// mixed-type operands, which still need the full promote-then-dispatch path
// OpAddDyn etc. provide.
func (c *Compiler) typedBinaryOp(head string, a, b value.Value) (bytecode.Opcode, bool) {
	ta, ok := c.valueType(a)
	if !ok {
		return 0, false
	}
	tb, ok := c.valueType(b)
	if !ok {
		return 0, false
	}
	if ta.Equal(types.Int64) && tb.Equal(types.Int64) {
		if op, ok := typedIntOps[head]; ok {
			return op, true
		}
	}
	if ta.Equal(types.Float64) && tb.Equal(types.Float64) {
		if op, ok := typedFloatOps[head]; ok {
			return op, true
		}
	}
	return 0, false
}

// compileExpr dispatches on e.Head, one case per Expr kind this subset's
// lowering understands (spec.md §4.3's "at minimum" instruction
// categories). Grounded structurally on the teacher's
// compiler_expressions.go/compiler_statements.go head-dispatch pattern,
// regrammared from Funxy's node kinds to Julia's :head vocabulary.
func (c *Compiler) compileExpr(e *ast.Expr) error {
	head := e.Head.Name()
	if op, ok := binaryOps[head]; ok && len(e.Args) == 2 {
		if typedOp, ok := c.typedBinaryOp(head, e.Args[0], e.Args[1]); ok {
			op = typedOp
		}
		if err := c.compileValue(e.Args[0]); err != nil {
			return err
		}
		if err := c.compileValue(e.Args[1]); err != nil {
			return err
		}
		c.chunk.WriteOp(op, 0, 0)
		return nil
	}
	switch head {
	case "block":
		if len(e.Args) == 0 {
			c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
			return nil
		}
		for i, a := range e.Args {
			if err := c.compileValue(a); err != nil {
				return err
			}
			if i != len(e.Args)-1 {
				c.chunk.WriteOp(bytecode.OpPop, 0, 0)
			}
		}
		return nil

	case "=":
		return c.compileAssign(e.Args[0], e.Args[1])

	case "const", "local":
		if head == "local" && e.Args[1].Tag == value.TagNothing {
			if !c.global {
				c.localSlot(e.Args[0].Obj.(*value.Symbol).Name())
			}
			c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
			return nil
		}
		return c.compileAssign(e.Args[0], e.Args[1])

	case "compound_assign":
		return c.compileCompoundAssign(e.Args[0], e.Args[1].Obj.(*value.Symbol).Name(), e.Args[2])

	case ".":
		if err := c.compileValue(e.Args[0]); err != nil {
			return err
		}
		fieldSym := e.Args[1].Obj.(*value.Symbol)
		c.chunk.WriteOpU16(bytecode.OpFieldLoad, c.constant(value.Obj(fieldSym)), 0, 0)
		return nil

	case "call":
		return c.compileCall(e.Args, bytecode.OpCall)

	case "broadcast_call":
		return c.compileCall(e.Args, bytecode.OpBroadcastDot)

	case "if":
		return c.compileIf(e.Args)

	case "while":
		return c.compileWhile(e.Args[0], e.Args[1])

	case "for":
		return c.compileFor(e.Args[0].Obj.(*value.Symbol), e.Args[1], e.Args[2])

	case "break":
		return c.compileBreak()

	case "continue":
		return c.compileContinue()

	case "try":
		return c.compileTry(e.Args)

	case "function":
		return c.compileFunctionDef(e.Args)

	case "struct":
		return c.compileStructDef(e.Args)

	case "macrodef":
		// Macro definitions are registered by internal/eval before
		// compilation ever sees them (spec.md §4.5's expansion happens
		// ahead of codegen); a `macrodef` that does reach the compiler
		// (e.g. a nested one this subset doesn't expand) is a no-op.
		c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
		return nil

	case "return":
		if len(e.Args) == 0 {
			c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
		} else if err := c.compileValue(e.Args[0]); err != nil {
			return err
		}
		c.chunk.WriteOp(bytecode.OpReturn, 0, 0)
		return nil

	case "tuple":
		for _, a := range e.Args {
			if err := c.compileValue(a); err != nil {
				return err
			}
		}
		c.chunk.WriteOpU16(bytecode.OpMakeTuple, uint16(len(e.Args)), 0, 0)
		return nil

	case "array_literal":
		for _, a := range e.Args {
			if err := c.compileValue(a); err != nil {
				return err
			}
		}
		c.chunk.WriteOpU16(bytecode.OpMakeArray, uint16(len(e.Args)), 0, 0)
		return nil

	case "ref":
		if err := c.compileValue(e.Args[0]); err != nil {
			return err
		}
		if err := c.compileValue(e.Args[1]); err != nil {
			return err
		}
		c.chunk.WriteOp(bytecode.OpIndexLoadDyn, 0, 0)
		return nil

	case "not":
		if err := c.compileValue(e.Args[0]); err != nil {
			return err
		}
		c.chunk.WriteOp(bytecode.OpNot, 0, 0)
		return nil

	case "throw":
		if err := c.compileValue(e.Args[0]); err != nil {
			return err
		}
		c.chunk.WriteOp(bytecode.OpThrow, 0, 0)
		return nil
	}
	// Unrecognized head: surface as a quoted value rather than failing the
	// whole compile, so partially-supported syntax can still round-trip
	// through quote/macro inspection even if it can't execute.
	c.chunk.WriteOpU16(bytecode.OpQuoteLoad, c.constant(value.Obj(e)), 0, 0)
	return nil
}

func (c *Compiler) compileAssign(target, rhs value.Value) error {
	if te, ok := target.Obj.(*ast.Expr); ok {
		switch te.Head.Name() {
		case "ref":
			if err := c.compileValue(te.Args[0]); err != nil {
				return err
			}
			if err := c.compileValue(te.Args[1]); err != nil {
				return err
			}
			if err := c.compileValue(rhs); err != nil {
				return err
			}
			c.chunk.WriteOp(bytecode.OpIndexStoreDyn, 0, 0)
			return nil
		case ".":
			if err := c.compileValue(te.Args[0]); err != nil {
				return err
			}
			if err := c.compileValue(rhs); err != nil {
				return err
			}
			fieldSym := te.Args[1].Obj.(*value.Symbol)
			c.chunk.WriteOpU16(bytecode.OpFieldStore, c.constant(value.Obj(fieldSym)), 0, 0)
			return nil
		}
	}
	sym := target.Obj.(*value.Symbol)
	if err := c.compileValue(rhs); err != nil {
		return err
	}
	if c.global {
		c.chunk.WriteOpU16(bytecode.OpGlobalStore, c.constant(value.Obj(sym)), 0, 0)
		return nil
	}
	c.chunk.WriteOpU16(bytecode.OpLocalStore, c.localSlot(sym.Name()), 0, 0)
	return nil
}

// compileCompoundAssign lowers `target op= rhs` (spec.md's `+=`/`-=`/`*=`/
// `/=`) to a load-compute-store sequence that loads and stores the target
// exactly once: a plain symbol via one Local/GlobalLoad+Store pair, a field
// via OpDup so the object is only pushed once, and an indexed target via
// three compiler-internal temp locals so target/index aren't recomputed
// between the load and the store.
func (c *Compiler) compileCompoundAssign(target value.Value, op string, rhs value.Value) error {
	dynOp, ok := binaryOps[op]
	if !ok {
		return jlerror.NewArgumentError("unsupported compound-assignment operator " + op)
	}
	if te, ok := target.Obj.(*ast.Expr); ok {
		switch te.Head.Name() {
		case ".":
			if err := c.compileValue(te.Args[0]); err != nil {
				return err
			}
			c.chunk.WriteOp(bytecode.OpDup, 0, 0)
			fieldSym := te.Args[1].Obj.(*value.Symbol)
			fieldConst := c.constant(value.Obj(fieldSym))
			c.chunk.WriteOpU16(bytecode.OpFieldLoad, fieldConst, 0, 0)
			if err := c.compileValue(rhs); err != nil {
				return err
			}
			c.chunk.WriteOp(dynOp, 0, 0)
			c.chunk.WriteOpU16(bytecode.OpFieldStore, fieldConst, 0, 0)
			return nil
		case "ref":
			tTarget, tIdx, tResult := c.tempLocal(), c.tempLocal(), c.tempLocal()
			if err := c.compileValue(te.Args[0]); err != nil {
				return err
			}
			c.chunk.WriteOpU16(bytecode.OpLocalStore, tTarget, 0, 0)
			c.chunk.WriteOp(bytecode.OpPop, 0, 0)
			if err := c.compileValue(te.Args[1]); err != nil {
				return err
			}
			c.chunk.WriteOpU16(bytecode.OpLocalStore, tIdx, 0, 0)
			c.chunk.WriteOp(bytecode.OpPop, 0, 0)

			c.chunk.WriteOpU16(bytecode.OpLocalLoad, tTarget, 0, 0)
			c.chunk.WriteOpU16(bytecode.OpLocalLoad, tIdx, 0, 0)
			c.chunk.WriteOp(bytecode.OpIndexLoadDyn, 0, 0)
			if err := c.compileValue(rhs); err != nil {
				return err
			}
			c.chunk.WriteOp(dynOp, 0, 0)
			c.chunk.WriteOpU16(bytecode.OpLocalStore, tResult, 0, 0)
			c.chunk.WriteOp(bytecode.OpPop, 0, 0)

			c.chunk.WriteOpU16(bytecode.OpLocalLoad, tTarget, 0, 0)
			c.chunk.WriteOpU16(bytecode.OpLocalLoad, tIdx, 0, 0)
			c.chunk.WriteOpU16(bytecode.OpLocalLoad, tResult, 0, 0)
			c.chunk.WriteOp(bytecode.OpIndexStoreDyn, 0, 0)
			return nil
		}
	}
	sym := target.Obj.(*value.Symbol)
	if err := c.compileSymbolRef(sym); err != nil {
		return err
	}
	if err := c.compileValue(rhs); err != nil {
		return err
	}
	c.chunk.WriteOp(dynOp, 0, 0)
	if c.global {
		c.chunk.WriteOpU16(bytecode.OpGlobalStore, c.constant(value.Obj(sym)), 0, 0)
		return nil
	}
	c.chunk.WriteOpU16(bytecode.OpLocalStore, c.localSlot(sym.Name()), 0, 0)
	return nil
}

// compileCall handles both :call (e.Args[0] is the callee Symbol) and
// :broadcast_call the same way, differing only in the opcode emitted.
func (c *Compiler) compileCall(args []value.Value, op bytecode.Opcode) error {
	if len(args) == 0 {
		return nil
	}
	callee := args[0].Obj.(*value.Symbol)
	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Obj(callee)), 0, 0)
	for _, a := range args[1:] {
		if err := c.compileValue(a); err != nil {
			return err
		}
	}
	c.chunk.WriteOpU16(op, uint16(len(args)-1), 0, 0)
	return nil
}

// compileIf emits: cond, BranchIfNot(else), then-branch, Branch(end), else.
func (c *Compiler) compileIf(args []value.Value) error {
	if err := c.compileValue(args[0]); err != nil {
		return err
	}
	branchIfNot := c.chunk.WriteOpU16(bytecode.OpBranchIfNot, 0, 0, 0)
	if err := c.compileValue(args[1]); err != nil {
		return err
	}
	branchEnd := c.chunk.WriteOpU16(bytecode.OpBranch, 0, 0, 0)
	elsePos := c.chunk.Len()
	if len(args) > 2 {
		if err := c.compileValue(args[2]); err != nil {
			return err
		}
	} else {
		c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
	}
	endPos := c.chunk.Len()
	c.chunk.PatchU16(branchIfNot, uint16(elsePos))
	c.chunk.PatchU16(branchEnd, uint16(endPos))
	return nil
}

// compileWhile implements Julia's `while` as always evaluating to `nothing`
// (spec.md: loops are statements, not expressions) — the body's value is
// always popped except for its role driving side effects.
func (c *Compiler) compileWhile(cond, body value.Value) error {
	loopStart := c.chunk.Len()
	if err := c.compileValue(cond); err != nil {
		return err
	}
	branchEnd := c.chunk.WriteOpU16(bytecode.OpBranchIfNot, 0, 0, 0)

	lp := &loopCtx{}
	c.loops = append(c.loops, lp)
	if err := c.compileValue(body); err != nil {
		return err
	}
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)
	for _, off := range lp.continueJumps {
		c.chunk.PatchU16(off, uint16(loopStart))
	}
	c.chunk.WriteOpU16(bytecode.OpBranch, uint16(loopStart), 0, 0)
	endPos := c.chunk.Len()
	c.chunk.PatchU16(branchEnd, uint16(endPos))
	for _, off := range lp.breakJumps {
		c.chunk.PatchU16(off, uint16(endPos))
	}
	c.loops = c.loops[:len(c.loops)-1]

	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
	return nil
}

// compileFor desugars `for x in iter ... end` into an index-counting while
// loop (spec.md doesn't mandate an iterator protocol for this subset): the
// iterable, current index, and length are staged in compiler-internal
// locals, and `length`/indexing do the rest.
func (c *Compiler) compileFor(varSym *value.Symbol, iter, body value.Value) error {
	tIter, tIdx, tLen := c.tempLocal(), c.tempLocal(), c.tempLocal()

	if err := c.compileValue(iter); err != nil {
		return err
	}
	c.chunk.WriteOpU16(bytecode.OpLocalStore, tIter, 0, 0)
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)

	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Int64(1)), 0, 0)
	c.chunk.WriteOpU16(bytecode.OpLocalStore, tIdx, 0, 0)
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)

	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Obj(value.Intern("length"))), 0, 0)
	c.chunk.WriteOpU16(bytecode.OpLocalLoad, tIter, 0, 0)
	c.chunk.WriteOpU16(bytecode.OpCall, 1, 0, 0)
	c.chunk.WriteOpU16(bytecode.OpLocalStore, tLen, 0, 0)
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)

	lp := &loopCtx{}
	c.loops = append(c.loops, lp)

	loopStart := c.chunk.Len()
	c.chunk.WriteOpU16(bytecode.OpLocalLoad, tIdx, 0, 0)
	c.chunk.WriteOpU16(bytecode.OpLocalLoad, tLen, 0, 0)
	c.chunk.WriteOp(bytecode.OpLe, 0, 0)
	branchEnd := c.chunk.WriteOpU16(bytecode.OpBranchIfNot, 0, 0, 0)

	c.chunk.WriteOpU16(bytecode.OpLocalLoad, tIter, 0, 0)
	c.chunk.WriteOpU16(bytecode.OpLocalLoad, tIdx, 0, 0)
	c.chunk.WriteOp(bytecode.OpIndexLoadDyn, 0, 0)
	varSlot := c.localSlot(varSym.Name())
	c.chunk.WriteOpU16(bytecode.OpLocalStore, varSlot, 0, 0)
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)

	if err := c.compileValue(body); err != nil {
		return err
	}
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)

	incrPos := c.chunk.Len()
	for _, off := range lp.continueJumps {
		c.chunk.PatchU16(off, uint16(incrPos))
	}

	c.chunk.WriteOpU16(bytecode.OpLocalLoad, tIdx, 0, 0)
	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Int64(1)), 0, 0)
	c.chunk.WriteOp(bytecode.OpAddDyn, 0, 0)
	c.chunk.WriteOpU16(bytecode.OpLocalStore, tIdx, 0, 0)
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)
	c.chunk.WriteOpU16(bytecode.OpBranch, uint16(loopStart), 0, 0)

	endPos := c.chunk.Len()
	c.chunk.PatchU16(branchEnd, uint16(endPos))
	for _, off := range lp.breakJumps {
		c.chunk.PatchU16(off, uint16(endPos))
	}
	c.loops = c.loops[:len(c.loops)-1]

	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
	return nil
}

func (c *Compiler) compileBreak() error {
	if len(c.loops) == 0 {
		return jlerror.NewArgumentError("break outside loop")
	}
	lp := c.loops[len(c.loops)-1]
	off := c.chunk.WriteOpU16(bytecode.OpBranch, 0, 0, 0)
	lp.breakJumps = append(lp.breakJumps, off)
	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
	return nil
}

func (c *Compiler) compileContinue() error {
	if len(c.loops) == 0 {
		return jlerror.NewArgumentError("continue outside loop")
	}
	lp := c.loops[len(c.loops)-1]
	off := c.chunk.WriteOpU16(bytecode.OpBranch, 0, 0, 0)
	lp.continueJumps = append(lp.continueJumps, off)
	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
	return nil
}

// compileTry lowers `try/catch/finally` into a Chunk.Handlers entry plus the
// catch/finally bytecode placed sequentially after the try block, so both
// the try block's normal completion and a caught exception's resumption
// fall straight through into the finally code (spec.md §7). When no
// `catch` clause was written at all (catchBlockV is the TagNothing zero
// Value — see internal/parser's parseTry), no handler is registered, so an
// exception in the try block still propagates past this frame and the
// finally block is skipped in that path. With a catch clause, finally runs
// after the try block completes normally and after a caught exception's
// catch block completes; an exception raised inside the catch block itself
// propagates without running finally.
func (c *Compiler) compileTry(args []value.Value) error {
	tryBlockV, catchVarV, catchBlockV, finallyBlockV := args[0], args[1], args[2], args[3]
	hasCatch := catchBlockV.Tag != value.TagNothing

	tryStart := c.chunk.Len()
	if err := c.compileValue(tryBlockV); err != nil {
		return err
	}
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)
	tryEnd := c.chunk.Len()

	var branchPastCatch, handlerPC int
	catchLocal := -1
	if hasCatch {
		branchPastCatch = c.chunk.WriteOpU16(bytecode.OpBranch, 0, 0, 0)
		handlerPC = c.chunk.Len()
		if sym, ok := catchVarV.Obj.(*value.Symbol); ok {
			catchLocal = int(c.localSlot(sym.Name()))
		}
		if err := c.compileValue(catchBlockV); err != nil {
			return err
		}
		c.chunk.WriteOp(bytecode.OpPop, 0, 0)
	}

	finallyPos := c.chunk.Len()
	if hasCatch {
		c.chunk.PatchU16(branchPastCatch, uint16(finallyPos))
	}
	if err := c.compileValue(finallyBlockV); err != nil {
		return err
	}
	c.chunk.WriteOp(bytecode.OpPop, 0, 0)

	if hasCatch {
		c.chunk.AddHandler(bytecode.HandlerEntry{
			TryStart: tryStart, TryEnd: tryEnd, HandlerPC: handlerPC,
			CatchLocal: catchLocal, FinallyPC: -1,
		})
	}

	c.chunk.WriteOpU16(bytecode.OpConstLoad, c.constant(value.Value{Tag: value.TagNothing}), 0, 0)
	return nil
}

// compileFunctionDef lowers `function name(params...) [where T...] body end`
// (and its short-form-desugared equivalent) into a MethodSpec constant plus
// an OpDefineMethod — the method table itself is VM state, so registration
// has to happen when execution reaches this point, not at compile time.
func (c *Compiler) compileFunctionDef(args []value.Value) error {
	fnName := args[0].Obj.(*value.Symbol)
	paramsExpr := args[1].Obj.(*ast.Expr)
	whereV := args[2]
	bodyV := args[3]

	whereNames := map[string]bool{}
	var whereVars []types.TypeVar
	if we, ok := whereV.Obj.(*ast.Expr); ok {
		for _, v := range we.Args {
			sym := v.Obj.(*value.Symbol)
			whereNames[sym.Name()] = true
			whereVars = append(whereVars, types.TypeVar{Name: sym.Name()})
		}
	}

	resolveType := func(typeSym *value.Symbol) types.Type {
		if typeSym == nil {
			return types.Any
		}
		if whereNames[typeSym.Name()] {
			return types.TypeVar{Name: typeSym.Name()}
		}
		if t, ok := types.Lookup(typeSym.Name()); ok {
			return t
		}
		return types.Any
	}

	var params []method.Param
	var paramNames []string
	var paramTypes []types.Type
	variadic := false
	var variadicType types.Type
	typeOccur := map[string]int{}

	for i, pv := range paramsExpr.Args {
		pe := pv.Obj.(*ast.Expr)
		pname := pe.Args[0].Obj.(*value.Symbol)
		var typeSym *value.Symbol
		if len(pe.Args) > 1 {
			typeSym = pe.Args[1].Obj.(*value.Symbol)
		}
		t := resolveType(typeSym)
		if tv, ok := t.(types.TypeVar); ok {
			typeOccur[tv.Name]++
		}
		isLast := i == len(paramsExpr.Args)-1
		if pe.Head.Name() == "vparam" && isLast {
			variadic = true
			variadicType = t
			paramNames = append(paramNames, pname.Name())
			paramTypes = append(paramTypes, nil)
			continue
		}
		params = append(params, method.Param{Name: pname.Name(), Type: t})
		paramNames = append(paramNames, pname.Name())
		if ct, ok := t.(*types.DataType); ok {
			paramTypes = append(paramTypes, ct)
		} else {
			paramTypes = append(paramTypes, nil)
		}
	}

	diagonal := map[string]bool{}
	for name, n := range typeOccur {
		diagonal[name] = n >= 2
	}

	bodyChunk, err := CompileMethodBody(c.chunk.File, bodyV.Obj.(*ast.Expr), paramNames, paramTypes)
	if err != nil {
		return err
	}

	spec := &MethodSpec{
		Name: fnName.Name(), Params: params, Variadic: variadic, VariadicType: variadicType,
		WhereVars: whereVars, Diagonal: diagonal, ParamNames: paramNames, Chunk: bodyChunk,
	}
	c.chunk.WriteOpU16(bytecode.OpDefineMethod, c.constant(value.Obj(spec)), 0, 0)
	return nil
}

// compileStructDef lowers `[mutable] struct Name field[::Type]* end` into a
// StructSpec constant plus an OpDefineStruct — registering the type and its
// default constructor is runtime state the same way method definitions are.
func (c *Compiler) compileStructDef(args []value.Value) error {
	mutable := args[0].AsBool()
	name := args[1].Obj.(*value.Symbol).Name()
	fieldsExpr := args[2].Obj.(*ast.Expr)

	var fieldNames []string
	var fieldTypes []types.Type
	for _, fv := range fieldsExpr.Args {
		switch fo := fv.Obj.(type) {
		case *value.Symbol:
			fieldNames = append(fieldNames, fo.Name())
			fieldTypes = append(fieldTypes, types.Any)
		case *ast.Expr: // "::"
			sym := fo.Args[0].Obj.(*value.Symbol)
			typeSym := fo.Args[1].Obj.(*value.Symbol)
			t, ok := types.Lookup(typeSym.Name())
			if !ok {
				t = types.Any
			}
			fieldNames = append(fieldNames, sym.Name())
			fieldTypes = append(fieldTypes, t)
		}
	}
	dt := types.NewConcrete(name, types.Any, fieldNames, fieldTypes, mutable)
	c.chunk.WriteOpU16(bytecode.OpDefineStruct, c.constant(value.Obj(&StructSpec{Type: dt})), 0, 0)
	return nil
}
