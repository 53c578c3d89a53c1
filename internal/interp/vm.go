// Package interp implements the lowering compiler (AST Expr -> bytecode
// Chunk) and the stack-based bytecode VM that executes it (spec.md §4.3,
// §4.2's call contract, §7's exception unwinding). Grounded on the
// teacher's internal/vm package: CallFrame/VM struct shape from vm.go,
// executeOneOp's opcode switch from vm_exec.go, and the growth-increment
// stack/frame sizing constants, all regrammared from Funxy's value model
// onto internal/value/internal/bytecode's.
package interp

import (
	"github.com/jlvm/jlvm/internal/bytecode"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/method"
	"github.com/jlvm/jlvm/internal/value"
)

const (
	initialStackSize = 2048
	maxFrameCount     = 4096
)

// CompiledBody is a Julia-level method body compiled to bytecode, the
// internal/interp half of method.Body's two concrete implementations (the
// other, method.BuiltinBody, is native Go).
type CompiledBody struct {
	method.BodyMarker
	Chunk      *bytecode.Chunk
	ParamNames []string
}

// Frame is one active call's execution state (spec.md §4.3: locals live on
// the operand stack starting at base, per the teacher's CallFrame).
type Frame struct {
	chunk *bytecode.Chunk
	ip    int
	base  int
}

// VM is the bytecode interpreter: an operand stack, a call-frame stack, a
// global variable environment, and the generic-function table every Call
// instruction dispatches through (spec.md §4.2).
type VM struct {
	stack []value.Value
	sp    int

	frames []Frame

	Globals   map[string]value.Value
	Functions map[string]*method.GenericFunction
}

func NewVM() *VM {
	vm := &VM{
		stack:     make([]value.Value, initialStackSize),
		Globals:   map[string]value.Value{},
		Functions: map[string]*method.GenericFunction{},
	}
	RegisterBuiltins(vm)
	return vm
}

func (vm *VM) push(v value.Value) {
	if vm.sp >= len(vm.stack) {
		grown := make([]value.Value, len(vm.stack)*2)
		copy(grown, vm.stack)
		vm.stack = grown
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

// Function looks up (or lazily creates) the generic function named name —
// calling an as-yet-undeclared name is how `function foo(...) ... end`'s
// first method ever gets a home in spec.md's model (methods ADD to a
// generic function; there's no separate "declare the function" step).
func (vm *VM) Function(name string) *method.GenericFunction {
	gf, ok := vm.Functions[name]
	if !ok {
		gf = method.NewGenericFunction(name)
		vm.Functions[name] = gf
	}
	return gf
}

// Run executes chunk as a fresh call frame with args bound to locals
// 0..len(args)-1, returning the value produced by OpReturn (or, if the chunk
// runs off the end into OpHalt without an explicit return, the value of its
// last expression).
func (vm *VM) Run(chunk *bytecode.Chunk, args []value.Value) (value.Value, error) {
	if len(vm.frames) >= maxFrameCount {
		return value.Value{}, jlerror.NewArgumentError("recursion limit exceeded")
	}
	base := vm.sp
	for _, a := range args {
		vm.push(a)
	}
	for i := len(args); i < chunk.NumLocals; i++ {
		vm.push(value.Value{Tag: value.TagUndef})
	}
	frame := Frame{chunk: chunk, ip: 0, base: base}
	vm.frames = append(vm.frames, frame)
	result, err := vm.execFrame()
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.sp = base
	return result, err
}

func (vm *VM) execFrame() (value.Value, error) {
	fi := len(vm.frames) - 1
	for {
		frame := &vm.frames[fi]
		chunk := frame.chunk
		if frame.ip >= chunk.Len() {
			return value.Value{Tag: value.TagNothing}, nil
		}
		op := bytecode.Opcode(chunk.Code[frame.ip])
		frame.ip++
		result, done, err := vm.step(frame, op)
		if err != nil {
			if jerr, ok := err.(jlerror.Error); ok {
				if handled, hv, herr := vm.unwind(frame, jerr); handled {
					if herr != nil {
						return value.Value{}, herr
					}
					_ = hv
					continue
				}
			}
			return value.Value{}, err
		}
		if done {
			return result, nil
		}
	}
}

// unwind searches frame.chunk's handler table for an entry whose try range
// covers the instruction that raised jerr (spec.md §7), binds the caught
// value to CatchLocal, and resumes execution at HandlerPC.
func (vm *VM) unwind(frame *Frame, jerr jlerror.Error) (handled bool, resumeVal value.Value, err error) {
	raisedAt := frame.ip - 1
	for _, h := range frame.chunk.Handlers {
		if raisedAt >= h.TryStart && raisedAt < h.TryEnd {
			if h.CatchLocal >= 0 {
				vm.stack[frame.base+h.CatchLocal] = value.Obj(jlerrObj{jerr})
			}
			frame.ip = h.HandlerPC
			return true, value.Value{}, nil
		}
	}
	return false, value.Value{}, nil
}
