// Package vm executes a compiled chunk. Instruction dispatch is a switch
// over the opcode byte, and any failure halts execution by panicking a
// haltError that Run recovers at the top level -- the same halt-by-panic
// convention as the teacher's own exec/step loop (internals.go), which
// panics a vmHaltError from vm.halt and lets the top-level caller recover
// it, rather than threading an error return through every opcode handler.
package vm

import (
	"context"
	"fmt"

	"github.com/satori-lang/satori/internal/panicerr"
	"github.com/satori-lang/satori/module"
	"github.com/satori-lang/satori/opcode"
	"github.com/satori-lang/satori/strtab"
	"github.com/satori-lang/satori/value"
)

const (
	stackCapacity  = 256
	localsCapacity = 256
)

// StackOverflowError is raised when a push would exceed stackCapacity.
type StackOverflowError struct{}

func (StackOverflowError) Error() string { return "vm: stack overflow" }

// StackUnderflowError is raised when a pop is attempted on an empty stack.
type StackUnderflowError struct{}

func (StackUnderflowError) Error() string { return "vm: stack underflow" }

// UnknownOpcodeError is raised when the cursor lands on a byte that is not
// a defined opcode.
type UnknownOpcodeError struct{ Op byte }

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("vm: unknown opcode %#02x", e.Op)
}

// UndefinedGlobalError is raised reading an unbound global (a qualified
// native name that was never registered by an imported module).
type UndefinedGlobalError struct{ Name string }

func (e UndefinedGlobalError) Error() string {
	return fmt.Sprintf("vm: undefined global %q", e.Name)
}

// TypeError is raised when an opcode's operand values have the wrong kind
// for the operation (e.g. negating a string).
type TypeError struct {
	Op       string
	Operands []value.Kind
}

func (e TypeError) Error() string {
	return fmt.Sprintf("vm: type error in %s: operands %v", e.Op, e.Operands)
}

// DivisionByZeroError is raised by OP_DIV or OP_MOD on a zero divisor.
type DivisionByZeroError struct{}

func (DivisionByZeroError) Error() string { return "vm: division by zero" }

// UnknownModuleError is raised by OP_IMPORT for a name with no registered
// initializer.
type UnknownModuleError struct{ Name string }

func (e UnknownModuleError) Error() string {
	return fmt.Sprintf("vm: unknown module %q", e.Name)
}

// NativeError wraps an error returned by a native function call.
type NativeError struct{ Err error }

func (e NativeError) Error() string {
	return fmt.Sprintf("vm: native call failed: %v", e.Err)
}

func (e NativeError) Unwrap() error { return e.Err }

// InvalidCalleeError is raised when OP_CALL_NATIVE's callee slot does not
// hold a native function value.
type InvalidCalleeError struct{ Kind value.Kind }

func (e InvalidCalleeError) Error() string {
	return fmt.Sprintf("vm: call target is not a native function (got %s)", e.Kind)
}

// MemLimitError is raised when a local slot at or beyond an embedder's
// WithMemLimit bound is declared, mirroring the teacher's memLimitError
// over memcore's address space.
type MemLimitError struct{ Slot, Limit int }

func (e MemLimitError) Error() string {
	return fmt.Sprintf("vm: local slot %d exceeds mem limit %d", e.Slot, e.Limit)
}

// haltError is what the VM panics with on any failure; Run recovers it at
// the top level, the same shape as the teacher's vmHaltError.
type haltError struct{ err error }

func (h haltError) Error() string {
	if h.err != nil {
		return fmt.Sprintf("vm halted: %v", h.err)
	}
	return "vm halted"
}

func (h haltError) Unwrap() error { return h.err }

func (vm *VM) halt(err error) {
	panic(haltError{err})
}

// Chunk is the minimal surface the VM needs to execute compiled output,
// declared independently of compiler.Chunk so vm does not need to import
// compiler just to run what it produces.
type Chunk struct {
	Code      []byte
	Constants []value.Value
}

// Option configures a VM at construction.
type Option interface{ apply(vm *VM) }

type registryOption struct{ reg *module.Registry }

func (o registryOption) apply(vm *VM) { vm.modules = o.reg }

// WithRegistry overrides the VM's module registry, used by tests that
// install fake native modules instead of the built-in stdlib ones.
func WithRegistry(reg *module.Registry) Option { return registryOption{reg} }

type memLimitOption int

func (o memLimitOption) apply(vm *VM) { vm.memLimit = int(o) }

// WithMemLimit caps the number of local slots a program may declare,
// mirroring the teacher's own WithMemLimit over its flat memory array.
// It is not exposed as a CLI flag (the spec fixes localsCapacity at 256
// and does not expose a configurable limit at that boundary); it exists
// for embedders linking the vm package directly. A limit of 0 (the
// default) means unlimited, bounded only by localsCapacity.
func WithMemLimit(limit int) Option { return memLimitOption(limit) }

// VM executes one compiled Chunk. It owns its globals table (qualified
// native names) and loaded-modules set; neither is shared across VM
// instances. User variables live entirely in the flat locals array: the
// spec's globals table is reserved for natives bound by module
// initializers.
type VM struct {
	chunk *Chunk
	ip    int

	stack [stackCapacity]value.Value
	sp    int

	locals      [localsCapacity]value.Value
	localsCount int

	globals *strtab.Table
	strings *strtab.Table
	modules *module.Registry

	memLimit int
}

// New constructs a VM. If no WithRegistry option is given, a registry with
// no built-in modules is used; callers normally pass the stdlib registry
// built by cmd/satori's wiring.
func New(opts ...Option) *VM {
	vm := &VM{
		globals: strtab.New(),
		strings: strtab.New(),
		modules: module.NewRegistry(),
	}
	for _, opt := range opts {
		opt.apply(vm)
	}
	return vm
}

// Bind implements module.Binder by storing fn under name in the VM's
// globals table, the calling convention a module Initializer uses to
// register its natives.
func (vm *VM) Bind(qualifiedName string, fn value.NativeFunc) {
	vm.globals.Set(qualifiedName, value.NativeValue(fn))
}

func (vm *VM) push(v value.Value) {
	if vm.sp >= stackCapacity {
		vm.halt(StackOverflowError{})
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	if vm.sp == 0 {
		vm.halt(StackUnderflowError{})
	}
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(depth int) value.Value {
	if vm.sp-1-depth < 0 {
		vm.halt(StackUnderflowError{})
	}
	return vm.stack[vm.sp-1-depth]
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() int {
	hi := vm.readByte()
	lo := vm.readByte()
	return int(hi)<<8 | int(lo)
}

// readConstant implements READ_CONSTANT: a pool lookup by one-byte index.
// String constants are interned through vm.strings on load, so OP_EQUAL on
// two string values that came from equal literals reduces to a plain Go
// string compare (see the equality expansion in the engineering spec).
func (vm *VM) readConstant() value.Value {
	idx := vm.readByte()
	c := vm.chunk.Constants[idx]
	if c.Kind == value.String {
		c.S = vm.strings.Intern(c.S)
	}
	return c
}

// Run executes chunk to completion (OP_HALT) or until ctx is done,
// recovering any halt into a returned error rather than letting it
// propagate as a panic -- the same panicerr.Recover wrapping the teacher
// uses around its own exec(ctx) loop in api.go.
func (vm *VM) Run(ctx context.Context, chunk *Chunk) error {
	vm.chunk = chunk
	vm.ip = 0
	vm.sp = 0

	err := panicerr.Recover("vm.Run", func() error {
		return vm.loop(ctx)
	})
	if err == nil {
		return nil
	}
	if h, ok := err.(haltError); ok {
		return h.err
	}
	return err
}

func (vm *VM) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		op := opcode.Op(vm.readByte())
		if op == opcode.Halt {
			return nil
		}
		vm.dispatch(op)
	}
}

func (vm *VM) dispatch(op opcode.Op) {
	switch op {
	case opcode.Constant:
		vm.push(vm.readConstant())

	case opcode.Pop:
		vm.pop()

	case opcode.GetLocal:
		slot := int(vm.readByte())
		vm.push(vm.locals[slot])

	case opcode.SetLocal:
		slot := int(vm.readByte())
		if vm.memLimit != 0 && slot >= vm.memLimit {
			vm.halt(MemLimitError{Slot: slot, Limit: vm.memLimit})
		}
		vm.locals[slot] = vm.pop()
		if slot >= vm.localsCount {
			vm.localsCount = slot + 1
		}

	case opcode.GetGlobal:
		name := vm.readConstant()
		v, ok := vm.globals.Get(name.S)
		if !ok {
			vm.halt(UndefinedGlobalError{Name: name.S})
		}
		vm.push(v.(value.Value))

	case opcode.Import:
		name := vm.readConstant()
		if err := vm.modules.Load(name.S, vm); err != nil {
			if unk, ok := err.(module.UnknownModuleError); ok {
				vm.halt(UnknownModuleError{Name: unk.Name})
			}
			vm.halt(err)
		}

	case opcode.CallNative:
		vm.execCallNative(int(vm.readByte()))

	case opcode.Add, opcode.Sub, opcode.Mul:
		vm.execArith(op)

	case opcode.Div:
		vm.execDiv()

	case opcode.Mod:
		vm.execMod()

	case opcode.Negate:
		vm.execNegate()

	case opcode.Not:
		v := vm.pop()
		vm.push(value.BoolValue(!v.Truthy()))

	case opcode.Equal:
		b, a := vm.pop(), vm.pop()
		vm.push(value.BoolValue(value.Equal(a, b)))

	case opcode.NotEqual:
		b, a := vm.pop(), vm.pop()
		vm.push(value.BoolValue(!value.Equal(a, b)))

	case opcode.Less, opcode.LessEqual, opcode.Greater, opcode.GreaterEqual:
		vm.execCompare(op)

	case opcode.Jump:
		offset := vm.readShort()
		vm.ip += offset

	case opcode.JumpIfFalse:
		offset := vm.readShort()
		if !vm.peek(0).Truthy() {
			vm.ip += offset
		}

	case opcode.Loop:
		offset := vm.readShort()
		vm.ip -= offset

	default:
		vm.halt(UnknownOpcodeError{Op: byte(op)})
	}
}

// execArith implements ADD/SUB/MUL: integer result when both operands are
// integers (wrapping on overflow via Go's native int64 semantics),
// otherwise both operands coerce to float.
func (vm *VM) execArith(op opcode.Op) {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumeric() || !b.IsNumeric() {
		vm.halt(TypeError{Op: op.String(), Operands: []value.Kind{a.Kind, b.Kind}})
	}

	if a.Kind == value.Int && b.Kind == value.Int {
		switch op {
		case opcode.Add:
			vm.push(value.IntValue(a.I + b.I))
		case opcode.Sub:
			vm.push(value.IntValue(a.I - b.I))
		case opcode.Mul:
			vm.push(value.IntValue(a.I * b.I))
		}
		return
	}

	af, bf := a.AsFloat(), b.AsFloat()
	switch op {
	case opcode.Add:
		vm.push(value.FloatValue(af + bf))
	case opcode.Sub:
		vm.push(value.FloatValue(af - bf))
	case opcode.Mul:
		vm.push(value.FloatValue(af * bf))
	}
}

// execDiv implements OP_DIV: always floating, regardless of operand kinds.
func (vm *VM) execDiv() {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumeric() || !b.IsNumeric() {
		vm.halt(TypeError{Op: "OP_DIV", Operands: []value.Kind{a.Kind, b.Kind}})
	}
	bf := b.AsFloat()
	if bf == 0 {
		vm.halt(DivisionByZeroError{})
	}
	vm.push(value.FloatValue(a.AsFloat() / bf))
}

// execMod implements OP_MOD: integer-only, fails on non-int operands or a
// zero divisor.
func (vm *VM) execMod() {
	b := vm.pop()
	a := vm.pop()
	if a.Kind != value.Int || b.Kind != value.Int {
		vm.halt(TypeError{Op: "OP_MOD", Operands: []value.Kind{a.Kind, b.Kind}})
	}
	if b.I == 0 {
		vm.halt(DivisionByZeroError{})
	}
	vm.push(value.IntValue(a.I % b.I))
}

func (vm *VM) execNegate() {
	a := vm.pop()
	switch a.Kind {
	case value.Int:
		vm.push(value.IntValue(-a.I))
	case value.Float:
		vm.push(value.FloatValue(-a.F))
	default:
		vm.halt(TypeError{Op: "OP_NEGATE", Operands: []value.Kind{a.Kind}})
	}
}

// execCompare implements LT/LTE/GT/GTE: both operands coerce to float.
func (vm *VM) execCompare(op opcode.Op) {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumeric() || !b.IsNumeric() {
		vm.halt(TypeError{Op: op.String(), Operands: []value.Kind{a.Kind, b.Kind}})
	}
	af, bf := a.AsFloat(), b.AsFloat()
	var result bool
	switch op {
	case opcode.Less:
		result = af < bf
	case opcode.LessEqual:
		result = af <= bf
	case opcode.Greater:
		result = af > bf
	case opcode.GreaterEqual:
		result = af >= bf
	}
	vm.push(value.BoolValue(result))
}

// execCallNative implements the native calling convention: the stack
// layout at entry is […, callee, arg1, …, argn] with argn on top. It
// peeks the callee at depth argc, invokes it with a slice over the
// argument window, then collapses the callee and its arguments off the
// stack before pushing the single returned value.
func (vm *VM) execCallNative(argc int) {
	callee := vm.peek(argc)
	if callee.Kind != value.Native {
		vm.halt(InvalidCalleeError{Kind: callee.Kind})
	}

	args := vm.stack[vm.sp-argc : vm.sp]

	result, err := callee.Native(args)
	if err != nil {
		vm.halt(NativeError{Err: err})
	}

	vm.sp -= argc + 1
	vm.push(result)
}
