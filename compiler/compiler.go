// Package compiler performs a single pass over an AST, emitting a bytecode
// Chunk: an opcode byte stream plus a parallel constant pool. Locals are
// resolved to local-array slots at compile time; forward and backward jumps are
// patched once their target address is known, in the mold of the pack's
// ugo/funxy compilers (their enterLoop/leaveLoop loop-context stack and
// changeOperand jump-patch helpers) rather than the teacher's own
// dictionary-threaded-code compiler, which has no jumps to patch at all.
package compiler

import (
	"fmt"

	"github.com/satori-lang/satori/ast"
	"github.com/satori-lang/satori/opcode"
	"github.com/satori-lang/satori/value"
)

const (
	maxConstants = 256
	maxLocals    = 256
)

// ConstantOverflowError is returned when a chunk would need more than 256
// distinct constants.
type ConstantOverflowError struct{}

func (ConstantOverflowError) Error() string { return "compiler: constant pool overflow (limit 256)" }

// LocalOverflowError is returned when a chunk would need more than 256
// live local slots.
type LocalOverflowError struct{ Name string }

func (e LocalOverflowError) Error() string {
	return fmt.Sprintf("compiler: too many locals (limit 256), declaring %q", e.Name)
}

// UndefinedVariableError is returned when an identifier resolves to no
// declared local in this chunk.
type UndefinedVariableError struct{ Name string }

func (e UndefinedVariableError) Error() string {
	return fmt.Sprintf("compiler: undefined variable %q", e.Name)
}

// UnknownCalleeError is returned when a call's callee is not a recognized
// `module.member` native reference.
type UnknownCalleeError struct{ Callee string }

func (e UnknownCalleeError) Error() string {
	return fmt.Sprintf("compiler: unknown callee %q", e.Callee)
}

// JumpRangeError is returned when a jump offset does not fit the 16-bit
// operand.
type JumpRangeError struct{ Offset int }

func (e JumpRangeError) Error() string {
	return fmt.Sprintf("compiler: jump offset %d out of 16-bit range", e.Offset)
}

// CompileError wraps an error with the source position of the AST node
// being compiled when it occurred.
type CompileError struct {
	Line, Column int
	Err          error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Local tracks one declared local variable's stack slot. The locals array
// is otherwise flat: there is a single function-wide scope, as the core
// has no nested functions. Block scoping (if/while/loop bodies) is a
// compile-time-only mark-and-rewind over this slice -- see compileBlock --
// with no runtime counterpart, since OP_SET_LOCAL's pop-on-store leaves no
// stack residue for a scope exit to clean up.
type Local struct {
	Name string
}

// loopContext tracks the state needed to compile break/continue within one
// enclosing loop: a continue target address, plus pending break jump sites
// patched once the loop's end address is known. Grounded on the uGo
// compiler's loopStmts (other_examples/4455036b_ozanh-ugo__compiler.go.go).
type loopContext struct {
	start        int
	breakPatches []int
}

// Chunk is the compiled output: an opcode byte stream and its constant
// pool, plus the import set the compiler discovered.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Imports   []string
}

// Option configures a Compiler at construction.
type Option interface{ apply(c *Compiler) }

// Compiler performs the single-pass AST-to-bytecode translation.
type Compiler struct {
	chunk Chunk

	locals []Local

	loops []*loopContext

	constCache map[constKey]int
}

// constKey is a comparable projection of value.Value suitable as a map
// key -- value.Value itself embeds a NativeFunc field, and func types are
// not comparable, so Value cannot be used as a map key directly.
type constKey struct {
	kind value.Kind
	i    int64
	f    float64
	s    string
}

func keyOf(v value.Value) constKey {
	return constKey{kind: v.Kind, i: v.I, f: v.F, s: v.S}
}

// New constructs a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		constCache: make(map[constKey]int),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// Compile translates an entire program into a Chunk.
func (c *Compiler) Compile(prog *ast.Program) (*Chunk, error) {
	for _, stmt := range prog.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
	}
	c.emit(opcode.Halt)
	return &c.chunk, nil
}

func (c *Compiler) errAt(n ast.Node, err error) error {
	line, col := n.Pos()
	return &CompileError{Line: line, Column: col, Err: err}
}

// compileStmt compiles a node appearing in statement position. Statement
// forms that produce no net stack effect on their own (import, let,
// assignment, control flow, calls — which discard their own return value)
// are dispatched straight through. Any other node reaching statement
// position is a bare expression statement; its value is computed and then
// discarded with OP_POP so the stack stays balanced across statements.
func (c *Compiler) compileStmt(n ast.Node) error {
	switch node := n.(type) {
	case *ast.Import, *ast.Let, *ast.Assignment,
		*ast.If, *ast.While, *ast.Loop, *ast.Break, *ast.Continue,
		*ast.Block:
		return c.compileNode(n)

	case *ast.Call:
		if err := c.compileCallValue(node); err != nil {
			return err
		}
		c.emit(opcode.Pop)
		return nil

	case *ast.MemberAccess:
		return c.errAt(n, fmt.Errorf("compiler: member access must be used in a call"))

	default:
		if err := c.compileNode(n); err != nil {
			return err
		}
		c.emit(opcode.Pop)
		return nil
	}
}

// compileNode compiles a node in expression position; on success it has
// left exactly one value on the stack (except for the statement forms
// reached only via compileStmt's direct passthrough, which are net-zero).
func (c *Compiler) compileNode(n ast.Node) error {
	switch node := n.(type) {
	case *ast.Block:
		return c.compileBlock(node)

	case *ast.Import:
		c.chunk.Imports = append(c.chunk.Imports, node.Module)
		idx, err := c.addConstant(value.StringValue(node.Module))
		if err != nil {
			return c.errAt(node, err)
		}
		c.emit(opcode.Import, idx)
		return nil

	case *ast.Let:
		if err := c.compileNode(node.Init); err != nil {
			return err
		}
		return c.declareLocal(node, node.Name)

	case *ast.Assignment:
		if err := c.compileNode(node.Value); err != nil {
			return err
		}
		return c.resolveAndStore(node, node.Name)

	case *ast.If:
		return c.compileIf(node)

	case *ast.While:
		return c.compileWhile(node)

	case *ast.Loop:
		return c.compileLoop(node)

	case *ast.Break:
		return c.compileBreak(node)

	case *ast.Continue:
		return c.compileContinue(node)

	case *ast.BinaryExpr:
		return c.compileBinary(node)

	case *ast.UnaryExpr:
		return c.compileUnary(node)

	case *ast.Call:
		return c.compileCallValue(node)

	case *ast.MemberAccess:
		return c.errAt(node, fmt.Errorf("compiler: member access must be used in a call"))

	case *ast.Identifier:
		return c.resolveAndLoad(node, node.Name)

	case *ast.StringLiteral:
		idx, err := c.addConstant(value.StringValue(node.Value))
		if err != nil {
			return c.errAt(node, err)
		}
		c.emit(opcode.Constant, idx)
		return nil

	case *ast.IntLiteral:
		idx, err := c.addConstant(value.IntValue(node.Value))
		if err != nil {
			return c.errAt(node, err)
		}
		c.emit(opcode.Constant, idx)
		return nil

	case *ast.FloatLiteral:
		idx, err := c.addConstant(value.FloatValue(node.Value))
		if err != nil {
			return c.errAt(node, err)
		}
		c.emit(opcode.Constant, idx)
		return nil

	default:
		return fmt.Errorf("compiler: unhandled node type %T", n)
	}
}

// compileBlock opens a new local scope, compiles its statements in order,
// and drops any locals declared within it from the compiler's name table
// on exit -- the scoped-locals design adopted to support the nested block
// bodies produced by the parser's indentation-delimited blockBody.
//
// This needs no runtime opcode: OP_SET_LOCAL (per §4.3) pops the value it
// stores as part of the same instruction, so a block's locals never leave
// a net residue on the value stack regardless of how many are declared --
// there is nothing left for a scope-exit instruction to clean up. Exiting
// the scope only needs to make the names unresolvable again and let their
// slots be reused by whatever is declared next, which truncating
// c.locals back to startLocals does entirely at compile time.
func (c *Compiler) compileBlock(b *ast.Block) error {
	startLocals := len(c.locals)

	for _, stmt := range b.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}

	c.locals = c.locals[:startLocals]
	return nil
}

func (c *Compiler) addConstant(v value.Value) (int, error) {
	key := keyOf(v)
	if idx, ok := c.constCache[key]; ok {
		return idx, nil
	}
	if len(c.chunk.Constants) >= maxConstants {
		return 0, ConstantOverflowError{}
	}
	idx := len(c.chunk.Constants)
	c.chunk.Constants = append(c.chunk.Constants, v)
	c.constCache[key] = idx
	return idx, nil
}

// declareLocal implements add_local: append a new local (shadowing any
// earlier one of the same name) and emit OP_SET_LOCAL for its slot. Locals
// declared at the program's top level are indistinguishable from any other
// local at the bytecode level; they simply outlive every compileBlock call,
// since nothing ever truncates c.locals below the length it had when the
// outermost call began.
func (c *Compiler) declareLocal(n ast.Node, name string) error {
	if len(c.locals) >= maxLocals {
		return c.errAt(n, LocalOverflowError{Name: name})
	}
	slot := len(c.locals)
	c.locals = append(c.locals, Local{Name: name})
	c.emit(opcode.SetLocal, slot)
	return nil
}

// resolveLocal implements resolve_local: scan most-recent to oldest so a
// redeclaration shadows.
func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

func (c *Compiler) resolveAndLoad(n ast.Node, name string) error {
	slot, ok := c.resolveLocal(name)
	if !ok {
		return c.errAt(n, UndefinedVariableError{Name: name})
	}
	c.emit(opcode.GetLocal, slot)
	return nil
}

func (c *Compiler) resolveAndStore(n ast.Node, name string) error {
	slot, ok := c.resolveLocal(name)
	if !ok {
		return c.errAt(n, UndefinedVariableError{Name: name})
	}
	c.emit(opcode.SetLocal, slot)
	return nil
}

// compileIf follows the spec's emission rule exactly: exactly one OP_POP
// executes per run, on whichever branch is taken, removing the condition.
func (c *Compiler) compileIf(n *ast.If) error {
	if err := c.compileNode(n.Cond); err != nil {
		return err
	}
	thenJump := c.emitJump(opcode.JumpIfFalse)
	c.emit(opcode.Pop)

	if err := c.compileStmt(n.Then); err != nil {
		return err
	}

	endJump := c.emitJump(opcode.Jump)

	if err := c.patchJump(n, thenJump); err != nil {
		return err
	}
	c.emit(opcode.Pop)

	if n.Else != nil {
		if err := c.compileStmt(n.Else); err != nil {
			return err
		}
	}

	return c.patchJump(n, endJump)
}

func (c *Compiler) compileWhile(n *ast.While) error {
	loopStart := len(c.chunk.Code)
	lc := &loopContext{start: loopStart}
	c.loops = append(c.loops, lc)

	if err := c.compileNode(n.Cond); err != nil {
		return err
	}
	exitJump := c.emitJump(opcode.JumpIfFalse)
	c.emit(opcode.Pop)

	if err := c.compileStmt(n.Body); err != nil {
		return err
	}

	if err := c.emitLoop(n, loopStart); err != nil {
		return err
	}

	if err := c.patchJump(n, exitJump); err != nil {
		return err
	}
	c.emit(opcode.Pop)

	return c.leaveLoop(n, lc)
}

func (c *Compiler) compileLoop(n *ast.Loop) error {
	loopStart := len(c.chunk.Code)
	lc := &loopContext{start: loopStart}
	c.loops = append(c.loops, lc)

	if err := c.compileStmt(n.Body); err != nil {
		return err
	}
	if err := c.emitLoop(n, loopStart); err != nil {
		return err
	}

	return c.leaveLoop(n, lc)
}

func (c *Compiler) leaveLoop(n ast.Node, lc *loopContext) error {
	c.loops = c.loops[:len(c.loops)-1]
	for _, site := range lc.breakPatches {
		if err := c.patchJump(n, site); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) currentLoop() *loopContext {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

func (c *Compiler) compileBreak(n *ast.Break) error {
	lc := c.currentLoop()
	if lc == nil {
		return c.errAt(n, fmt.Errorf("compiler: break outside loop"))
	}
	lc.breakPatches = append(lc.breakPatches, c.emitJump(opcode.Jump))
	return nil
}

func (c *Compiler) compileContinue(n *ast.Continue) error {
	lc := c.currentLoop()
	if lc == nil {
		return c.errAt(n, fmt.Errorf("compiler: continue outside loop"))
	}
	return c.emitLoop(n, lc.start)
}

func (c *Compiler) compileBinary(n *ast.BinaryExpr) error {
	if err := c.compileNode(n.Left); err != nil {
		return err
	}
	if err := c.compileNode(n.Right); err != nil {
		return err
	}
	switch n.Op {
	case ast.Add:
		c.emit(opcode.Add)
	case ast.Sub:
		c.emit(opcode.Sub)
	case ast.Mul:
		c.emit(opcode.Mul)
	case ast.Div:
		c.emit(opcode.Div)
	case ast.Mod:
		c.emit(opcode.Mod)
	case ast.Eq:
		c.emit(opcode.Equal)
	case ast.Neq:
		c.emit(opcode.NotEqual)
	case ast.Lt:
		c.emit(opcode.Less)
	case ast.Lte:
		c.emit(opcode.LessEqual)
	case ast.Gt:
		c.emit(opcode.Greater)
	case ast.Gte:
		c.emit(opcode.GreaterEqual)
	default:
		return c.errAt(n, fmt.Errorf("compiler: unhandled binary operator %v", n.Op))
	}
	return nil
}

func (c *Compiler) compileUnary(n *ast.UnaryExpr) error {
	if err := c.compileNode(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case ast.Negate:
		c.emit(opcode.Negate)
	case ast.Not:
		c.emit(opcode.Not)
	default:
		return c.errAt(n, fmt.Errorf("compiler: unhandled unary operator %v", n.Op))
	}
	return nil
}

// compileCallValue handles the language's one call form: `module.member
// arg, arg, …`. The callee must be a MemberAccess naming an identifier
// (the module) and member (the native); a bare identifier callee is
// rejected since Satori has no user-defined functions. It leaves exactly
// one value on the stack, like every other compileNode case -- a bare
// call used as a statement has that value discarded by compileStmt's
// own trailing OP_POP, while a call nested inside a let initializer, a
// binary operand, or another call's argument list (e.g. `math.max 3, 7`
// passed to `io.println`) feeds it straight to its consumer instead.
func (c *Compiler) compileCallValue(n *ast.Call) error {
	member, ok := n.Callee.(*ast.MemberAccess)
	if !ok {
		return c.errAt(n, UnknownCalleeError{Callee: fmt.Sprintf("%T", n.Callee)})
	}
	object, ok := member.Object.(*ast.Identifier)
	if !ok {
		return c.errAt(n, UnknownCalleeError{Callee: fmt.Sprintf("%T", member.Object)})
	}

	qualified := object.Name + "." + member.Member
	idx, err := c.addConstant(value.StringValue(qualified))
	if err != nil {
		return c.errAt(n, err)
	}
	c.emit(opcode.GetGlobal, idx)

	for _, arg := range n.Args {
		if err := c.compileNode(arg); err != nil {
			return err
		}
	}
	if len(n.Args) > 255 {
		return c.errAt(n, fmt.Errorf("compiler: too many arguments to %q (limit 255)", qualified))
	}

	c.emit(opcode.CallNative, len(n.Args))
	return nil
}

func (c *Compiler) emit(op opcode.Op, operands ...int) int {
	pos := len(c.chunk.Code)
	c.chunk.Code = append(c.chunk.Code, byte(op))
	switch op.OperandWidth() {
	case 1:
		c.chunk.Code = append(c.chunk.Code, byte(operands[0]))
	case 2:
		c.chunk.Code = append(c.chunk.Code, byte(operands[0]>>8), byte(operands[0]))
	}
	return pos
}

// emitJump emits op followed by a placeholder 16-bit offset, returning the
// byte position of the opcode so patchJump can later fill the offset in.
func (c *Compiler) emitJump(op opcode.Op) int {
	return c.emit(op, 0xFFFF)
}

// patchJump implements patch_jump, rewriting the operand at pos (the
// opcode byte position of a jump previously emitted by emitJump) so that
// the VM's post-fetch cursor (pos+3, past the opcode and its two operand
// bytes) plus offset lands on the current end of the code stream.
func (c *Compiler) patchJump(n ast.Node, pos int) error {
	offset := len(c.chunk.Code) - pos - 3
	if offset < 0 || offset > 0xFFFF {
		return c.errAt(n, JumpRangeError{Offset: offset})
	}
	c.chunk.Code[pos+1] = byte(offset >> 8)
	c.chunk.Code[pos+2] = byte(offset)
	return nil
}

// emitLoop implements emit_loop: current_addr + 3 − target, for a backward
// jump to loopStart (the "+3" accounts for OP_LOOP's own opcode byte plus
// its two operand bytes, none of which are consumed yet when computing the
// offset that will be subtracted from the cursor at runtime).
func (c *Compiler) emitLoop(n ast.Node, loopStart int) error {
	pos := c.emit(opcode.Loop, 0xFFFF)
	offset := pos + 3 - loopStart
	if offset < 0 || offset > 0xFFFF {
		return c.errAt(n, JumpRangeError{Offset: offset})
	}
	c.chunk.Code[pos+1] = byte(offset >> 8)
	c.chunk.Code[pos+2] = byte(offset)
	return nil
}
