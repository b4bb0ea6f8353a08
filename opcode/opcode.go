// Package opcode defines the byte-wide instruction set shared by the
// compiler (which emits it) and the VM (which dispatches it). Keeping the
// enum in its own package -- rather than nested in either compiler or vm --
// mirrors how the teacher separates its own vmCodeTable/vmCodeNames
// constants (first.go) from the dictionary-compile logic that emits them.
package opcode

// Op is a single opcode byte.
type Op byte

const (
	Constant Op = iota
	Pop
	GetLocal
	SetLocal
	GetGlobal
	CallNative
	Import
	Add
	Sub
	Mul
	Div
	Mod
	Negate
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	Not
	Jump
	JumpIfFalse
	Loop
	Halt

	count
)

var names = [count]string{
	Constant:     "OP_CONSTANT",
	Pop:          "OP_POP",
	GetLocal:     "OP_GET_LOCAL",
	SetLocal:     "OP_SET_LOCAL",
	GetGlobal:    "OP_GET_GLOBAL",
	CallNative:   "OP_CALL_NATIVE",
	Import:       "OP_IMPORT",
	Add:          "OP_ADD",
	Sub:          "OP_SUB",
	Mul:          "OP_MUL",
	Div:          "OP_DIV",
	Mod:          "OP_MOD",
	Negate:       "OP_NEGATE",
	Equal:        "OP_EQUAL",
	NotEqual:     "OP_NOT_EQUAL",
	Less:         "OP_LESS",
	LessEqual:    "OP_LESS_EQUAL",
	Greater:      "OP_GREATER",
	GreaterEqual: "OP_GREATER_EQUAL",
	Not:          "OP_NOT",
	Jump:         "OP_JUMP",
	JumpIfFalse:  "OP_JUMP_IF_FALSE",
	Loop:         "OP_LOOP",
	Halt:         "OP_HALT",
}

// operandWidths gives the number of operand bytes following each opcode
// byte, used by the compiler's emit to lay down each instruction's
// operands.
var operandWidths = [count]int{
	Constant:     1,
	Pop:          0,
	GetLocal:     1,
	SetLocal:     1,
	GetGlobal:    1,
	CallNative:   1,
	Import:       1,
	Add:          0,
	Sub:          0,
	Mul:          0,
	Div:          0,
	Mod:          0,
	Negate:       0,
	Equal:        0,
	NotEqual:     0,
	Less:         0,
	LessEqual:    0,
	Greater:      0,
	GreaterEqual: 0,
	Not:          0,
	Jump:         2,
	JumpIfFalse:  2,
	Loop:         2,
	Halt:         0,
}

// String renders the opcode's canonical C-style name (e.g. "OP_CONSTANT"),
// matching the spec's own table naming.
func (op Op) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "OP_UNKNOWN"
}

// OperandWidth returns the number of bytes following op's own opcode byte.
func (op Op) OperandWidth() int {
	if int(op) < len(operandWidths) {
		return operandWidths[op]
	}
	return 0
}

// Valid reports whether op is a defined opcode.
func (op Op) Valid() bool { return op < count }
