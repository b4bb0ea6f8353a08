package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringAndOperandWidth(t *testing.T) {
	cases := []struct {
		op    Op
		name  string
		width int
	}{
		{Constant, "OP_CONSTANT", 1},
		{Pop, "OP_POP", 0},
		{GetLocal, "OP_GET_LOCAL", 1},
		{SetLocal, "OP_SET_LOCAL", 1},
		{GetGlobal, "OP_GET_GLOBAL", 1},
		{CallNative, "OP_CALL_NATIVE", 1},
		{Import, "OP_IMPORT", 1},
		{Add, "OP_ADD", 0},
		{Jump, "OP_JUMP", 2},
		{JumpIfFalse, "OP_JUMP_IF_FALSE", 2},
		{Loop, "OP_LOOP", 2},
		{Halt, "OP_HALT", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.name, c.op.String())
			assert.Equal(t, c.width, c.op.OperandWidth())
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Halt.Valid())
	assert.False(t, count.Valid())
	assert.False(t, Op(255).Valid())
}

func TestUnknownOpStringFallsBack(t *testing.T) {
	assert.Equal(t, "OP_UNKNOWN", Op(254).String())
}
