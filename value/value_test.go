package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", NilValue(), false},
		{"false", BoolValue(false), false},
		{"true", BoolValue(true), true},
		{"zero int", IntValue(0), true},
		{"nonzero int", IntValue(1), true},
		{"zero float", FloatValue(0), true},
		{"nonzero float", FloatValue(0.5), true},
		{"empty string", StringValue(""), true},
		{"nonempty string", StringValue("x"), true},
		{"native", NativeValue(func(args []Value) (Value, error) { return NilValue(), nil }), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.v.Truthy())
		})
	}
}

func TestAsFloat(t *testing.T) {
	assert.Equal(t, 3.0, IntValue(3).AsFloat())
	assert.Equal(t, 2.5, FloatValue(2.5).AsFloat())
}

func TestAsFloatPanicsOnNonNumeric(t *testing.T) {
	assert.Panics(t, func() { StringValue("x").AsFloat() })
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int int equal", IntValue(1), IntValue(1), true},
		{"int int differ", IntValue(1), IntValue(2), false},
		{"int float same number", IntValue(2), FloatValue(2.0), false},
		{"float int same number", FloatValue(2.0), IntValue(2), false},
		{"int float cross differ", IntValue(2), FloatValue(2.5), false},
		{"string equal", StringValue("a"), StringValue("a"), true},
		{"string differ", StringValue("a"), StringValue("b"), false},
		{"kind mismatch", StringValue("1"), IntValue(1), false},
		{"nil nil", NilValue(), NilValue(), true},
		{"bool equal", BoolValue(true), BoolValue(true), true},
		{"native never equal", NativeValue(nil), NativeValue(nil), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Equal(c.a, c.b))
		})
	}
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "nil", NilValue().String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, "42", IntValue(42).String())
	assert.Equal(t, "1.5", FloatValue(1.5).String())
	assert.Equal(t, "inf", FloatValue(math.Inf(1)).String())
	assert.Equal(t, "-inf", FloatValue(math.Inf(-1)).String())
	assert.Equal(t, "hi", StringValue("hi").String())
	assert.Equal(t, "<native>", NativeValue(nil).String())
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IntValue(1).IsNumeric())
	assert.True(t, FloatValue(1).IsNumeric())
	assert.False(t, StringValue("1").IsNumeric())
	assert.False(t, NilValue().IsNumeric())
}
