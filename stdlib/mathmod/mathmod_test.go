package mathmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satori-lang/satori/value"
)

type fakeBinder struct {
	bound map[string]value.NativeFunc
}

func (b *fakeBinder) Bind(name string, fn value.NativeFunc) { b.bound[name] = fn }

func newFakeBinder() *fakeBinder { return &fakeBinder{bound: make(map[string]value.NativeFunc)} }

func TestRegisterBindsAllFive(t *testing.T) {
	b := newFakeBinder()
	Register(b)
	for _, name := range []string{"math.abs", "math.floor", "math.ceil", "math.max", "math.min"} {
		assert.Contains(t, b.bound, name)
	}
}

func TestAbs(t *testing.T) {
	b := newFakeBinder()
	Register(b)
	result, err := b.bound["math.abs"]([]value.Value{value.FloatValue(-3.5)})
	require.NoError(t, err)
	assert.Equal(t, value.FloatValue(3.5), result)
}

func TestFloorAndCeil(t *testing.T) {
	b := newFakeBinder()
	Register(b)
	floor, err := b.bound["math.floor"]([]value.Value{value.FloatValue(1.9)})
	require.NoError(t, err)
	assert.Equal(t, value.FloatValue(1), floor)

	ceil, err := b.bound["math.ceil"]([]value.Value{value.FloatValue(1.1)})
	require.NoError(t, err)
	assert.Equal(t, value.FloatValue(2), ceil)
}

func TestMaxMinAcceptIntOperands(t *testing.T) {
	b := newFakeBinder()
	Register(b)
	max, err := b.bound["math.max"]([]value.Value{value.IntValue(3), value.IntValue(7)})
	require.NoError(t, err)
	assert.Equal(t, value.FloatValue(7), max)

	min, err := b.bound["math.min"]([]value.Value{value.IntValue(3), value.IntValue(7)})
	require.NoError(t, err)
	assert.Equal(t, value.FloatValue(3), min)
}

func TestArityErrors(t *testing.T) {
	b := newFakeBinder()
	Register(b)
	_, err := b.bound["math.abs"](nil)
	require.Error(t, err)
	var arity ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, "abs", arity.Name)
	assert.Equal(t, 1, arity.Want)
	assert.Equal(t, 0, arity.Got)
}

func TestTypeErrorOnNonNumeric(t *testing.T) {
	b := newFakeBinder()
	Register(b)
	_, err := b.bound["math.abs"]([]value.Value{value.StringValue("x")})
	require.Error(t, err)
	var typeErr TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, value.String, typeErr.Kind)
}
