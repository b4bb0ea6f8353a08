package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satori-lang/satori/value"
)

type fakeBinder struct {
	bound map[string]value.NativeFunc
}

func newFakeBinder() *fakeBinder { return &fakeBinder{bound: make(map[string]value.NativeFunc)} }

func (b *fakeBinder) Bind(name string, fn value.NativeFunc) { b.bound[name] = fn }

func TestLoadRunsInitializerOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("demo", func(b Binder) {
		calls++
		b.Bind("demo.fn", func(args []value.Value) (value.Value, error) { return value.NilValue(), nil })
	})

	b := newFakeBinder()
	require.NoError(t, r.Load("demo", b))
	require.NoError(t, r.Load("demo", b))

	assert.Equal(t, 1, calls)
	assert.Contains(t, b.bound, "demo.fn")
	assert.True(t, r.IsLoaded("demo"))
}

func TestLoadUnknownModule(t *testing.T) {
	r := NewRegistry()
	err := r.Load("nope", newFakeBinder())
	require.Error(t, err)
	var unk UnknownModuleError
	require.ErrorAs(t, err, &unk)
	assert.Equal(t, "nope", unk.Name)
}

func TestNames(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(Binder) {})
	r.Register("b", func(Binder) {})
	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())
}

func TestIsLoadedFalseBeforeLoad(t *testing.T) {
	r := NewRegistry()
	r.Register("demo", func(Binder) {})
	assert.False(t, r.IsLoaded("demo"))
}
