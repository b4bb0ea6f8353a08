// Package mathmod registers Satori's `math` module: abs, max, min, floor,
// and ceil. Unlike io's variadic, string-first natives, these are fixed
// arity and purely numeric, exercising the "peek callee at depth argc"
// calling convention with a shape different from io's.
package mathmod

import (
	"fmt"
	"math"

	"github.com/satori-lang/satori/module"
	"github.com/satori-lang/satori/value"
)

// ArityError is returned by a math native invoked with the wrong number
// of arguments.
type ArityError struct {
	Name string
	Want int
	Got  int
}

func (e ArityError) Error() string {
	return fmt.Sprintf("math.%s: expected %d argument(s), got %d", e.Name, e.Want, e.Got)
}

// TypeError is returned when a math native's argument is not numeric.
type TypeError struct {
	Name string
	Kind value.Kind
}

func (e TypeError) Error() string {
	return fmt.Sprintf("math.%s: expected a numeric argument, got %s", e.Name, e.Kind)
}

// Register installs math.abs, math.max, math.min, math.floor, and
// math.ceil into b.
func Register(b module.Binder) {
	b.Bind("math.abs", unary("abs", math.Abs))
	b.Bind("math.floor", unary("floor", math.Floor))
	b.Bind("math.ceil", unary("ceil", math.Ceil))
	b.Bind("math.max", binary("max", math.Max))
	b.Bind("math.min", binary("min", math.Min))
}

// Initializer returns a module.Initializer for wiring into a
// module.Registry at VM construction time.
func Initializer() module.Initializer { return Register }

func unary(name string, fn func(float64) float64) value.NativeFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, ArityError{Name: name, Want: 1, Got: len(args)}
		}
		x, ok := asFloat(args[0])
		if !ok {
			return value.Value{}, TypeError{Name: name, Kind: args[0].Kind}
		}
		return value.FloatValue(fn(x)), nil
	}
}

func binary(name string, fn func(float64, float64) float64) value.NativeFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, ArityError{Name: name, Want: 2, Got: len(args)}
		}
		a, ok := asFloat(args[0])
		if !ok {
			return value.Value{}, TypeError{Name: name, Kind: args[0].Kind}
		}
		b, ok := asFloat(args[1])
		if !ok {
			return value.Value{}, TypeError{Name: name, Kind: args[1].Kind}
		}
		return value.FloatValue(fn(a, b)), nil
	}
}

func asFloat(v value.Value) (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	return v.AsFloat(), true
}
