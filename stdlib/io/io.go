// Package io registers Satori's `io` module: println and print, the two
// natives every seeded example program exercises. Output goes to an
// injected io.Writer rather than directly to os.Stdout, the same
// indirection the teacher's own runeio/flushio packages use to keep the
// VM's natives testable without touching a real file descriptor.
package io

import (
	"fmt"
	"io"
	"strings"

	"github.com/satori-lang/satori/module"
	"github.com/satori-lang/satori/value"
)

// Register installs io.println and io.print into b, writing to w.
func Register(b module.Binder, w io.Writer) {
	b.Bind("io.println", func(args []value.Value) (value.Value, error) {
		fmt.Fprint(w, render(args))
		fmt.Fprintln(w)
		return value.NilValue(), nil
	})
	b.Bind("io.print", func(args []value.Value) (value.Value, error) {
		fmt.Fprint(w, render(args))
		return value.NilValue(), nil
	})
}

// Initializer returns a module.Initializer bound to w, for wiring into a
// module.Registry at VM construction time.
func Initializer(w io.Writer) module.Initializer {
	return func(b module.Binder) { Register(b, w) }
}

// render implements the `{}`-interpolation rule: if the first argument is
// a string and more than one argument was given, each `{}` in order is
// replaced by the next remaining argument's rendering; otherwise the
// first argument (if any) is rendered directly.
func render(args []value.Value) string {
	if len(args) == 0 {
		return ""
	}
	if len(args) > 1 && args[0].Kind == value.String {
		return interpolate(args[0].S, args[1:])
	}
	return args[0].String()
}

func interpolate(format string, rest []value.Value) string {
	var b strings.Builder
	i := 0
	for {
		at := strings.Index(format, "{}")
		if at < 0 || i >= len(rest) {
			b.WriteString(format)
			return b.String()
		}
		b.WriteString(format[:at])
		b.WriteString(rest[i].String())
		format = format[at+2:]
		i++
	}
}
