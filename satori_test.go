// Package satori_test drives the full scanner -> parser -> compiler -> vm
// pipeline end to end, the same seeded programs documented in SPEC_FULL.md
// section 8. These are not unit tests of any one package; they exist to
// catch exactly the class of bug that a passing package-level test suite
// can still miss -- two stages individually correct but incompatible at
// their shared boundary (see the OP_POP_LOCALS fix in DESIGN.md).
package satori_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satori-lang/satori/compiler"
	"github.com/satori-lang/satori/module"
	"github.com/satori-lang/satori/parser"
	"github.com/satori-lang/satori/scanner"
	stdio "github.com/satori-lang/satori/stdlib/io"
	"github.com/satori-lang/satori/stdlib/mathmod"
	"github.com/satori-lang/satori/vm"
)

// run compiles and executes src through the real pipeline, with io.println
// and io.print writing to an in-memory buffer instead of os.Stdout.
func run(t *testing.T, src string) (stdout string, compileErr, runErr error) {
	t.Helper()

	toks := scanner.All(src)
	p := parser.New(toks)
	prog := p.Parse()
	require.NotNil(t, prog)
	if errs := p.Errors(); len(errs) > 0 {
		return "", errs[0], nil
	}

	chunk, err := compiler.New().Compile(prog)
	if err != nil {
		return "", err, nil
	}

	var buf bytes.Buffer
	reg := module.NewRegistry()
	reg.Register("io", stdio.Initializer(&buf))
	reg.Register("math", mathmod.Initializer())

	machine := vm.New(vm.WithRegistry(reg))
	runErr = machine.Run(context.Background(), &vm.Chunk{Code: chunk.Code, Constants: chunk.Constants})
	return buf.String(), nil, runErr
}

func TestSeededHello(t *testing.T) {
	src := "import io\nio.println \"Hello, World!\"\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "Hello, World!\n", out)
}

func TestSeededArithmeticPrecedence(t *testing.T) {
	src := "import io\nlet x := 2 + 3 * 4\nio.println \"{}\", x\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "14\n", out)
}

func TestSeededComparisonAndInterpolation(t *testing.T) {
	src := "import io\nlet a := 7\nlet b := 10\nio.println \"{} < {} = {}\", a, b, a < b\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "7 < 10 = true\n", out)
}

func TestSeededIfElseSelection(t *testing.T) {
	src := "import io\nlet score := 75\nif score >= 80 then\n  io.println \"B or better\"\nelse\n  io.println \"below B\"\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "below B\n", out)
}

func TestSeededWhileLoopBounds(t *testing.T) {
	// A decreasing-counter while loop from n down to 0 runs its body
	// exactly n times; n is 4 here.
	src := "import io\nlet n := 4\nwhile n > 0 then\n  io.println \"{}\", n\n  n = n - 1\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "4\n3\n2\n1\n", out)
}

func TestSeededDivisionByZero(t *testing.T) {
	src := "let x := 5 / 0\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr, "division by zero is a runtime failure, not a compile error")
	require.Error(t, runErr)
	var divErr vm.DivisionByZeroError
	assert.ErrorAs(t, runErr, &divErr)
	assert.Empty(t, out, "no output should precede the diagnostic")
}

func TestSeededUndefinedVariable(t *testing.T) {
	src := "import io\nio.println y\n"
	out, compileErr, _ := run(t, src)
	require.Error(t, compileErr)
	var undef compiler.UndefinedVariableError
	require.ErrorAs(t, compileErr, &undef)
	assert.Equal(t, "y", undef.Name)
	assert.Empty(t, out, "no opcodes should execute on a compile error")
}

func TestSeededModuleIdempotence(t *testing.T) {
	src := "import io\nimport io\nio.println \"ok\"\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "ok\n", out)
}

func TestSeededBreakContinue(t *testing.T) {
	src := "import io\nlet i := 0\nloop\n  i = i + 1\n  if i == 3 then\n    continue\n  if i >= 5 then\n    break\n  io.println \"{}\", i\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "1\n2\n4\n", out)
}

func TestSeededMathModule(t *testing.T) {
	src := "import io\nimport math\nio.println \"{}\", math.max 3, 7\n"
	out, compileErr, runErr := run(t, src)
	require.NoError(t, compileErr)
	require.NoError(t, runErr)
	assert.Equal(t, "7\n", out)
}
