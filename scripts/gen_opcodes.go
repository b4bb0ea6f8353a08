// Command gen_opcodes regenerates opcode/isa_gen.go's disassembly table
// from the Op const block in opcode/opcode.go, the same
// scan-source-emit-source shape as the teacher's own
// scripts/gen_vm_expects.go, piped through goimports under a
// context-bounded errgroup pipeline instead of gofmt directly.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

type namedReader interface {
	io.ReadCloser
	Name() string
}

var (
	in  namedReader    = os.Stdin
	out io.WriteCloser = os.Stdout
)

func parseFlags() {
	flag.Parse()

	args := flag.Args()

	if len(args) > 0 {
		name := args[0]
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("failed to open %v: %v", name, err)
		}
		args = args[1:]
		in = f
	}

	if len(args) > 0 {
		name := args[0]
		f, err := os.Create(name)
		if err != nil {
			log.Fatalf("failed to create %v: %v", name, err)
		}
		args = args[1:]
		out = f
	}
}

func main() {
	ctx := context.Background()
	parseFlags()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	ready := make(chan struct{})

	eg.Go(func() error {
		goimports := exec.CommandContext(ctx, "goimports")
		fmtPipe, err := goimports.StdinPipe()
		if err != nil {
			return err
		}

		defer out.Close()
		goimports.Stdout = out
		goimports.Stderr = os.Stderr

		out = fmtPipe

		close(ready)
		if err := goimports.Run(); err != nil {
			return fmt.Errorf("goimports run failed: %w", err)
		}
		return nil
	})

	eg.Go(func() (rerr error) {
		select {
		case <-ctx.Done():
		case <-ready:
		}

		defer func() {
			if cerr := in.Close(); rerr == nil {
				rerr = cerr
			}
			if cerr := out.Close(); rerr == nil {
				rerr = cerr
			}
		}()

		return run(ctx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatalln(err)
	}
}

// opName matches one bare identifier line inside the Op const ( ... )
// block in opcode/opcode.go, e.g. "\tConstant" or "\tJumpIfFalse".
var opName = regexp.MustCompile(`^\t([A-Z][A-Za-z]*)$`)

// run scans the Op const block from in and emits a generated Go file
// declaring isaOrder, every Op name in declaration order (the first one
// taken from the "Op = iota" line, the rest from opName matches), kept
// separate from opcode.go's hand-written name/operandWidths arrays
// so regenerating it can never silently diverge from their declaration
// order without a visible diff.
func run(ctx context.Context) error {
	var buf bytes.Buffer
	buf.Grow(1024)
	buf.WriteString("package opcode\n\n")
	buf.WriteString("// @generated from ")
	buf.WriteString(in.Name())
	buf.WriteString(" -- do not edit by hand, run gen_opcodes.go instead.\n\n")

	buf.WriteString("// isaOrder lists every Op in the order it was declared, for tools\n")
	buf.WriteString("// (disassemblers, the gen_opcodes generator itself) that want to walk\n")
	buf.WriteString("// the instruction set without depending on the const block's layout.\n")
	buf.WriteString("var isaOrder = []Op{\n")

	inBlock := false
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case bytes.Contains([]byte(line), []byte("Op = iota")):
			inBlock = true
			if f := bytes.Fields([]byte(line)); len(f) > 0 {
				fmt.Fprintf(&buf, "\t%s,\n", f[0])
			}
			continue
		case inBlock && line == ")":
			inBlock = false
		case inBlock:
			if match := opName.FindStringSubmatch(line); match != nil {
				fmt.Fprintf(&buf, "\t%s,\n", match[1])
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	buf.WriteString("}\n")

	_, err := buf.WriteTo(out)
	return err
}
