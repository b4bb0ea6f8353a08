// Command satori is the Satori language's CLI front end: scan, parse,
// compile, and run a source file, in the same functional-options,
// flag-package, logio-diagnostic style as the teacher's own main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/satori-lang/satori/compiler"
	"github.com/satori-lang/satori/internal/diag"
	"github.com/satori-lang/satori/module"
	"github.com/satori-lang/satori/parser"
	"github.com/satori-lang/satori/scanner"
	"github.com/satori-lang/satori/stdlib/io"
	"github.com/satori-lang/satori/stdlib/mathmod"
	"github.com/satori-lang/satori/vm"
)

const version = "satori 0.1.0"

func main() {
	var (
		showTokens  bool
		showAST     bool
		showHelp    bool
		showVersion bool
		timeout     time.Duration
	)
	flag.BoolVar(&showTokens, "t", false, "print the token stream and exit")
	flag.BoolVar(&showTokens, "tokens", false, "print the token stream and exit")
	flag.BoolVar(&showAST, "a", false, "print the parsed AST and exit")
	flag.BoolVar(&showAST, "ast", false, "print the parsed AST and exit")
	flag.BoolVar(&showHelp, "h", false, "print usage and exit")
	flag.BoolVar(&showHelp, "help", false, "print usage and exit")
	flag.BoolVar(&showVersion, "v", false, "print version and exit")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit for VM execution")
	flag.Parse()

	log := diag.New(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	if showHelp {
		flag.Usage()
		return
	}
	if showVersion {
		fmt.Println(version)
		return
	}

	if flag.NArg() < 1 {
		log.Errorf("usage: satori [flags] <path>")
		return
	}
	path := flag.Arg(0)

	src, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	tokens := scanner.All(string(src), scanner.WithFile(path))
	if showTokens {
		for _, t := range tokens {
			fmt.Println(t.String())
		}
		return
	}

	p := parser.New(tokens)
	prog := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			log.Errorf("%v", e)
		}
		return
	}
	if showAST {
		fmt.Printf("%#v\n", prog)
		return
	}

	comp := compiler.New()
	chunk, err := comp.Compile(prog)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	reg := module.NewRegistry()
	reg.Register("io", io.Initializer(os.Stdout))
	reg.Register("math", mathmod.Initializer())

	machine := vm.New(vm.WithRegistry(reg))

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.ErrorIf(machine.Run(ctx, &vm.Chunk{Code: chunk.Code, Constants: chunk.Constants}))
}
