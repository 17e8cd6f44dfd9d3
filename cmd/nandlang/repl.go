package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/nandcheck"
	"github.com/jcorbin/nandlang/nandlang"
	"github.com/jcorbin/nandlang/nandopt"
	"github.com/jcorbin/nandlang/nandparse"
	"github.com/jcorbin/nandlang/nandvm"
	"github.com/jcorbin/nandlang/token"
)

// replCmd is an interactive top level: it reads one function declaration at
// a time, type-checks and links it into a persistent Program, and runs
// `main` again each time a function by that name is (re)declared.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "declare and run Nandlang functions interactively" }
func (*replCmd) Usage() string    { return "repl\n" }
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("nandlang> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	prog := nandast.NewProgram()
	nandvm.AddBuiltins(prog)

	var buf strings.Builder
	depth := 0
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buf.Reset()
			depth = 0
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		depth += braceDelta(line)
		if depth > 0 {
			rl.SetPrompt("       ...> ")
			continue
		}
		rl.SetPrompt("nandlang> ")

		src := buf.String()
		buf.Reset()
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if trimmed == ":help" {
			printBuiltinDocs()
			continue
		}
		replDeclare(prog, src)
	}
}

func braceDelta(line string) int {
	d := 0
	for _, r := range line {
		switch r {
		case '{', '(':
			d++
		case '}', ')':
			d--
		}
	}
	return d
}

// replDeclare parses src as one or more function declarations, links them
// into prog, validates and optimizes the result, and -- if "main" was just
// (re)declared -- runs it against a fresh VM sharing stdin/stdout.
func replDeclare(prog *nandast.Program, src string) {
	toks, err := token.Lex("<repl>", []byte(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, nandlang.RenderDiagnostic([]byte(src), asDiagnostic(err)))
		return
	}
	decl, err := nandparse.Parse(toks)
	if err != nil {
		fmt.Fprintln(os.Stderr, nandlang.RenderDiagnostic([]byte(src), asDiagnostic(err)))
		return
	}

	declaredMain := false
	for name, fn := range decl.Funcs {
		prog.Funcs[name] = fn
		declaredMain = declaredMain || name == "main"
	}

	if err := nandcheck.Check(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := nandopt.Optimize(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if !declaredMain {
		return
	}

	// The VM is not closed: Close would close os.Stdout, which later runs of
	// main still write to.
	vm := nandvm.New(prog, nandvm.WithInput(os.Stdin), nandvm.WithOutput(os.Stdout))
	if err := vm.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func printBuiltinDocs() {
	for _, d := range nandvm.BuiltinDocs() {
		fmt.Fprintf(os.Stdout, "%-8s in=%-3s out=%-3s %-7s %s\n", d.Name, d.Inputs, d.Outputs, d.Level, d.Behavior)
	}
}

func asDiagnostic(err error) token.Diagnostic {
	if d, ok := err.(token.Diagnostic); ok {
		return d
	}
	return token.Diagnostic{Err: err}
}
