package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/jcorbin/nandlang/internal/logio"
	"github.com/jcorbin/nandlang/nandcheck"
	"github.com/jcorbin/nandlang/nandlang"
	"github.com/jcorbin/nandlang/nandopt"
	"github.com/jcorbin/nandlang/nandparse"
	"github.com/jcorbin/nandlang/nandvm"
	"github.com/jcorbin/nandlang/token"
)

type benchCmd struct{}

func (*benchCmd) Name() string     { return "bench" }
func (*benchCmd) Synopsis() string { return "run a script and print phase timings" }
func (*benchCmd) Usage() string    { return "bench <script>\n" }
func (*benchCmd) SetFlags(*flag.FlagSet) {}

func (*benchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "bench: expected a script path")
		return subcommands.ExitUsageError
	}
	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	if err := runBench(f.Arg(0), &log); err != nil {
		log.ErrorIf(err)
		return subcommands.ExitStatus(log.ExitCode())
	}
	return subcommands.ExitSuccess
}

// runBench reproduces original_source/src/main.cpp's four-phase timing
// split (lex, parse, validate/compile, run), reported through log at BENCH
// level -- spec.md's CLI section calls for the numbers without naming the
// phase boundaries, so this follows the original implementation instead.
func runBench(path string, log *logio.Logger) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	t0 := time.Now()
	toks, err := token.Lex(path, src)
	if err != nil {
		return err
	}
	tLex := time.Now()

	prog, err := nandparse.Parse(toks)
	if err != nil {
		return err
	}
	tParse := time.Now()

	nandvm.AddBuiltins(prog)
	if err := nandcheck.Check(prog); err != nil {
		return err
	}
	if err := nandopt.Optimize(prog); err != nil {
		return err
	}
	tCompile := time.Now()

	vm := nandvm.New(prog, nandvm.WithInput(os.Stdin), nandvm.WithOutput(os.Stdout))
	defer vm.Close()
	runErr := vm.Run(context.Background())
	tRun := time.Now()

	log.Printf("BENCH", "lex:     %v", tLex.Sub(t0))
	log.Printf("BENCH", "parse:   %v", tParse.Sub(tLex))
	log.Printf("BENCH", "compile: %v", tCompile.Sub(tParse))
	log.Printf("BENCH", "run:     %v", tRun.Sub(tCompile))

	if runErr != nil {
		if d, ok := runErr.(token.Diagnostic); ok {
			fmt.Fprintln(os.Stderr, nandlang.RenderDiagnostic(src, d))
		}
	}
	return runErr
}
