package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jcorbin/nandlang/nandlang"
	"github.com/jcorbin/nandlang/nandvm"
	"github.com/jcorbin/nandlang/token"
)

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a Nandlang script" }
func (*runCmd) Usage() string    { return "run <script>\n" }
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "run: expected a script path")
		return subcommands.ExitUsageError
	}
	if err := runFile(f.Arg(0)); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runFile reads path and runs it against stdin/stdout, rendering any
// diagnostic against the source before returning the error as an exit-code
// signal (the rendering has already been printed, so the caller need not
// print err itself).
func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	err = nandlang.Run(context.Background(), path, src,
		nandvm.WithInput(os.Stdin), nandvm.WithOutput(os.Stdout))
	if err == nil {
		return nil
	}
	if d, ok := err.(token.Diagnostic); ok {
		fmt.Fprintln(os.Stderr, nandlang.RenderDiagnostic(src, d))
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}
