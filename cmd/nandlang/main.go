// Command nandlang runs Nandlang source files.
//
// Usage: nandlang [--bench|-b] <script>
//
// With no arguments it prints a banner and exits 0. Given "run", "bench" or
// "repl" as the first argument it dispatches through google/subcommands for
// room to grow; anything else is treated as a script path, matching the
// original implementation's flat `nandlang <path/to/script>` invocation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jcorbin/nandlang/internal/logio"
)

var banner = `!!  !!   !!    !!!    !!   !!  !!!!!    !!         !!!    !!   !!   !!!!!   !!
!!  !!!  !!   !!!!!   !!!  !!  !!  !!   !!        !!!!!   !!!  !!  !!  !!!  !!
!!  !!!! !!  !!   !!  !!!! !!  !!   !!  !!       !!   !!  !!!! !!  !!       !!
!!  !!!!!!!  !!!!!!!  !!!!!!!  !!   !!  !!       !!!!!!!  !!!!!!!  !! !!!!  !!
!!  !! !!!!  !!   !!  !! !!!!  !!   !!  !!       !!   !!  !! !!!!  !!   !!  !!
    !!  !!!  !!   !!  !!  !!!  !!  !!   !!       !!   !!  !!  !!!  !!!!!!!
!!  !!   !!  !!   !!  !!   !!  !!!!!    !!!!!!!  !!   !!  !!   !!   !!! !!  !!
An esoteric programming language based on NAND completeness`

var subcommandNames = map[string]bool{
	"run": true, "bench": true, "repl": true,
	"help": true, "flags": true, "commands": true,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(banner)
		fmt.Println("Usage:\nnandlang <path/to/script>")
		os.Exit(0)
	}

	if subcommandNames[os.Args[1]] {
		os.Exit(runSubcommands())
	}
	os.Exit(runLegacy(os.Args[1:]))
}

func runSubcommands() int {
	commander := subcommands.NewCommander(flag.CommandLine, "nandlang")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&runCmd{}, "")
	commander.Register(&benchCmd{}, "")
	commander.Register(&replCmd{}, "")
	flag.CommandLine.Parse(os.Args[2:])
	return int(commander.Execute(context.Background()))
}

// runLegacy implements the spec's bare invocation form directly, without
// going through subcommands, since it takes a positional script path rather
// than a subcommand name.
func runLegacy(args []string) int {
	fs := flag.NewFlagSet("nandlang", flag.ContinueOnError)
	bench := fs.Bool("bench", false, "print parse/compile/check/run durations")
	fs.BoolVar(bench, "b", false, "shorthand for --bench")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Println(banner)
		fmt.Println("Usage:\nnandlang <path/to/script>")
		return 0
	}

	path := fs.Arg(0)
	if *bench {
		log := logio.Logger{}
		log.SetOutput(os.Stderr)
		log.ErrorIf(runBench(path, &log))
		return log.ExitCode()
	}
	if err := runFile(path); err != nil {
		return 1
	}
	return 0
}
