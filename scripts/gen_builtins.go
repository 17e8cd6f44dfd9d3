// Command gen_builtins scans the builtin intrinsic table in spec.md and
// emits nandvm/builtins_table.go, a generated doc lookup the REPL's :help
// command uses to describe a builtin without duplicating
// prose inside builtins.go's hand-written Function map. Adapted from the
// teacher's scripts/gen_vm_expects.go: the same two-goroutine errgroup
// pipeline (one runs goimports over a pipe, the other scans input and feeds
// it), just pointed at a different source and output shape.
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
	"strings"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

type namedReader interface {
	io.ReadCloser
	Name() string
}

var (
	in  namedReader    = mustOpen("spec.md")
	out io.WriteCloser = mustCreate("nandvm/builtins_table.go")
)

func mustOpen(name string) *os.File {
	f, err := os.Open(name)
	if err != nil {
		log.Fatalf("failed to open %v: %v", name, err)
	}
	return f
}

func mustCreate(name string) *os.File {
	f, err := os.Create(name)
	if err != nil {
		log.Fatalf("failed to create %v: %v", name, err)
	}
	return f
}

func parseFlags() {
	flag.Parse()
	args := flag.Args()
	if len(args) > 0 {
		in = mustOpen(args[0])
		args = args[1:]
	}
	if len(args) > 0 {
		out = mustCreate(args[0])
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
		gofmt := exec.CommandContext(ctx, "goimports")
		fmtPipe, err := gofmt.StdinPipe()
		if err != nil {
			return err
		}

		defer out.Close()
		gofmt.Stdout = out
		gofmt.Stderr = os.Stderr

		out = fmtPipe

		close(ready)
		if err := gofmt.Run(); err != nil {
			return fmt.Errorf("gofmt run failed: %w", err)
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

// builtinRow matches a row of spec.md §4.6's table:
// | name | in | out | level | behavior |
var builtinRow = regexp.MustCompile(`^\|\s*(\w+)\s*\|\s*([\w+]+)\s*\|\s*([\w+]+)\s*\|\s*(\w+)\s*\|\s*(.+?)\s*\|$`)

func run(ctx context.Context) error {
	var buf bytes.Buffer
	buf.Grow(1024)
	buf.WriteString("package nandvm\n\n")
	buf.WriteString("// @generated from ")
	buf.WriteString(in.Name())
	buf.WriteString(" by scripts/gen_builtins.go\n\n")
	buf.WriteString("//go:generate go run scripts/gen_builtins.go\n\n")

	buf.WriteString("// BuiltinDoc describes one host-provided intrinsic for display (REPL :help).\n")
	buf.WriteString("type BuiltinDoc struct {\n\tName, Inputs, Outputs, Level, Behavior string\n}\n\n")
	buf.WriteString("var builtinDocs = []BuiltinDoc{\n")

	sc := bufio.NewScanner(in)
	rows := 0
	for sc.Scan() {
		line := sc.Text()
		if match := builtinRow.FindStringSubmatch(line); len(match) > 0 {
			name, inBits, outBits, level, behavior := match[1], match[2], match[3], match[4], match[5]
			if name == "Name" {
				continue // header row
			}
			behavior = strings.ReplaceAll(behavior, `"`, `\"`)
			fmt.Fprintf(&buf, "\t{Name: %q, Inputs: %q, Outputs: %q, Level: %q, Behavior: %q},\n",
				name, inBits, outBits, level, behavior)
			rows++
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	buf.WriteString("}\n\n")
	buf.WriteString("// BuiltinDocs returns the generated builtin description table.\n")
	buf.WriteString("func BuiltinDocs() []BuiltinDoc { return builtinDocs }\n")

	if rows == 0 {
		return fmt.Errorf("gen_builtins: matched no table rows in %s", in.Name())
	}

	_, err := buf.WriteTo(out)
	return err
}
