// Package nandlang is the top-level façade wiring the pipeline stages
// together: lex, parse, link builtins, validate, optimize, evaluate. It also
// carries the one piece of ambient behavior that doesn't belong in any single
// stage -- rendering a token.Diagnostic against its source text for display.
package nandlang

import (
	"context"
	"strings"

	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/nandcheck"
	"github.com/jcorbin/nandlang/nandopt"
	"github.com/jcorbin/nandlang/nandparse"
	"github.com/jcorbin/nandlang/nandvm"
	"github.com/jcorbin/nandlang/token"
)

// Compile lexes, parses, links the host builtins, validates and optimizes
// src, returning a Program ready for nandvm.New. name is used only for
// diagnostics (token.DebugInfo.File).
func Compile(name string, src []byte) (*nandast.Program, error) {
	toks, err := token.Lex(name, src)
	if err != nil {
		return nil, err
	}
	prog, err := nandparse.Parse(toks)
	if err != nil {
		return nil, err
	}
	nandvm.AddBuiltins(prog)
	if err := nandcheck.Check(prog); err != nil {
		return nil, err
	}
	if err := nandopt.Optimize(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// Run compiles src and evaluates its main function, writing to opts' output
// (discarded unless nandvm.WithOutput is given).
func Run(ctx context.Context, name string, src []byte, opts ...nandvm.Option) error {
	prog, err := Compile(name, src)
	if err != nil {
		return err
	}
	vm := nandvm.New(prog, opts...)
	defer vm.Close()
	return vm.Run(ctx)
}

// RenderDiagnostic renders d against src the way the original implementation
// does (original_source/src/main.cpp's handleError): the offending source
// line, tabs expanded to 4 spaces so the column lines up, followed by a
// second line of dashes with a caret under the error column.
func RenderDiagnostic(src []byte, d token.Diagnostic) string {
	line := sourceLine(src, d.Debug.Line)
	col := d.Debug.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	expandedLine := expandTabs(line, 4)
	expandedPrefix := expandTabs(line[:min(col-1, len(line))], 4)

	var b strings.Builder
	b.WriteString(d.Error())
	b.WriteByte('\n')
	b.WriteString(expandedLine)
	b.WriteByte('\n')
	for range expandedPrefix {
		b.WriteByte('-')
	}
	b.WriteByte('^')
	return b.String()
}

func sourceLine(src []byte, line int) string {
	if line < 1 {
		return ""
	}
	n := 1
	start := 0
	for i, c := range src {
		if n == line {
			start = i
			break
		}
		if c == '\n' {
			n++
			start = i + 1
		}
	}
	if n != line {
		return ""
	}
	end := start
	for end < len(src) && src[end] != '\n' {
		end++
	}
	return string(src[start:end])
}

func expandTabs(s string, width int) string {
	var b strings.Builder
	for _, c := range s {
		if c == '\t' {
			for i := 0; i < width; i++ {
				b.WriteByte(' ')
			}
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
