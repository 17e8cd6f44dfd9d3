// Package nandopt implements Nandlang's constant-folding optimizer
// (spec.md §4.5): it assigns every expression and statement a ConstantLevel,
// then uses that to coalesce provably side-effect-free expression runs into
// literals, fold If/While conditions, and drop dead statements.
package nandopt

import "github.com/jcorbin/nandlang/nandast"

// Optimize rewrites every Internal function's body in place. It must run
// after nandcheck.Check (which guarantees well-formedness the level
// computation and rewrite passes both assume) and before nandvm.New.
func Optimize(prog *nandast.Program) error {
	for _, fn := range prog.Funcs {
		if fn.Kind == nandast.FuncInternal {
			functionLevel(prog, fn)
		}
	}
	for _, fn := range prog.Funcs {
		if fn.Kind != nandast.FuncInternal {
			continue
		}
		body, err := rewriteBlock(prog, fn.Body)
		if err != nil {
			return err
		}
		fn.Body = body
	}
	return nil
}
