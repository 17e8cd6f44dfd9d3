package nandvm

import (
	"context"
	"io/ioutil"

	"github.com/jcorbin/nandlang/nandast"
)

// EvalConstExpr evaluates exprs -- which nandopt has already proven are
// ConstantLevel CONSTANT or better, i.e. free of global side effects and
// variable reads -- against a throwaway VM with no I/O, and returns the bits
// they push, in push order (bottom of stack first). nandopt uses this to
// materialize a provably-constant run of expressions as a single
// LiteralArray (spec.md §4.5).
func EvalConstExpr(prog *nandast.Program, exprs []nandast.Expr) ([]bool, error) {
	vm := New(prog, WithOutput(ioutil.Discard))
	if err := vm.evalExprList(context.Background(), exprs); err != nil {
		return nil, err
	}
	return vm.stack, nil
}
