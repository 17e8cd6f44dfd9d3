// Package nandcheck implements the Nandlang validator: a read-only walk of
// a parsed nandast.Program that checks arity and existence invariants
// (spec.md §4.4). Every identifier is already resolved to a slot by the
// time a program reaches here, so this package does no name lookups; it
// only checks that output counts line up with the places that consume
// them, and raises the first mismatch as a token.Diagnostic pinned to the
// offending node.
package nandcheck

import (
	"fmt"

	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/token"
)

// Check validates every function in prog, stopping at the first error
// (spec.md §4.4: "no partial fixups").
func Check(prog *nandast.Program) error {
	main := prog.Lookup("main")
	if main == nil {
		return fmt.Errorf("program has no 'main' function")
	}
	if main.Inputs != 0 || main.Outputs != 0 {
		return fmt.Errorf("'main' must take no inputs and produce no outputs, got %d in, %d out", main.Inputs, main.Outputs)
	}

	c := &checker{prog: prog}
	for _, fn := range prog.Funcs {
		if fn.Kind != nandast.FuncInternal {
			continue
		}
		if err := c.checkBlock(fn.Body); err != nil {
			return err
		}
	}
	return nil
}

type checker struct {
	prog *nandast.Program
}

func (c *checker) checkBlock(stmts []nandast.Stmt) error {
	for i := range stmts {
		if err := c.checkStmt(&stmts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkStmt(s *nandast.Stmt) error {
	switch s.Kind {
	case nandast.StmtAssign, nandast.StmtVarDecl:
		total := 0
		for i := range s.Exprs {
			n, err := c.checkExpr(&s.Exprs[i])
			if err != nil {
				return err
			}
			total += n
		}
		if total != len(s.Targets) {
			return token.At(s.Debug, fmt.Errorf("assignment arity mismatch: %d target(s), %d output(s)", len(s.Targets), total))
		}
		return nil

	case nandast.StmtIf:
		n, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if n != 1 {
			return token.At(s.Debug, fmt.Errorf("'if' condition must have exactly 1 output, got %d", n))
		}
		if err := c.checkBlock(s.Then); err != nil {
			return err
		}
		return c.checkBlock(s.Else)

	case nandast.StmtWhile:
		n, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if n != 1 {
			return token.At(s.Debug, fmt.Errorf("'while' condition must have exactly 1 output, got %d", n))
		}
		return c.checkBlock(s.Then)

	case nandast.StmtExpr:
		n, err := c.checkExpr(s.Expr)
		if err != nil {
			return err
		}
		if n != 0 {
			return token.At(s.Debug, fmt.Errorf("expression statement must have 0 outputs, got %d", n))
		}
		return nil

	default:
		return token.At(s.Debug, fmt.Errorf("unhandled statement kind %v", s.Kind))
	}
}

// checkExpr recurses into e's children, checking their own arity, and
// returns e's own output count.
func (c *checker) checkExpr(e *nandast.Expr) (int, error) {
	switch e.Kind {
	case nandast.ExprNand:
		l, err := c.checkExpr(e.Left)
		if err != nil {
			return 0, err
		}
		if l != 1 {
			return 0, token.At(e.Left.Debug, fmt.Errorf("NAND's left operand must have exactly 1 output, got %d", l))
		}
		r, err := c.checkExpr(e.Right)
		if err != nil {
			return 0, err
		}
		if r != 1 {
			return 0, token.At(e.Right.Debug, fmt.Errorf("NAND's right operand must have exactly 1 output, got %d", r))
		}
		return 1, nil

	case nandast.ExprCall:
		fn := c.prog.Lookup(e.Name)
		if fn == nil {
			return 0, token.At(e.Debug, fmt.Errorf("call to unknown function %q", e.Name))
		}
		total := 0
		for i := range e.Args {
			n, err := c.checkExpr(&e.Args[i])
			if err != nil {
				return 0, err
			}
			total += n
		}
		if uint(total) != fn.Inputs {
			return 0, token.At(e.Debug, fmt.Errorf("call to %q: expected %d input bit(s), got %d", e.Name, fn.Inputs, total))
		}
		return int(fn.Outputs), nil

	case nandast.ExprVariable:
		return 1, nil

	case nandast.ExprArray:
		return int(e.Width), nil

	case nandast.ExprLiteral:
		return 1, nil

	case nandast.ExprLiteralArray:
		return len(e.Values), nil

	default:
		return 0, token.At(e.Debug, fmt.Errorf("unhandled expression kind %v", e.Kind))
	}
}
