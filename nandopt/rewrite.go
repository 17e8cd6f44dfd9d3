package nandopt

import (
	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/nandvm"
)

// rewriteBlock rewrites each statement in place and drops any whose
// ConstantLevel is CONSTANT or better: such a statement has no observable
// effect, since real (non-ignored) targets and any GLOBAL call keep a
// statement's level down at LOCAL or GLOBAL (spec.md §4.5: "must not remove
// statements that touch real slots").
func rewriteBlock(prog *nandast.Program, stmts []nandast.Stmt) ([]nandast.Stmt, error) {
	out := stmts[:0]
	for i := range stmts {
		s := &stmts[i]
		if err := rewriteStmt(prog, s); err != nil {
			return nil, err
		}
		if lvl, ok := s.Level(); ok && lvl >= nandast.Constant {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func rewriteStmt(prog *nandast.Program, s *nandast.Stmt) error {
	switch s.Kind {
	case nandast.StmtAssign, nandast.StmtVarDecl:
		exprs, err := coalesceExprList(prog, s.Exprs)
		if err != nil {
			return err
		}
		s.Exprs = exprs

	case nandast.StmtIf:
		if err := foldCond(prog, s); err != nil {
			return err
		}
		then, err := rewriteBlock(prog, s.Then)
		if err != nil {
			return err
		}
		s.Then = then
		els, err := rewriteBlock(prog, s.Else)
		if err != nil {
			return err
		}
		s.Else = els

	case nandast.StmtWhile:
		if err := foldCond(prog, s); err != nil {
			return err
		}
		then, err := rewriteBlock(prog, s.Then)
		if err != nil {
			return err
		}
		s.Then = then

	case nandast.StmtExpr:
		return rewriteExpr(prog, s.Expr)
	}
	return nil
}

// foldCond replaces an If/While condition with a Literal once it's known to
// be CONSTANT or better, so execStmt never has to re-evaluate it.
func foldCond(prog *nandast.Program, s *nandast.Stmt) error {
	if err := rewriteExpr(prog, s.Cond); err != nil {
		return err
	}
	lvl, ok := s.Cond.Level()
	if !ok || lvl < nandast.Constant {
		return nil
	}
	if s.Cond.Kind == nandast.ExprLiteral {
		return nil
	}
	bits, err := nandvm.EvalConstExpr(prog, []nandast.Expr{*s.Cond})
	if err != nil || len(bits) != 1 {
		return err
	}
	lit := &nandast.Expr{Kind: nandast.ExprLiteral, Value: bits[0], Debug: s.Cond.Debug}
	lit.SetLevel(nandast.LiteralLevel)
	s.Cond = lit
	return nil
}

// rewriteExpr recurses into e's sub-trees that weren't already folded by
// coalesceExprList (spec.md §4.5: "recurse into all non-rewritten
// sub-trees").
func rewriteExpr(prog *nandast.Program, e *nandast.Expr) error {
	switch e.Kind {
	case nandast.ExprNand:
		if err := rewriteExpr(prog, e.Left); err != nil {
			return err
		}
		return rewriteExpr(prog, e.Right)

	case nandast.ExprCall:
		args, err := coalesceExprList(prog, e.Args)
		if err != nil {
			return err
		}
		e.Args = args
	}
	return nil
}

// coalesceExprList scans exprs left to right for maximal runs of
// CONSTANT-or-better expressions and replaces each run with a single
// LiteralArray (or Literal, for a width-1 run) holding the bits the run
// would have pushed (spec.md §4.5). Expressions outside any such run are
// recursed into and left in place.
func coalesceExprList(prog *nandast.Program, exprs []nandast.Expr) ([]nandast.Expr, error) {
	for i := range exprs {
		if err := rewriteExpr(prog, &exprs[i]); err != nil {
			return nil, err
		}
	}

	out := make([]nandast.Expr, 0, len(exprs))
	for i := 0; i < len(exprs); {
		lvl, ok := exprs[i].Level()
		if !ok || lvl < nandast.Constant {
			out = append(out, exprs[i])
			i++
			continue
		}
		j := i
		for j < len(exprs) {
			lvl2, ok2 := exprs[j].Level()
			if !ok2 || lvl2 < nandast.Constant {
				break
			}
			j++
		}
		run := exprs[i:j]
		if len(run) == 1 && (run[0].Kind == nandast.ExprLiteral || run[0].Kind == nandast.ExprLiteralArray) {
			out = append(out, run[0])
			i = j
			continue
		}
		lit, err := materialize(prog, run)
		if err != nil {
			return nil, err
		}
		out = append(out, lit)
		i = j
	}
	return out, nil
}

// materialize evaluates run -- a maximal CONSTANT-or-better run -- and
// builds the single literal expression that reproduces its pushed bits.
// ExprLiteralArray's Values[0] ends up topmost once pushed; EvalConstExpr returns bits in push order (bottom first), so
// Values is built by reversing it.
func materialize(prog *nandast.Program, run []nandast.Expr) (nandast.Expr, error) {
	bits, err := nandvm.EvalConstExpr(prog, run)
	if err != nil {
		return nandast.Expr{}, err
	}
	debug := run[0].Debug
	if len(bits) == 1 {
		lit := nandast.Expr{Kind: nandast.ExprLiteral, Value: bits[0], Debug: debug}
		lit.SetLevel(nandast.LiteralLevel)
		return lit, nil
	}
	values := make([]bool, len(bits))
	for i, b := range bits {
		values[len(bits)-1-i] = b
	}
	lit := nandast.Expr{Kind: nandast.ExprLiteralArray, Values: values, Debug: debug}
	lit.SetLevel(nandast.LiteralLevel)
	return lit, nil
}
