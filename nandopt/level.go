package nandopt

import "github.com/jcorbin/nandlang/nandast"

// exprLevel computes and caches e's ConstantLevel (spec.md §4.5), recursing
// into children first since a node's level is the min over its parts.
func exprLevel(prog *nandast.Program, e *nandast.Expr) nandast.ConstantLevel {
	if lvl, ok := e.Level(); ok {
		return lvl
	}

	var lvl nandast.ConstantLevel
	switch e.Kind {
	case nandast.ExprLiteral, nandast.ExprLiteralArray:
		lvl = nandast.LiteralLevel

	case nandast.ExprVariable, nandast.ExprArray:
		lvl = nandast.Local

	case nandast.ExprNand:
		l := exprLevel(prog, e.Left)
		r := exprLevel(prog, e.Right)
		lvl = nandast.Min(l, r)
		if lvl > nandast.Constant {
			lvl = nandast.Constant
		}

	case nandast.ExprCall:
		lvl = nandast.Constant
		for i := range e.Args {
			lvl = nandast.Min(lvl, exprLevel(prog, &e.Args[i]))
		}
		if fn := prog.Lookup(e.Name); fn != nil {
			lvl = nandast.Min(lvl, functionLevel(prog, fn))
		} else {
			lvl = nandast.Global
		}

	default:
		lvl = nandast.Global
	}

	e.SetLevel(lvl)
	return lvl
}

// stmtLevel computes and caches s's ConstantLevel.
func stmtLevel(prog *nandast.Program, s *nandast.Stmt) nandast.ConstantLevel {
	if lvl, ok := s.Level(); ok {
		return lvl
	}

	var lvl nandast.ConstantLevel
	switch s.Kind {
	case nandast.StmtAssign, nandast.StmtVarDecl:
		exprsLevel := nandast.Constant
		for i := range s.Exprs {
			exprsLevel = nandast.Min(exprsLevel, exprLevel(prog, &s.Exprs[i]))
		}
		allIgnored := true
		for _, t := range s.Targets {
			if t != nandast.IgnoreSlot {
				allIgnored = false
				break
			}
		}
		if allIgnored && exprsLevel >= nandast.Constant {
			lvl = nandast.Constant
		} else {
			lvl = nandast.Local
			if exprsLevel < lvl {
				lvl = exprsLevel
			}
		}

	case nandast.StmtIf:
		cond := exprLevel(prog, s.Cond)
		then := blockLevel(prog, s.Then)
		els := blockLevel(prog, s.Else)
		lvl = nandast.Min(cond, nandast.Min(then, els))

	case nandast.StmtWhile:
		cond := exprLevel(prog, s.Cond)
		then := blockLevel(prog, s.Then)
		lvl = nandast.Min(cond, then)

	case nandast.StmtExpr:
		lvl = exprLevel(prog, s.Expr)

	default:
		lvl = nandast.Global
	}

	s.SetLevel(lvl)
	return lvl
}

// blockLevel is the min over a statement list, LITERAL (vacuously true) for
// an empty one.
func blockLevel(prog *nandast.Program, stmts []nandast.Stmt) nandast.ConstantLevel {
	lvl := nandast.LiteralLevel
	for i := range stmts {
		lvl = nandast.Min(lvl, stmtLevel(prog, &stmts[i]))
	}
	return lvl
}

// functionLevel computes and memoizes fn's own ConstantLevel (ignoring its
// call sites' argument levels, which combine with this in exprLevel's
// ExprCall case). A function caught mid-computation of its own level (i.e.
// reached again while already computing, meaning it's on its own call
// chain) short-circuits to GLOBAL (spec.md §4.5, §8 property 8).
func functionLevel(prog *nandast.Program, fn *nandast.Function) nandast.ConstantLevel {
	if fn.Kind == nandast.FuncExternal {
		return fn.Level
	}
	if lvl, ok := fn.CachedLevel(); ok {
		return lvl
	}
	if fn.InRecursion() {
		return nandast.Global
	}

	fn.EnterRecursion()
	lvl := blockLevel(prog, fn.Body)
	fn.ExitRecursion()

	fn.SetCachedLevel(lvl)
	return lvl
}
