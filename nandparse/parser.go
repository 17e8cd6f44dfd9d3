// Package nandparse consumes a lexed token tree top-down and emits a
// nandast.Program: function declarations, each with a resolved statement
// tree. Every identifier is resolved through a namestack.Frame to a
// stack-slot index as it is encountered, so the resulting AST carries only
// integer slots -- no name lookups remain to do at validate, optimize or
// evaluate time (spec.md §2, §4.3).
package nandparse

import (
	"errors"
	"fmt"

	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/namestack"
	"github.com/jcorbin/nandlang/token"
)

// Parse consumes a top-level token list (as produced by token.Lex) and
// returns the declared functions.
func Parse(toks []token.Token) (*nandast.Program, error) {
	prog := nandast.NewProgram()
	i := 0
	for i < len(toks) {
		if toks[i].Kind != token.Function {
			return nil, token.At(toks[i].Debug, fmt.Errorf("expected 'function', got %v", toks[i].Kind))
		}
		name, fn, next, err := parseFunction(toks, i)
		if err != nil {
			return nil, err
		}
		if _, exists := prog.Funcs[name]; exists {
			return nil, token.At(toks[i].Debug, fmt.Errorf("redefinition of function %q", name))
		}
		prog.Funcs[name] = fn
		i = next
	}
	return prog, nil
}

type paramSpec struct {
	name  string
	width uint
	debug token.DebugInfo
}

func parseFunction(toks []token.Token, i int) (string, *nandast.Function, int, error) {
	debug := toks[i].Debug
	i++ // FUNCTION
	if i >= len(toks) || toks[i].Kind != token.Identifier {
		return "", nil, 0, token.At(debug, errors.New("expected function name"))
	}
	name := toks[i].Str
	i++
	if i >= len(toks) || toks[i].Kind != token.Paren {
		return "", nil, 0, token.At(debug, fmt.Errorf("expected '(' after function name %q", name))
	}
	paramToks := toks[i].Kids
	i++
	if i >= len(toks) || toks[i].Kind != token.Block {
		return "", nil, 0, token.At(debug, fmt.Errorf("expected '{' for function %q body", name))
	}
	bodyToks := toks[i].Kids
	i++
	if i < len(toks) && toks[i].Kind == token.Linesep {
		// the trailing ';' after a function's block is optional -- some
		// revisions of the source always insert one, some don't; accept
		// either (spec.md §4.3, §9).
		i++
	}

	inputToks, outputToks, err := splitParams(paramToks)
	if err != nil {
		return "", nil, 0, token.At(debug, err)
	}
	inParams, err := parseParamList(inputToks)
	if err != nil {
		return "", nil, 0, err
	}
	outParams, err := parseParamList(outputToks)
	if err != nil {
		return "", nil, 0, err
	}

	root := namestack.NewRoot()
	var inputs, outputs uint
	for _, p := range inParams {
		if _, err := root.Insert(p.name, p.width); err != nil {
			return "", nil, 0, token.At(p.debug, err)
		}
		inputs += p.width
	}
	for _, p := range outParams {
		if _, err := root.Insert(p.name, p.width); err != nil {
			return "", nil, 0, token.At(p.debug, err)
		}
		outputs += p.width
	}

	body, err := parseBlock(root, bodyToks)
	if err != nil {
		return "", nil, 0, err
	}

	fn := &nandast.Function{Kind: nandast.FuncInternal, Inputs: inputs, Outputs: outputs, Body: body}
	return name, fn, i, nil
}

// splitParams divides a parameter token list at its optional ':' into
// inputs and outputs. The colon is optional; absent, every parameter is an
// input (spec.md §4.3).
func splitParams(toks []token.Token) (inputToks, outputToks []token.Token, err error) {
	sepIdx := -1
	for i, t := range toks {
		if t.Kind == token.IOSep {
			if sepIdx >= 0 {
				return nil, nil, errors.New("multiple ':' in parameter list")
			}
			sepIdx = i
		}
	}
	if sepIdx < 0 {
		return toks, nil, nil
	}
	return toks[:sepIdx], toks[sepIdx+1:], nil
}

func parseParamList(toks []token.Token) ([]paramSpec, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	parts := splitByComma(toks)
	specs := make([]paramSpec, 0, len(parts))
	for _, part := range parts {
		if len(part) == 0 {
			return nil, errors.New("empty parameter")
		}
		if part[0].Kind != token.Identifier {
			return nil, token.At(part[0].Debug, fmt.Errorf("expected parameter name, got %v", part[0].Kind))
		}
		name := part[0].Str
		width := uint(1)
		rest := part[1:]
		if len(rest) > 0 {
			if rest[0].Kind != token.Index {
				return nil, token.At(rest[0].Debug, fmt.Errorf("unexpected token %v after parameter %q", rest[0].Kind, name))
			}
			width = uint(rest[0].Int)
			if width == 0 {
				return nil, token.At(rest[0].Debug, errors.New("index with zero size"))
			}
			rest = rest[1:]
		}
		if len(rest) != 0 {
			return nil, token.At(rest[0].Debug, errors.New("unexpected trailing tokens in parameter"))
		}
		specs = append(specs, paramSpec{name: name, width: width, debug: part[0].Debug})
	}
	return specs, nil
}

// splitByComma divides a flat token list on its top-level commas. Because
// the lexer has already nested '{...}' and '(...)' into single Block/Paren
// tokens, any comma remaining in a flat slice is necessarily at this list's
// own level -- no bracket-depth tracking is needed here.
func splitByComma(toks []token.Token) [][]token.Token {
	var parts [][]token.Token
	start := 0
	for i, t := range toks {
		if t.Kind == token.Comma {
			parts = append(parts, toks[start:i])
			start = i + 1
		}
	}
	parts = append(parts, toks[start:])
	return parts
}

func parseBlock(frame *namestack.Frame, toks []token.Token) ([]nandast.Stmt, error) {
	var stmts []nandast.Stmt
	i := 0
	for i < len(toks) {
		var (
			stmt *nandast.Stmt
			next int
			err  error
		)
		switch toks[i].Kind {
		case token.If:
			stmt, next, err = parseIf(frame, toks, i)
		case token.While:
			stmt, next, err = parseWhile(frame, toks, i)
		default:
			stmt, next, err = parseSimpleStmt(frame, toks, i)
		}
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, *stmt)
		i = next
	}
	return stmts, nil
}

func findBlock(toks []token.Token, from int) int {
	j := from
	for j < len(toks) && toks[j].Kind != token.Block {
		j++
	}
	return j
}

func parseIf(frame *namestack.Frame, toks []token.Token, i int) (*nandast.Stmt, int, error) {
	debug := toks[i].Debug
	i++
	j := findBlock(toks, i)
	if j >= len(toks) {
		return nil, 0, token.At(debug, errors.New("expected '{' after if condition"))
	}
	condToks := toks[i:j]
	cond, err := parseExprFull(frame, condToks)
	if err != nil {
		return nil, 0, err
	}
	thenStmts, err := parseBlock(frame.Child(), toks[j].Kids)
	if err != nil {
		return nil, 0, err
	}
	k := j + 1

	var elseStmts []nandast.Stmt
	if k < len(toks) && toks[k].Kind == token.Else {
		elseAt := toks[k].Debug
		k++
		if k >= len(toks) || toks[k].Kind != token.Block {
			return nil, 0, token.At(elseAt, errors.New("expected '{' after else"))
		}
		es, err := parseBlock(frame.Child(), toks[k].Kids)
		if err != nil {
			return nil, 0, err
		}
		elseStmts = es
		if elseStmts == nil {
			elseStmts = []nandast.Stmt{}
		}
		k++
	}

	return &nandast.Stmt{Kind: nandast.StmtIf, Debug: debug, Cond: cond, Then: thenStmts, Else: elseStmts}, k, nil
}

func parseWhile(frame *namestack.Frame, toks []token.Token, i int) (*nandast.Stmt, int, error) {
	debug := toks[i].Debug
	i++
	j := findBlock(toks, i)
	if j >= len(toks) {
		return nil, 0, token.At(debug, errors.New("expected '{' after while condition"))
	}
	condToks := toks[i:j]
	cond, err := parseExprFull(frame, condToks)
	if err != nil {
		return nil, 0, err
	}
	body, err := parseBlock(frame.Child(), toks[j].Kids)
	if err != nil {
		return nil, 0, err
	}
	return &nandast.Stmt{Kind: nandast.StmtWhile, Debug: debug, Cond: cond, Then: body}, j + 1, nil
}

func parseSimpleStmt(frame *namestack.Frame, toks []token.Token, i int) (*nandast.Stmt, int, error) {
	start := toks[i].Debug
	j := i
	for j < len(toks) && toks[j].Kind != token.Linesep {
		j++
	}
	if j >= len(toks) {
		return nil, 0, token.At(start, errors.New("missing semicolon"))
	}
	lineToks := toks[i:j]
	next := j + 1
	if len(lineToks) == 0 {
		return nil, 0, token.At(start, errors.New("empty expression where one is required"))
	}

	isDecl := false
	body := lineToks
	if lineToks[0].Kind == token.Var {
		isDecl = true
		body = lineToks[1:]
	}

	assignIdx := -1
	for k, t := range body {
		if t.Kind == token.Assign {
			assignIdx = k
			break
		}
	}

	if assignIdx >= 0 {
		targetToks := body[:assignIdx]
		exprToks := body[assignIdx+1:]

		targets, err := parseTargets(frame, targetToks, isDecl)
		if err != nil {
			return nil, 0, err
		}
		if len(exprToks) == 0 {
			return nil, 0, token.At(body[assignIdx].Debug, errors.New("empty expression where one is required"))
		}
		parts := splitByComma(exprToks)
		exprs := make([]nandast.Expr, 0, len(parts))
		for _, part := range parts {
			if len(part) == 0 {
				return nil, 0, token.At(body[assignIdx].Debug, errors.New("empty expression where one is required"))
			}
			e, err := parseExprFull(frame, part)
			if err != nil {
				return nil, 0, err
			}
			exprs = append(exprs, *e)
		}
		kind := nandast.StmtAssign
		if isDecl {
			kind = nandast.StmtVarDecl
		}
		return &nandast.Stmt{Kind: kind, Debug: start, Targets: targets, Exprs: exprs}, next, nil
	}

	if isDecl {
		return nil, 0, token.At(start, errors.New("'var' declaration without '='"))
	}

	e, err := parseExprFull(frame, lineToks)
	if err != nil {
		return nil, 0, err
	}
	return &nandast.Stmt{Kind: nandast.StmtExpr, Debug: start, Expr: e}, next, nil
}

func parseTargets(frame *namestack.Frame, toks []token.Token, isDecl bool) ([]nandast.Slot, error) {
	if len(toks) == 0 {
		return nil, errors.New("missing assignment targets")
	}
	parts := splitByComma(toks)
	var slots []nandast.Slot
	for _, part := range parts {
		if len(part) == 0 {
			return nil, errors.New("empty target")
		}
		if part[0].Kind != token.Identifier {
			return nil, token.At(part[0].Debug, fmt.Errorf("expected identifier target, got %v", part[0].Kind))
		}
		name := part[0].Str
		rest := part[1:]
		var idxTok *token.Token
		if len(rest) > 0 {
			if rest[0].Kind != token.Index {
				return nil, token.At(rest[0].Debug, fmt.Errorf("unexpected token %v after target %q", rest[0].Kind, name))
			}
			idxTok = &rest[0]
			rest = rest[1:]
		}
		if len(rest) != 0 {
			return nil, token.At(rest[0].Debug, errors.New("unexpected trailing tokens in target"))
		}

		switch {
		case isDecl:
			width := uint(1)
			if idxTok != nil {
				width = uint(idxTok.Int)
				if width == 0 {
					return nil, token.At(idxTok.Debug, errors.New("index with zero size"))
				}
			}
			b, err := frame.Insert(name, width)
			if err != nil {
				return nil, token.At(part[0].Debug, err)
			}
			for i := uint(0); i < width; i++ {
				if b.BaseSlot == nandast.IgnoreSlot {
					slots = append(slots, nandast.IgnoreSlot)
				} else {
					slots = append(slots, b.BaseSlot+i)
				}
			}

		case idxTok != nil:
			b, err := frame.LookupIndexed(name, uint(idxTok.Int))
			if err != nil {
				return nil, token.At(idxTok.Debug, err)
			}
			slots = append(slots, b.BaseSlot)

		default:
			if name == "_" {
				slots = append(slots, nandast.IgnoreSlot)
				continue
			}
			b, err := frame.Lookup(name)
			if err != nil {
				return nil, token.At(part[0].Debug, err)
			}
			for i := uint(0); i < b.Width; i++ {
				slots = append(slots, b.BaseSlot+i)
			}
		}
	}
	return slots, nil
}

func parseExprFull(frame *namestack.Frame, toks []token.Token) (*nandast.Expr, error) {
	if len(toks) == 0 {
		return nil, errors.New("empty expression where one is required")
	}
	ep := &exprParser{toks: toks, frame: frame}
	e, err := ep.parseExpr()
	if err != nil {
		return nil, err
	}
	if ep.pos != len(ep.toks) {
		return nil, token.At(ep.toks[ep.pos].Debug, fmt.Errorf("unexpected trailing token %v", ep.toks[ep.pos].Kind))
	}
	return e, nil
}

// exprParser parses the right-associative, single-precedence NAND grammar
// of spec.md §4.3 over a flat token slice.
type exprParser struct {
	toks  []token.Token
	pos   int
	frame *namestack.Frame
}

func (ep *exprParser) parseExpr() (*nandast.Expr, error) {
	left, err := ep.parseAtom()
	if err != nil {
		return nil, err
	}
	if ep.pos < len(ep.toks) && ep.toks[ep.pos].Kind == token.Nand {
		debug := ep.toks[ep.pos].Debug
		ep.pos++
		right, err := ep.parseExpr()
		if err != nil {
			return nil, err
		}
		return &nandast.Expr{Kind: nandast.ExprNand, Left: left, Right: right, Debug: debug}, nil
	}
	return left, nil
}

func (ep *exprParser) parseAtom() (*nandast.Expr, error) {
	if ep.pos >= len(ep.toks) {
		return nil, errors.New("empty expression where one is required")
	}
	tok := ep.toks[ep.pos]

	switch tok.Kind {
	case token.Paren:
		ep.pos++
		sub := &exprParser{toks: tok.Kids, frame: ep.frame}
		e, err := sub.parseExpr()
		if err != nil {
			return nil, err
		}
		if sub.pos != len(sub.toks) {
			return nil, token.At(sub.toks[sub.pos].Debug, fmt.Errorf("unexpected token %v in parenthesized expression", sub.toks[sub.pos].Kind))
		}
		return e, nil

	case token.Identifier:
		name := tok.Str
		ep.pos++
		if ep.pos < len(ep.toks) && ep.toks[ep.pos].Kind == token.Paren {
			callToks := ep.toks[ep.pos].Kids
			ep.pos++
			args, err := parseArgList(ep.frame, callToks)
			if err != nil {
				return nil, err
			}
			return &nandast.Expr{Kind: nandast.ExprCall, Name: name, Args: args, Debug: tok.Debug}, nil
		}
		if name == "_" {
			return nil, token.At(tok.Debug, errors.New("cannot read the ignore binding _"))
		}
		if ep.pos < len(ep.toks) && ep.toks[ep.pos].Kind == token.Index {
			idxTok := ep.toks[ep.pos]
			ep.pos++
			b, err := ep.frame.LookupIndexed(name, uint(idxTok.Int))
			if err != nil {
				return nil, token.At(idxTok.Debug, err)
			}
			return &nandast.Expr{Kind: nandast.ExprVariable, Slot: b.BaseSlot, Width: 1, Debug: tok.Debug}, nil
		}
		b, err := ep.frame.Lookup(name)
		if err != nil {
			return nil, token.At(tok.Debug, err)
		}
		if b.Width == 1 {
			return &nandast.Expr{Kind: nandast.ExprVariable, Slot: b.BaseSlot, Width: 1, Debug: tok.Debug}, nil
		}
		return &nandast.Expr{Kind: nandast.ExprArray, Slot: b.BaseSlot, Width: b.Width, Debug: tok.Debug}, nil

	case token.Literal:
		val := tok.Int
		ep.pos++
		if ep.pos < len(ep.toks) && ep.toks[ep.pos].Kind == token.Index {
			widthTok := ep.toks[ep.pos]
			ep.pos++
			width := uint(widthTok.Int)
			if width == 0 {
				return nil, token.At(widthTok.Debug, errors.New("index with zero size"))
			}
			if width < 64 && val >= (uint64(1)<<width) {
				return nil, token.At(tok.Debug, fmt.Errorf("literal %d does not fit in %d bits", val, width))
			}
			vs := make([]bool, width)
			for i := uint(0); i < width; i++ {
				// Values[0] is the LSB (nandast.Expr doc comment).
				vs[i] = (val>>i)&1 == 1
			}
			return &nandast.Expr{Kind: nandast.ExprLiteralArray, Values: vs, Debug: tok.Debug}, nil
		}
		if val > 1 {
			return nil, token.At(tok.Debug, fmt.Errorf("bit literal must be 0 or 1, got %d", val))
		}
		return &nandast.Expr{Kind: nandast.ExprLiteral, Value: val != 0, Debug: tok.Debug}, nil

	default:
		return nil, token.At(tok.Debug, fmt.Errorf("unexpected token %v, expected an expression", tok.Kind))
	}
}

func parseArgList(frame *namestack.Frame, toks []token.Token) ([]nandast.Expr, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	parts := splitByComma(toks)
	args := make([]nandast.Expr, 0, len(parts))
	for _, part := range parts {
		if len(part) == 0 {
			return nil, errors.New("empty expression where one is required")
		}
		e, err := parseExprFull(frame, part)
		if err != nil {
			return nil, err
		}
		args = append(args, *e)
	}
	return args, nil
}
