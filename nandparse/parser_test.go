package nandparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/token"
)

func mustParse(t *testing.T, src string) *nandast.Program {
	t.Helper()
	toks, err := token.Lex("test", []byte(src))
	require.NoError(t, err, "lex error")
	prog, err := Parse(toks)
	require.NoError(t, err, "parse error")
	return prog
}

func Test_Parse_simpleAssignAndNand(t *testing.T) {
	prog := mustParse(t, `function main ( ) { var a = 1 ; var b = a ! a ; }`)
	fn := prog.Lookup("main")
	require.NotNil(t, fn)
	assert.Equal(t, uint(0), fn.Inputs)
	assert.Equal(t, uint(0), fn.Outputs)
	require.Len(t, fn.Body, 2)

	decl0 := fn.Body[0]
	require.Equal(t, nandast.StmtVarDecl, decl0.Kind)
	require.Equal(t, []nandast.Slot{0}, decl0.Targets)
	require.Len(t, decl0.Exprs, 1)
	assert.Equal(t, nandast.ExprLiteral, decl0.Exprs[0].Kind)
	assert.True(t, decl0.Exprs[0].Value)

	decl1 := fn.Body[1]
	require.Equal(t, nandast.StmtVarDecl, decl1.Kind)
	require.Equal(t, []nandast.Slot{1}, decl1.Targets)
	require.Len(t, decl1.Exprs, 1)
	nandExpr := decl1.Exprs[0]
	require.Equal(t, nandast.ExprNand, nandExpr.Kind)
	require.Equal(t, nandast.ExprVariable, nandExpr.Left.Kind)
	assert.Equal(t, nandast.Slot(0), nandExpr.Left.Slot)
	require.Equal(t, nandast.ExprVariable, nandExpr.Right.Kind)
	assert.Equal(t, nandast.Slot(0), nandExpr.Right.Slot)
}

func Test_Parse_functionParamsSplitByColon(t *testing.T) {
	prog := mustParse(t, `function add ( a , b : sum ) { sum = a ! b ; }`)
	fn := prog.Lookup("add")
	require.NotNil(t, fn)
	assert.Equal(t, uint(2), fn.Inputs)
	assert.Equal(t, uint(1), fn.Outputs)
}

func Test_Parse_arrayParamWidth(t *testing.T) {
	prog := mustParse(t, `function f ( a[8] : b[8] ) { b = a ; }`)
	fn := prog.Lookup("f")
	require.NotNil(t, fn)
	assert.Equal(t, uint(8), fn.Inputs)
	assert.Equal(t, uint(8), fn.Outputs)
	require.Len(t, fn.Body, 1)
	assign := fn.Body[0]
	require.Equal(t, nandast.StmtAssign, assign.Kind)
	require.Len(t, assign.Targets, 8)
	require.Len(t, assign.Exprs, 1)
	assert.Equal(t, nandast.ExprArray, assign.Exprs[0].Kind)
	assert.Equal(t, uint(8), assign.Exprs[0].Width)
}

func Test_Parse_ifElseOpensChildScope(t *testing.T) {
	prog := mustParse(t, `function f ( ) { if 1 { var a = 1 ; } else { var a = 0 ; } }`)
	fn := prog.Lookup("f")
	require.NotNil(t, fn)
	require.Len(t, fn.Body, 1)
	ifStmt := fn.Body[0]
	require.Equal(t, nandast.StmtIf, ifStmt.Kind)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
	// each branch's `a` gets slot 0 in its own child frame, since the two
	// branches' scopes don't see each other.
	assert.Equal(t, []nandast.Slot{0}, ifStmt.Then[0].Targets)
	assert.Equal(t, []nandast.Slot{0}, ifStmt.Else[0].Targets)
}

func Test_Parse_while(t *testing.T) {
	prog := mustParse(t, `function f ( ) { var a = 1 ; while a { a = a ! a ; } }`)
	fn := prog.Lookup("f")
	require.NotNil(t, fn)
	require.Len(t, fn.Body, 2)
	w := fn.Body[1]
	require.Equal(t, nandast.StmtWhile, w.Kind)
	require.Equal(t, nandast.ExprVariable, w.Cond.Kind)
	require.Len(t, w.Then, 1)
}

func Test_Parse_callExpr(t *testing.T) {
	prog := mustParse(t, `
		function add ( a , b : sum ) { sum = a ! b ; }
		function main ( ) { var s = add ( 1 , 0 ) ; }
	`)
	fn := prog.Lookup("main")
	require.NotNil(t, fn)
	require.Len(t, fn.Body, 1)
	call := fn.Body[0].Exprs[0]
	require.Equal(t, nandast.ExprCall, call.Kind)
	assert.Equal(t, "add", call.Name)
	require.Len(t, call.Args, 2)
}

func Test_Parse_literalArrayMSBFirst(t *testing.T) {
	// 5 = 0b101, as a 3-bit literal array -> Values[0] (LSB) = true, then
	// false, then true (MSB), which evaluation pushes first.
	prog := mustParse(t, `function f ( ) { var a[3] = 5[3] ; }`)
	fn := prog.Lookup("f")
	require.NotNil(t, fn)
	e := fn.Body[0].Exprs[0]
	require.Equal(t, nandast.ExprLiteralArray, e.Kind)
	require.Equal(t, []bool{true, false, true}, e.Values)
}

func Test_Parse_ignoreSlotDeclAndAssign(t *testing.T) {
	prog := mustParse(t, `function f ( ) { var _ = 1 ; _ = 1 ; }`)
	fn := prog.Lookup("f")
	require.NotNil(t, fn)
	require.Len(t, fn.Body, 2)
	assert.Equal(t, []nandast.Slot{nandast.IgnoreSlot}, fn.Body[0].Targets)
	assert.Equal(t, []nandast.Slot{nandast.IgnoreSlot}, fn.Body[1].Targets)
}

func Test_Parse_errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"missing semicolon", `function f ( ) { var a = 1 }`},
		{"undefined variable", `function f ( ) { a = 1 ; }`},
		{"redefinition in same scope", `function f ( ) { var a = 1 ; var a = 0 ; }`},
		{"duplicate parameter", `function f ( a , a ) { }`},
		{"zero size index", `function f ( a[0] ) { }`},
		{"unexpected token in expr", `function f ( ) { var a = ! 1 ; }`},
		{"reading the ignore binding", `function f ( ) { var a = _ ; }`},
		{"bit literal out of range", `function f ( ) { var a = 2 ; }`},
		{"literal does not fit width", `function f ( ) { var a[2] = 7[2] ; }`},
		{"redefinition of function", `function f ( ) { } function f ( ) { }`},
		{"garbage at top level", `not a keyword`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := token.Lex("test", []byte(tc.src))
			require.NoError(t, err, "lex error")
			_, err = Parse(toks)
			assert.Error(t, err, "expected a parse error for %q", tc.src)
		})
	}
}
