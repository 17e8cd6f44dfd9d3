package nandcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/nandlang/nandparse"
	"github.com/jcorbin/nandlang/token"
)

func mustCheck(t *testing.T, src string) error {
	t.Helper()
	toks, err := token.Lex("test", []byte(src))
	require.NoError(t, err)
	prog, err := nandparse.Parse(toks)
	require.NoError(t, err)
	return Check(prog)
}

func Test_Check_validProgramsPass(t *testing.T) {
	for _, src := range []string{
		`function main ( ) { }`,
		`function add ( a , b : sum ) { sum = a ! b ; } function main ( ) { var s = add ( 1 , 0 ) ; }`,
		`function main ( ) { if 1 { } else { } }`,
		`function main ( ) { var x = 1 ; while x { x = x ! x ; } }`,
	} {
		assert.NoError(t, mustCheck(t, src), "unexpected check error for %q", src)
	}
}

func Test_Check_missingMain(t *testing.T) {
	err := mustCheck(t, `function f ( ) { }`)
	assert.Error(t, err)
}

func Test_Check_mainMustBeNiladic(t *testing.T) {
	err := mustCheck(t, `function main ( a ) { }`)
	assert.Error(t, err)
}

// Test_Check_callArityMismatch exercises spec.md §8 property 4: for any
// declared function f(a,b:c) and any call site with n != 2 argument output
// bits, the validator errors.
func Test_Check_callArityMismatch(t *testing.T) {
	def := `function f ( a , b : c ) { c = a ! b ; } function main ( ) { `
	for _, tc := range []struct {
		name string
		call string
		want bool // want error
	}{
		{"too few", `var x = f ( 1 ) ;`, true},
		{"too many", `var x = f ( 1 , 0 , 1 ) ;`, true},
		{"exact", `var x = f ( 1 , 0 ) ;`, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := mustCheck(t, def+tc.call+` }`)
			if tc.want {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_Check_unknownFunction(t *testing.T) {
	err := mustCheck(t, `function main ( ) { var x = nope ( ) ; }`)
	assert.Error(t, err)
}

func Test_Check_assignArityMismatch(t *testing.T) {
	err := mustCheck(t, `function main ( ) { var a[2] = 1 ; }`)
	assert.Error(t, err)
}

func Test_Check_ifConditionMustBeSingleOutput(t *testing.T) {
	err := mustCheck(t, `function main ( ) { } function f ( a[2] ) { if a { } }`)
	assert.Error(t, err)
}

func Test_Check_exprStmtMustBeZeroOutput(t *testing.T) {
	err := mustCheck(t, `function main ( ) { var a = 1 ; a ; }`)
	assert.Error(t, err)
}
