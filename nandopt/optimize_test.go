package nandopt_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/nandcheck"
	"github.com/jcorbin/nandlang/nandopt"
	"github.com/jcorbin/nandlang/nandparse"
	"github.com/jcorbin/nandlang/nandvm"
	"github.com/jcorbin/nandlang/token"
)

func parse(t *testing.T, src string) *nandast.Program {
	t.Helper()
	toks, err := token.Lex("test", []byte(src))
	require.NoError(t, err)
	prog, err := nandparse.Parse(toks)
	require.NoError(t, err)
	nandvm.AddBuiltins(prog)
	require.NoError(t, nandcheck.Check(prog))
	return prog
}

func exec(t *testing.T, prog *nandast.Program) string {
	t.Helper()
	var out bytes.Buffer
	vm := nandvm.New(prog, nandvm.WithOutput(&out))
	require.NoError(t, vm.Run(context.Background()))
	return out.String()
}

// Test_Optimize_preservesSemantics exercises spec.md §8 property 7:
// optimizing a program never changes what it prints, across a mix of
// foldable NAND runs, an If/While condition that's provably constant, and a
// dead assignment to an ignored target.
func Test_Optimize_preservesSemantics(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"literal nand chain", `function main ( ) { putb ( 0 ! 0 ! ( 1 ! 1 ) ) ; endl ( ) ; }`},
		{"constant if condition", `function main ( ) { if 1 ! 0 { putb ( 1 ) ; } else { putb ( 0 ) ; } }`},
		{"constant while condition false", `function main ( ) { while 0 { putb ( 1 ) ; } putb ( 0 ) ; }`},
		{"dead ignored assignment", `function main ( ) { _ = 1 ! 1 ; putb ( 0 ) ; }`},
		{"mixed constant and variable args", `function f ( a , b : c ) { c = a ! b ; } function main ( ) { var x = 1 ; putb ( f ( x , 1 ! 0 ) ) ; }`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			unopt := parse(t, tc.src)
			want := exec(t, unopt)

			opt := parse(t, tc.src)
			require.NoError(t, nandopt.Optimize(opt))
			got := exec(t, opt)

			assert.Equal(t, want, got)
		})
	}
}

// Test_Optimize_selfRecursionTerminates exercises spec.md §8 property 8: a
// self-recursive function's ConstantLevel computation terminates (rather
// than looping forever) and yields GLOBAL, so Optimize neither hangs nor
// folds anything out of its body.
func Test_Optimize_selfRecursionTerminates(t *testing.T) {
	src := `
		function countdown ( n ) {
			if n {
				putb ( n ) ;
				countdown ( 0 ) ;
			}
		}
		function main ( ) {
			countdown ( 1 ) ;
			endl ( ) ;
		}
	`
	prog := parse(t, src)
	done := make(chan error, 1)
	go func() { done <- nandopt.Optimize(prog) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Optimize did not terminate on self-recursive function")
	}
	assert.Equal(t, "1\n", exec(t, prog))
}
