package nandlang_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/nandlang/nandlang"
	"github.com/jcorbin/nandlang/nandvm"
	"github.com/jcorbin/nandlang/token"
)

func Test_Run(t *testing.T) {
	var out bytes.Buffer
	err := nandlang.Run(context.Background(), "test", []byte(
		`function main ( ) { putb ( 1 ) ; endl ( ) ; }`,
	), nandvm.WithOutput(&out))
	require.NoError(t, err)
	assert.Equal(t, "1\n", out.String())
}

func Test_Compile_error(t *testing.T) {
	_, err := nandlang.Compile("test", []byte(`function main ( ) { putb ( x ) ; }`))
	require.Error(t, err)
}

func Test_RenderDiagnostic(t *testing.T) {
	src := []byte("function main ( ) {\n\tputb ( x ) ;\n}")
	d := token.Diagnostic{
		Debug: token.DebugInfo{File: "test", Line: 2, Column: 9},
		Err:   assert.AnError,
	}
	got := nandlang.RenderDiagnostic(src, d)
	assert.Contains(t, got, assert.AnError.Error())
	assert.Contains(t, got, "    putb ( x ) ;")
	assert.Contains(t, got, "^")
}
