package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lex_roundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"ident", "foo"},
		{"keywords", "function while if else var"},
		{"literal", "42"},
		{"punct", "a , b : c = d ; e ! f"},
		{"nested block", "function f ( a : b ) { b = a ; }"},
		{"nested paren call", "f ( a , b )"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Lex("test", []byte(tc.src))
			require.NoError(t, err, "unexpected lex error")
			got := joinTokens(toks)
			again, err := Lex("test", []byte(got))
			require.NoError(t, err, "re-lexing rendered tokens must not error")
			assert.Equal(t, toks, again, "re-lexed tokens must match the first pass")
		})
	}
}

func Test_Lex_balancedBlocks(t *testing.T) {
	toks, err := Lex("test", []byte("function f ( ) { if a { b = 1 ; } else { b = 0 ; } }"))
	require.NoError(t, err)
	require.Len(t, toks, 4) // function f ( ) BLOCK
	block := toks[3]
	require.Equal(t, Block, block.Kind)
	require.NotEmpty(t, block.Kids)
}

func Test_Lex_unmatchedBracket(t *testing.T) {
	for _, src := range []string{"{ a = 1 ;", "( a , b", "function f ( a : b ) { b = a ;"} {
		_, err := Lex("test", []byte(src))
		assert.Error(t, err, "expected a lex error for %q", src)
	}
}

func Test_Lex_charLiteralExpansion(t *testing.T) {
	// 'A' is ASCII 65 = 0b01000001
	toks, err := Lex("test", []byte("'A'"))
	require.NoError(t, err)

	want := []uint64{0, 1, 0, 0, 0, 0, 0, 1}
	require.Len(t, toks, 15)
	for i, bit := range want {
		tok := toks[i*2]
		require.Equal(t, Literal, tok.Kind)
		assert.Equal(t, bit, tok.Int, "bit %d", i)
		if i*2+1 < len(toks) {
			require.Equal(t, Comma, toks[i*2+1].Kind)
		}
	}
}

func Test_Lex_escapeQuirk(t *testing.T) {
	toks, err := Lex("test", []byte(`'\r'`))
	require.NoError(t, err)
	var value uint64
	for i := 0; i < 8; i++ {
		value = value<<1 | toks[i*2].Int
	}
	assert.Equal(t, uint64('\f'), value, "\\r must lex to the same byte as \\f, preserving the source quirk")
}

func Test_Lex_indexAdjacency(t *testing.T) {
	toks, err := Lex("test", []byte("x[3]"))
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, Index, toks[1].Kind, "'[' right after x must lex as an index")

	// whitespace before '[' means it is not an index of x, and a '[' that
	// indexes nothing is a lex error
	_, err = Lex("test", []byte("x [3]"))
	assert.Error(t, err, "whitespace-separated '[' must not lex as an index")
}

func Test_Lex_allDigitIdentifierIsLiteral(t *testing.T) {
	toks, err := Lex("test", []byte("123"))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Literal, toks[0].Kind)
	assert.Equal(t, uint64(123), toks[0].Int)
}

func Test_Lex_badIdentifierStartingWithDigit(t *testing.T) {
	_, err := Lex("test", []byte("1abc"))
	assert.Error(t, err)
}

func Test_Lex_lineComment(t *testing.T) {
	toks, err := Lex("test", []byte("a // a comment\nb"))
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "a", toks[0].Str)
	assert.Equal(t, "b", toks[1].Str)
}
