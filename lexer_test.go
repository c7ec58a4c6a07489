package scatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex_tokenKinds(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want []TokenKind
	}{
		{"arithmetic", "420 42 +", []TokenKind{TokNumber, TokNumber, TokName}},
		{"string literal", `"hello"`, []TokenKind{TokString}},
		{"booleans", "true false", []TokenKind{TokBool, TokBool}},
		{"symbols", "foo: { ( ) [ ] # @ ~ }", []TokenKind{
			TokName, TokSymbol, TokSymbol, TokSymbol, TokSymbol, TokSymbol, TokSymbol,
			TokSymbol, TokSymbol, TokSymbol, TokSymbol,
		}},
		{"line comment", "1 // trailing comment\n2", []TokenKind{TokNumber, TokSymbol, TokNumber}},
		{"block comment", "1 /* nested /* comment */ still */ 2", []TokenKind{TokNumber, TokNumber}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Lex(tc.src)
			require.NoError(t, err)
			kinds := make([]TokenKind, len(toks))
			for i, tok := range toks {
				kinds[i] = tok.Kind
			}
			assert.Equal(t, tc.want, kinds)
		})
	}
}

func TestLex_stringEscapes(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want string
	}{
		{"newline", `"a\nb"`, "a\nb"},
		{"tab", `"a\tb"`, "a\tb"},
		{"quote", `"a\"b"`, `a"b`},
		{"hex escape", `"\x41"`, "A"},
		{"unicode brace escape", `"\u{1F600}"`, "\U0001F600"},
		{"unicode fixed escape", "\"\\u0041\"", "A"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Lex(tc.src)
			require.NoError(t, err)
			require.Len(t, toks, 1)
			assert.Equal(t, tc.want, toks[0].Text)
		})
	}
}

func TestLex_numberRoundTrip(t *testing.T) {
	for _, src := range []string{"0", "42", "3.5", "-1"} {
		toks, err := Lex(src)
		require.NoError(t, err)
		require.Len(t, toks, 1)
		assert.Equal(t, src, formatNumber(toks[0].Number))
	}
}

// Token round-trip of positions: every emitted token's range starts at or
// before it ends, and successive tokens never regress in start offset.
func TestLex_positionsMonotonic(t *testing.T) {
	toks, err := Lex("foo bar: { ~ a b ~ baz } [ 1 2 ]\n# * \"mod\"")
	require.NoError(t, err)
	require.NotEmpty(t, toks)

	prevStart := -1
	for _, tok := range toks {
		assert.LessOrEqual(t, tok.Range.Start.Offset, tok.Range.End.Offset)
		assert.GreaterOrEqual(t, tok.Range.Start.Offset, prevStart)
		prevStart = tok.Range.Start.Offset
	}
}

func TestLex_unterminatedStringErrors(t *testing.T) {
	_, err := Lex(`"unterminated`)
	require.Error(t, err)
	var te *TokenizeError
	require.ErrorAs(t, err, &te)
}
