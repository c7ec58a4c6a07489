package scatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLex(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Lex(src)
	require.NoError(t, err)
	return toks
}

func TestParse_moduleBody(t *testing.T) {
	mod, err := Parse(mustLex(t, "420 42 +"))
	require.NoError(t, err)
	require.Len(t, mod.Body.Terms, 3)
	assert.Equal(t, TermLiteral, mod.Body.Terms[0].Kind)
	assert.Equal(t, NewNumber(420), mod.Body.Terms[0].Literal)
	assert.Equal(t, TermName, mod.Body.Terms[2].Kind)
	assert.Equal(t, "+", mod.Body.Terms[2].Name)
}

func TestParse_function(t *testing.T) {
	mod, err := Parse(mustLex(t, "double: { dup + }"))
	require.NoError(t, err)
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, "double", mod.Functions[0].Name)
	require.Len(t, mod.Functions[0].Body.Terms, 2)
}

func TestParse_branchAndLoop(t *testing.T) {
	mod, err := Parse(mustLex(t, `{ (1) "a" (0) "b" }`))
	require.NoError(t, err)
	require.Len(t, mod.Body.Terms, 1)
	require.Equal(t, TermBranch, mod.Body.Terms[0].Kind)
	require.Len(t, mod.Body.Terms[0].Branch.Arms, 2)

	mod, err = Parse(mustLex(t, `0 1 [ (rot dup) 1 - rot rot dup rot + ]`))
	require.NoError(t, err)
	last := mod.Body.Terms[len(mod.Body.Terms)-1]
	require.Equal(t, TermLoop, last.Kind)
	require.NotNil(t, last.Loop.Pre)
	require.Nil(t, last.Loop.Post)
}

func TestParse_capture(t *testing.T) {
	mod, err := Parse(mustLex(t, "~ a b ~ a b"))
	require.NoError(t, err)
	// ~a b~ captures b first (top of stack), then a.
	require.Len(t, mod.Body.Terms, 4)
	assert.Equal(t, TermCapture, mod.Body.Terms[0].Kind)
	assert.Equal(t, "b", mod.Body.Terms[0].Name)
	assert.Equal(t, TermCapture, mod.Body.Terms[1].Kind)
	assert.Equal(t, "a", mod.Body.Terms[1].Name)
}

func TestParse_address(t *testing.T) {
	mod, err := Parse(mustLex(t, "@rfib eval"))
	require.NoError(t, err)
	require.Len(t, mod.Body.Terms, 2)
	assert.Equal(t, TermAddress, mod.Body.Terms[0].Kind)
	assert.Equal(t, "rfib", mod.Body.Terms[0].Name)
}

func TestParse_imports(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want Import
	}{
		{"wildcard", `# * "helper1.scatter"`, Import{Kind: ImportWildcard, Path: "helper1.scatter"}},
		{"named", `# { helper2 } "helper2.scatter"`, Import{Kind: ImportNamed, Names: []string{"helper2"}, Path: "helper2.scatter"}},
		{"scoped", `# helper3 "helper3.scatter"`, Import{Kind: ImportScoped, Prefix: "helper3", Path: "helper3.scatter"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mod, err := Parse(mustLex(t, tc.src))
			require.NoError(t, err)
			require.Len(t, mod.Imports, 1)
			assert.Equal(t, tc.want, mod.Imports[0])
		})
	}
}

func TestParse_earlyEOFAccumulates(t *testing.T) {
	_, err := Parse(mustLex(t, "double: { dup"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.IsEarlyEOF())
}

func TestParse_unexpectedSymbolIsNotEarlyEOF(t *testing.T) {
	_, err := Parse(mustLex(t, "double: { dup } }"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.IsEarlyEOF())
}
