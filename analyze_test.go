package scatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installSource(t *testing.T, prog *Program, src string) (NamespaceID, *Module) {
	t.Helper()
	toks, err := Lex(src)
	require.NoError(t, err)
	mod, err := Parse(toks)
	require.NoError(t, err)
	ns, err := prog.Install(mod)
	require.NoError(t, err)
	return ns, mod
}

// scenario 1: arithmetic.
func TestAnalyze_arithmetic(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, "420 42 +")
	an := Analyze(prog)
	a, ok := an.Bodies[ns]
	require.True(t, ok)
	require.NoError(t, a.Err)
	assert.Equal(t, "- n", a.Arity.String())
}

// scenario 2: recursive fibonacci, arity resolves to n - n only after the
// fixed point loop retries the pending function.
func TestAnalyze_recursiveFibonacci(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, `rfib: { { (dup 1 >) 1 - dup rfib swap 1 - rfib + } }`)
	an := Analyze(prog)
	a, ok := an.FunctionArity(FunctionKey{ns, "rfib"})
	require.True(t, ok)
	assert.Equal(t, "n - n", a.String())
}

// scenario 3: iterative fibonacci via a pre-conditioned loop.
func TestAnalyze_iterativeFibonacci(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, `ifib: { 0 1 [ (rot dup) 1 - rot rot dup rot + ] drop drop }`)
	an := Analyze(prog)
	a, ok := an.FunctionArity(FunctionKey{ns, "ifib"})
	require.True(t, ok)
	assert.Equal(t, "n - n", a.String())
}

// scenario 4: a branch whose first arm is statically always-true: the later
// arms are never even analyzed, and the fallthrough path is foreclosed.
func TestAnalyze_branchKnownTruthiness(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, `{ (1) "a" (0) "b" (1) "c" }`)
	an := Analyze(prog)
	a, ok := an.Bodies[ns]
	require.True(t, ok)
	require.NoError(t, a.Err)
	assert.Equal(t, "- s", a.Arity.String())
}

// scenario 5: a loop with neither a pre- nor post-condition has no bound on
// its net effect and must be rejected outright.
func TestAnalyze_unboundedLoopRejected(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, `[ 1 ]`)
	an := Analyze(prog)
	a, ok := an.Bodies[ns]
	require.True(t, ok)
	require.Error(t, a.Err)
	var ae *AnalysisError
	require.ErrorAs(t, a.Err, &ae)
	assert.Equal(t, AnalysisIndefiniteSize, ae.Kind)
}

// Regression test for isolateArity: a capture variable that is only ever
// expected (recalled), never defined anywhere reachable, must surface as
// MissingDeclaration rather than a clean arity.
func TestAnalyze_isolateRejectsUnboundRecall(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, `missing`)
	an := Analyze(prog)
	a, ok := an.Bodies[ns]
	require.True(t, ok)
	require.Error(t, a.Err)
	var ae *AnalysisError
	require.ErrorAs(t, a.Err, &ae)
	assert.Equal(t, AnalysisMissingDeclaration, ae.Kind)
}

// Regression test for analyzeLoop's fixed point: a loop whose body leaves
// the stack unchanged on every iteration (a genuine counted loop) must
// converge to a concrete arity rather than looping forever or approximating.
func TestAnalyze_loopFixedPointConverges(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, `countdown: { [ (dup 0 >) 1 - ] }`)
	an := Analyze(prog)
	a, ok := an.FunctionArity(FunctionKey{ns, "countdown"})
	require.True(t, ok)
	assert.Equal(t, "n - n", a.String())
}

// Regression test for analyzeBranch's fallthrough path: with no arm
// statically known to fire, falling through every condition without running
// any body must still contribute its own (side-effect-only) arity.
func TestAnalyze_branchFallthrough(t *testing.T) {
	prog := NewProgram()
	ns, _ := installSource(t, prog, `{ (dup 0 >) "pos" }`)
	an := Analyze(prog)
	a, ok := an.Bodies[ns]
	require.True(t, ok)
	// either the arm runs (leaving [n, "pos"]) or it falls through leaving
	// just the original number -- no single push count describes both, so
	// the branch is rejected. Without the fallthrough path it would analyze
	// as "n - n s".
	require.Error(t, a.Err)
	var ae *AnalysisError
	require.ErrorAs(t, a.Err, &ae)
	assert.Equal(t, AnalysisIndefiniteSize, ae.Kind)
}
