package scatter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arityOf composes a sequence of intrinsic arities serially, the same way
// analyzeBlock folds a block's terms together.
func arityOf(t *testing.T, names ...string) Arity {
	t.Helper()
	running := noopArity()
	for _, name := range names {
		def, ok := LookupIntrinsic(name)
		require.True(t, ok, "unknown intrinsic %q", name)
		next, err := serialArity(running, def.Arity)
		require.NoError(t, err)
		running = next
	}
	return running
}

// Dependent-type intrinsic composition: scenario 7 of the end-to-end
// testable properties.
func TestArity_dependentComposition(t *testing.T) {
	for _, tc := range []struct {
		name string
		ops  []string
		want string
	}{
		{"swap plus", []string{"swap", "+"}, "n n - n"},
		{"dup increment", []string{"dup", "++"}, "n - n n"},
		{"swap increment", []string{"swap", "++"}, "n 0 - 0 n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := arityOf(t, tc.ops...)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

// Arity composition laws (spec.md 8): identity and idempotence.
func TestArity_compositionLaws(t *testing.T) {
	swap := arityOf(t, "swap")

	serialLeftIdentity, err := serialArity(noopArity(), swap)
	require.NoError(t, err)
	if diff := cmp.Diff(swap, serialLeftIdentity); diff != "" {
		t.Errorf("serial(noop, A) != A (-want +got):\n%s", diff)
	}

	serialRightIdentity, err := serialArity(swap, noopArity())
	require.NoError(t, err)
	if diff := cmp.Diff(swap, serialRightIdentity); diff != "" {
		t.Errorf("serial(A, noop) != A (-want +got):\n%s", diff)
	}

	idempotent, err := parallelArity(swap, swap)
	require.NoError(t, err)
	if diff := cmp.Diff(swap, idempotent); diff != "" {
		t.Errorf("parallel(A, A) != A (-want +got):\n%s", diff)
	}
}

func TestArity_parallelCommutative(t *testing.T) {
	a := arityOf(t, "dup") // pops 1, pushes 2 (both dependent on slot 0)
	b := Arity{
		Pops:   []Type{TypeUnknown},
		Pushes: []ResultantType{normalType(TypeNumber), normalType(TypeNumber)},
	}

	ab, err := parallelArity(a, b)
	require.NoError(t, err)
	ba, err := parallelArity(b, a)
	require.NoError(t, err)
	if diff := cmp.Diff(ab, ba); diff != "" {
		t.Errorf("parallel not commutative (-ab +ba):\n%s", diff)
	}
}

func TestArity_parallelDifferingSizesRejected(t *testing.T) {
	a := arityOf(t, "dup")     // pops 1, pushes 2
	b := pushTwoArity(TypeNumber, TypeNumber) // pops 0, pushes 2
	_, err := parallelArity(a, b)
	require.Error(t, err)
	var ce *ArityCombineError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ArityDifferingSizes, ce.Kind)
}

func TestParseArity_roundTrip(t *testing.T) {
	for _, text := range []string{
		"n n - n",
		"n - n n",
		"n 0 - 0 n",
		"- n",
	} {
		a, ok := ParseArity(text)
		require.True(t, ok, "ParseArity(%q)", text)
		assert.Equal(t, text, a.String())
	}
}
