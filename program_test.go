package scatter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// scenario 6: wildcard, named, and scoped imports all resolve into one
// running program, each contributing its own constant function.
func TestProgram_importResolution(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}

	write("helper1.scatter", `helper1: { 1 }`)
	write("helper2.scatter", `helper2: { 2 }`)
	write("helper3.scatter", `helper3: { 3 }`)
	write("main.scatter", `
# * "helper1.scatter"
# { helper2 } "helper2.scatter"
# helper3 "helper3.scatter"
helper1 helper2 helper3.helper3
`)

	prog := NewProgram()
	ns, err := prog.Load(filepath.Join(dir, "main.scatter"), dir)
	require.NoError(t, err)

	it := NewInterpreter(prog, ns)
	snap, err := it.Run(prog.Namespace(ns).Body)
	require.NoError(t, err)

	require.Len(t, snap.Stack, 3)
	for i, want := range []float64{1, 2, 3} {
		require.Equal(t, ValueNumber, snap.Stack[i].Kind)
		require.Equal(t, want, snap.Stack[i].Num)
	}
}
