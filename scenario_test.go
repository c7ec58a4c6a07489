package scatter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// scenario is one end-to-end fixture from testdata/scenarios.yaml: a module
// body, and the stack and/or arity outcome it must produce.
type scenario struct {
	Name                  string            `yaml:"name"`
	Source                string            `yaml:"source"`
	WantStack             []string          `yaml:"wantStack"`
	WantBodyArity         string            `yaml:"wantBodyArity"`
	WantFunctionArity     map[string]string `yaml:"wantFunctionArity"`
	WantAnalysisErrorKind string            `yaml:"wantAnalysisErrorKind"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	data, err := os.ReadFile("testdata/scenarios.yaml")
	require.NoError(t, err)
	var scenarios []scenario
	require.NoError(t, yaml.Unmarshal(data, &scenarios))
	require.NotEmpty(t, scenarios)
	return scenarios
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			prog := NewProgram()
			toks, err := Lex(sc.Source)
			require.NoError(t, err)
			mod, err := Parse(toks)
			require.NoError(t, err)
			ns, err := prog.Install(mod)
			require.NoError(t, err)

			an := Analyze(prog)

			if sc.WantAnalysisErrorKind != "" {
				r, ok := an.Bodies[ns]
				require.True(t, ok)
				require.Error(t, r.Err)
				var ae *AnalysisError
				require.ErrorAs(t, r.Err, &ae)
				assert.Equal(t, sc.WantAnalysisErrorKind, ae.Kind.String())
				return
			}

			if sc.WantBodyArity != "" {
				r, ok := an.Bodies[ns]
				require.True(t, ok)
				require.NoError(t, r.Err)
				assert.Equal(t, sc.WantBodyArity, r.Arity.String())
			}

			for name, want := range sc.WantFunctionArity {
				a, ok := an.FunctionArity(FunctionKey{Namespace: ns, Name: name})
				require.True(t, ok, "function %q did not analyze", name)
				assert.Equal(t, want, a.String())
			}

			if sc.WantStack != nil {
				it := NewInterpreter(prog, ns)
				body := prog.Namespace(ns).Body
				snap, err := it.Run(body)
				require.NoError(t, err)
				got := make([]string, len(snap.Stack))
				for i, v := range snap.Stack {
					got[i] = v.String()
				}
				assert.Equal(t, sc.WantStack, got)
			}
		})
	}
}
