package codegen

import (
	"fmt"

	"github.com/jcorbin/scatter"
)

// Error reports a term with no compiled form: an unresolved Name or Address.
// Codegen always fails loudly here rather than emitting a placeholder
// identifier, per spec.
type Error struct {
	Name string
}

func (e *Error) Error() string { return "codegen: unresolved name " + e.Name }

// MangleName produces the identifier a user-defined function compiles to.
// Used uniformly across all three dialects, generalizing the teacher
// toolchain's Rust-dialect scoped naming (the original C/JS generators used
// an unnamespaced "user_fn_<name>", safe only because those generators never
// handled more than one namespace; spec.md's mangling rule names no such
// exception, so all three dialects share it here).
func MangleName(ns scatter.NamespaceID, name string) string {
	return fmt.Sprintf("user_fn_%d_%s", int(ns), name)
}

// resolveRef returns the mangled identifier a Name or Address term compiles
// to: an intrinsic's alias, or a resolved user function's mangled name.
func resolveRef(prog *scatter.Program, ns scatter.NamespaceID, name string) (string, error) {
	if def, ok := scatter.LookupIntrinsic(name); ok {
		return def.Mangled, nil
	}
	resolved, ok := prog.Resolve(ns, name)
	if !ok {
		return "", &Error{Name: name}
	}
	return MangleName(resolved.Namespace, resolved.Name), nil
}
