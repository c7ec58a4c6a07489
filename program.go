package scatter

import (
	"fmt"
	"os"
	"path/filepath"
)

// NamespaceID indexes a Program's namespace vector. Program allocates ids in
// order, so namespace 0 is the first Load'd (or otherwise installed) module.
type NamespaceID int

func (id NamespaceID) String() string { return fmt.Sprintf("ns%d", int(id)) }

// Namespace is one loaded module's runtime bookkeeping: where it came from,
// what it imports, and the functions it installed. Programs own a growable
// vector of these, addressed by NamespaceID.
type Namespace struct {
	ID        NamespaceID
	Path      string // canonical absolute path, or "" for a REPL/in-memory namespace
	Imports   []Import
	Functions map[string]Function
	Body      Block
}

// resolveLocal looks up name among this namespace's own functions only.
func (ns *Namespace) resolveLocal(name string) (Function, bool) {
	fn, ok := ns.Functions[name]
	return fn, ok
}

// Program owns every loaded Namespace, keyed by NamespaceID, plus a path
// index so repeated imports of the same file reuse the existing namespace
// instead of reparsing it.
type Program struct {
	logging

	namespaces []*Namespace
	byPath     map[string]NamespaceID
}

// NewProgram constructs an empty Program, ready to have namespaces Load'd
// or Install'd into it.
func NewProgram(opts ...ProgramOption) *Program {
	p := &Program{byPath: make(map[string]NamespaceID)}
	ProgramOptions(opts...).apply(p)
	return p
}

func (p *Program) Namespace(id NamespaceID) *Namespace {
	if int(id) < 0 || int(id) >= len(p.namespaces) {
		return nil
	}
	return p.namespaces[id]
}

func (p *Program) allocNamespace(path string) *Namespace {
	ns := &Namespace{ID: NamespaceID(len(p.namespaces)), Path: path, Functions: make(map[string]Function)}
	p.namespaces = append(p.namespaces, ns)
	if path != "" {
		p.byPath[path] = ns.ID
	}
	return ns
}

// Install parses no new file; it installs an already-parsed Module's
// functions directly into a fresh namespace. The REPL uses this for
// interactively entered code, which has no file path of its own.
func (p *Program) Install(mod *Module) (NamespaceID, error) {
	ns := p.allocNamespace("")
	return ns.ID, p.installModule(ns, mod)
}

// InstallInto installs mod's functions into an already-allocated namespace,
// accumulating rather than replacing its imports. The REPL uses this to
// feed each entered line's declarations into one running namespace instead
// of allocating a fresh one per line.
func (p *Program) InstallInto(id NamespaceID, mod *Module) error {
	ns := p.Namespace(id)
	if ns == nil {
		return fmt.Errorf("no such namespace %v", id)
	}
	return p.installModule(ns, mod)
}

func (p *Program) installModule(ns *Namespace, mod *Module) error {
	ns.Imports = append(ns.Imports, mod.Imports...)
	ns.Body = mod.Body
	for _, fn := range mod.Functions {
		// REPL-style replace-on-redefine; file loads get the same
		// behavior since spec.md leaves the choice to the caller and
		// replace is simpler to reason about across re-Loads of an
		// edited file.
		ns.Functions[fn.Name] = fn
	}
	return nil
}

// Load reads and parses the file at path (relative to base, if path is not
// already absolute), recursively loading its imports, then installs its
// functions. De-duplication is by canonical absolute path: an already
// loaded file's namespace id is reused rather than reparsing it, which is
// also how import cycles are made safe at load time -- a cycle just means
// two namespaces import each other by id; the analyzer's fixed-point loop
// is what actually resolves mutual recursion, not the loader.
func (p *Program) Load(path string, base string) (NamespaceID, error) {
	abs, err := canonicalImportPath(path, base)
	if err != nil {
		return 0, err
	}
	if id, ok := p.byPath[abs]; ok {
		return id, nil
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", abs, err)
	}
	toks, err := Lex(string(src))
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", abs, err)
	}
	mod, err := Parse(toks)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", abs, err)
	}

	ns := p.allocNamespace(abs)
	p.logf("load", "%s -> %s", path, abs)

	dir := filepath.Dir(abs)
	for _, imp := range mod.Imports {
		if _, err := p.Load(imp.Path, dir); err != nil {
			return 0, fmt.Errorf("importing %s from %s: %w", imp.Path, abs, err)
		}
	}
	return ns.ID, p.installModule(ns, mod)
}

func canonicalImportPath(path, base string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// ResolvedName is what resolve_function returns on success: the namespace a
// name ultimately lives in, together with its name in that namespace (which
// may differ from the name the caller looked up, under a Scoped import).
type ResolvedName struct {
	Namespace NamespaceID
	Name      string
}

// Resolve implements spec's resolve_function: local namespace first, then
// each import in declaration order, first match wins. Intrinsics are never
// consulted here -- callers check IsIntrinsic before calling Resolve.
func (p *Program) Resolve(current NamespaceID, name string) (ResolvedName, bool) {
	ns := p.Namespace(current)
	if ns == nil {
		return ResolvedName{}, false
	}
	if _, ok := ns.resolveLocal(name); ok {
		return ResolvedName{current, name}, true
	}
	for _, imp := range ns.Imports {
		impID, ok := p.byPath[canonicalImportPathOf(ns, imp)]
		if !ok {
			continue
		}
		switch imp.Kind {
		case ImportWildcard:
			if r, ok := p.resolveIn(impID, name); ok {
				return r, true
			}
		case ImportNamed:
			if containsName(imp.Names, name) {
				if r, ok := p.resolveIn(impID, name); ok {
					return r, true
				}
			}
		case ImportScoped:
			prefix := imp.Prefix + "."
			if len(name) > len(prefix) && name[:len(prefix)] == prefix {
				tail := name[len(prefix):]
				if r, ok := p.resolveIn(impID, tail); ok {
					return r, true
				}
			}
		}
	}
	return ResolvedName{}, false
}

func (p *Program) resolveIn(id NamespaceID, name string) (ResolvedName, bool) {
	ns := p.Namespace(id)
	if ns == nil {
		return ResolvedName{}, false
	}
	if _, ok := ns.resolveLocal(name); ok {
		return ResolvedName{id, name}, true
	}
	return ResolvedName{}, false
}

func canonicalImportPathOf(ns *Namespace, imp Import) string {
	if ns.Path == "" {
		return imp.Path
	}
	abs, err := canonicalImportPath(imp.Path, filepath.Dir(ns.Path))
	if err != nil {
		return imp.Path
	}
	return abs
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Function looks up a function by its resolved (namespace, name) pair.
func (p *Program) Function(r ResolvedName) (Function, bool) {
	ns := p.Namespace(r.Namespace)
	if ns == nil {
		return Function{}, false
	}
	return ns.resolveLocal(r.Name)
}
