package codegen

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jcorbin/scatter"
)

// GenerateC renders an entire Program as C source: forward declarations,
// then every namespace's functions, then a main_body wrapping the entry
// namespace's top-level block, then a C main that drains the stack.
func GenerateC(prog *scatter.Program, entry scatter.NamespaceID, body scatter.Block) (string, error) {
	var buf Buffer
	e := &cEmitter{buf: &buf, prog: prog}

	for _, ns := range allNamespaces(prog) {
		e.ns = ns.ID
		for _, fn := range sortedFunctions(ns) {
			buf.WriteLine(fmt.Sprintf("int %s();", MangleName(ns.ID, fn.Name)))
		}
	}

	for _, ns := range allNamespaces(prog) {
		e.ns = ns.ID
		for _, fn := range sortedFunctions(ns) {
			if err := e.function(MangleName(ns.ID, fn.Name), fn.Body); err != nil {
				return "", err
			}
		}
	}

	e.ns = entry
	if err := e.function("main_body", body); err != nil {
		return "", err
	}

	return buf.String() + "\nint main() {\n  checked(main_body());\n  checked(print_stack());\n}\n", nil
}

type cEmitter struct {
	buf      *Buffer
	prog     *scatter.Program
	ns       scatter.NamespaceID
	captured map[string]bool
}

func (e *cEmitter) function(name string, body scatter.Block) error {
	e.captured = map[string]bool{}
	e.buf.WriteLine(fmt.Sprintf("int %s() {", name))
	e.buf.IncreaseIndent()
	if err := e.block(body); err != nil {
		return err
	}
	e.buf.WriteLine("return OK;")
	e.buf.DecreaseIndent()
	e.buf.WriteLine("}")
	return nil
}

func (e *cEmitter) block(b scatter.Block) error {
	for _, t := range b.Terms {
		if err := e.term(t); err != nil {
			return err
		}
	}
	return nil
}

func (e *cEmitter) loopCondition(b *scatter.Block) error {
	if b == nil {
		return nil
	}
	if err := e.block(*b); err != nil {
		return err
	}
	e.buf.WriteLine("int c;")
	e.buf.WriteLine("checked(check_condition(&c));")
	e.buf.WriteLine("if (!c) {")
	e.buf.WriteLine("  break;")
	e.buf.WriteLine("}")
	return nil
}

func (e *cEmitter) loop(l *scatter.LoopTerm) error {
	e.buf.WriteLine("while (1) {")
	e.buf.IncreaseIndent()
	if err := e.loopCondition(l.Pre); err != nil {
		return err
	}
	if err := e.block(l.Body); err != nil {
		return err
	}
	if err := e.loopCondition(l.Post); err != nil {
		return err
	}
	e.buf.DecreaseIndent()
	e.buf.WriteLine("}")
	return nil
}

func (e *cEmitter) branch(b *scatter.BranchTerm) error {
	for _, arm := range b.Arms {
		if err := e.block(arm.Cond); err != nil {
			return err
		}
		e.buf.WriteLine("int c;")
		e.buf.WriteLine("checked(check_condition(&c));")
		e.buf.WriteLine("if (c) {")
		e.buf.IncreaseIndent()
		if err := e.block(arm.Body); err != nil {
			return err
		}
		e.buf.DecreaseIndent()
		e.buf.WriteLine("} else {")
		e.buf.IncreaseIndent()
	}
	for range b.Arms {
		e.buf.DecreaseIndent()
		e.buf.WriteLine("}")
	}
	return nil
}

func (e *cEmitter) term(t scatter.Term) error {
	switch t.Kind {
	case scatter.TermLiteral:
		return e.literal(t.Literal)

	case scatter.TermAddress:
		ref, err := resolveRef(e.prog, e.ns, t.Name)
		if err != nil {
			return err
		}
		e.buf.WriteLine(fmt.Sprintf("checked(push_fn_address(&%s));", ref))
		return nil

	case scatter.TermName:
		if e.captured[t.Name] {
			e.buf.WriteLine(fmt.Sprintf("checked(push_value(capture_%s));", t.Name))
			return nil
		}
		ref, err := resolveRef(e.prog, e.ns, t.Name)
		if err != nil {
			return err
		}
		e.buf.WriteLine(fmt.Sprintf("checked(%s());", ref))
		return nil

	case scatter.TermCapture:
		e.captured[t.Name] = true
		e.buf.WriteLine(fmt.Sprintf("Value capture_%s; checked(take(&capture_%s));", t.Name, t.Name))
		return nil

	case scatter.TermBranch:
		return e.branch(t.Branch)

	case scatter.TermLoop:
		return e.loop(t.Loop)

	default:
		return &Error{Name: "<invalid term>"}
	}
}

func (e *cEmitter) literal(v scatter.Value) error {
	switch v.Kind {
	case scatter.ValueString:
		e.buf.WriteLine(fmt.Sprintf("checked(push_string_literal(%s, %d));", strconv.Quote(v.Str), len(v.Str)))
	case scatter.ValueNumber:
		e.buf.WriteLine(fmt.Sprintf("checked(push_number_literal(%sL));", numberLiteral(v.Num)))
	case scatter.ValueBool:
		if v.Bool {
			e.buf.WriteLine("checked(push_true_literal());")
		} else {
			e.buf.WriteLine("checked(push_false_literal());")
		}
	default:
		return &Error{Name: "<address literal>"}
	}
	return nil
}

func numberLiteral(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func allNamespaces(prog *scatter.Program) []*scatter.Namespace {
	var out []*scatter.Namespace
	for i := 0; ; i++ {
		ns := prog.Namespace(scatter.NamespaceID(i))
		if ns == nil {
			break
		}
		out = append(out, ns)
	}
	return out
}

// sortedFunctions returns ns's functions ordered by name, so repeated
// codegen runs over the same Program produce byte-identical output despite
// Namespace.Functions being a map.
func sortedFunctions(ns *scatter.Namespace) []scatter.Function {
	names := make([]string, 0, len(ns.Functions))
	for name := range ns.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	fns := make([]scatter.Function, len(names))
	for i, name := range names {
		fns[i] = ns.Functions[name]
	}
	return fns
}
