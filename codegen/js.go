package codegen

import (
	"fmt"
	"strconv"

	"github.com/jcorbin/scatter"
)

// GenerateJS renders an entire Program as JavaScript source.
func GenerateJS(prog *scatter.Program, entry scatter.NamespaceID, body scatter.Block) (string, error) {
	var buf Buffer
	e := &jsEmitter{buf: &buf, prog: prog}

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

	out := buf.String() + "\ntry {\n  main_body()\n  printStack()\n} catch (err) {\n  console.error(err)\n}\n"
	return out, nil
}

type jsEmitter struct {
	buf      *Buffer
	prog     *scatter.Program
	ns       scatter.NamespaceID
	captured map[string]bool
}

func (e *jsEmitter) function(name string, body scatter.Block) error {
	e.captured = map[string]bool{}
	e.buf.WriteLine(fmt.Sprintf("function %s() {", name))
	e.buf.IncreaseIndent()
	if err := e.block(body); err != nil {
		return err
	}
	e.buf.DecreaseIndent()
	e.buf.WriteLine("}")
	return nil
}

func (e *jsEmitter) block(b scatter.Block) error {
	for _, t := range b.Terms {
		if err := e.term(t); err != nil {
			return err
		}
	}
	return nil
}

func (e *jsEmitter) loopCondition(b *scatter.Block) error {
	if b == nil {
		return nil
	}
	if err := e.block(*b); err != nil {
		return err
	}
	e.buf.WriteLine("if (!checkCondition()) {")
	e.buf.WriteLine("  break")
	e.buf.WriteLine("}")
	return nil
}

func (e *jsEmitter) loop(l *scatter.LoopTerm) error {
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

func (e *jsEmitter) branch(b *scatter.BranchTerm) error {
	for _, arm := range b.Arms {
		if err := e.block(arm.Cond); err != nil {
			return err
		}
		e.buf.WriteLine("if (checkCondition()) {")
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

func (e *jsEmitter) term(t scatter.Term) error {
	switch t.Kind {
	case scatter.TermLiteral:
		return e.literal(t.Literal)

	case scatter.TermAddress:
		ref, err := resolveRef(e.prog, e.ns, t.Name)
		if err != nil {
			return err
		}
		e.buf.WriteLine(fmt.Sprintf("push(%s)", ref))
		return nil

	case scatter.TermName:
		if e.captured[t.Name] {
			e.buf.WriteLine(fmt.Sprintf("push(capture_%s)", t.Name))
			return nil
		}
		ref, err := resolveRef(e.prog, e.ns, t.Name)
		if err != nil {
			return err
		}
		e.buf.WriteLine(fmt.Sprintf("%s()", ref))
		return nil

	case scatter.TermCapture:
		e.captured[t.Name] = true
		e.buf.WriteLine(fmt.Sprintf("const capture_%s = take()", t.Name))
		return nil

	case scatter.TermBranch:
		return e.branch(t.Branch)

	case scatter.TermLoop:
		return e.loop(t.Loop)

	default:
		return &Error{Name: "<invalid term>"}
	}
}

func (e *jsEmitter) literal(v scatter.Value) error {
	switch v.Kind {
	case scatter.ValueString:
		e.buf.WriteLine(fmt.Sprintf("push(%s)", strconv.Quote(v.Str)))
	case scatter.ValueNumber:
		e.buf.WriteLine(fmt.Sprintf("push(%s)", numberLiteral(v.Num)))
	case scatter.ValueBool:
		if v.Bool {
			e.buf.WriteLine("push(true)")
		} else {
			e.buf.WriteLine("push(false)")
		}
	default:
		return &Error{Name: "<address literal>"}
	}
	return nil
}
