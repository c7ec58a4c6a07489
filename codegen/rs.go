package codegen

import (
	"fmt"
	"strconv"

	"github.com/jcorbin/scatter"
)

// GenerateSystems renders an entire Program as the "systems" dialect: a
// Rust-like form where every function takes an interpreter handle and
// returns a result, matching the original toolchain's rs_codegen_module.
func GenerateSystems(prog *scatter.Program, entry scatter.NamespaceID, body scatter.Block) (string, error) {
	var buf Buffer
	e := &systemsEmitter{buf: &buf, prog: prog}

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

	out := buf.String() + "\nfn main() -> InterpreterResult {\n  let mut c = Interpreter::new();\n  main_body(&mut c)?;\n  c.print()?;\n  Ok(())\n}\n"
	return out, nil
}

type systemsEmitter struct {
	buf      *Buffer
	prog     *scatter.Program
	ns       scatter.NamespaceID
	captured map[string]bool
}

func (e *systemsEmitter) function(name string, body scatter.Block) error {
	e.captured = map[string]bool{}
	e.buf.WriteLine(fmt.Sprintf("fn %s(c: &mut Interpreter) -> InterpreterResult {", name))
	e.buf.IncreaseIndent()
	if err := e.block(body); err != nil {
		return err
	}
	e.buf.WriteLine("Ok(())")
	e.buf.DecreaseIndent()
	e.buf.WriteLine("}")
	return nil
}

func (e *systemsEmitter) block(b scatter.Block) error {
	for _, t := range b.Terms {
		if err := e.term(t); err != nil {
			return err
		}
	}
	return nil
}

func (e *systemsEmitter) loopCondition(b *scatter.Block) error {
	if b == nil {
		return nil
	}
	if err := e.block(*b); err != nil {
		return err
	}
	e.buf.WriteLine("if !c.check_condition()? { break }")
	return nil
}

func (e *systemsEmitter) loop(l *scatter.LoopTerm) error {
	e.buf.WriteLine("loop {")
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

func (e *systemsEmitter) branch(b *scatter.BranchTerm) error {
	for _, arm := range b.Arms {
		if err := e.block(arm.Cond); err != nil {
			return err
		}
		e.buf.WriteLine("if c.check_condition()? {")
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

func (e *systemsEmitter) term(t scatter.Term) error {
	switch t.Kind {
	case scatter.TermLiteral:
		return e.literal(t.Literal)

	case scatter.TermAddress:
		ref, err := resolveRef(e.prog, e.ns, t.Name)
		if err != nil {
			return err
		}
		e.buf.WriteLine(fmt.Sprintf("c.push(&(%s as Operation))?;", ref))
		return nil

	case scatter.TermName:
		if e.captured[t.Name] {
			e.buf.WriteLine(fmt.Sprintf("c.push(capture_%s.clone())?;", t.Name))
			return nil
		}
		ref, err := resolveRef(e.prog, e.ns, t.Name)
		if err != nil {
			return err
		}
		e.buf.WriteLine(fmt.Sprintf("%s(c)?;", ref))
		return nil

	case scatter.TermCapture:
		e.captured[t.Name] = true
		e.buf.WriteLine(fmt.Sprintf("let capture_%s = c.take()?;", t.Name))
		return nil

	case scatter.TermBranch:
		return e.branch(t.Branch)

	case scatter.TermLoop:
		return e.loop(t.Loop)

	default:
		return &Error{Name: "<invalid term>"}
	}
}

func (e *systemsEmitter) literal(v scatter.Value) error {
	switch v.Kind {
	case scatter.ValueString:
		e.buf.WriteLine(fmt.Sprintf("c.push(%s)?;", strconv.Quote(v.Str)))
	case scatter.ValueNumber:
		e.buf.WriteLine(fmt.Sprintf("c.push(%sf64)?;", numberLiteral(v.Num)))
	case scatter.ValueBool:
		if v.Bool {
			e.buf.WriteLine("c.push(true)?;")
		} else {
			e.buf.WriteLine("c.push(false)?;")
		}
	default:
		return &Error{Name: "<address literal>"}
	}
	return nil
}
