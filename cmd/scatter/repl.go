package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcorbin/scatter/internal/logio"
	scatter "github.com/jcorbin/scatter"
)

// repl holds the state one interactive session accumulates: the Program
// that's being built up, the Interpreter running against it (one
// accumulating stack across every entered line, per spec), and any
// partial input still waiting on a closing brace/bracket/quote.
type repl struct {
	out     io.Writer
	in      *bufio.Scanner
	base    string
	prog    *scatter.Program
	ns      scatter.NamespaceID
	it      *scatter.Interpreter
	pending string
}

func runREPL(cmd *cobra.Command, log *logio.Logger) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	prog := scatter.NewProgram(scatter.WithProgramLogf(log.Leveledf("LOAD")))
	ns, err := prog.Install(&scatter.Module{})
	if err != nil {
		return err
	}
	it := scatter.NewInterpreter(prog, ns,
		scatter.WithInterpreterLogf(log.Leveledf("RUN")),
		scatter.WithOutput(cmd.OutOrStdout()),
		scatter.WithInput(os.Stdin),
	)

	r := &repl{
		out:  cmd.OutOrStdout(),
		in:   bufio.NewScanner(os.Stdin),
		base: cwd,
		prog: prog,
		ns:   ns,
		it:   it,
	}
	r.run()
	return nil
}

func (r *repl) run() {
	for {
		r.showPrompt()
		if !r.in.Scan() {
			return
		}
		line := r.in.Text()

		if r.pending == "" {
			switch strings.TrimSpace(line) {
			case "exit":
				return
			case "list":
				r.listFunctions()
				continue
			case "list intrinsics":
				r.listIntrinsics()
				continue
			case "clear":
				r.it = scatter.NewInterpreter(r.prog, r.ns,
					scatter.WithOutput(r.out),
					scatter.WithInput(os.Stdin),
				)
				continue
			}
		}

		r.feed(line)
	}
}

func (r *repl) showPrompt() {
	fmt.Fprintf(r.out, "%s> ", formatStackPrompt(r.it.Stack()))
}

func formatStackPrompt(stack []scatter.Value) string {
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = v.GoString()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (r *repl) feed(line string) {
	src := r.pending + line + "\n"

	toks, err := scatter.Lex(src)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		r.pending = ""
		return
	}

	mod, err := scatter.Parse(toks)
	if err != nil {
		if pe, ok := err.(*scatter.ParseError); ok && pe.IsEarlyEOF() {
			r.pending = src
			return
		}
		fmt.Fprintf(r.out, "error: %v\n", err)
		r.pending = ""
		return
	}
	r.pending = ""

	for _, imp := range mod.Imports {
		if _, err := r.prog.Load(imp.Path, r.base); err != nil {
			fmt.Fprintf(r.out, "error: importing %s: %v\n", imp.Path, err)
			return
		}
	}

	if err := r.installAndRun(mod); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

func (r *repl) installAndRun(mod *scatter.Module) error {
	if err := r.prog.InstallInto(r.ns, mod); err != nil {
		return err
	}
	_, err := r.it.Run(mod.Body)
	return err
}

func (r *repl) listFunctions() {
	ns := r.prog.Namespace(r.ns)
	if ns == nil {
		return
	}
	names := make([]string, 0, len(ns.Functions))
	for name := range ns.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(r.out, name)
	}
}

func (r *repl) listIntrinsics() {
	for _, name := range scatter.IntrinsicNames() {
		fmt.Fprintln(r.out, name)
	}
}
