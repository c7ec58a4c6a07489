package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/scatter/internal/logio"
	scatter "github.com/jcorbin/scatter"
	"github.com/jcorbin/scatter/codegen"
)

// isTerminal reports whether f is a character device, the same check
// yaegi's REPL uses to decide whether to show a prompt.
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}

func runStdin(cmd *cobra.Command, log *logio.Logger, analyze bool) error {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	prog := scatter.NewProgram(scatter.WithProgramLogf(log.Leveledf("LOAD")))
	toks, err := scatter.Lex(string(src))
	if err != nil {
		return reportSourceError(cmd, "<stdin>", string(src), err)
	}
	mod, err := scatter.Parse(toks)
	if err != nil {
		return reportSourceError(cmd, "<stdin>", string(src), err)
	}
	ns, err := prog.Install(mod)
	if err != nil {
		return err
	}
	return runLoaded(cmd, log, prog, []scatter.NamespaceID{ns}, analyze, "")
}

func runFiles(cmd *cobra.Command, log *logio.Logger, files []string, analyze bool, generate string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	prog := scatter.NewProgram(scatter.WithProgramLogf(log.Leveledf("LOAD")))

	var namespaces []scatter.NamespaceID
	for _, path := range files {
		ns, err := prog.Load(path, cwd)
		if err != nil {
			return err
		}
		namespaces = append(namespaces, ns)
	}
	return runLoaded(cmd, log, prog, namespaces, analyze, generate)
}

func runLoaded(cmd *cobra.Command, log *logio.Logger, prog *scatter.Program, namespaces []scatter.NamespaceID, analyze bool, generate string) error {
	if analyze {
		an := scatter.Analyze(prog)
		for _, ns := range namespaces {
			printAnalysis(cmd.OutOrStdout(), prog, an, ns)
		}
		return nil
	}

	if generate != "" {
		return generateOne(cmd, prog, namespaces[0], generate)
	}

	it := scatter.NewInterpreter(prog, namespaces[0],
		scatter.WithInterpreterLogf(log.Leveledf("RUN")),
		scatter.WithOutput(cmd.OutOrStdout()),
		scatter.WithInput(os.Stdin),
	)
	for _, ns := range namespaces {
		it.SetNamespace(ns)
		body := prog.Namespace(ns).Body
		if _, err := it.Run(body); err != nil {
			return err
		}
	}
	if stack := it.Stack(); len(stack) > 0 {
		printStack(cmd.OutOrStdout(), stack)
	}
	return nil
}

var generateTargets = []string{"c", "js", "rs"}

func generateOne(cmd *cobra.Command, prog *scatter.Program, ns scatter.NamespaceID, target string) error {
	if target == "all" {
		return generateAll(cmd, prog, ns)
	}
	out, err := generateSource(prog, ns, target)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func generateSource(prog *scatter.Program, ns scatter.NamespaceID, target string) (string, error) {
	body := prog.Namespace(ns).Body
	switch target {
	case "c":
		return codegen.GenerateC(prog, ns, body)
	case "js":
		return codegen.GenerateJS(prog, ns, body)
	case "rs":
		return codegen.GenerateSystems(prog, ns, body)
	default:
		return "", fmt.Errorf("unknown --generate target %q (want c, js, rs, or all)", target)
	}
}

// generateAll runs every codegen target concurrently, the same
// errgroup-over-context shape gen_vm_expects.go uses for its goimports
// pipeline, then prints the results back in target order.
func generateAll(cmd *cobra.Command, prog *scatter.Program, ns scatter.NamespaceID) error {
	eg, _ := errgroup.WithContext(context.Background())

	outs := make([]string, len(generateTargets))
	for i, target := range generateTargets {
		i, target := i, target
		eg.Go(func() error {
			out, err := generateSource(prog, ns, target)
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}
			outs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i, target := range generateTargets {
		fmt.Fprintf(w, "// ---- %s ----\n", target)
		if _, err := io.WriteString(w, outs[i]); err != nil {
			return err
		}
	}
	return nil
}

func printStack(w io.Writer, stack []scatter.Value) {
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = v.GoString()
	}
	fmt.Fprintf(w, "[%s]\n", strings.Join(parts, ", "))
}

func printAnalysis(w io.Writer, prog *scatter.Program, an *scatter.Analysis, ns scatter.NamespaceID) {
	n := prog.Namespace(ns)
	if n == nil {
		return
	}
	names := make([]string, 0, len(n.Functions))
	for name := range n.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := scatter.FunctionKey{Namespace: ns, Name: name}
		if a, ok := an.FunctionArity(key); ok {
			fmt.Fprintf(w, "%s: %s\n", name, a.String())
		} else {
			fmt.Fprintf(w, "%s: %v\n", name, an.Functions[key].Err)
		}
	}
	if len(n.Body.Terms) > 0 {
		if r, ok := an.Bodies[ns]; ok && r.Err == nil {
			fmt.Fprintf(w, "<body>: %s\n", r.Arity.String())
		} else if ok {
			fmt.Fprintf(w, "<body>: %v\n", r.Err)
		}
	}
}

// reportSourceError renders a syntax error in a piped stdin module: the
// offending range as a caret line under its own source text. The REPL does
// not use it; it prints errors on a single line.
func reportSourceError(cmd *cobra.Command, name, src string, err error) error {
	var rng scatter.SourceRange
	switch e := err.(type) {
	case *scatter.ParseError:
		rng = e.Range
	case *scatter.TokenizeError:
		rng = scatter.SourceRange{Start: e.Loc, End: e.Loc}
	default:
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s:%s: %v\n", name, rng, err)
	printCaretLine(cmd.ErrOrStderr(), src, rng)
	return err
}

func printCaretLine(w io.Writer, src string, rng scatter.SourceRange) {
	lines := strings.Split(src, "\n")
	if rng.Start.Line < 0 || rng.Start.Line >= len(lines) {
		return
	}
	line := lines[rng.Start.Line]
	fmt.Fprintln(w, line)
	col := rng.Start.Column
	if col > len(line) {
		col = len(line)
	}
	fmt.Fprintln(w, strings.Repeat(" ", col)+"^")
	fmt.Fprintln(w, "INFO: see "+rng.String())
}
