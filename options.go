package scatter

import (
	"bufio"
	"io"
)

// ProgramOption configures a Program at construction, following the
// teacher's VMOption functional-options idiom (options.go): each option is
// a value that knows how to apply itself to the thing being built, and
// ProgramOptions flattens nested option lists into one.
type ProgramOption interface{ apply(p *Program) }

type programOptions []ProgramOption

func (opts programOptions) apply(p *Program) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(p)
		}
	}
}

// ProgramOptions flattens opts, dropping nils, into a single ProgramOption.
func ProgramOptions(opts ...ProgramOption) ProgramOption {
	var res programOptions
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case programOptions:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	return res
}

type withProgramLogf func(mess string, args ...interface{})

func (f withProgramLogf) apply(p *Program) { p.logfn = f }

// WithProgramLogf routes a Program's load-time diagnostics through logfn.
func WithProgramLogf(logfn func(mess string, args ...interface{})) ProgramOption {
	return withProgramLogf(logfn)
}

// InterpreterOption configures an Interpreter at construction, the same
// functional-options idiom as ProgramOption above.
type InterpreterOption interface{ apply(it *Interpreter) }

type interpreterOptions []InterpreterOption

func (opts interpreterOptions) apply(it *Interpreter) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(it)
		}
	}
}

// InterpreterOptions flattens opts, dropping nils, into a single
// InterpreterOption.
func InterpreterOptions(opts ...InterpreterOption) InterpreterOption {
	var res interpreterOptions
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case interpreterOptions:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	return res
}

type withInterpreterLogf func(mess string, args ...interface{})

func (f withInterpreterLogf) apply(it *Interpreter) { it.logfn = f }

// WithInterpreterLogf routes an Interpreter's diagnostics through logfn.
func WithInterpreterLogf(logfn func(mess string, args ...interface{})) InterpreterOption {
	return withInterpreterLogf(logfn)
}

type withOutput struct{ w io.Writer }

func (o withOutput) apply(it *Interpreter) { it.out = o.w }

// WithOutput directs `print`'s output to w. Without this option, output is
// discarded.
func WithOutput(w io.Writer) InterpreterOption { return withOutput{w} }

type withInput struct{ r io.Reader }

func (o withInput) apply(it *Interpreter) { it.input = bufio.NewReader(o.r) }

// WithInput feeds `readline` from r. Without this option, readline always
// reports no more input.
func WithInput(r io.Reader) InterpreterOption { return withInput{r} }
