// Command scatter loads and runs scatter programs: one or more files given
// as arguments, a piped stdin module, or an interactive REPL when stdin is
// a terminal and no files are given.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcorbin/scatter/internal/logio"
)

func main() {
	os.Exit(runMain())
}

// runMain is main's body, pulled out so script_test.go's TestMain can
// register it as the "scatter" command testscript shells out to.
func runMain() int {
	log := &logio.Logger{}
	log.SetOutput(os.Stderr)
	return run(log)
}

func run(log *logio.Logger) int {
	var (
		analyze  bool
		generate string
	)

	root := &cobra.Command{
		Use:           "scatter [files...]",
		Short:         "run, analyze, or generate code for scatter programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd, log, args, analyze, generate)
		},
	}
	root.Flags().BoolVarP(&analyze, "analyze", "a", false, "print each function's inferred arity")
	root.Flags().StringVarP(&generate, "generate", "g", "", "emit generated source for one of: c, js, rs, all")

	if err := root.Execute(); err != nil {
		log.Errorf("%v", err)
	}
	return log.ExitCode()
}

func dispatch(cmd *cobra.Command, log *logio.Logger, files []string, analyze bool, generate string) error {
	if generate != "" && len(files) != 1 {
		return fmt.Errorf("--generate requires exactly one file")
	}

	if len(files) == 0 {
		if isTerminal(os.Stdin) {
			return runREPL(cmd, log)
		}
		return runStdin(cmd, log, analyze)
	}
	return runFiles(cmd, log, files, analyze, generate)
}
