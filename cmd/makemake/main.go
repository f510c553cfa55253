// Command makemake prints a Makefile for bringup and test of a tool module,
// or verifies the command usage examples embedded in a file.
package main

import (
	"fmt"
	"os"

	"git.fractalqb.de/fractalqb/qblog"
	"github.com/spf13/cobra"

	"github.com/joakimbits/normalize"
)

var log = qblog.New(&qblog.DefaultConfig)

const doc = `Print a Makefile for handling a tool module and exit.

To self-test a tool that hosts these options - while adding its dependencies:

    $ tool --makemake > tool.mk && make -f tool.mk

To self-test all such tools in a directory - while adding their dependencies
into a directory venv:

    $ tool --makemake --generic > Makefile
    $ make
    <modify any source file in the same folder>
    $ make

Dependencies:
$ make --version  # GNU Make consumes the emitted rules

Examples:
$ makemake --makemake
bringup: build/makemake.bringup
tested: build/makemake.tested
...
$ makemake -c module.name
makemake
`

func main() { os.Exit(run(os.Args[1:])) }

func run(args []string) int {
	var (
		flags     normalize.Flags
		tracer    = normalize.WriteTracer{W: os.Stderr, Log: normalize.DefaultTraceLog}
		traceFlag string
		exit      int
	)
	cmd := &cobra.Command{
		Use:           "makemake",
		Short:         "Print a Makefile for a tool module, or verify its usage examples",
		Long:          doc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := tracer.ParseLogFlag(traceFlag); err != nil {
			return err
		}
		cfg, err := normalize.NewConfig(os.Args)
		if err != nil {
			return err
		}
		if err := cfg.LoadFile(normalize.ConfigFile); err != nil {
			log.Warn("ignoring `config` with `error`",
				"config", normalize.ConfigFile,
				"error", err.Error(),
			)
		}
		handled, code := flags.Dispatch(cmd.Context(), cfg, doc,
			cmd.OutOrStdout(), cmd.ErrOrStderr(), &tracer)
		if !handled {
			return cmd.Help()
		}
		exit = code
		return nil
	}
	fs := cmd.Flags()
	fs.BoolVar(&flags.Makemake, "makemake", false,
		"Print Makefile for bringup and test, and exit")
	fs.BoolVar(&flags.Generic, "generic", false,
		"Generalize the Makefile to make every module in the directory, and exit")
	fs.StringVar(&flags.Dep, "dep", "",
		"Write the bringup rule into `file`, print its include statement, and exit")
	fs.BoolVar(&flags.Test, "test", false,
		"Verify the command usage examples in the module, and exit")
	fs.StringVar(&flags.ShTest, "sh-test", "",
		"Verify the command usage examples in `file`, and exit")
	fs.BoolVar(&flags.Shebang, "shebang", false,
		"Normalize the module shebang, and exit")
	fs.StringVarP(&flags.Eval, "config-value", "c", "",
		"Print the configuration value named `key`, and exit")
	fs.IntVar(&flags.Timeout, "timeout", 0,
		"Time in seconds before giving up on a command example (0 keeps the configured timeout)")
	fs.StringVar(&traceFlag, "trace", "",
		"Set trace level (off, warn, info, debug)")

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exit
}
