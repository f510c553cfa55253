// Package normalize helps a command line tool host its own bringup and test:
// a tool that registers the package's [Flags] can print a Makefile for
// installing its dependencies and verifying itself, and can run the command
// examples embedded in its own documentation as tests. The package is built
// around three pieces: [Extractor] parses documentation text into
// [CommandGroup] values, [Runner] executes them and verifies their output,
// and [Emitter] turns the Dependencies section of the documentation into
// Makefile rules.
//
// # Documentation micro-grammar
//
// Command examples are ordinary documentation lines:
//
//	Examples:
//	$ echo hello  # a command with a trailing comment
//	hello
//	$ echo one \
//	> two
//	one two
//
// "$ " begins a command, "> " continues the previous command, and any other
// line while a command is open is its expected output. In the expected
// output the literal "..." matches any text, so variable parts like
// timestamps or version numbers can be elided while everything around them
// is still checked verbatim.
//
// The Dependencies section lists how to bring the module up. Bare lines name
// packages for the installer; "$ " lines are arbitrary shell commands:
//
//	Dependencies:
//	requests
//	$ make --version
//
// # Self-hosting
//
// A tool integrates the helper by registering the flags before parsing and
// dispatching afterwards:
//
//	flags := normalize.Flags{}
//	flags.Register(flag.CommandLine)
//	flag.Parse()
//	cfg, _ := normalize.NewConfig(os.Args)
//	if handled, code := flags.Dispatch(ctx, cfg, doc,
//		os.Stdout, os.Stderr, nil); handled {
//		os.Exit(code)
//	}
//
// With that in place
//
//	tool --makemake > tool.mk && make -f tool.mk
//
// installs the tool's dependencies and runs its documentation examples,
// logging the bringup into build/tool.bringup. The --generic option
// generalizes the rules to every module in the directory, and --dep writes
// the bringup rule into a separate file a parent Makefile can include.
package normalize
