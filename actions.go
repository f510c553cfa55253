package normalize

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Cmd enumerates the one-shot actions a tool invocation can request. The
// command line is classified exactly once at startup; every action ends the
// process.
type Cmd int

const (
	CmdNone     Cmd = iota
	CmdMakefile     // print Makefile rules or write a dependency file
	CmdTest         // verify the command examples of the module documentation
	CmdShTest       // verify the command examples of one file
	CmdShebang      // normalize the module's shebang line
	CmdEval         // print one configuration value
)

// Request couples a command kind with its parameters.
type Request struct {
	Cmd     Cmd
	Generic bool   // Makefile: pattern-variable emission
	Rules   bool   // Makefile: print the rule set
	Dep     string // Makefile: dependency file to write
	File    string // ShTest: file holding the examples
	Key     string // Eval: configuration value to print
}

// ExampleHeading starts the documentation section holding the command
// examples verified by CmdTest.
const ExampleHeading = "Examples:"

// Run performs the requested action, writing regular output to out. The
// caller owns process exit: any returned error means exit code 1, except
// *RecursiveError which is a notice, not a failure.
func (req Request) Run(ctx context.Context, cfg *Config, doc string, out io.Writer, tr Tracer) error {
	switch req.Cmd {
	case CmdMakefile:
		em := Emitter{Config: cfg, Doc: doc, Rules: req.Rules, Generic: req.Generic, Dep: req.Dep}
		return em.Emit(out)
	case CmdTest:
		groups := Extractor{Heading: ExampleHeading}.Extract(doc)
		r := Runner{Dir: cfg.ModuleDir, Timeout: cfg.Timeout, Tracer: tr}
		if err := r.RunExamples(ctx, groups); err != nil {
			return err
		}
		fmt.Fprintf(out, "All %d command usage examples PASS\n", len(groups))
		return nil
	case CmdShTest:
		r := Runner{Dir: cfg.ModuleDir, Timeout: cfg.Timeout, Tracer: tr}
		n, err := r.RunFileExamples(ctx, req.File)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "All %d command usage examples PASS\n", n)
		return nil
	case CmdShebang:
		return shebang(cfg, out)
	case CmdEval:
		v, err := cfg.Value(req.Key)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	}
	return fmt.Errorf("no such action: %d", req.Cmd)
}

// Flags holds the command line options a host tool registers to integrate
// the build helper. Zero values request nothing.
type Flags struct {
	Makemake bool
	Generic  bool
	Dep      string
	Test     bool
	ShTest   string
	Shebang  bool
	Eval     string
	Timeout  int // seconds
}

// Register adds the options to a standard flag set, typically
// flag.CommandLine of the host tool.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.BoolVar(&f.Makemake, "makemake", false,
		"Print Makefile for bringup and test, and exit")
	fs.BoolVar(&f.Generic, "generic", false,
		"Generalize the Makefile to make every module in the directory, and exit")
	fs.StringVar(&f.Dep, "dep", "",
		"Write the bringup rule into `file`, print its include statement, and exit")
	fs.BoolVar(&f.Test, "test", false,
		"Verify the command usage examples in the module, and exit")
	fs.StringVar(&f.ShTest, "sh-test", "",
		"Verify the command usage examples in `file`, and exit")
	fs.BoolVar(&f.Shebang, "shebang", false,
		"Normalize the module shebang, and exit")
	fs.StringVar(&f.Eval, "c", "",
		"Print the configuration value named `key`, and exit")
	fs.IntVar(&f.Timeout, "timeout", 0,
		"Time in seconds before giving up on a command example (0 keeps the configured timeout)")
}

// Request classifies the parsed flags into at most one action.
func (f *Flags) Request() (Request, bool) {
	switch {
	case f.Makemake || f.Generic || f.Dep != "":
		return Request{
			Cmd:     CmdMakefile,
			Rules:   f.Makemake,
			Generic: f.Generic,
			Dep:     f.Dep,
		}, true
	case f.Test:
		return Request{Cmd: CmdTest}, true
	case f.ShTest != "":
		return Request{Cmd: CmdShTest, File: f.ShTest}, true
	case f.Shebang:
		return Request{Cmd: CmdShebang}, true
	case f.Eval != "":
		return Request{Cmd: CmdEval, Key: f.Eval}, true
	}
	return Request{}, false
}

// Dispatch runs any action the flags request and reports whether one was
// requested together with the process exit code. Failure detail goes to
// errw, regular output to out.
func (f *Flags) Dispatch(ctx context.Context, cfg *Config, doc string, out, errw io.Writer, tr Tracer) (handled bool, exit int) {
	req, ok := f.Request()
	if !ok {
		return false, 0
	}
	// Timeout zero means the configured value, e.g. a normalize.yaml overlay.
	if f.Timeout > 0 {
		cfg.Timeout = time.Duration(f.Timeout) * time.Second
	}
	err := req.Run(ctx, cfg, doc, out, tr)
	if err == nil {
		return true, 0
	}
	var rec *RecursiveError
	if errors.As(err, &rec) {
		fmt.Fprintln(errw, "Recursive usage of", rec.Lock)
		return true, 0
	}
	if req.Cmd == CmdShTest {
		fmt.Fprintf(errw, "%s %s\n", req.File, err)
	} else {
		fmt.Fprintln(errw, err)
	}
	return true, 1
}

// ShebangLine is the canonical interpreter line written by CmdShebang.
const ShebangLine = "#!venv/bin/python3"

var pathsepInstall = map[byte]string{
	':': "export PATH='.:$PATH'",
	';': "[System.Environment]::SetEnvironmentVariable('Path', '.;' + [System.Environment]::GetEnvironmentVariable('Path', 'User'), 'User')",
}

// shebang rewrites the module to start with ShebangLine followed by a plain
// LF, makes it executable, and prints the PATH configuration needed to run
// it without a "./" prefix, if any.
func shebang(cfg *Config, out io.Writer) error {
	src, err := os.ReadFile(cfg.ModulePath)
	if err != nil {
		return err
	}
	old, eol, code := splitShebang(src)
	if string(old) != ShebangLine || string(eol) != "\n" {
		fixed := append([]byte(ShebangLine+"\n"), code...)
		if err := os.WriteFile(cfg.ModulePath, fixed, 0666); err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s now updated with shebang %s\n", cfg.ModulePath, old)
	}
	if bytes.ContainsRune(eol, '\r') {
		fmt.Fprintln(out, "# Please consider permanently changing to LF instead of CR after a shebang, like below.")
		fmt.Fprintln(out, "git config --global core.autocrlf input")
	}
	info, err := os.Stat(cfg.ModulePath)
	if err != nil {
		return err
	}
	if info.Mode()&0111 == 0 {
		if err := os.Chmod(cfg.ModulePath, 0777); err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s is now executable with shebang %s\n", cfg.ModulePath, old)
	}
	dirs := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	onPath := false
	for _, d := range dirs {
		if d == "." {
			onPath = true
			break
		}
	}
	if !onPath {
		fmt.Fprintf(out, "# %s needs the following . on PATH configuration to use shebang %s\n",
			cfg.ModulePath, old)
		fmt.Fprintln(out, pathsepInstall[byte(os.PathListSeparator)])
	}
	return nil
}

// splitShebang separates the leading "#!" lines from the code. It returns
// the last shebang line without its line break, the line break bytes that
// followed it, and the remaining code.
func splitShebang(src []byte) (shebang, eol, code []byte) {
	code = src
	for bytes.HasPrefix(code, []byte("#!")) {
		nl := bytes.IndexAny(code, "\r\n")
		if nl < 0 {
			return code, nil, nil
		}
		shebang = code[:nl]
		rest := code[nl:]
		n := 0
		for n < len(rest) && (rest[n] == '\r' || rest[n] == '\n') {
			n++
		}
		eol = rest[:n]
		code = rest[n:]
	}
	return shebang, eol, code
}
