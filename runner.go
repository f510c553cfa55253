package normalize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultTimeout bounds one command example when Runner.Timeout is zero.
const DefaultTimeout = 3 * time.Second

// Runner executes extracted command groups as real subprocesses and verifies
// their captured stdout against the documented output. Groups run strictly in
// documentation order, each as one blocking call, and the first failure
// aborts the run.
type Runner struct {
	// Dir is the directory of the module under test. When set, every example
	// runs in a subshell that first changes into it, so relative paths in
	// examples behave as if run from the module's own directory.
	Dir string

	// Timeout bounds each example group; DefaultTimeout when zero.
	Timeout time.Duration

	// Env is the base environment; the current process environment when nil.
	// PATH is always prefixed with "." so same-directory executables run
	// without a "./" prefix.
	Env []string

	// Tracer observes the run; DefaultTracer() when nil.
	Tracer Tracer
}

// RunExamples runs all groups in order and returns the first failure: a
// *RunError for a non-zero exit, a *TimeoutError for an exceeded time budget
// or a *MatchError for unverified output. Groups without output lines only
// have their exit status checked.
func (r *Runner) RunExamples(ctx context.Context, groups []CommandGroup) error {
	if len(groups) == 0 {
		return nil
	}
	env := r.Env
	if env == nil {
		env = os.Environ()
	}
	env = pathWithCwd(env)
	for i, g := range groups {
		if err := r.runExample(ctx, i+1, g, env); err != nil {
			return err
		}
	}
	return nil
}

// RunFileExamples extracts and runs the command examples of one file and
// returns how many groups were verified. A lock directory "<file>.lock"
// guards the run: when it already exists a *RecursiveError is returned so an
// example that re-invokes its own test command is reported instead of
// recursing, and the foreign lock is left in place.
func (r *Runner) RunFileExamples(ctx context.Context, file string) (int, error) {
	text, err := os.ReadFile(file)
	if err != nil {
		return 0, err
	}
	groups := Extractor{}.Extract(string(text))
	lock := file + ".lock"
	if err := os.Mkdir(lock, 0777); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, &RecursiveError{Lock: lock}
		}
		return 0, err
	}
	defer os.Remove(lock)
	if err := r.RunExamples(ctx, groups); err != nil {
		return 0, err
	}
	return len(groups), nil
}

func (r *Runner) runExample(ctx context.Context, no int, g CommandGroup, env []string) error {
	tr := r.Tracer
	if tr == nil {
		tr = DefaultTracer()
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	lines := make([]string, len(g.Commands))
	for i, c := range g.Commands {
		if i < len(g.Comments) {
			c += g.Comments[i]
		}
		lines[i] = c
	}
	command := strings.Join(lines, "\n")
	if r.Dir != "" {
		command = fmt.Sprintf("( cd %s && %s )", r.Dir, command)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", command)
	}
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	tr.StartExample(no, command)
	tr.Debug("run `cmd` in `dir`", "cmd", command, "dir", r.Dir)
	err := cmd.Run()
	if ctx.Err() != nil {
		return &TimeoutError{Example: no, Command: command, Timeout: timeout, Err: ctx.Err()}
	}
	if err != nil {
		code := -1
		var xerr *exec.ExitError
		if errors.As(err, &xerr) {
			code = xerr.ExitCode()
		}
		return &RunError{
			Example: no,
			Command: command,
			Code:    code,
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Err:     err,
		}
	}

	if len(g.Output) == 0 {
		tr.PassExample(no, command)
		return nil
	}
	expected := strings.Join(g.Output, "\n")
	received := stdout.String()
	if !matchOutput(expected, received) {
		return &MatchError{
			Example:  no,
			Command:  command,
			Expected: expected,
			Received: received,
			Diff:     unifiedDiff(expected, received),
		}
	}
	tr.PassExample(no, command)
	return nil
}

// matchOutput verifies received stdout against documented output. The
// documented text may elide variable parts with the literal "..." which
// matches any text, newlines included; everything else must match verbatim.
// Exactly one trailing newline is insignificant on both sides.
func matchOutput(expected, received string) bool {
	expected = strings.TrimSuffix(expected, "\n")
	received = strings.TrimSuffix(received, "\n")
	if !strings.Contains(expected, "...") {
		return expected == received
	}
	frags := strings.Split(expected, "...")
	for i, f := range frags {
		frags[i] = regexp.QuoteMeta(f)
	}
	pattern := regexp.MustCompile(`(?s)\A` + strings.Join(frags, ".*") + `\z`)
	return pattern.MatchString(received)
}

func unifiedDiff(expected, received string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(received),
		FromFile: "expected",
		ToFile:   "received",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// pathWithCwd puts "." in front of PATH so that Windows can run files from
// the current directory, too.
func pathWithCwd(env []string) []string {
	res := make([]string, len(env))
	copy(res, env)
	for i, kv := range res {
		if strings.HasPrefix(kv, "PATH=") {
			res[i] = "PATH=." + string(os.PathListSeparator) + kv[len("PATH="):]
			return res
		}
	}
	return append(res, "PATH=.")
}
