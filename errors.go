package normalize

import (
	"fmt"
	"time"
)

// RunError reports a command example that exited non-zero.
type RunError struct {
	Example int // 1-based example number
	Command string
	Code    int
	Stdout  string
	Stderr  string
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("example %d failed (%d): $ %s\nstdout: %s\nstderr: %s",
		e.Example, e.Code, e.Command, e.Stdout, e.Stderr)
}

func (e *RunError) Unwrap() error { return e.Err }

// MatchError reports captured stdout that does not match the documented
// output. Expected keeps its "..." wildcard markers intact; Diff is a unified
// diff between the documented and the captured text.
type MatchError struct {
	Example  int
	Command  string
	Expected string
	Received string
	Diff     string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("example %d: $ %s\nexpected: %q\nreceived: %q\n%s",
		e.Example, e.Command, e.Expected, e.Received, e.Diff)
}

// TimeoutError reports a command example exceeding its wall-clock budget.
// Timing out is an unrecoverable test failure, never retried.
type TimeoutError struct {
	Example int
	Command string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("example %d timed out after %s: $ %s",
		e.Example, e.Timeout, e.Command)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// RecursiveError signals that the examples of a file are already being run,
// detected through the file's lock directory. An example that re-invokes its
// own test command is reported and skipped instead of awaited.
type RecursiveError struct {
	Lock string
}

func (e *RecursiveError) Error() string { return "recursive usage of " + e.Lock }

// GuardError marks a tool-author-facing misuse, e.g. a dependency file using
// a reserved name prefix. It is not meant to be recovered from.
type GuardError struct {
	Msg string
}

func (e *GuardError) Error() string { return e.Msg }
