package normalize

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.fractalqb.de/fractalqb/sllm/v3"
)

// WriteTracer writes the trace of a test run to W. Log selects which message
// levels are written; example start and pass events follow the Info level.
type WriteTracer struct {
	W   io.Writer
	Log TraceLog
}

func DefaultTracer() Tracer {
	return &WriteTracer{W: os.Stderr, Log: DefaultTraceLog}
}

func (tr *WriteTracer) ParseLogFlag(f string) error {
	switch f {
	case "":
		return nil
	case "off":
		tr.Log = 0
	case "warn", "w":
		tr.Log = TraceWarn
	case "info", "i":
		tr.Log = TraceWarn | TraceInfo
	case "debug", "d":
		tr.Log = TraceWarn | TraceInfo | TraceDebug
	default:
		return fmt.Errorf("write tracer: illegal log flag '%s'", f)
	}
	return nil
}

func (tr WriteTracer) Debug(msg string, args ...any) {
	if tr.Log&TraceDebug == 0 {
		return
	}
	fmt.Fprint(tr.W, "DEBUG ")
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr WriteTracer) Info(msg string, args ...any) {
	if tr.Log&(TraceInfo|TraceDebug) == 0 {
		return
	}
	fmt.Fprint(tr.W, "INFO  ")
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr WriteTracer) Warn(msg string, args ...any) {
	if tr.Log&(TraceWarn|TraceInfo|TraceDebug) == 0 {
		return
	}
	fmt.Fprint(tr.W, "WARN  ")
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr WriteTracer) StartExample(no int, command string) {
	if tr.Log&(TraceInfo|TraceDebug) == 0 {
		return
	}
	fmt.Fprintf(tr.W, "{ example %d: $ %s\n", no, command)
}

func (tr WriteTracer) PassExample(no int, command string) {
	if tr.Log&(TraceInfo|TraceDebug) == 0 {
		return
	}
	fmt.Fprintf(tr.W, "} example %d PASS\n", no)
}

type sllmArgs []any

func (as sllmArgs) append(buf []byte, _ int, n string) ([]byte, error) {
	for len(as) > 0 {
		switch k := as[0].(type) {
		case string:
			if len(as) == 1 {
				return buf, fmt.Errorf("no value for key '%s'", n)
			}
			if k == n {
				return sllm.AppendArg(buf, as[1]), nil
			}
			as = as[2:]
		case slog.Attr:
			if k.Key == n {
				return sllm.AppendArg(buf, k.Value), nil
			}
			as = as[1:]
		default:
			return buf, fmt.Errorf("illegal key type %T", k)
		}
	}
	return buf, fmt.Errorf("no key '%s", n)
}
