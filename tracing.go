package normalize

// A Tracer observes a test run. Failures are not traced, they are returned as
// errors by the runner.
type Tracer interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)

	// StartExample is called before example no starts, PassExample after its
	// output was verified. no counts from 1 in documentation order.
	StartExample(no int, command string)
	PassExample(no int, command string)
}

type TraceLog int

var DefaultTraceLog TraceLog = TraceWarn

const (
	TraceWarn TraceLog = (1 << iota)
	TraceInfo
	TraceDebug
)
