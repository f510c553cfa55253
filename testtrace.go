package normalize

import (
	"testing"
)

type TestTracer struct{ t *testing.T }

var _ Tracer = TestTracer{}

func (tr TestTracer) Debug(msg string, args ...any) {
	tr.t.Logf("normalize-DEBUG: "+msg+" %v", args)
}

func (tr TestTracer) Info(msg string, args ...any) {
	tr.t.Logf("normalize-INFO: "+msg+" %v", args)
}

func (tr TestTracer) Warn(msg string, args ...any) {
	tr.t.Logf("normalize-WARN: "+msg+" %v", args)
}

func (tr TestTracer) StartExample(no int, command string) {
	tr.t.Logf("normalize-StartExample %d: $ %s", no, command)
}

func (tr TestTracer) PassExample(no int, command string) {
	tr.t.Logf("normalize-PassExample %d: $ %s", no, command)
}
