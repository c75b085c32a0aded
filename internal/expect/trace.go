package expect

import (
	"fmt"
	"io"
	"strings"

	"github.com/Zuo-Peng/logexpect/internal/parse"
)

// traceWriter writes the post-mortem trace. The first write error sticks
// and is reported by close, so callers can ignore per-block errors.
type traceWriter struct {
	w   io.WriteCloser
	err error
}

func (t *traceWriter) printf(format string, args ...any) {
	if t == nil || t.w == nil || t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *traceWriter) open(id, logPath string) {
	t.printf("Open LogExpectSession %s %s\n\n", id, logPath)
}

func (t *traceWriter) searching(exp Expectation) {
	maxDelay := "none"
	if exp.MaxDelay > 0 {
		maxDelay = fmt.Sprintf("%.6f", exp.MaxDelay.Seconds())
	}
	t.printf("Searching for FSM transition:\n"+
		"  target-id = %s\n"+
		"  from-state = %s\n"+
		"  event = %s\n"+
		"  to-state = %s\n"+
		"  skip-events = %s\n"+
		"  max-delay = %s\n"+
		"\n",
		exp.TargetID, exp.FromState, exp.Event, exp.ToState, formatList(exp.SkipEvents), maxDelay)
}

func (t *traceWriter) observed(rec *parse.Record) {
	t.printf("Observed FSM transition:\n"+
		"  log-line-nr = %d\n"+
		"  sequence-nr = %d\n"+
		"  target-id = %s\n"+
		"  from-state = %s\n"+
		"  event = %s\n"+
		"  actions-and-pushed-events = %s\n"+
		"  to-state = %s\n"+
		"  timestamp = %s\n"+
		"  implicit = %t\n"+
		"\n",
		rec.LineNumber, rec.SequenceNr, rec.TargetID, rec.FromState, rec.Event,
		formatList(rec.ActionsAndPushedEvents), rec.ToState,
		rec.Timestamp.Format(parse.TimestampLayout+",000000"), rec.Implicit)
}

func (t *traceWriter) failure(err *Error) {
	t.printf("%s\n\n", err.Error())
}

func (t *traceWriter) found() {
	t.printf("Found expected log transition\n\n")
}

func (t *traceWriter) close() error {
	if t == nil || t.w == nil {
		return nil
	}
	t.printf("Close LogExpectSession\n\n")
	cerr := t.w.Close()
	t.w = nil
	if t.err != nil {
		return t.err
	}
	return cerr
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
