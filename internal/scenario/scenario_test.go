package scenario

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/logexpect/internal/expect"
	"github.com/Zuo-Peng/logexpect/internal/parse"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2018, 10, 24, 8, 21, 32, 0, time.UTC)

func fsmLine(offset time.Duration, seq int, from, event, to string) string {
	ts := base.Add(offset)
	return fmt.Sprintf("%s,%06d:INFO:node.if.fsm:[node1:if1] FSM transition sequence-nr=%d from-state=%s event=%s actions-and-pushed-events=[] to-state=%s implicit=False",
		ts.Format(parse.TimestampLayout), ts.Nanosecond()/1000, seq, from, event, to)
}

func handshakeLog(sendLIEGap time.Duration) []string {
	return []string{
		fsmLine(0, 1, "ONE_WAY", "TIMER_TICK", "None"),
		fsmLine(10*time.Millisecond, 2, "ONE_WAY", "LIE_RECEIVED", "None"),
		"2018-10-24 08:21:32,020000:INFO:node.if.fsm:[node1:if1] FSM push event event=NEW_NEIGHBOR",
		fsmLine(20*time.Millisecond, 3, "ONE_WAY", "NEW_NEIGHBOR", "TWO_WAY"),
		fsmLine(20*time.Millisecond+sendLIEGap, 4, "TWO_WAY", "SEND_LIE", "None"),
		fsmLine(time.Second, 5, "TWO_WAY", "TIMER_TICK", "None"),
		fsmLine(1100*time.Millisecond, 6, "TWO_WAY", "LIE_RECEIVED", "None"),
		fsmLine(1200*time.Millisecond, 7, "TWO_WAY", "LIE_RECEIVED", "None"),
		fsmLine(1300*time.Millisecond, 8, "TWO_WAY", "VALID_REFLECTION", "THREE_WAY"),
	}
}

func newSession(t *testing.T, lines []string) (*expect.Session, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "node1.log", []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return expect.New(expect.Config{Fs: fs, LogPath: "node1.log"}), fs
}

func TestRunLIE3Way(t *testing.T) {
	sess, fs := newSession(t, handshakeLog(40*time.Millisecond))

	res, err := Run(sess, LIE3Way("node1", "if1"))
	require.NoError(t, err)
	assert.False(t, sess.IsOpen())

	var lines []int
	for _, r := range res.Matched {
		lines = append(lines, r.LineNumber)
	}
	assert.Equal(t, []int{2, 4, 5, 7, 9}, lines)

	trace, err := afero.ReadFile(fs, expect.DefaultTracePath)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(trace), "Found expected log transition"))
}

func TestRunLIE3WaySlowLIE(t *testing.T) {
	sess, fs := newSession(t, handshakeLog(150*time.Millisecond))

	res, err := Run(sess, LIE3Way("node1", "if1"))
	require.Error(t, err)
	assert.True(t, expect.IsKind(err, expect.KindDelayExceeded))
	assert.Equal(t, "Actual delay 0.150000 exceeds maximum delay 0.100000", err.Error())
	assert.Equal(t, 3, res.FailedStep)
	assert.Len(t, res.Matched, 2)
	assert.False(t, sess.IsOpen(), "session is closed after a failure")

	trace, err := afero.ReadFile(fs, expect.DefaultTracePath)
	require.NoError(t, err)
	assert.Contains(t, string(trace), "Actual delay 0.150000 exceeds maximum delay 0.100000")
	assert.Contains(t, string(trace), "Close LogExpectSession")
}

func TestRunMissingLog(t *testing.T) {
	sess := expect.New(expect.Config{Fs: afero.NewMemMapFs(), LogPath: "missing.log"})
	_, err := Run(sess, LIE3Way("node1", "if1"))
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(`
name: two-way
target: node1-if1
skip: [TIMER_TICK]
steps:
  - from: ONE_WAY
    event: NEW_NEIGHBOR
    to: TWO_WAY
    skip: [SEND_LIE, TIMER_TICK]
  - target: node2-if1
    from: TWO_WAY
    event: SEND_LIE
    to: None
    max_delay: 100ms
  - {from: TWO_WAY, event: LIE_RECEIVED, to: None, max_delay: 0.25}
`))
	require.NoError(t, err)
	assert.Equal(t, "two-way", sc.Name)

	exps := sc.Expectations()
	require.Len(t, exps, 3)
	assert.Equal(t, expect.Expectation{
		TargetID:   "node1-if1",
		FromState:  "ONE_WAY",
		Event:      "NEW_NEIGHBOR",
		ToState:    "TWO_WAY",
		SkipEvents: []string{"TIMER_TICK", "SEND_LIE"},
	}, exps[0])
	assert.Equal(t, "node2-if1", exps[1].TargetID)
	assert.Equal(t, 100*time.Millisecond, exps[1].MaxDelay)
	assert.Equal(t, 250*time.Millisecond, exps[2].MaxDelay)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "no steps", yaml: "name: x\n", want: "no steps"},
		{name: "no target", yaml: "steps:\n  - {from: A, event: B, to: C}\n", want: "step 1: no target"},
		{name: "no event", yaml: "target: t\nsteps:\n  - {from: A, to: C}\n", want: "step 1: no event"},
		{name: "negative delay", yaml: "target: t\nsteps:\n  - {from: A, event: B, to: C, max_delay: -1s}\n", want: "step 1: negative max_delay"},
		{name: "bad delay", yaml: "target: t\nsteps:\n  - {from: A, event: B, to: C, max_delay: soon}\n", want: "bad max_delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "s.yaml", []byte("target: t\nsteps:\n  - {from: A, event: B, to: C}\n"), 0o644))

	sc, err := Load(fs, "s.yaml")
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 1)

	_, err = Load(fs, "missing.yaml")
	require.Error(t, err)
}

func TestBuiltin(t *testing.T) {
	sc, err := Builtin("lie-3way", "n", "if2")
	require.NoError(t, err)
	assert.Equal(t, "n-if2", sc.Target)
	assert.Equal(t, 100*time.Millisecond, time.Duration(sc.Steps[2].MaxDelay))

	_, err = Builtin("nope", "n", "if2")
	require.Error(t, err)
	assert.Equal(t, []string{"lie-3way"}, BuiltinNames())
}
