package render

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"ab" + colorDim + "c", "d"}, wrapLine("ab"+colorDim+"cd", 3))
	assert.Equal(t, []string{"x"}, wrapLine("x", 0))
	assert.Equal(t, []string{""}, wrapLine("", 5))
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("TWO_WAY --SEND_LIE--> None", "send_lie")
	assert.Equal(t, "TWO_WAY --"+colorBoldRed+"SEND_LIE"+colorReset+"--> None", got)
	assert.Equal(t, "abc", highlightKeywords("abc", ""))
}

func TestTransition(t *testing.T) {
	assert.Equal(t, "ONE_WAY --TIMER_TICK--> ONE_WAY", Transition(index.RecordRow{FromState: "ONE_WAY", Event: "TIMER_TICK", ToState: "None"}))
	assert.Equal(t, "ONE_WAY --NEW_NEIGHBOR--> TWO_WAY", Transition(index.RecordRow{FromState: "ONE_WAY", Event: "NEW_NEIGHBOR", ToState: "TWO_WAY"}))
}

func TestRenderTimeline(t *testing.T) {
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "r.db"))
	require.NoError(t, err)
	defer db.Close()

	var lines []string
	for _, ev := range []string{"TIMER_TICK", "LIE_RECEIVED", "NEW_NEIGHBOR", "SEND_LIE", "TIMER_TICK"} {
		lines = append(lines, "2018-10-24 08:21:32,000000:INFO:node.if.fsm:[n:if1] FSM transition sequence-nr=1 from-state=ONE_WAY event="+ev+" actions-and-pushed-events=[] to-state=None implicit=False")
	}
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/l/n.log", []byte(strings.Join(lines, "\n")), 0o644))
	_, err = index.IndexAll(db, fs, "/l", nil, nil)
	require.NoError(t, err)

	out, hit, err := RenderTimeline(db, "/l/n.log", "n-if1", Options{HitLine: 3, Context: 1})
	require.NoError(t, err)
	// header, "before" marker, two lines for log line 2, then the hit
	assert.Equal(t, 4, hit)
	assert.Contains(t, out, "... (1 transitions before) ...")
	assert.Contains(t, out, "... (1 transitions after) ...")
	assert.Contains(t, out, ">> #1 line 3")
	assert.Contains(t, out, "SEND_LIE")
	assert.NotContains(t, out, "TIMER_TICK")

	_, _, err = RenderTimeline(db, "/l/missing.log", "n-if1", Options{})
	require.Error(t, err)

	out, hit, err = RenderTimeline(db, "/l/n.log", "nobody", Options{})
	require.NoError(t, err)
	assert.Equal(t, -1, hit)
	assert.Equal(t, "(no transitions for nobody)", out)
}
