package search

import (
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodeLog = `2018-10-24 08:21:32,000000:INFO:node.if.fsm:[node1:if1] FSM transition sequence-nr=1 from-state=ONE_WAY event=TIMER_TICK actions-and-pushed-events=[SEND_LIE] to-state=None implicit=False
2018-10-24 08:21:32,020000:INFO:node.if.fsm:[node1:if1] FSM transition sequence-nr=2 from-state=ONE_WAY event=NEW_NEIGHBOR actions-and-pushed-events=[] to-state=TWO_WAY implicit=False
2018-10-24 08:21:33,030000:INFO:node.if.fsm:[node1:if2] FSM transition sequence-nr=3 from-state=ONE_WAY event=TIMER_TICK actions-and-pushed-events=[] to-state=None implicit=False
2018-10-24 08:21:34,050000:INFO:node.if.fsm:[node1:if1] FSM transition sequence-nr=4 from-state=TWO_WAY event=VALID_REFLECTION actions-and-pushed-events=[] to-state=THREE_WAY implicit=False
`

func indexedDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/logs/node1.log", []byte(nodeLog), 0o644))
	_, err = index.IndexAll(db, fs, "/logs", nil, nil)
	require.NoError(t, err)
	return db
}

func lines(rs []Result) []int {
	var out []int
	for _, r := range rs {
		out = append(out, r.LineNumber)
	}
	return out
}

func TestSearch(t *testing.T) {
	db := indexedDB(t)

	tests := []struct {
		name string
		opts Options
		want []int
	}{
		{name: "all", opts: Options{}, want: []int{1, 2, 3, 4}},
		{name: "target", opts: Options{Target: "node1-if1"}, want: []int{1, 2, 4}},
		{name: "event", opts: Options{Event: "TIMER_TICK"}, want: []int{1, 3}},
		{name: "state as from or to", opts: Options{State: "TWO_WAY"}, want: []int{2, 4}},
		{name: "query over actions", opts: Options{Query: "SEND_LIE"}, want: []int{1}},
		{name: "since", opts: Options{Since: "2018-10-24 08:21:33"}, want: []int{3, 4}},
		{name: "limit", opts: Options{Limit: 2}, want: []int{1, 2}},
		{name: "other log", opts: Options{Log: "/logs/none.log"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Search(db, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines(rs))
		})
	}
}

func TestTargets(t *testing.T) {
	db := indexedDB(t)
	ts, err := Targets(db)
	require.NoError(t, err)
	assert.Equal(t, []Target{
		{LogPath: "/logs/node1.log", TargetID: "node1-if1", Transitions: 3, LastTS: "2018-10-24 08:21:34.050000"},
		{LogPath: "/logs/node1.log", TargetID: "node1-if2", Transitions: 1, LastTS: "2018-10-24 08:21:33.030000"},
	}, ts)
}
