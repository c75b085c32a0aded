package open

import (
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{editor: "nvim", want: []string{"nvim", "+12", "/l/n.log"}},
		{editor: "code", want: []string{"code", "--goto", "/l/n.log:12"}},
		{editor: "less", want: []string{"less", "+12", "/l/n.log"}},
		{editor: "nano", want: []string{"nano", "/l/n.log"}},
	}
	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			assert.Equal(t, tt.want, editorCommand(tt.editor, "/l/n.log", 12).Args)
		})
	}
}

func TestOpenLogMissing(t *testing.T) {
	assert.EqualError(t, OpenLog("/definitely/not/here.log", 1), "file not found: /definitely/not/here.log")
}

func newDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRecordNotIndexed(t *testing.T) {
	err := OpenRecord(newDB(t), "/l/n.log", 3)
	require.ErrorIs(t, err, ErrNotIndexed)
	assert.EqualError(t, err, "log not indexed: /l/n.log")
}

func TestOpenRecordIndexed(t *testing.T) {
	db := newDB(t)
	fs := afero.NewMemMapFs()
	line := "2018-10-24 08:21:32,000000:INFO:node.if.fsm:[node1:if1] FSM transition sequence-nr=1 from-state=ONE_WAY event=TIMER_TICK actions-and-pushed-events=[] to-state=None implicit=False\n"
	require.NoError(t, afero.WriteFile(fs, "/memonly/n.log", []byte(line), 0o644))
	_, err := index.IndexAll(db, fs, "/memonly", nil, nil)
	require.NoError(t, err)

	// indexed, so the lookup passes and the missing file is reported by OpenLog
	err = OpenRecord(db, "/memonly/n.log", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotIndexed)
	assert.EqualError(t, err, "file not found: /memonly/n.log")
}
