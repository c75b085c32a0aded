package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// TimeLayout is how timestamps are stored; it sorts lexically.
const TimeLayout = "2006-01-02 15:04:05.000000"

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS logs (
    log_path    TEXT PRIMARY KEY,
    first_ts    TEXT NOT NULL DEFAULT '',
    last_ts     TEXT NOT NULL DEFAULT '',
    lines       INTEGER NOT NULL DEFAULT 0,
    transitions INTEGER NOT NULL DEFAULT 0,
    bad_lines   INTEGER NOT NULL DEFAULT 0,
    mtime       INTEGER NOT NULL DEFAULT 0,
    size        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
    log_path    TEXT NOT NULL,
    line_number INTEGER NOT NULL,
    kind        TEXT NOT NULL DEFAULT 'transition',
    sequence_nr INTEGER NOT NULL DEFAULT 0,
    target_id   TEXT NOT NULL,
    from_state  TEXT NOT NULL DEFAULT '',
    event       TEXT NOT NULL DEFAULT '',
    actions     TEXT NOT NULL DEFAULT '',
    to_state    TEXT NOT NULL DEFAULT '',
    ts          TEXT NOT NULL DEFAULT '',
    implicit    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (log_path, line_number)
);

CREATE INDEX IF NOT EXISTS records_target ON records(target_id, log_path, line_number);
CREATE INDEX IF NOT EXISTS records_event ON records(event);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

// schemaVersion should be bumped whenever record parsing changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// force re-index by resetting all log mtime/size to 0
		d.db.Exec("UPDATE logs SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type LogInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetLogInfo(logPath string) (*LogInfo, error) {
	var info LogInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM logs WHERE log_path = ?",
		logPath,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllLogPaths() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT log_path FROM logs")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths[p] = struct{}{}
	}
	return paths, rows.Err()
}

func (d *DB) DeleteLog(logPath string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records WHERE log_path = ?", logPath); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM logs WHERE log_path = ?", logPath); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) LogCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM logs").Scan(&n)
	return n, err
}

func (d *DB) TransitionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records WHERE kind = 'transition'").Scan(&n)
	return n, err
}

type LogRow struct {
	LogPath     string
	FirstTS     string
	LastTS      string
	Lines       int
	Transitions int
	BadLines    int
}

func (d *DB) GetLog(logPath string) (*LogRow, error) {
	var l LogRow
	err := d.db.QueryRow(
		"SELECT log_path, first_ts, last_ts, lines, transitions, bad_lines FROM logs WHERE log_path = ?",
		logPath,
	).Scan(&l.LogPath, &l.FirstTS, &l.LastTS, &l.Lines, &l.Transitions, &l.BadLines)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

type RecordRow struct {
	LogPath    string
	LineNumber int
	Kind       string
	SequenceNr int
	TargetID   string
	FromState  string
	Event      string
	Actions    string
	ToState    string
	Ts         string
	Implicit   bool
}

const recordColumns = "log_path, line_number, kind, sequence_nr, target_id, from_state, event, actions, to_state, ts, implicit"

func ScanRecord(rows *sql.Rows) (RecordRow, error) {
	var r RecordRow
	err := rows.Scan(&r.LogPath, &r.LineNumber, &r.Kind, &r.SequenceNr, &r.TargetID,
		&r.FromState, &r.Event, &r.Actions, &r.ToState, &r.Ts, &r.Implicit)
	return r, err
}

// GetTimeline returns the transitions of one target in a log, in line order.
func (d *DB) GetTimeline(logPath, targetID string) ([]RecordRow, error) {
	rows, err := d.db.Query(
		"SELECT "+recordColumns+" FROM records WHERE log_path = ? AND target_id = ? AND kind = 'transition' ORDER BY line_number",
		logPath, targetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		r, err := ScanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTimelineWindow returns up to context transitions on each side of the
// transition at hitLine. hitIdx is its index in the window (-1 if absent),
// startPos the number of transitions before the window.
func (d *DB) GetTimelineWindow(logPath, targetID string, hitLine, context int) (recs []RecordRow, hitIdx int, startPos int, totalCount int, err error) {
	all, err := d.GetTimeline(logPath, targetID)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	totalCount = len(all)

	hitPos := -1
	for i, r := range all {
		if r.LineNumber == hitLine {
			hitPos = i
			break
		}
	}
	if hitPos < 0 {
		return all, -1, 0, totalCount, nil
	}

	startPos = hitPos - context
	if startPos < 0 {
		startPos = 0
	}
	endPos := hitPos + context + 1
	if endPos > totalCount {
		endPos = totalCount
	}
	return all[startPos:endPos], hitPos - startPos, startPos, totalCount, nil
}
