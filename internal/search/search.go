package search

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/logexpect/internal/index"
)

type Result = index.RecordRow

type Options struct {
	Query  string // substring over target, states, event and actions
	Target string // "" = all
	Event  string
	State  string // matches from-state or to-state
	Log    string
	Since  string // "" = no filter, e.g. "2018-10-24 08:21"
	Limit  int
}

// Search returns transitions matching opts in log and line order.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	conditions := []string{"kind = 'transition'"}
	var args []interface{}

	if opts.Query != "" {
		conditions = append(conditions,
			"(target_id LIKE ? OR from_state LIKE ? OR event LIKE ? OR to_state LIKE ? OR actions LIKE ?)")
		like := "%" + opts.Query + "%"
		args = append(args, like, like, like, like, like)
	}
	if opts.Target != "" {
		conditions = append(conditions, "target_id = ?")
		args = append(args, opts.Target)
	}
	if opts.Event != "" {
		conditions = append(conditions, "event = ?")
		args = append(args, opts.Event)
	}
	if opts.State != "" {
		conditions = append(conditions, "(from_state = ? OR to_state = ?)")
		args = append(args, opts.State, opts.State)
	}
	if opts.Log != "" {
		conditions = append(conditions, "log_path = ?")
		args = append(args, opts.Log)
	}
	if opts.Since != "" {
		conditions = append(conditions, "ts >= ?")
		args = append(args, opts.Since)
	}

	query := fmt.Sprintf(`
		SELECT log_path, line_number, kind, sequence_nr, target_id, from_state, event, actions, to_state, ts, implicit
		FROM records
		WHERE %s
		ORDER BY log_path, line_number
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		r, err := index.ScanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

type Target struct {
	LogPath     string
	TargetID    string
	Transitions int
	LastTS      string
}

// Targets lists every FSM instance with its transition count, per log.
func Targets(db *index.DB) ([]Target, error) {
	rows, err := db.Raw().Query(`
		SELECT log_path, target_id, COUNT(*), MAX(ts)
		FROM records
		WHERE kind = 'transition'
		GROUP BY log_path, target_id
		ORDER BY log_path, target_id
	`)
	if err != nil {
		return nil, fmt.Errorf("targets query: %w", err)
	}
	defer rows.Close()

	var out []Target
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.LogPath, &t.TargetID, &t.Transitions, &t.LastTS); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
