package index

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Zuo-Peng/logexpect/internal/parse"
	"github.com/Zuo-Peng/logexpect/internal/scan"
	"github.com/spf13/afero"
)

type Stats struct {
	Scanned  int
	Updated  int
	Skipped  int
	Pruned   int
	BadLines int
	Errors   int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d bad_lines=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.BadLines, s.Errors)
}

// IndexAll (re)indexes every node log below root whose mtime or size
// changed, and drops logs that disappeared. Files named like traceNames are
// session traces and are not indexed.
func IndexAll(db *DB, fs afero.Fs, root string, ex parse.Extractor, logger *slog.Logger, traceNames ...string) (Stats, error) {
	var stats Stats
	if logger == nil {
		logger = slog.Default()
	}

	files, err := scan.ScanRoot(fs, root, traceNames...)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seen := make(map[string]struct{})

	for _, fi := range files {
		seen[fi.Path] = struct{}{}

		needs, err := needsUpdate(db, fi.Path, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		result, err := parse.ParseFile(fs, fi.Path, ex)
		if err != nil {
			stats.Errors++
			logger.Warn("parse log", "path", fi.Path, "error", err)
			continue
		}
		for _, pe := range result.Errors {
			logger.Warn("malformed FSM record", "path", fi.Path, "error", pe)
		}
		stats.BadLines += len(result.Errors)

		if err := indexLog(db, result, fi); err != nil {
			stats.Errors++
			logger.Warn("index log", "path", fi.Path, "error", err)
			continue
		}
		stats.Updated++
	}

	pruned, err := pruneLogs(db, seen)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, logPath string, mtime, size int64) (bool, error) {
	info, err := db.GetLogInfo(logPath)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new log
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func formatTS(r *parse.Record) string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.Format(TimeLayout)
}

func indexLog(db *DB, result *parse.ParseResult, fi scan.FileInfo) error {
	// delete old data first
	if err := db.DeleteLog(fi.Path); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := result.Meta
	var firstTS, lastTS string
	if !meta.FirstTS.IsZero() {
		firstTS = meta.FirstTS.Format(TimeLayout)
		lastTS = meta.LastTS.Format(TimeLayout)
	}
	_, err = tx.Exec(
		`INSERT INTO logs (log_path, first_ts, last_ts, lines, transitions, bad_lines, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fi.Path, firstTS, lastTS, meta.Lines, meta.Transitions, len(result.Errors), fi.Mtime, fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO records (` + recordColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range result.Records {
		r := &result.Records[i]
		_, err := stmt.Exec(
			fi.Path,
			r.LineNumber,
			string(r.Type),
			r.SequenceNr,
			r.TargetID,
			r.FromState,
			r.Event,
			strings.Join(r.ActionsAndPushedEvents, ", "),
			r.ToState,
			formatTS(r),
			r.Implicit,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneLogs(db *DB, seen map[string]struct{}) (int, error) {
	all, err := db.AllLogPaths()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for p := range all {
		if _, ok := seen[p]; !ok {
			if err := db.DeleteLog(p); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
