// Package expect checks the FSM transitions a node wrote to its log against
// an expected sequence.
//
// A Session owns one log file and a forward-only read cursor. It is not safe
// for concurrent use: the cursor and the last matched timestamp are plain
// fields, and callers must serialize every call on a session.
package expect

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/Zuo-Peng/logexpect/internal/parse"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
)

const DefaultTracePath = "log_expect.log"

// Expectation describes one transition the log must contain next for a target.
type Expectation struct {
	TargetID  string
	FromState string
	Event     string
	ToState   string
	// SkipEvents are ignored for this target until the expected transition
	// or a mismatch shows up.
	SkipEvents []string
	// MaxDelay bounds the time since the previously matched transition.
	// Zero means no bound.
	MaxDelay time.Duration
}

type Config struct {
	Fs        afero.Fs // defaults to the OS filesystem
	LogPath   string
	TracePath string // defaults to DefaultTracePath
	Extractor parse.Extractor
	Logger    *slog.Logger
	// MaxLineSize bounds one log line; defaults to parse.MaxLineSize.
	MaxLineSize int
}

type Session struct {
	fs          afero.Fs
	logPath     string
	tracePath   string
	extractor   parse.Extractor
	logger      *slog.Logger
	maxLineSize int

	id      ulid.ULID
	file    afero.File
	scanner *bufio.Scanner
	trace   *traceWriter

	lineNr        int
	lastTimestamp time.Time
	hasLast       bool
}

func New(cfg Config) *Session {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.TracePath == "" {
		cfg.TracePath = DefaultTracePath
	}
	if cfg.Extractor == nil {
		cfg.Extractor = parse.RiftExtractor{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxLineSize <= 0 {
		cfg.MaxLineSize = parse.MaxLineSize
	}
	return &Session{
		fs:          cfg.Fs,
		logPath:     cfg.LogPath,
		tracePath:   cfg.TracePath,
		extractor:   cfg.Extractor,
		logger:      cfg.Logger,
		maxLineSize: cfg.MaxLineSize,
	}
}

// Open opens the log at line 0 and truncates the trace file.
func (s *Session) Open() error {
	if s.file != nil {
		return ErrAlreadyOpen
	}

	f, err := s.fs.Open(s.logPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	if dir := filepath.Dir(s.tracePath); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			f.Close()
			return fmt.Errorf("create trace dir: %w", err)
		}
	}
	tf, err := s.fs.Create(s.tracePath)
	if err != nil {
		f.Close()
		return fmt.Errorf("create trace: %w", err)
	}

	s.file = f
	s.scanner = bufio.NewScanner(f)
	s.scanner.Buffer(make([]byte, 0, 64*1024), s.maxLineSize)
	s.trace = &traceWriter{w: tf}
	s.lineNr = 0
	s.lastTimestamp = time.Time{}
	s.hasLast = false
	s.id = ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))

	s.trace.open(s.id.String(), s.logPath)
	s.logger.Debug("log expect session opened", "session", s.id.String(), "log", s.logPath, "trace", s.tracePath)
	return nil
}

// Close releases the log and flushes the trace. It is safe to call on a
// closed session.
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	ferr := s.file.Close()
	terr := s.trace.close()
	s.file = nil
	s.scanner = nil
	s.trace = nil
	s.logger.Debug("log expect session closed", "session", s.id.String(), "lines", s.lineNr)
	return errors.Join(ferr, terr)
}

func (s *Session) IsOpen() bool { return s.file != nil }

// ID identifies the current open of the session.
func (s *Session) ID() ulid.ULID { return s.id }

// Line is the number of log lines consumed so far.
func (s *Session) Line() int { return s.lineNr }

func (s *Session) TracePath() string { return s.tracePath }

// LastTimestamp is the timestamp of the most recently matched transition.
func (s *Session) LastTimestamp() (time.Time, bool) {
	return s.lastTimestamp, s.hasLast
}

// NextRecordFor returns the next transition record for targetID after the
// cursor, or (nil, nil) once the log is exhausted.
func (s *Session) NextRecordFor(targetID string) (*parse.Record, error) {
	if s.file == nil {
		return nil, newError(KindNotOpen, "log expect session is not open")
	}
	for s.scanner.Scan() {
		s.lineNr++
		rec, err := s.extractor.Parse(s.scanner.Text(), s.lineNr)
		if err != nil {
			e := &Error{Kind: KindParseError, Message: "cannot parse FSM log record", Cause: err}
			s.trace.failure(e)
			return nil, e
		}
		if rec.IsTransition() && rec.TargetID == targetID {
			rec.LineNumber = s.lineNr
			s.trace.observed(rec)
			return rec, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log line %d: %w", s.lineNr+1, err)
	}
	return nil, nil
}

// Expect consumes records for exp.TargetID until one that is not in
// exp.SkipEvents shows up and checks it against exp.
func (s *Session) Expect(exp Expectation) (*parse.Record, error) {
	if s.file == nil {
		return nil, newError(KindNotOpen, "log expect session is not open")
	}
	s.trace.searching(exp)

	for {
		rec, err := s.NextRecordFor(exp.TargetID)
		if err != nil {
			return nil, s.fail(err)
		}
		if rec == nil {
			return nil, s.fail(newError(KindNotFound,
				"Did not find FSM transition for target-id %s", exp.TargetID))
		}
		if slices.Contains(exp.SkipEvents, rec.Event) {
			continue
		}

		if err := s.check(exp, rec); err != nil {
			return nil, s.fail(err)
		}

		s.lastTimestamp = rec.Timestamp
		s.hasLast = true
		s.trace.found()
		s.logger.Debug("found expected FSM transition",
			"session", s.id.String(), "target", rec.TargetID, "line", rec.LineNumber,
			"from", rec.FromState, "event", rec.Event, "to", rec.ToState)
		return rec, nil
	}
}

func (s *Session) check(exp Expectation, rec *parse.Record) *Error {
	if rec.FromState != exp.FromState {
		return newError(KindUnexpectedFromState,
			"FSM transition has from-state %s instead of expected from-state %s", rec.FromState, exp.FromState)
	}
	if rec.Event != exp.Event {
		return newError(KindUnexpectedEvent,
			"FSM transition has event %s instead of expected event %s", rec.Event, exp.Event)
	}
	if rec.ToState != exp.ToState {
		return newError(KindUnexpectedToState,
			"FSM transition has to-state %s instead of expected to-state %s", rec.ToState, exp.ToState)
	}
	if exp.MaxDelay <= 0 {
		return nil
	}
	if !s.hasLast {
		return newError(KindNoPriorTimestamp, "Maxdelay specified in fsm_expect, but no previous event")
	}
	delay := rec.Timestamp.Sub(s.lastTimestamp)
	if delay < 0 {
		return newError(KindTimestampRegression,
			"FSM transition at line %d is %.6f seconds older than the previous matched transition",
			rec.LineNumber, -delay.Seconds())
	}
	if delay > exp.MaxDelay {
		return newError(KindDelayExceeded,
			"Actual delay %.6f exceeds maximum delay %.6f", delay.Seconds(), exp.MaxDelay.Seconds())
	}
	return nil
}

// fail records err in the trace (parse errors are already there) and logs it.
func (s *Session) fail(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		s.trace.printf("%s\n\n", err.Error())
		s.logger.Warn("FSM expectation failed", "session", s.id.String(), "error", err)
		return err
	}
	if e.Kind != KindParseError {
		s.trace.failure(e)
	}
	s.logger.Warn("FSM expectation failed", "session", s.id.String(), "kind", string(e.Kind), "error", e.Error())
	return e
}
