package parse

import (
	"fmt"
	"time"
)

// RecordType discriminates FSM log lines.
type RecordType string

const (
	TypeTransition RecordType = "transition"
	TypePush       RecordType = "push"
	TypeOther      RecordType = "other"
)

// Record is one FSM line observed in a node log.
type Record struct {
	LineNumber             int // 1-based, assigned by the reader
	SequenceNr             int
	TargetID               string // "<system>-<interface>"
	FromState              string
	Event                  string
	ActionsAndPushedEvents []string
	ToState                string // "None" when the state is unchanged
	Timestamp              time.Time
	Implicit               bool
	Type                   RecordType
}

func (r *Record) IsTransition() bool {
	return r != nil && r.Type == TypeTransition
}

// Extractor turns one raw log line into a Record.
// It returns (nil, nil) for lines that are not FSM records.
type Extractor interface {
	Parse(line string, lineNumber int) (*Record, error)
}

// ParseError reports a transition-shaped line that could not be decoded.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

type FileMeta struct {
	FilePath    string
	Mtime       time.Time
	Size        int64
	FirstTS     time.Time
	LastTS      time.Time
	Lines       int
	Transitions int
}

type ParseResult struct {
	Meta    FileMeta
	Records []Record
	Errors  []*ParseError
}
