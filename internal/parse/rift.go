package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the Python logging asctime layout. Go accepts the comma
// separated fractional seconds on parse even though the layout omits them.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	transitionPrefix = "FSM transition"
	pushPrefix       = "FSM push event"
)

var transitionKeys = []string{
	"sequence-nr",
	"from-state",
	"event",
	"actions-and-pushed-events",
	"to-state",
	"implicit",
}

// RiftExtractor parses RIFT node log lines of the form
//
//	2018-10-24 08:21:32,034123:INFO:node.if.fsm:[node1:if1] FSM transition sequence-nr=3 from-state=ONE_WAY event=TIMER_TICK actions-and-pushed-events=[SEND_LIE] to-state=None implicit=False
type RiftExtractor struct{}

func (RiftExtractor) Parse(line string, lineNumber int) (*Record, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < len(TimestampLayout) {
		return nil, nil
	}

	// timestamp ends at the first ':' after the HH:MM:SS part
	rest := line[len(TimestampLayout):]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return nil, nil
	}
	tsText := line[:len(TimestampLayout)+colon]
	fields := strings.SplitN(rest[colon+1:], ":", 3)
	if len(fields) < 3 {
		return nil, nil
	}
	subsystem := fields[1]
	if !strings.HasSuffix(subsystem, ".fsm") {
		return nil, nil
	}

	target, msg, ok := splitTarget(fields[2])
	if !ok {
		return nil, nil
	}

	rec := &Record{
		LineNumber: lineNumber,
		TargetID:   target,
		Type:       TypeOther,
	}

	switch {
	case strings.HasPrefix(msg, transitionPrefix):
		rec.Type = TypeTransition
	case strings.HasPrefix(msg, pushPrefix):
		rec.Type = TypePush
	}

	ts, err := time.Parse(TimestampLayout, tsText)
	if err != nil {
		if rec.Type != TypeTransition {
			return nil, nil
		}
		return nil, &ParseError{Line: lineNumber, Text: line, Reason: fmt.Sprintf("bad timestamp %q", tsText)}
	}
	rec.Timestamp = ts

	switch rec.Type {
	case TypeTransition:
		if err := fillTransition(rec, strings.TrimPrefix(msg, transitionPrefix)); err != nil {
			return nil, &ParseError{Line: lineNumber, Text: line, Reason: err.Error()}
		}
	case TypePush:
		kv := splitKeyValues(strings.TrimPrefix(msg, pushPrefix))
		rec.Event = kv["event"]
	}
	return rec, nil
}

// splitTarget takes "[node1:if1] message" and returns "node1-if1", "message".
func splitTarget(s string) (string, string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return "", "", false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", "", false
	}
	id := s[1:end]
	if system, iface, found := strings.Cut(id, ":"); found {
		id = system + "-" + iface
	}
	if id == "" {
		return "", "", false
	}
	return id, strings.TrimSpace(s[end+1:]), true
}

func fillTransition(rec *Record, body string) error {
	kv := splitKeyValues(body)
	for _, k := range transitionKeys {
		if _, ok := kv[k]; !ok {
			return fmt.Errorf("missing %s", k)
		}
	}

	seq, err := strconv.Atoi(kv["sequence-nr"])
	if err != nil {
		return fmt.Errorf("bad sequence-nr %q", kv["sequence-nr"])
	}
	implicit, err := parseBool(kv["implicit"])
	if err != nil {
		return err
	}

	rec.SequenceNr = seq
	rec.FromState = kv["from-state"]
	rec.Event = kv["event"]
	rec.ToState = kv["to-state"]
	rec.Implicit = implicit
	rec.ActionsAndPushedEvents = splitList(kv["actions-and-pushed-events"])
	return nil
}

// splitKeyValues parses "a=1 b=[x, [y z]] c=2". Bracketed values may nest
// and contain spaces.
func splitKeyValues(s string) map[string]string {
	kv := make(map[string]string)
	s = strings.TrimSpace(s)
	for s != "" {
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(s[:eq])
		s = s[eq+1:]

		var val string
		if strings.HasPrefix(s, "[") {
			end := closingBracket(s)
			val = s[:end+1]
			s = s[end+1:]
		} else if sp := strings.IndexByte(s, ' '); sp >= 0 {
			val = s[:sp]
			s = s[sp:]
		} else {
			val = s
			s = ""
		}
		kv[key] = val
		s = strings.TrimSpace(s)
	}
	return kv
}

// closingBracket returns the index of the ']' matching s[0], or the last
// index of s when the brackets never balance.
func closingBracket(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s) - 1
}

// splitList splits "[a, b [c, d]]" on its top-level commas.
func splitList(s string) []string {
	s = strings.TrimPrefix(s, "[")
	if strings.HasSuffix(s, "]") {
		s = s[:len(s)-1]
	}
	var out []string
	depth, start := 0, 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) {
			switch s[i] {
			case '[':
				depth++
				continue
			case ']':
				depth--
				continue
			case ',':
				if depth > 0 {
					continue
				}
			default:
				continue
			}
		}
		if p := strings.TrimSpace(s[start:i]); p != "" {
			out = append(out, p)
		}
		start = i + 1
	}
	return out
}

func parseBool(s string) (bool, error) {
	switch s {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	}
	return false, fmt.Errorf("bad implicit flag %q", s)
}
