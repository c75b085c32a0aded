package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/mattn/go-runewidth"
)

const (
	colorReset   = "\033[0m"
	colorState   = "\033[1;34m" // bold blue
	colorEvent   = "\033[1;32m" // bold green
	colorImplied = "\033[2;35m" // dim magenta for implicit transitions
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitLine int    // log line of the transition to highlight
	Context int    // transitions before/after hit to show
	Width   int    // wrap width (0 = no wrap)
	Query   string // terms to highlight
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	for _, term := range strings.Fields(query) {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Transition formats one record as "FROM --EVENT--> TO".
func Transition(r index.RecordRow) string {
	to := r.ToState
	if to == "None" {
		to = r.FromState
	}
	return fmt.Sprintf("%s --%s--> %s", r.FromState, r.Event, to)
}

// RenderTimeline renders the transitions of one target and returns the
// content, the 0-based output line of the hit transition (-1 if none), and
// any error.
func RenderTimeline(db *index.DB, logPath, targetID string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	lg, err := db.GetLog(logPath)
	if err != nil {
		return "", -1, fmt.Errorf("get log: %w", err)
	}
	if lg == nil {
		return "", -1, fmt.Errorf("log not indexed: %s", logPath)
	}

	recs, hitIdx, startPos, totalCount, err := db.GetTimelineWindow(logPath, targetID, opts.HitLine, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get timeline: %w", err)
	}
	if totalCount == 0 {
		return fmt.Sprintf("(no transitions for %s)", targetID), -1, nil
	}

	skipAfter := totalCount - startPos - len(recs)

	var b strings.Builder
	hitLine := -1
	lineCount := 0

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s [%s] %d transitions ---%s", colorDim, targetID, logPath, totalCount, colorReset))

	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d transitions before) ...%s", colorDim, startPos, colorReset))
	}

	for i, r := range recs {
		if i == hitIdx {
			hitLine = lineCount
			writeLine(fmt.Sprintf("%s>> #%d line %d  %s <<%s", colorHit, r.SequenceNr, r.LineNumber, r.Ts, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s#%d line %d  %s%s", colorDim, r.SequenceNr, r.LineNumber, r.Ts, colorReset))
		}

		stateColor := colorState
		if r.Implicit {
			stateColor = colorImplied
		}
		body := fmt.Sprintf("  %s%s%s --%s%s%s--> %s%s%s",
			stateColor, r.FromState, colorReset,
			colorEvent, r.Event, colorReset,
			stateColor, r.ToState, colorReset)
		writeLine(highlightKeywords(body, opts.Query))
		if r.Actions != "" {
			writeLine(highlightKeywords("    actions: "+r.Actions, opts.Query))
		}
		if r.Implicit {
			writeLine(colorDim + "    (implicit)" + colorReset)
		}
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d transitions after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}
