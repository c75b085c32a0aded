package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/logexpect/internal/render"
	"github.com/Zuo-Peng/logexpect/internal/search"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No transitions")
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatResultLine(r, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats one transition as two lines:
//
//	line 1: [>] target  time  log:line
//	line 2:    FROM --EVENT--> TO (dimmed)
func formatResultLine(r search.Result, width int, selected bool) []string {
	// keep the time of day, "2018-10-24 08:21:32.034123" -> "08:21:32.034"
	ts := r.Ts
	if len(ts) >= 23 {
		ts = ts[11:23]
	}

	where := fmt.Sprintf("%s:%d", filepath.Base(r.LogPath), r.LineNumber)
	line1 := fmt.Sprintf("%s %s %s", r.TargetID, ts, where)
	if width > 2 && runewidth.StringWidth(line1) > width-2 {
		line1 = runewidth.Truncate(line1, width-2, "")
	}
	line1 = styleTarget.Render(line1)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	transition := render.Transition(r)
	transitionMax := width - 4 // indent
	if transitionMax < 0 {
		transitionMax = 0
	}
	if runewidth.StringWidth(transition) > transitionMax {
		transition = runewidth.Truncate(transition, transitionMax, "")
	}
	line2 := "    " + styleEvent.Render(transition)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
