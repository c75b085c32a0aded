package tui

import (
	"strings"
	"testing"

	"github.com/Zuo-Peng/logexpect/internal/scenario"
	"github.com/Zuo-Peng/logexpect/internal/search"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []search.Result {
	return []search.Result{
		{LogPath: "/l/n.log", LineNumber: 1, TargetID: "n-if1", FromState: "ONE_WAY", Event: "TIMER_TICK", ToState: "None", Ts: "2018-10-24 08:21:32.034123"},
		{LogPath: "/l/n.log", LineNumber: 5, TargetID: "n-if1", FromState: "ONE_WAY", Event: "NEW_NEIGHBOR", ToState: "TWO_WAY", Ts: "2018-10-24 08:21:32.134123"},
	}
}

func TestStepYAMLRoundTrip(t *testing.T) {
	out, err := StepYAML(sampleResults()[1])
	require.NoError(t, err)

	sc, err := scenario.Parse([]byte("steps:\n" + indent(out)))
	require.NoError(t, err)
	exps := sc.Expectations()
	require.Len(t, exps, 1)
	assert.Equal(t, "n-if1", exps[0].TargetID)
	assert.Equal(t, "TWO_WAY", exps[0].ToState)
	assert.NotContains(t, out, "max_delay")
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestFormatResultLine(t *testing.T) {
	lines := formatResultLine(sampleResults()[1], 60, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "n-if1 08:21:32.134 n.log:5")
	assert.Contains(t, lines[1], "ONE_WAY --NEW_NEIGHBOR--> TWO_WAY")
}

func TestUpdateNavigation(t *testing.T) {
	m := initialModel(nil, search.Options{})
	next, _ := m.Update(searchResultMsg{query: "", results: sampleResults()})
	m = next.(model)
	assert.Equal(t, 0, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor, "cursor stops at the last result")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	require.NotNil(t, cmd)
	require.NotNil(t, m.openResult)
	assert.Equal(t, 5, m.openResult.LineNumber)
}

func TestStaleResultsIgnored(t *testing.T) {
	m := initialModel(nil, search.Options{Query: "LIE"})
	next, _ := m.Update(searchResultMsg{query: "old", results: sampleResults()})
	assert.Empty(t, next.(model).results)
}

func TestAdjustListScroll(t *testing.T) {
	m := model{cursor: 7}
	m.adjustListScroll(6) // three items visible
	assert.Equal(t, 5, m.listOffset)
	m.cursor = 2
	m.adjustListScroll(6)
	assert.Equal(t, 2, m.listOffset)
}
