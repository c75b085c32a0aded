package tui

import (
	"github.com/Zuo-Peng/logexpect/internal/index"
	"github.com/Zuo-Peng/logexpect/internal/render"
	"github.com/Zuo-Peng/logexpect/internal/search"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
	hitLine int
	err     error
}

// loadPreviewCmd renders the target timeline around r asynchronously.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderTimeline(db, r.LogPath, r.TargetID, render.Options{
			HitLine: r.LineNumber,
			Context: -1,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{
			key:     previewCacheKey(r),
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
