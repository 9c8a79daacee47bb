package tui

import tea "github.com/charmbracelet/bubbletea"

// Page represents a top-level screen in the TUI (explorer, history).
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav is returned from Update to request a page switch.
type PageNav struct {
	PageID string
	Params any
}

// backgroundMsg marks messages every page receives, active or not: render
// results, frame ticks and remote control calls must never be dropped.
type backgroundMsg interface {
	background()
}

const (
	explorerPageID = "explorer"
	historyPageID  = "history"
)
