package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const frameInterval = 120 * time.Millisecond

// spinnerFrame picks the frame from the wall clock so it animates on re-render.
func spinnerFrame(now time.Time) string {
	return spinnerFrames[now.UnixMilli()/frameInterval.Milliseconds()%int64(len(spinnerFrames))]
}

// frameTickMsg repaints the canvas while a render makes progress.
type frameTickMsg time.Time

func (frameTickMsg) background() {}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}
