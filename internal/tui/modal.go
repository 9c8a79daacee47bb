package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// Modal is a self-contained overlay that owns its own Update/View lifecycle.
// The topmost modal of the explorer's stack receives all input.
type Modal interface {
	// ID returns a unique identifier used to deduplicate pushes.
	ID() string
	// Update processes a message. Return pop=true to close the modal.
	Update(msg tea.Msg) (pop bool, cmd tea.Cmd)
	// View renders the modal content for the given terminal dimensions.
	View(width, height int) string
}

// helpModal lists the key bindings and the preset regions.
type helpModal struct {
	keys    KeyMap
	presets []viewer.Preset
	vp      viewport.Model
}

func newHelpModal(keys KeyMap, presets []viewer.Preset) *helpModal {
	return &helpModal{keys: keys, presets: presets, vp: viewport.New(0, 0)}
}

func (m *helpModal) ID() string { return "help" }

func (m *helpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(km, m.keys.Escape, m.keys.Help, m.keys.Quit) {
			return true, nil
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return false, cmd
}

func (m *helpModal) View(width, height int) string {
	return renderModal(&m.vp, "Help", m.content(), width, height)
}

func (m *helpModal) content() string {
	h := help.New()
	h.ShowAll = true

	var b strings.Builder
	b.WriteString(titleStyle.Render("KEYS"))
	b.WriteString("\n\n")
	b.WriteString(h.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("MOUSE"))
	b.WriteString("\n\n")
	b.WriteString("  move     show iterations and trajectory\n")
	b.WriteString("  click    centre on the point\n")
	b.WriteString("  wheel    zoom (down zooms out)\n\n")
	b.WriteString(titleStyle.Render("PRESETS"))
	b.WriteString("\n\n")
	for i, p := range m.presets {
		if i < 9 {
			fmt.Fprintf(&b, "  %d  ", i+1)
		} else {
			b.WriteString("     ")
		}
		fmt.Fprintf(&b, "%-28s x %g..%g  y %g..%g\n", p.Name, p.XMin, p.XMax, p.YMin, p.YMax)
	}
	return b.String()
}

// renderModal draws content in a scrollable, bordered box centred on screen.
func renderModal(vp *viewport.Model, title, content string, width, height int) string {
	modalWidth := max(width-8, 20)
	modalHeight := max(height-4, 8)
	contentWidth := modalWidth - 4
	contentHeight := modalHeight - 4

	vp.Width = contentWidth
	vp.Height = contentHeight
	vp.SetContent(lipgloss.NewStyle().Width(contentWidth).Render(content))

	pane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Render(vp.View())

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(ColorBlue).
		Bold(true).
		Render(title)

	status := labelStyle.Render("up/down/Wheel: Scroll | PgUp/PgDn: Page | ESC: Close")

	box := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, pane, status))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
