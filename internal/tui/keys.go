package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the explorer key bindings with built-in help text.
type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Escape    key.Binding

	ZoomIn  key.Binding
	ZoomOut key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding

	QualityUp   key.Binding
	QualityDown key.Binding
	Palette     key.Binding
	Reset       key.Binding
	Preset      key.Binding
	Snapshot    key.Binding
	History     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),

		ZoomIn: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zoom out"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "pan up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "pan down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "pan left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "pan right"),
		),

		QualityUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "quality up"),
		),
		QualityDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "quality down"),
		),
		Palette: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle palette"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset view"),
		),
		Preset: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "jump to preset"),
		),
		Snapshot: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save png"),
		),
		History: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "render history"),
		),
	}
}

// ShortHelp is shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Palette, k.History, k.Help, k.Quit}
}

// FullHelp is shown in the help modal.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Up, k.Down, k.Left, k.Right},
		{k.QualityUp, k.QualityDown, k.Palette, k.Reset, k.Preset},
		{k.Snapshot, k.History, k.Help, k.Escape, k.Quit, k.ForceQuit},
	}
}
