package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type stubPage struct {
	id    string
	inits int
	seen  []tea.Msg
	nav   *PageNav
}

func (p *stubPage) ID() string { return p.id }

func (p *stubPage) Init() tea.Cmd {
	p.inits++
	return nil
}

func (p *stubPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	p.seen = append(p.seen, msg)
	nav := p.nav
	p.nav = nil
	return nil, nav
}

func (p *stubPage) View(int, int) string { return p.id }

type pingMsg struct{}

func (pingMsg) background() {}

func TestAppRoutesInputToActivePage(t *testing.T) {
	t.Parallel()

	a, b := &stubPage{id: "a"}, &stubPage{id: "b"}
	app := NewApp(a, b)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	if len(a.seen) != 1 || len(b.seen) != 0 {
		t.Fatalf("seen = %d/%d, want 1/0", len(a.seen), len(b.seen))
	}
	if got := app.View(); got != "a" {
		t.Errorf("View() = %q, want a", got)
	}
}

func TestAppBroadcastsSizeAndBackground(t *testing.T) {
	t.Parallel()

	a, b := &stubPage{id: "a"}, &stubPage{id: "b"}
	app := NewApp(a, b)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app.Update(pingMsg{})

	if len(a.seen) != 2 || len(b.seen) != 2 {
		t.Fatalf("seen = %d/%d, want 2/2", len(a.seen), len(b.seen))
	}
}

func TestAppNavigation(t *testing.T) {
	t.Parallel()

	a, b := &stubPage{id: "a"}, &stubPage{id: "b"}
	app := NewApp(a, b)
	a.nav = &PageNav{PageID: "b"}
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if app.ActivePage() != "b" {
		t.Fatalf("ActivePage() = %q, want b", app.ActivePage())
	}
	if b.inits != 1 {
		t.Errorf("b.inits = %d, want 1", b.inits)
	}

	b.nav = &PageNav{PageID: "missing"}
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if app.ActivePage() != "b" {
		t.Errorf("ActivePage() = %q after unknown nav, want b", app.ActivePage())
	}
}
