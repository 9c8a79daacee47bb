package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mandelview/internal/model"
)

const (
	historyLimit    = 120
	historyListRows = 8
	chartHeight     = 10
)

// HistoryPage charts the elapsed time of recent renders.
type HistoryPage struct {
	log     model.RenderLog
	keys    historyKeys
	records []model.RenderRecord // newest first
	err     error
	loading bool
}

type historyKeys struct {
	Back   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

// historyLoadedMsg carries the result of a history query.
type historyLoadedMsg struct {
	records []model.RenderRecord
	err     error
}

// NewHistoryPage creates the history page. log may be nil when persistence
// is disabled.
func NewHistoryPage(log model.RenderLog) *HistoryPage {
	return &HistoryPage{
		log: log,
		keys: historyKeys{
			Back:   key.NewBinding(key.WithKeys("esc", "i"), key.WithHelp("esc/i", "back")),
			Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
			Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
	}
}

func (p *HistoryPage) ID() string { return historyPageID }

func (p *HistoryPage) Init() tea.Cmd { return p.load() }

func (p *HistoryPage) load() tea.Cmd {
	if p.log == nil {
		return nil
	}
	p.loading = true
	rl := p.log
	return func() tea.Msg {
		recs, err := rl.RecentRenders(historyLimit)
		return historyLoadedMsg{records: recs, err: err}
	}
}

func (p *HistoryPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		p.loading = false
		p.records, p.err = msg.records, msg.err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Back):
			return nil, &PageNav{PageID: explorerPageID}
		case key.Matches(msg, p.keys.Reload):
			return p.load(), nil
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		}
	}
	return nil, nil
}

func (p *HistoryPage) View(width, height int) string {
	var body string
	switch {
	case p.log == nil:
		body = labelStyle.Render("render history is disabled (persist: false)")
	case p.loading && p.records == nil:
		body = labelStyle.Italic(true).Render(spinnerFrame(time.Now()) + " Loading...")
	case p.err != nil:
		body = errorStyle.Render("history: " + p.err.Error())
	case len(p.records) == 0:
		body = labelStyle.Render("no renders recorded yet")
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			p.renderChart(width-4),
			"",
			p.summary(),
			"",
			p.renderList(),
		)
	}

	title := titleStyle.Render("Render history")
	footer := labelStyle.Render("esc/i: back | r: reload | q: quit")
	box := lipgloss.NewStyle().
		Width(max(width-2, 10)).
		Height(max(height-2, 5)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer))
	return box
}

// completed returns the timed runs oldest first.
func (p *HistoryPage) completed() []model.RenderRecord {
	var out []model.RenderRecord
	for _, r := range p.records {
		if r.Completed {
			out = append(out, r)
		}
	}
	slices.Reverse(out)
	return out
}

func (p *HistoryPage) renderChart(width int) string {
	runs := p.completed()
	if len(runs) == 0 {
		return labelStyle.Render("no completed renders to chart")
	}
	// One column per bar plus a one column gap.
	if n := max(width/2, 1); len(runs) > n {
		runs = runs[len(runs)-n:]
	}

	bc := barchart.New(max(width, 2), chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	style := lipgloss.NewStyle().Foreground(ColorBlue)
	for _, r := range runs {
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: fmt.Sprintf("gen %d", r.Generation), Value: float64(r.Elapsed.Milliseconds()), Style: style},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

func (p *HistoryPage) summary() string {
	runs := p.completed()
	stopped := len(p.records) - len(runs)
	if len(runs) == 0 {
		return labelStyle.Render(fmt.Sprintf("%d stopped", stopped))
	}
	var total, worst int64
	for _, r := range runs {
		ms := r.Elapsed.Milliseconds()
		total += ms
		worst = max(worst, ms)
	}
	return labelStyle.Render(fmt.Sprintf("%d completed, %d stopped, mean %d ms, max %d ms",
		len(runs), stopped, total/int64(len(runs)), worst))
}

func (p *HistoryPage) renderList() string {
	var b strings.Builder
	for i, r := range p.records {
		if i == historyListRows {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		outcome := okStyle.Render(fmt.Sprintf("completed in %d ms", r.Elapsed.Milliseconds()))
		if !r.Completed {
			outcome = spinnerStyle.Render(fmt.Sprintf("stopped at row %d", r.StopRow))
		}
		fmt.Fprintf(&b, "gen %-5d %s  scale %-8g q %-3d %-9s %dx%d  %s",
			r.Generation, r.StartedAt.Local().Format("15:04:05"), r.View.Scale, r.View.Quality,
			r.Palette, r.Width, r.Height, outcome)
	}
	return b.String()
}
