package tui

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/render"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// statusLines is the number of terminal rows below the canvas.
const statusLines = 2

// qualityLadder holds the qualities the +/- keys step through. Each divides
// 100 so the sampling step stays exact.
var qualityLadder = []int{5, 10, 20, 25, 50, 100}

// ExplorerOptions wires the explorer page to its collaborators.
type ExplorerOptions struct {
	Controller   *viewer.Controller
	Scheduler    *render.Scheduler
	Raster       *render.Raster
	SnapshotDir  string
	ReverseWheel bool
}

// ExplorerPage shows the fractal canvas, the trajectory overlay and the
// readout. It is the only writer of the controller.
type ExplorerPage struct {
	ctrl   *viewer.Controller
	sched  *render.Scheduler
	raster *render.Raster
	keys   KeyMap
	help   help.Model
	canvas *canvas
	modals []Modal

	snapshotDir  string
	reverseWheel bool

	width, height int
	sized         bool
	started       bool

	hover    *viewer.Hover
	hoverSeq int
	marks    map[model.ScreenPoint]struct{}

	last      *render.Result
	status    string
	statusErr bool
}

// NewExplorerPage creates the explorer page.
func NewExplorerPage(opts ExplorerOptions) *ExplorerPage {
	raster := opts.Raster
	if raster == nil {
		raster = render.NewRaster(0, 0)
	}
	h := help.New()
	h.ShortSeparator = "  "
	return &ExplorerPage{
		ctrl:         opts.Controller,
		sched:        opts.Scheduler,
		raster:       raster,
		keys:         DefaultKeyMap(),
		help:         h,
		canvas:       newCanvas(),
		snapshotDir:  opts.SnapshotDir,
		reverseWheel: opts.ReverseWheel,
	}
}

func (p *ExplorerPage) ID() string { return explorerPageID }

// Init arms the frame ticker and the result listener once; later visits only
// refresh the view.
func (p *ExplorerPage) Init() tea.Cmd {
	if p.started {
		return nil
	}
	p.started = true
	return tea.Batch(frameTick(), p.waitForResult())
}

// renderResultMsg carries a finished render job.
type renderResultMsg struct {
	res render.Result
}

func (renderResultMsg) background() {}

// snapshotMsg reports a written PNG snapshot.
type snapshotMsg struct {
	path string
	err  error
}

func (snapshotMsg) background() {}

func (p *ExplorerPage) waitForResult() tea.Cmd {
	if p.sched == nil {
		return nil
	}
	results := p.sched.Results()
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return renderResultMsg{res: res}
	}
}

func (p *ExplorerPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return p.resize(msg.Width, msg.Height), nil
	case frameTickMsg:
		return frameTick(), nil
	case renderResultMsg:
		res := msg.res
		p.last = &res
		return p.waitForResult(), nil
	case snapshotMsg:
		if msg.err != nil {
			p.setStatus("snapshot failed: "+msg.err.Error(), true)
		} else {
			p.setStatus("saved "+msg.path, false)
		}
		return nil, nil
	case remoteCallMsg:
		v, err := msg.fn(p)
		msg.reply <- remoteReply{value: v, err: err}
		return nil, nil
	}

	if n := len(p.modals); n > 0 {
		pop, cmd := p.modals[n-1].Update(msg)
		if pop {
			p.modals = p.modals[:n-1]
		}
		return cmd, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKey(msg)
	case tea.MouseMsg:
		p.handleMouse(msg)
	}
	return nil, nil
}

func (p *ExplorerPage) handleKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	switch {
	case key.Matches(msg, p.keys.Quit, p.keys.ForceQuit):
		return tea.Quit, nil
	case key.Matches(msg, p.keys.Help):
		p.pushModal(newHelpModal(p.keys, p.ctrl.Presets()))
	case key.Matches(msg, p.keys.History):
		return nil, &PageNav{PageID: historyPageID}
	case key.Matches(msg, p.keys.Escape):
		p.clearHover()
	case key.Matches(msg, p.keys.ZoomIn):
		p.viewChanged()
		p.ctrl.Zoom(true)
	case key.Matches(msg, p.keys.ZoomOut):
		p.viewChanged()
		p.ctrl.Zoom(false)
	case key.Matches(msg, p.keys.Up, p.keys.Down, p.keys.Left, p.keys.Right):
		p.viewChanged()
		p.panStep(msg)
	case key.Matches(msg, p.keys.QualityUp):
		p.viewChanged()
		p.ctrl.SetQuality(stepQuality(p.ctrl.View().Quality, true))
	case key.Matches(msg, p.keys.QualityDown):
		p.viewChanged()
		p.ctrl.SetQuality(stepQuality(p.ctrl.View().Quality, false))
	case key.Matches(msg, p.keys.Palette):
		name := p.ctrl.CyclePalette()
		p.setStatus("palette "+name, false)
	case key.Matches(msg, p.keys.Reset):
		p.viewChanged()
		p.ctrl.Reset()
	case key.Matches(msg, p.keys.Preset):
		pr, err := p.ctrl.Jump(msg.String())
		if err != nil {
			p.setStatus(err.Error(), true)
			break
		}
		p.viewChanged()
		p.setStatus(pr.Name, false)
	case key.Matches(msg, p.keys.Snapshot):
		return p.snapshot(), nil
	}
	return nil, nil
}

func (p *ExplorerPage) handleMouse(msg tea.MouseMsg) {
	rows := p.canvasRows()
	if msg.Y < 0 || msg.Y >= rows || msg.X < 0 || msg.X >= p.width {
		return
	}
	col, row := msg.X, msg.Y*2

	switch {
	case msg.Action == tea.MouseActionMotion:
		h := p.ctrl.Hover(col, row)
		p.setHover(&h)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		p.viewChanged()
		p.ctrl.Pan(col, row)
	case msg.Button == tea.MouseButtonWheelUp, msg.Button == tea.MouseButtonWheelDown:
		in := msg.Button == tea.MouseButtonWheelUp
		if p.reverseWheel {
			in = !in
		}
		p.viewChanged()
		p.ctrl.Zoom(in)
	}
}

// panStep moves the view a quarter frame in the arrow's direction.
func (p *ExplorerPage) panStep(msg tea.KeyMsg) {
	w, h := p.ctrl.Size()
	col, row := w/2, h/2
	switch {
	case key.Matches(msg, p.keys.Up):
		row -= h / 4
	case key.Matches(msg, p.keys.Down):
		row += h / 4
	case key.Matches(msg, p.keys.Left):
		col -= w / 4
	case key.Matches(msg, p.keys.Right):
		col += w / 4
	}
	p.ctrl.Pan(col, row)
}

func stepQuality(q int, up bool) int {
	i, found := slices.BinarySearch(qualityLadder, q)
	switch {
	case up && found:
		i++
	case !up:
		i--
	}
	i = max(0, min(i, len(qualityLadder)-1))
	return qualityLadder[i]
}

func (p *ExplorerPage) resize(width, height int) tea.Cmd {
	p.width, p.height = width, height
	rows := p.canvasRows()
	changed := p.ctrl.Resize(width, rows*2)
	if !p.sized {
		// First frame renders immediately instead of after the debounce.
		p.sized = true
		if p.sched != nil {
			p.sched.RenderNow(p.ctrl.Frame())
		}
	} else if changed {
		p.clearHover()
	}
	return nil
}

func (p *ExplorerPage) canvasRows() int {
	return max(p.height-statusLines, 1)
}

func (p *ExplorerPage) pushModal(m Modal) {
	for _, existing := range p.modals {
		if existing.ID() == m.ID() {
			return
		}
	}
	p.modals = append(p.modals, m)
}

// viewChanged drops state tied to the old view.
func (p *ExplorerPage) viewChanged() {
	p.clearHover()
	p.status = ""
}

func (p *ExplorerPage) setHover(h *viewer.Hover) {
	p.hover = h
	p.hoverSeq++
	p.marks = nil
	if h != nil {
		w, rh := p.ctrl.Size()
		p.marks = trajectoryMarks(h.Path, w, rh)
	}
}

func (p *ExplorerPage) clearHover() {
	if p.hover != nil {
		p.setHover(nil)
	}
}

func (p *ExplorerPage) setStatus(s string, isErr bool) {
	p.status = s
	p.statusErr = isErr
}

// snapshot writes the current raster to a timestamped PNG.
func (p *ExplorerPage) snapshot() tea.Cmd {
	dir := p.snapshotDir
	raster := p.raster
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return snapshotMsg{err: fmt.Errorf("create snapshot dir: %w", err)}
		}
		path := filepath.Join(dir, "mandelview-"+time.Now().Format("20060102-150405.000")+".png")
		f, err := os.Create(path)
		if err != nil {
			return snapshotMsg{err: fmt.Errorf("create snapshot: %w", err)}
		}
		if err := raster.EncodePNG(f); err != nil {
			f.Close()
			return snapshotMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return snapshotMsg{err: fmt.Errorf("close snapshot: %w", err)}
		}
		log.Printf("tui: snapshot saved to %s", path)
		return snapshotMsg{path: path}
	}
}

// info is the externally visible state, used by the control socket.
func (p *ExplorerPage) info() model.ViewInfo {
	w, h := p.ctrl.Size()
	return model.ViewInfo{
		View:    p.ctrl.View(),
		Width:   w,
		Height:  h,
		Palette: p.ctrl.Policy().Name(),
		Readout: p.ctrl.Readout(p.hover),
	}
}

func (p *ExplorerPage) busy() bool {
	return p.sched != nil && (p.sched.Active() != nil || p.sched.Pending())
}

func (p *ExplorerPage) View(width, height int) string {
	if n := len(p.modals); n > 0 {
		return p.modals[n-1].View(width, height)
	}
	if width <= 0 || height <= 0 {
		return ""
	}
	rows := p.canvasRows()
	out := p.canvas.render(p.raster, width, rows, p.marks, p.hoverSeq)
	return lipgloss.JoinVertical(lipgloss.Left, out, p.readoutLine(width), p.statusLine(width))
}

func (p *ExplorerPage) readoutLine(width int) string {
	r := p.ctrl.Readout(p.hover)
	fields := []struct{ label, value string }{
		{"Iterations", r.Iterations},
		{"Scale", r.Scale},
		{"xOffset", r.XOffset},
		{"yOffset", r.YOffset},
		{"Hover", r.Hover},
		{"Quality", r.Quality},
		{"Palette", r.Palette},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		parts = append(parts, labelStyle.Render(f.label+": ")+valueStyle.Render(f.value))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(parts, "  "))
}

func (p *ExplorerPage) statusLine(width int) string {
	var left string
	switch {
	case p.busy():
		left = spinnerStyle.Render(spinnerFrame(time.Now()) + " rendering")
	case p.status != "" && p.statusErr:
		left = errorStyle.Render(p.status)
	case p.status != "":
		left = okStyle.Render(p.status)
	case p.last != nil:
		left = labelStyle.Render(p.last.String())
	}
	if p.busy() && p.status != "" {
		left += "  " + labelStyle.Render(p.status)
	}
	line := left + "  " + p.help.ShortHelpView(p.keys.ShortHelp())
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}
