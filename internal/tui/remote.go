package tui

import (
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/socketrpc"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// ErrNotRunning is returned by Bridge calls made before the program started
// or after it exited.
var ErrNotRunning = errors.New("tui: explorer is not running")

// ErrTimeout is returned when the explorer does not answer a call in time.
var ErrTimeout = errors.New("tui: explorer did not answer in time")

const bridgeTimeout = 5 * time.Second

var _ socketrpc.Remote = (*Bridge)(nil)

// remoteCallMsg runs fn inside the Bubble Tea loop and replies with its result.
type remoteCallMsg struct {
	fn    func(p *ExplorerPage) (any, error)
	reply chan remoteReply
}

func (remoteCallMsg) background() {}

type remoteReply struct {
	value any
	err   error
}

// Bridge exposes a running explorer to the control socket. Every call is
// delivered as a message so the controller keeps a single writer.
type Bridge struct {
	mu      sync.RWMutex
	send    func(tea.Msg)
	stopped chan struct{} // closed by Detach
	timeout time.Duration
}

// NewBridge creates a detached bridge; Attach it to the program once created.
func NewBridge() *Bridge {
	return &Bridge{timeout: bridgeTimeout}
}

// Attach routes calls to send, normally (*tea.Program).Send. A nil send
// detaches.
func (b *Bridge) Attach(send func(tea.Msg)) {
	if send == nil {
		b.Detach()
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.send != nil {
		close(b.stopped)
	}
	b.send = send
	b.stopped = make(chan struct{})
}

// Detach makes further calls fail with ErrNotRunning and releases calls
// still waiting for an answer.
func (b *Bridge) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.send == nil {
		return
	}
	b.send = nil
	close(b.stopped)
}

func (b *Bridge) call(fn func(p *ExplorerPage) (any, error)) (any, error) {
	b.mu.RLock()
	send, stopped := b.send, b.stopped
	b.mu.RUnlock()
	if send == nil {
		return nil, ErrNotRunning
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	reply := make(chan remoteReply, 1)
	send(remoteCallMsg{fn: fn, reply: reply})

	select {
	case r := <-reply:
		return r.value, r.err
	case <-stopped:
		return nil, ErrNotRunning
	case <-timer.C:
		return nil, ErrTimeout
	}
}

func (b *Bridge) viewCall(fn func(p *ExplorerPage) error) (model.ViewInfo, error) {
	v, err := b.call(func(p *ExplorerPage) (any, error) {
		if err := fn(p); err != nil {
			return nil, err
		}
		return p.info(), nil
	})
	if err != nil {
		return model.ViewInfo{}, err
	}
	return v.(model.ViewInfo), nil
}

func (b *Bridge) View() (model.ViewInfo, error) {
	return b.viewCall(func(*ExplorerPage) error { return nil })
}

func (b *Bridge) Zoom(in bool) (model.ViewInfo, error) {
	return b.viewCall(func(p *ExplorerPage) error {
		p.viewChanged()
		p.ctrl.Zoom(in)
		return nil
	})
}

func (b *Bridge) Pan(col, row int) (model.ViewInfo, error) {
	return b.viewCall(func(p *ExplorerPage) error {
		p.viewChanged()
		p.ctrl.Pan(col, row)
		return nil
	})
}

// Hover also shows the trajectory on the canvas.
func (b *Bridge) Hover(col, row int) (viewer.Hover, error) {
	v, err := b.call(func(p *ExplorerPage) (any, error) {
		h := p.ctrl.Hover(col, row)
		p.setHover(&h)
		return h, nil
	})
	if err != nil {
		return viewer.Hover{}, err
	}
	return v.(viewer.Hover), nil
}

func (b *Bridge) SetQuality(q int) (model.ViewInfo, error) {
	return b.viewCall(func(p *ExplorerPage) error {
		p.viewChanged()
		p.ctrl.SetQuality(q)
		return nil
	})
}

func (b *Bridge) SetPalette(name string) (model.ViewInfo, error) {
	return b.viewCall(func(p *ExplorerPage) error {
		return p.ctrl.SetPalette(name)
	})
}

func (b *Bridge) Jump(preset string) (model.ViewInfo, error) {
	return b.viewCall(func(p *ExplorerPage) error {
		if _, err := p.ctrl.Jump(preset); err != nil {
			return err
		}
		p.viewChanged()
		return nil
	})
}

func (b *Bridge) Reset() (model.ViewInfo, error) {
	return b.viewCall(func(p *ExplorerPage) error {
		p.viewChanged()
		p.ctrl.Reset()
		return nil
	})
}
