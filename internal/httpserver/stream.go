package httpserver

import (
	"context"
	"errors"
	"image/color"
	"log"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/palette"
	"github.com/tinytelemetry/mandelview/internal/render"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

const streamQueue = 256

// clientEvent is an input event sent by a stream client.
type clientEvent struct {
	Type   string  `json:"type"` // move, down, wheel, key, resize
	Col    int     `json:"col"`
	Row    int     `json:"row"`
	DeltaY float64 `json:"deltaY"`
	Key    string  `json:"key"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

type frameMsg struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type rowMsg struct {
	Type   string   `json:"type"`
	Row    int      `json:"row"`
	Step   int      `json:"step"`
	Colors []string `json:"colors"`
}

type doneMsg struct {
	Type       string  `json:"type"`
	Generation uint64  `json:"generation"`
	Completed  bool    `json:"completed"`
	ElapsedMS  float64 `json:"elapsedMs,omitempty"`
	StopRow    int     `json:"stopRow"`
}

type hoverMsg struct {
	Type string       `json:"type"`
	Data viewer.Hover `json:"data"`
}

type readoutMsg struct {
	Type    string        `json:"type"`
	Readout model.Readout `json:"readout"`
}

type errorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// wsSink streams painted rows to the client, one message per row.
type wsSink struct {
	send func(any) bool

	mu   sync.Mutex
	row  []string
	step int
}

func (w *wsSink) BeginFrame(width, height int) {
	w.mu.Lock()
	w.row = w.row[:0]
	w.mu.Unlock()
	w.send(frameMsg{Type: "frame", Width: width, Height: height})
}

func (w *wsSink) EndFrame(bool) {}

func (w *wsSink) PaintCell(_, _, _, h int, c color.RGBA) {
	w.mu.Lock()
	w.row = append(w.row, palette.Hex(c))
	w.step = h
	w.mu.Unlock()
}

func (w *wsSink) RowDone(row int) {
	w.mu.Lock()
	msg := rowMsg{Type: "row", Row: row, Step: w.step, Colors: append([]string(nil), w.row...)}
	w.row = w.row[:0]
	w.mu.Unlock()
	w.send(msg)
}

// streamSession is one websocket client with its own controller and scheduler.
type streamSession struct {
	srv   *Server
	conn  *websocket.Conn
	ctx   context.Context
	out   chan any
	ctrl  *viewer.Controller
	sched *render.Scheduler
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.OriginPatterns,
	})
	if err != nil {
		log.Printf("httpserver: stream accept: %v", err)
		return
	}

	s.streams.Add(1)
	defer s.streams.Add(-1)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if err := s.runStream(ctx, conn); err != nil && !isClosed(err) {
		log.Printf("httpserver: stream: %v", err)
		conn.Close(websocket.StatusInternalError, "stream failed")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) runStream(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &streamSession{
		srv:  s,
		conn: conn,
		ctx:  ctx,
		out:  make(chan any, streamQueue),
	}

	sink := &wsSink{send: sess.send}
	sess.sched = render.NewScheduler(sink, render.Config{
		Debounce:   s.cfg.Debounce,
		YieldPause: s.cfg.YieldPause,
		Log:        s.store,
	})

	ctrl, err := viewer.New(viewer.Options{
		Store:     s.store,
		Scheduler: sess.sched,
		Width:     s.cfg.DefaultWidth,
		Height:    s.cfg.DefaultHeight,
		Presets:   s.cfg.Presets,
	})
	if err != nil {
		sess.sched.Close()
		return err
	}
	sess.ctrl = ctrl

	writeErr := make(chan error, 1)
	go func() { writeErr <- sess.writeLoop() }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.forwardResults()
	}()

	sess.sendReadout(nil)
	ctrl.Refresh()

	readErr := sess.readLoop()

	// Unblock senders before waiting for the render goroutine.
	cancel()
	sess.sched.Close()
	wg.Wait()

	select {
	case err := <-writeErr:
		if err != nil && readErr == nil {
			return err
		}
	default:
	}
	return readErr
}

func (ss *streamSession) send(msg any) bool {
	select {
	case ss.out <- msg:
		return true
	case <-ss.ctx.Done():
		return false
	}
}

func (ss *streamSession) writeLoop() error {
	for {
		select {
		case msg := <-ss.out:
			if err := wsjson.Write(ss.ctx, ss.conn, msg); err != nil {
				return err
			}
		case <-ss.ctx.Done():
			return nil
		}
	}
}

func (ss *streamSession) forwardResults() {
	for res := range ss.sched.Results() {
		msg := doneMsg{
			Type:       "done",
			Generation: res.Generation,
			Completed:  res.Completed,
			StopRow:    res.StopRow,
		}
		if res.Completed {
			msg.ElapsedMS = float64(res.Elapsed.Microseconds()) / 1000
		}
		ss.send(msg)
	}
}

func (ss *streamSession) readLoop() error {
	for {
		var ev clientEvent
		if err := wsjson.Read(ss.ctx, ss.conn, &ev); err != nil {
			return err
		}
		ss.handle(ev)
	}
}

// handle applies one client event. Only the read loop calls it, which keeps
// the controller single-writer.
func (ss *streamSession) handle(ev clientEvent) {
	switch ev.Type {
	case "move":
		h := ss.ctrl.Hover(ev.Col, ev.Row)
		ss.send(hoverMsg{Type: "hover", Data: h})
		ss.sendReadout(&h)
		return
	case "down":
		ss.ctrl.Pan(ev.Col, ev.Row)
	case "wheel":
		if ev.DeltaY == 0 {
			return
		}
		ss.ctrl.Zoom(ev.DeltaY < 0)
	case "resize":
		if !ss.resize(ev.Width, ev.Height) {
			return
		}
	case "key":
		if !ss.key(ev.Key) {
			return
		}
	default:
		ss.send(errorMsg{Type: "error", Error: "unknown event type " + ev.Type})
		return
	}
	ss.sendReadout(nil)
}

func (ss *streamSession) resize(w, h int) bool {
	if !ss.srv.cfg.frameFits(w, h) {
		ss.send(errorMsg{Type: "error", Error: "invalid frame size"})
		return false
	}
	return ss.ctrl.Resize(w, h)
}

func (ss *streamSession) key(k string) bool {
	switch strings.ToLower(k) {
	case "z":
		ss.ctrl.Zoom(false)
	case "x":
		ss.ctrl.Zoom(true)
	case "+", "=":
		ss.ctrl.SetQuality(ss.ctrl.View().Quality + 10)
	case "-":
		ss.ctrl.SetQuality(ss.ctrl.View().Quality - 10)
	case "c":
		ss.ctrl.CyclePalette()
	case "r":
		ss.ctrl.Reset()
	default:
		if _, err := ss.ctrl.Jump(k); err != nil {
			return false
		}
	}
	return true
}

func (ss *streamSession) sendReadout(h *viewer.Hover) {
	ss.send(readoutMsg{Type: "readout", Readout: ss.ctrl.Readout(h)})
}

func isClosed(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
