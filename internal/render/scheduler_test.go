package render

import (
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tinytelemetry/mandelview/internal/model"
)

// recordingSink tracks frame boundaries to detect overlapping renders.
type recordingSink struct {
	mu       sync.Mutex
	inFrame  int
	overlaps int
	stray    int
	frames   int
}

func (s *recordingSink) BeginFrame(int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFrame++
	s.frames++
	if s.inFrame > 1 {
		s.overlaps++
	}
}

func (s *recordingSink) EndFrame(bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFrame--
}

func (s *recordingSink) PaintCell(int, int, int, int, color.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFrame != 1 {
		s.stray++
	}
}

type memRenderLog struct {
	mu   sync.Mutex
	recs []model.RenderRecord
}

func (m *memRenderLog) RecordRender(rec model.RenderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memRenderLog) RecentRenders(limit int) ([]model.RenderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RenderRecord(nil), m.recs...), nil
}

func waitResult(t *testing.T, s *Scheduler) Result {
	t.Helper()
	select {
	case res := <-s.Results():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a render result")
		return Result{}
	}
}

func TestSchedulerSupersedeNeverOverlaps(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	s := NewScheduler(sink, Config{YieldPause: time.Millisecond})
	t.Cleanup(s.Close)

	const n = 5
	var last *Job
	for range n {
		last = s.RenderNow(testFrame(99, 40, 200))
	}

	completed, stopped := 0, 0
	for range n {
		res := waitResult(t, s)
		if res.Completed {
			completed++
			if res.Generation != last.Gen {
				t.Fatalf("gen %d completed, want only the last gen %d", res.Generation, last.Gen)
			}
		} else {
			stopped++
			if res.Elapsed != 0 {
				t.Fatalf("stopped gen %d reported elapsed %v", res.Generation, res.Elapsed)
			}
		}
	}
	if completed != 1 || stopped != n-1 {
		t.Fatalf("completed=%d stopped=%d, want 1 and %d", completed, stopped, n-1)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.overlaps != 0 {
		t.Fatalf("overlapping frames = %d, want 0", sink.overlaps)
	}
	if sink.stray != 0 {
		t.Fatalf("cells painted outside a frame = %d, want 0", sink.stray)
	}
}

func TestSchedulerDebounceCoalesces(t *testing.T) {
	t.Parallel()

	hist := &memRenderLog{}
	s := NewScheduler(NewRaster(1, 1), Config{Debounce: 30 * time.Millisecond, Log: hist})
	t.Cleanup(s.Close)

	for i := range 5 {
		v := model.DefaultView()
		v.Scale = float64(i + 1)
		s.Request(NewFrame(v, 16, 16, nil))
	}
	if !s.Pending() {
		t.Fatal("Pending = false right after Request")
	}

	res := waitResult(t, s)
	if !res.Completed {
		t.Fatalf("result = %v, want completed", res)
	}
	if res.Frame.View.Scale != 5 {
		t.Fatalf("rendered scale = %v, want the last request (5)", res.Frame.View.Scale)
	}

	select {
	case extra := <-s.Results():
		t.Fatalf("unexpected second render: %v", extra)
	case <-time.After(150 * time.Millisecond):
	}

	recs, _ := hist.RecentRenders(10)
	if len(recs) != 1 || !recs[0].Completed {
		t.Fatalf("history = %+v, want one completed record", recs)
	}
}

func TestSchedulerRenderNowDropsPendingRequest(t *testing.T) {
	t.Parallel()

	s := NewScheduler(NewRaster(1, 1), Config{Debounce: 20 * time.Millisecond})
	t.Cleanup(s.Close)

	s.Request(testFrame(100, 8, 8))
	job := s.RenderNow(testFrame(100, 12, 12))
	res := waitResult(t, s)
	if res.Generation != job.Gen || res.Frame.Width != 12 {
		t.Fatalf("result = %+v, want the RenderNow frame", res)
	}

	select {
	case extra := <-s.Results():
		t.Fatalf("debounced request still ran: %v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerClose(t *testing.T) {
	t.Parallel()

	s := NewScheduler(NewRaster(1, 1), Config{})
	s.RenderNow(testFrame(99, 40, 400))
	s.Close()
	s.Close()

	if job := s.RenderNow(testFrame(100, 4, 4)); job != nil {
		t.Fatal("RenderNow after Close returned a job")
	}
	for range s.Results() {
	}
}

func TestDebouncerRunsLastTrigger(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32
	done := make(chan struct{}, 4)
	for i := range 3 {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced task never ran")
	}
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
	if got := last.Load(); got != 2 {
		t.Fatalf("ran trigger %d, want 2", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()
	if d.Pending() {
		t.Fatal("Pending = true after Cancel")
	}
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}
