package render

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tinytelemetry/mandelview/internal/model"
)

const resultBuffer = 16

// Config tunes a Scheduler. Zero values fall back to the model defaults.
type Config struct {
	Debounce   time.Duration
	YieldPause time.Duration
	// Yielder overrides the pause-based yielder.
	Yielder Yielder
	// Log, if set, receives every finished job.
	Log model.RenderLog
}

// Scheduler owns the single active render job for one sink.
type Scheduler struct {
	sink     Sink
	yielder  Yielder
	debounce *Debouncer
	history  model.RenderLog

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	gen     uint64
	active  *Job
	closed  bool
	results chan Result
}

// NewScheduler creates a scheduler painting into sink.
func NewScheduler(sink Sink, cfg Config) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = model.DefaultDebounce
	}
	if cfg.YieldPause <= 0 {
		cfg.YieldPause = model.DefaultYieldPause
	}
	y := cfg.Yielder
	if y == nil {
		y = Pause(cfg.YieldPause)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sink:     sink,
		yielder:  y,
		debounce: NewDebouncer(cfg.Debounce),
		history:  cfg.Log,
		ctx:      ctx,
		cancel:   cancel,
		results:  make(chan Result, resultBuffer),
	}
}

// Request renders f once the debounce quiet period passes without another
// request. Only the latest frame of a burst is rendered.
func (s *Scheduler) Request(f Frame) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.debounce.Trigger(func() { s.start(f) })
}

// RenderNow starts rendering f immediately, superseding any running job and
// dropping a pending debounced request. It returns nil after Close.
func (s *Scheduler) RenderNow(f Frame) *Job {
	s.debounce.Cancel()
	return s.start(f)
}

// Pending reports whether a debounced request is waiting.
func (s *Scheduler) Pending() bool { return s.debounce.Pending() }

// Active returns the job holding the active slot, or nil.
func (s *Scheduler) Active() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Results delivers every finished job. Results are dropped if nobody reads.
func (s *Scheduler) Results() <-chan Result { return s.results }

// Close stops the active job, waits for render goroutines and closes Results.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	active := s.active
	s.mu.Unlock()

	s.debounce.Cancel()
	if active != nil {
		active.RequestStop()
	}
	s.cancel()
	s.wg.Wait()
	close(s.results)
}

func (s *Scheduler) start(f Frame) *Job {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	job := NewJob(s.gen, f)
	prev := s.active
	s.active = job
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(job, prev)
	return job
}

func (s *Scheduler) run(job, prev *Job) {
	defer s.wg.Done()

	if prev != nil {
		if prev.RequestStop() {
			log.Printf("render: gen %d stopping gen %d at row %d", job.Gen, prev.Gen, prev.Cursor())
		}
		<-prev.Done()
	}

	s.mu.Lock()
	current := s.active == job
	s.mu.Unlock()

	var res Result
	if current {
		res = Render(s.ctx, job, s.sink, s.yielder)
	} else {
		// Superseded while waiting: never paints.
		res = job.finishStopped(time.Now())
	}

	s.mu.Lock()
	if s.active == job {
		s.active = nil
	}
	s.mu.Unlock()

	s.publish(res)
}

func (s *Scheduler) publish(res Result) {
	f := res.Frame
	log.Printf("render: %s (%dx%d quality=%d scale=%g)", res, f.Width, f.Height, f.View.Quality, f.View.Scale)

	if s.history != nil {
		if err := s.history.RecordRender(res.Record()); err != nil {
			log.Printf("render: record gen %d: %v", res.Generation, err)
		}
	}

	select {
	case s.results <- res:
	default:
		log.Printf("render: result channel full, dropped gen %d", res.Generation)
	}
}
