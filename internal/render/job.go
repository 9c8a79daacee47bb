package render

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/mandelview/internal/model"
)

// State is the lifecycle position of a Job.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Result describes how a job ended.
type Result struct {
	Generation uint64
	Frame      Frame
	StartedAt  time.Time
	Completed  bool
	Elapsed    time.Duration // zero for stopped jobs
	StopRow    int           // -1 for completed jobs
}

func (r Result) String() string {
	if r.Completed {
		return fmt.Sprintf("gen %d completed in %s", r.Generation, r.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("gen %d stopped at row %d (not timed)", r.Generation, r.StopRow)
}

// Record converts the result into a render history entry.
func (r Result) Record() model.RenderRecord {
	name := ""
	if r.Frame.Policy != nil {
		name = r.Frame.Policy.Name()
	}
	return model.RenderRecord{
		Generation: r.Generation,
		StartedAt:  r.StartedAt,
		View:       r.Frame.View,
		Width:      r.Frame.Width,
		Height:     r.Frame.Height,
		Palette:    name,
		Completed:  r.Completed,
		Elapsed:    r.Elapsed,
		StopRow:    r.StopRow,
	}
}

// Job is one render of one frame. A stop request is cooperative: the job
// observes it between rows and then closes Done.
type Job struct {
	Gen   uint64
	Frame Frame

	cursor  atomic.Int64
	stopRow atomic.Int64
	state   atomic.Int32

	stopOnce sync.Once
	stop     chan struct{}
	doneOnce sync.Once
	done     chan struct{}
	result   Result
}

// NewJob prepares an idle job for frame f.
func NewJob(gen uint64, f Frame) *Job {
	f.Generation = gen
	j := &Job{
		Gen:   gen,
		Frame: f,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	j.cursor.Store(-1)
	j.stopRow.Store(-1)
	return j
}

// RequestStop flags the job to stop after its current row. Only the first
// call has an effect; later calls return false.
func (j *Job) RequestStop() bool {
	requested := false
	j.stopOnce.Do(func() {
		requested = true
		j.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
		close(j.stop)
	})
	return requested
}

// StopRequested reports whether RequestStop has been called.
func (j *Job) StopRequested() bool {
	select {
	case <-j.stop:
		return true
	default:
		return false
	}
}

// Done is closed once the job is Completed or Stopped.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx ends.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		return j.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cursor is the last fully painted row, -1 before the first row.
func (j *Job) Cursor() int { return int(j.cursor.Load()) }

// State returns the current lifecycle state.
func (j *Job) State() State { return State(j.state.Load()) }

func (j *Job) start() bool {
	return j.state.CompareAndSwap(int32(StateIdle), int32(StateRunning))
}

func (j *Job) finish(res Result) Result {
	j.doneOnce.Do(func() {
		if res.Completed {
			j.state.Store(int32(StateCompleted))
		} else {
			j.state.Store(int32(StateStopped))
		}
		j.result = res
		close(j.done)
	})
	return j.result
}

// finishStopped ends the job without timing it. The stop row is the last
// row painted when the stop was observed.
func (j *Job) finishStopped(startedAt time.Time) Result {
	j.RequestStop()
	j.stopRow.CompareAndSwap(-1, j.cursor.Load())
	return j.finish(Result{
		Generation: j.Gen,
		Frame:      j.Frame,
		StartedAt:  startedAt,
		StopRow:    int(j.stopRow.Load()),
	})
}
