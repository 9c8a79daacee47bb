package render

import (
	"context"
	"time"
)

// Yielder is called between rows to hand time back to the rest of the
// program while a long frame is computed.
type Yielder interface {
	Yield(ctx context.Context)
}

// Pause yields by sleeping for a fixed duration, returning early on ctx.
type Pause time.Duration

func (p Pause) Yield(ctx context.Context) {
	if p <= 0 {
		return
	}
	t := time.NewTimer(time.Duration(p))
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// YieldFunc adapts a function to Yielder.
type YieldFunc func(ctx context.Context)

func (f YieldFunc) Yield(ctx context.Context) { f(ctx) }

// shouldYield reports whether the row at index row (raster units) is a yield
// point: rows that are a multiple of 100-quality. Quality 100 never yields.
func shouldYield(row, quality int) bool {
	divisor := 100 - quality
	if divisor <= 0 {
		return false
	}
	return row%divisor == 0
}
