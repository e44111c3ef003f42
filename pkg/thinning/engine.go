package thinning

import (
	"time"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
)

// Round reports what one erosion round did.
type Round struct {
	// Index is the 1-based position of the round within a run.
	Index int
	// First and Second are the pixels erased by each subiteration.
	First  int
	Second int
}

// Erased returns the total number of pixels erased by the round.
func (r Round) Erased() int { return r.First + r.Second }

// Productive reports whether the round erased anything.
func (r Round) Productive() bool { return r.Erased() > 0 }

// Result is the outcome of a thinning run.
type Result struct {
	// Bitmap is the thinned bitmap. It is the same bitmap passed to Run;
	// ownership moves to whoever holds the result.
	Bitmap *bitmap.Bitmap

	// Rounds counts every round run, including the final unproductive one.
	Rounds int

	// Erased is the total number of pixels erased over all rounds.
	Erased int

	// Elapsed is the wall-clock time spent in the round loop.
	Elapsed time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers fn to be called after every round.
func WithObserver(fn func(Round)) Option {
	return func(e *Engine) { e.observer = fn }
}

// WithClock replaces time.Now for elapsed-time measurement.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine drives erosion rounds to a fixed point.
//
// An Engine holds no per-image state between calls other than a scratch
// buffer, so it may be reused for many bitmaps but not concurrently.
type Engine struct {
	observer func(Round)
	now      func() time.Time
	rounds   int
	scratch  []position
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Round runs one erosion round on b: a First pass followed by a Second pass
// on the bitmap the first pass left behind.
func (e *Engine) Round(b *bitmap.Bitmap) Round {
	e.rounds++
	r := Round{Index: e.rounds}
	r.First = subiterate(b, First, &e.scratch)
	r.Second = subiterate(b, Second, &e.scratch)
	if e.observer != nil {
		e.observer(r)
	}
	return r
}

// Reset restarts round numbering.
func (e *Engine) Reset() {
	e.rounds = 0
}

// Run thins b in place until a round erases nothing and returns the result.
func (e *Engine) Run(b *bitmap.Bitmap) Result {
	e.Reset()
	res := Result{Bitmap: b}

	start := e.now()
	for {
		r := e.Round(b)
		res.Rounds++
		res.Erased += r.Erased()
		if !r.Productive() {
			break
		}
	}
	res.Elapsed = e.now().Sub(start)

	return res
}

// Thin runs a default engine on b.
func Thin(b *bitmap.Bitmap) Result {
	return New().Run(b)
}
