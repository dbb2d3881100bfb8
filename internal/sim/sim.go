// Package sim drives a chained queue with synthetic producer and consumer
// traffic and checks that what comes out matches what went in.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valyala/fastrand"

	chainedqueue "github.com/timzifer/chained_queue"
)

// Pattern selects how the producer and consumer behave over time.
type Pattern string

const (
	// PatternBurst fills the queue with the consumer stalled, then drains it.
	PatternBurst Pattern = "burst"
	// PatternStream offers and accepts on every tick.
	PatternStream Pattern = "stream"
	// PatternRandom draws valid and ready independently on every tick.
	PatternRandom Pattern = "random"
)

var (
	// ErrUnknownPattern is returned for a pattern name Run does not know.
	ErrUnknownPattern = errors.New("sim: unknown traffic pattern")
	// ErrNoProgress is returned when the tick budget runs out before every item was delivered.
	ErrNoProgress = errors.New("sim: tick budget exhausted")
)

// Ticker is the part of a chained queue the simulator needs.
type Ticker interface {
	Tick(in chainedqueue.Inputs[uint64]) chainedqueue.Outputs[uint64]
	Capacity() int
}

// Recorder receives every simulated tick.
type Recorder interface {
	Record(tick uint64, in chainedqueue.Inputs[uint64], out chainedqueue.Outputs[uint64]) error
}

// Options configures a run.
type Options struct {
	Pattern Pattern
	// Items is the number of elements the producer sends.
	Items int
	// FlushEvery asserts flush on every n-th tick. Zero disables flushing.
	FlushEvery int
	// ValidPercent and ReadyPercent are the per-tick probabilities used by PatternRandom.
	ValidPercent uint32
	ReadyPercent uint32
	// MaxTicks bounds the run. Zero picks a budget from Items and the capacity.
	MaxTicks uint64
	Recorder Recorder
	Logger   *slog.Logger
}

// DefaultOptions returns a 1024 element burst run.
func DefaultOptions() Options {
	return Options{
		Pattern:      PatternBurst,
		Items:        1024,
		ValidPercent: 70,
		ReadyPercent: 60,
	}
}

// Result summarises a run.
type Result struct {
	Ticks    uint64
	Sent     int
	Received int
	// Dropped counts elements cleared by flushes.
	Dropped  int
	Flushes  int
	MaxUsage int
	// InOrder is false if any element left the queue out of order.
	InOrder bool
	// FirstOutputTick is the tick on which the first element left the queue.
	FirstOutputTick uint64
}

// Run pushes opts.Items sequence numbers through q and collects them at the
// tail. Values are the producer's sequence numbers, so ordering can be
// checked without keeping a copy of what was sent.
func Run(q Ticker, opts Options) (Result, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	switch opts.Pattern {
	case PatternBurst, PatternStream, PatternRandom:
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownPattern, opts.Pattern)
	}
	budget := opts.MaxTicks
	if budget == 0 {
		budget = uint64(opts.Items+q.Capacity()+1) * 64
	}

	res := Result{InOrder: true}
	var (
		next     uint64
		expected uint64
		resident int
		filling  = true
	)

	for res.Received+res.Dropped < opts.Items {
		if res.Ticks >= budget {
			return res, fmt.Errorf("%w after %d ticks (sent=%d received=%d)", ErrNoProgress, res.Ticks, res.Sent, res.Received)
		}

		in := chainedqueue.Inputs[uint64]{Data: next}
		remaining := res.Sent < opts.Items
		switch opts.Pattern {
		case PatternBurst:
			if filling && (resident >= q.Capacity() || !remaining) {
				filling = false
			}
			if !filling && resident == 0 && remaining {
				filling = true
			}
			in.Valid = filling && remaining
			in.Ready = !filling
		case PatternStream:
			in.Valid = remaining
			in.Ready = true
		case PatternRandom:
			in.Valid = remaining && fastrand.Uint32n(100) < opts.ValidPercent
			in.Ready = fastrand.Uint32n(100) < opts.ReadyPercent
		}
		if opts.FlushEvery > 0 && res.Ticks > 0 && res.Ticks%uint64(opts.FlushEvery) == 0 {
			in.Flush = true
		}

		out := q.Tick(in)

		if opts.Recorder != nil {
			if err := opts.Recorder.Record(res.Ticks, in, out); err != nil {
				return res, fmt.Errorf("record tick %d: %w", res.Ticks, err)
			}
		}

		switch {
		case out.Flushed:
			res.Flushes++
			res.Dropped += resident
			expected = next
			resident = 0
		default:
			if out.Pushed {
				next++
				res.Sent++
				resident++
			}
			if out.Popped {
				if res.Received == 0 {
					res.FirstOutputTick = res.Ticks
				}
				if out.Data != expected {
					res.InOrder = false
					opts.Logger.Warn("[sim]",
						slog.String("event_type", "sim.order.violation"),
						slog.Uint64("tick", res.Ticks),
						slog.Uint64("expected", expected),
						slog.Uint64("got", out.Data),
					)
				}
				expected = out.Data + 1
				res.Received++
				resident--
			}
		}
		if out.Usage != resident {
			return res, fmt.Errorf("sim: usage %d at tick %d, want %d", out.Usage, res.Ticks, resident)
		}
		res.MaxUsage = max(res.MaxUsage, out.Usage)
		res.Ticks++
	}

	opts.Logger.Debug("[sim]",
		slog.String("event_type", "sim.done"),
		slog.String("pattern", string(opts.Pattern)),
		slog.Uint64("ticks", res.Ticks),
		slog.Int("received", res.Received),
		slog.Int("dropped", res.Dropped),
	)
	return res, nil
}
