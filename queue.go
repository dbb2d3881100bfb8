package chainedqueue

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/timzifer/chained_queue/internal/chain"
	"github.com/timzifer/chained_queue/internal/core"
	"github.com/timzifer/chained_queue/internal/plan"
	"github.com/timzifer/chained_queue/internal/telemetry"
)

var (
	// ErrQueueFull is returned by Push when the head segment did not accept the element.
	ErrQueueFull = errors.New("chainedqueue: queue is full")
	// ErrInvalidDepth is returned for a configuration with Depth < 1.
	ErrInvalidDepth = plan.ErrInvalidDepth
	// ErrInvalidSegmentSize is returned for a configuration with MaxSegmentSize < 1.
	ErrInvalidSegmentSize = plan.ErrInvalidSegmentSize
)

// Inputs are the external signals of one tick.
type Inputs[T any] = core.Inputs[T]

// Outputs are the signals the queue drives during one tick.
type Outputs[T any] = core.Outputs[T]

// Stats is a snapshot of the tick counters.
type Stats = telemetry.TickStats

// Queue is a bounded single-producer single-consumer FIFO built from a chain
// of smaller segments. Every call that moves data runs exactly one tick.
type Queue[T any] struct {
	mu      sync.Mutex
	cfg     Config
	plan    plan.SegmentPlan
	chain   *chain.Chain[T]
	ctl     *core.Controller[T]
	metrics *telemetry.TickMetrics
}

// New plans the segments for cfg and wires them into a queue.
func New[T any](cfg Config) (*Queue[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p, err := plan.Plan(cfg.Depth, cfg.MaxSegmentSize, cfg.BalanceSegments)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("chainedqueue: planner produced an invalid plan: %v", err))
	}

	c := chain.Build[T](p)
	metrics := telemetry.NewTickMetrics()
	ctl := core.NewController(c,
		core.WithFallThrough(cfg.FallThrough),
		core.WithLogger(cfg.Logger),
		core.WithMetrics(metrics),
	)

	cfg.Logger.Debug("[chainedqueue]",
		slog.String("event_type", "chain.built"),
		slog.Int("depth", p.Depth),
		slog.Int("segments", p.Count()),
		slog.Any("capacities", p.Capacities),
		slog.Bool("fall_through", cfg.FallThrough),
	)

	return &Queue[T]{
		cfg:     cfg,
		plan:    p,
		chain:   c,
		ctl:     ctl,
		metrics: metrics,
	}, nil
}

// Tick advances the queue by one step.
func (q *Queue[T]) Tick(in Inputs[T]) Outputs[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ctl.Step(in)
}

// Push offers value for one tick. It returns ErrQueueFull when the head
// segment was full. Push never drains the queue.
func (q *Queue[T]) Push(value T) error {
	out := q.Tick(Inputs[T]{Data: value, Valid: true})
	if !out.Pushed {
		return ErrQueueFull
	}
	return nil
}

// Pop accepts the element offered at the tail, if any, during one tick.
// Elements still travelling through the chain are not visible yet.
func (q *Queue[T]) Pop() (T, bool) {
	out := q.Tick(Inputs[T]{Ready: true})
	if !out.Popped {
		var zero T
		return zero, false
	}
	return out.Data, true
}

// Flush clears every segment during one tick.
func (q *Queue[T]) Flush() {
	q.Tick(Inputs[T]{Flush: true})
}

// Usage returns the number of resident elements.
func (q *Queue[T]) Usage() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.chain.Usage()
}

// Len is an alias for Usage.
func (q *Queue[T]) Len() int {
	return q.Usage()
}

// Capacity returns the configured depth.
func (q *Queue[T]) Capacity() int {
	return q.plan.Depth
}

// UsageWidth returns the bit width needed to report any usage value.
func (q *Queue[T]) UsageWidth() int {
	return q.plan.UsageWidth()
}

// Ready reports whether the next tick would accept a valid input.
func (q *Queue[T]) Ready() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ctl.Ready()
}

// Valid reports whether the tail currently offers an element.
func (q *Queue[T]) Valid() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ctl.Valid()
}

// Peek returns the element offered at the tail without consuming it.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ctl.Peek()
}

// Plan returns the capacity of every segment, head first.
func (q *Queue[T]) Plan() []int {
	return append([]int(nil), q.plan.Capacities...)
}

// Occupancies returns the occupancy of every segment, head first.
func (q *Queue[T]) Occupancies() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.chain.Occupancies()
}

// Snapshot returns every resident element in output order.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.chain.Snapshot()
}

// Stats returns the tick counters.
func (q *Queue[T]) Stats() Stats {
	return q.metrics.Snapshot()
}

// Ticks returns the number of ticks run so far.
func (q *Queue[T]) Ticks() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ctl.Ticks()
}
