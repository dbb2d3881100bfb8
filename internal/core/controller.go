package core

import (
	"fmt"
	"log/slog"

	"github.com/timzifer/chained_queue/internal/chain"
	"github.com/timzifer/chained_queue/internal/telemetry"
)

// Inputs are the external signals sampled at the start of a tick.
type Inputs[T any] struct {
	// Data and Valid drive the head of the chain.
	Data  T
	Valid bool
	// Ready is the consumer's acceptance at the tail.
	Ready bool
	// Flush clears the whole chain and overrides any transfer this tick.
	Flush bool
	// TestBypass disables idle gating. It never changes observable behaviour.
	TestBypass bool
}

// Outputs are the signals the chain drives during a tick plus its usage once
// the tick has committed.
type Outputs[T any] struct {
	// Ready is accept_0: Data was taken iff Inputs.Valid && Ready.
	Ready bool
	// Valid and Data are offer_{N-1}: Data left iff Inputs.Ready && Valid.
	Valid bool
	Data  T
	// Pushed and Popped report the completed external handshakes.
	Pushed bool
	Popped bool
	// Flushed is set on a tick that cleared the chain.
	Flushed bool
	// Usage is the total occupancy after the tick.
	Usage int
}

// stage holds the combinational signals of one segment for a single tick.
type stage[T any] struct {
	accept      bool
	arrive      bool
	arriveData  T
	offer       bool
	offerData   T
	passThrough bool
	emit        bool
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	fallThrough bool
	logger      *slog.Logger
	metrics     *telemetry.TickMetrics
}

// WithFallThrough lets an empty segment present an element in the same tick it arrives.
func WithFallThrough(enabled bool) Option {
	return func(o *options) {
		o.fallThrough = enabled
	}
}

// WithLogger sets the logger used for flush and construction events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics registers the counters updated on every tick.
func WithMetrics(metrics *telemetry.TickMetrics) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// Controller advances a chain by one synchronous tick per Step.
//
// Each Step first evaluates every accept/offer signal against the state the
// chain had when the tick started and only then commits all transfers. No
// segment is mutated while signals are still being computed, which mirrors
// registers that all update on the same clock edge.
type Controller[T any] struct {
	chain       *chain.Chain[T]
	fallThrough bool
	logger      *slog.Logger
	metrics     *telemetry.TickMetrics
	stages      []stage[T]
	publishes   []func()
	ticks       uint64
}

// NewController binds a controller to c.
func NewController[T any](c *chain.Chain[T], opts ...Option) *Controller[T] {
	o := options{
		logger:  slog.Default(),
		metrics: telemetry.NewTickMetrics(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Controller[T]{
		chain:       c,
		fallThrough: o.fallThrough,
		logger:      o.logger,
		metrics:     o.metrics,
		stages:      make([]stage[T], c.Len()),
		publishes:   make([]func(), 0, c.Len()),
	}
}

// Chain returns the controlled chain.
func (ctl *Controller[T]) Chain() *chain.Chain[T] {
	return ctl.chain
}

// Metrics returns the tick counters.
func (ctl *Controller[T]) Metrics() *telemetry.TickMetrics {
	return ctl.metrics
}

// Ticks returns the number of completed ticks.
func (ctl *Controller[T]) Ticks() uint64 {
	return ctl.ticks
}

// Ready reports accept_0 for the current state.
func (ctl *Controller[T]) Ready() bool {
	return !ctl.chain.Head().Full()
}

// Valid reports offer_{N-1} for the current state, ignoring any element that
// could fall through during the next tick.
func (ctl *Controller[T]) Valid() bool {
	return !ctl.chain.Tail().Empty()
}

// Peek returns the element the tail currently offers.
func (ctl *Controller[T]) Peek() (T, bool) {
	return ctl.chain.Tail().Peek()
}

// Step runs one tick.
func (ctl *Controller[T]) Step(in Inputs[T]) (out Outputs[T]) {
	finish := ctl.metrics.TraceTick()
	transfers := 0
	gated := false
	defer func() {
		ctl.ticks++
		finish(telemetry.TickOutcome{
			Pushed:    out.Pushed,
			Popped:    out.Popped,
			Stalled:   in.Valid && !out.Ready && !out.Flushed,
			Flushed:   out.Flushed,
			Gated:     gated,
			Transfers: transfers,
			Usage:     out.Usage,
		})
	}()

	if in.Flush {
		dropped := ctl.chain.Flush()
		ctl.logger.Debug("[chainedqueue]",
			slog.String("event_type", "chain.flush"),
			slog.Uint64("tick", ctl.ticks),
			slog.Int("dropped", dropped),
		)
		return Outputs[T]{Flushed: true}
	}

	// An empty chain without input has nothing to move. The outputs equal
	// what the full evaluation would produce.
	if !in.TestBypass && !in.Valid && ctl.chain.Empty() {
		gated = true
		for i := 0; i < ctl.chain.Len()-1; i++ {
			*ctl.chain.Link(i) = chain.Link[T]{Accept: true}
		}
		return Outputs[T]{Ready: true}
	}

	ctl.evaluate(in)
	transfers = ctl.commit()

	head, tail := &ctl.stages[0], &ctl.stages[len(ctl.stages)-1]
	out = Outputs[T]{
		Ready:  head.accept,
		Valid:  tail.offer,
		Data:   tail.offerData,
		Pushed: head.arrive,
		Popped: tail.emit,
		Usage:  ctl.chain.Usage(),
	}
	if depth := ctl.chain.Plan().Depth; out.Usage > depth {
		panic(fmt.Sprintf("chainedqueue: usage %d exceeds depth %d", out.Usage, depth))
	}
	return out
}

// evaluate is the combinational phase. It reads segment state and writes
// only stage and link signals.
func (ctl *Controller[T]) evaluate(in Inputs[T]) {
	n := ctl.chain.Len()
	for i := range ctl.stages {
		ctl.stages[i] = stage[T]{accept: !ctl.chain.Segment(i).Full()}
	}

	arriving, data := in.Valid && ctl.stages[0].accept, in.Data
	for i := 0; i < n; i++ {
		s := &ctl.stages[i]
		s.arrive, s.arriveData = arriving, data

		if head, ok := ctl.chain.Segment(i).Peek(); ok {
			s.offer, s.offerData = true, head
		} else if ctl.fallThrough && s.arrive {
			s.offer, s.offerData, s.passThrough = true, s.arriveData, true
		}

		downstream := in.Ready
		if i+1 < n {
			downstream = ctl.stages[i+1].accept
			*ctl.chain.Link(i) = chain.Link[T]{Offer: s.offer, Accept: downstream, Data: s.offerData}
		}
		s.emit = s.offer && downstream

		arriving, data = s.emit, s.offerData
	}
}

// commit prepares one publish callback per segment and runs them only after
// every segment has been prepared. It returns the number of link transfers.
func (ctl *Controller[T]) commit() int {
	ctl.publishes = ctl.publishes[:0]
	transfers := 0

	for i := range ctl.stages {
		s := ctl.stages[i]
		if i > 0 && s.arrive {
			transfers++
		}
		pop := s.emit && !s.passThrough
		push := s.arrive && !(s.passThrough && s.emit)
		if !pop && !push {
			continue
		}

		segment := ctl.chain.Segment(i)
		ctl.publishes = append(ctl.publishes, func() {
			if pop {
				segment.Pop()
			}
			if push && !segment.Push(s.arriveData) {
				panic(fmt.Sprintf("chainedqueue: segment %d rejected an accepted element", i))
			}
		})
	}

	for _, publish := range ctl.publishes {
		publish()
	}
	return transfers
}
