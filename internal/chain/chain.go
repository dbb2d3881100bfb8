// Package chain wires bounded segments into one logical queue.
//
// A Chain owns N segments sized by a plan.SegmentPlan and the N-1 links
// between neighbouring segments. Segment 0 is the head and takes external
// input. Segment N-1 is the tail and feeds external output. Link i joins
// the output of segment i to the input of segment i+1. The topology is fixed
// when the chain is built.
package chain

import (
	"github.com/timzifer/chained_queue/internal/plan"
	"github.com/timzifer/chained_queue/internal/queue"
)

// Link carries the handshake between segment i and segment i+1 for the
// current tick. Offer and Data are driven by the upstream segment, Accept by
// the downstream one.
type Link[T any] struct {
	Offer  bool
	Accept bool
	Data   T
}

// Fire reports whether the handshake completes.
func (l Link[T]) Fire() bool {
	return l.Offer && l.Accept
}

// Chain is an ordered collection of segments with their links.
type Chain[T any] struct {
	plan     plan.SegmentPlan
	segments []*queue.Segment[T]
	links    []Link[T]
}

// Build instantiates one segment per plan entry.
func Build[T any](p plan.SegmentPlan) *Chain[T] {
	segments := make([]*queue.Segment[T], p.Count())
	for i := range segments {
		segments[i] = queue.NewSegment[T](p.Capacity(i))
	}

	links := make([]Link[T], max(p.Count()-1, 0))

	return &Chain[T]{
		plan:     p,
		segments: segments,
		links:    links,
	}
}

// Len returns the number of segments.
func (c *Chain[T]) Len() int {
	return len(c.segments)
}

// Plan returns the plan the chain was built from.
func (c *Chain[T]) Plan() plan.SegmentPlan {
	return c.plan
}

// Segment returns segment i.
func (c *Chain[T]) Segment(i int) *queue.Segment[T] {
	return c.segments[i]
}

// Head returns the segment fed by the external producer.
func (c *Chain[T]) Head() *queue.Segment[T] {
	return c.segments[0]
}

// Tail returns the segment drained by the external consumer.
func (c *Chain[T]) Tail() *queue.Segment[T] {
	return c.segments[len(c.segments)-1]
}

// Link returns a pointer to link i, between segment i and segment i+1.
func (c *Chain[T]) Link(i int) *Link[T] {
	return &c.links[i]
}

// Links returns a copy of the link signals from the last evaluated tick.
func (c *Chain[T]) Links() []Link[T] {
	return append([]Link[T](nil), c.links...)
}

// Usage sums the occupancy of every segment.
func (c *Chain[T]) Usage() int {
	usage := 0
	for _, s := range c.segments {
		usage += s.Occupancy()
	}
	return usage
}

// Occupancies returns the occupancy of every segment, head first.
func (c *Chain[T]) Occupancies() []int {
	result := make([]int, len(c.segments))
	for i, s := range c.segments {
		result[i] = s.Occupancy()
	}
	return result
}

// Empty reports whether no segment holds an element.
func (c *Chain[T]) Empty() bool {
	for _, s := range c.segments {
		if !s.Empty() {
			return false
		}
	}
	return true
}

// Flush clears every segment and resets the link signals. It returns the
// number of dropped elements.
func (c *Chain[T]) Flush() int {
	dropped := 0
	for _, s := range c.segments {
		dropped += s.Flush()
	}
	clear(c.links)
	return dropped
}

// Snapshot returns every resident element in the order the consumer would
// receive them: the tail segment first, the head segment last.
func (c *Chain[T]) Snapshot() []T {
	var result []T
	for i := len(c.segments) - 1; i >= 0; i-- {
		result = append(result, c.segments[i].Snapshot()...)
	}
	return result
}
