// Package chainedqueue provides a bounded, flow-controlled FIFO that is
// internally split into a chain of smaller segments.
//
// The queue is driven one synchronous tick at a time. On every tick the
// producer offers an element (valid) and the consumer signals whether it takes
// one (ready). Between neighbouring segments the same valid/ready handshake
// applies, so each segment exerts backpressure on the one before it. Seen from
// the outside the chain behaves like a single queue of the configured depth,
// only the first element needs up to one extra tick per additional segment to
// reach the output.
//
//	q, err := chainedqueue.New[int](chainedqueue.Config{Depth: 8, MaxSegmentSize: 4})
//	out := q.Tick(chainedqueue.Inputs[int]{Data: 1, Valid: true, Ready: true})
//
// Push, Pop and Flush are shorthands that each run a single tick.
package chainedqueue
