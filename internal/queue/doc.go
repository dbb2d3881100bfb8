// Package queue provides the bounded segment used as the building block of a
// chained queue.
//
// A Segment is a plain FIFO with a fixed capacity. Push reports whether the
// segment was not full, Pop and Peek report whether it was not empty. Nothing
// in a Segment is synchronised: the chain controller is its only owner and
// mutates it exclusively during the commit phase of a tick.
package queue
