// Package plan computes how a queue of a given depth is split into segments.
package plan

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrInvalidDepth is returned when the total depth is not positive.
	ErrInvalidDepth = errors.New("chainedqueue: depth must be at least 1")
	// ErrInvalidSegmentSize is returned when the maximum segment size is not positive.
	ErrInvalidSegmentSize = errors.New("chainedqueue: max segment size must be at least 1")
	// ErrPlanInvariant is returned by Validate for a plan that does not describe its depth.
	ErrPlanInvariant = errors.New("chainedqueue: segment plan invariant violated")
)

// SegmentPlan is the immutable result of Plan.
type SegmentPlan struct {
	// Depth is the total capacity D.
	Depth int
	// MaxSegmentSize is the effective maximum, min(M, D).
	MaxSegmentSize int
	// Balanced reports whether capacities were spread evenly.
	Balanced bool
	// Capacities holds c_i for every segment, head first.
	Capacities []int
}

// Plan splits depth into ceil(depth/min(maxSegmentSize, depth)) segments.
//
// Without balancing every segment but the last is full sized and the last one
// takes the remainder. With balancing the capacities differ by at most one and
// the earliest segments receive the extra slot. Balancing never changes the
// segment count: ceil(D/N) <= min(M, D) holds for N = ceil(D/min(M, D)).
func Plan(depth, maxSegmentSize int, balance bool) (SegmentPlan, error) {
	if depth <= 0 {
		return SegmentPlan{}, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
	if maxSegmentSize <= 0 {
		return SegmentPlan{}, fmt.Errorf("%w: got %d", ErrInvalidSegmentSize, maxSegmentSize)
	}

	effective := min(maxSegmentSize, depth)
	count := (depth + effective - 1) / effective
	capacities := make([]int, count)

	if balance {
		base, extra := depth/count, depth%count
		for i := range capacities {
			capacities[i] = base
			if i < extra {
				capacities[i]++
			}
		}
	} else {
		for i := range capacities {
			if (i+1)*effective <= depth {
				capacities[i] = effective
			} else {
				capacities[i] = depth % effective
			}
		}
	}

	return SegmentPlan{
		Depth:          depth,
		MaxSegmentSize: effective,
		Balanced:       balance,
		Capacities:     capacities,
	}, nil
}

// Count returns the number of segments N.
func (p SegmentPlan) Count() int {
	return len(p.Capacities)
}

// Capacity returns c_i.
func (p SegmentPlan) Capacity(i int) int {
	return p.Capacities[i]
}

// Total returns the sum of all segment capacities.
func (p SegmentPlan) Total() int {
	total := 0
	for _, c := range p.Capacities {
		total += c
	}
	return total
}

// UsageWidth returns the number of bits needed to report any usage in [0, Depth].
func (p SegmentPlan) UsageWidth() int {
	if p.Depth <= 0 {
		return 0
	}
	return bits.Len(uint(p.Depth))
}

// Validate checks the plan invariants. A failure means the planner is broken.
func (p SegmentPlan) Validate() error {
	if len(p.Capacities) == 0 {
		return fmt.Errorf("%w: no segments", ErrPlanInvariant)
	}
	lo, hi := p.Capacities[0], p.Capacities[0]
	for i, c := range p.Capacities {
		if c <= 0 || c > p.MaxSegmentSize {
			return fmt.Errorf("%w: segment %d has capacity %d (max %d)", ErrPlanInvariant, i, c, p.MaxSegmentSize)
		}
		lo, hi = min(lo, c), max(hi, c)
	}
	if total := p.Total(); total != p.Depth {
		return fmt.Errorf("%w: capacities sum to %d, want %d", ErrPlanInvariant, total, p.Depth)
	}
	if p.Balanced && hi-lo > 1 {
		return fmt.Errorf("%w: balanced capacities range over [%d,%d]", ErrPlanInvariant, lo, hi)
	}
	return nil
}

func (p SegmentPlan) String() string {
	return fmt.Sprintf("depth=%d max=%d balanced=%t segments=%v", p.Depth, p.MaxSegmentSize, p.Balanced, p.Capacities)
}
