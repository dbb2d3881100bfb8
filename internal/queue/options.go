package queue

type segmentOptions[T any] struct {
	initial []T
}

// SegmentOption configures a Segment at construction time.
type SegmentOption[T any] func(*segmentOptions[T])

// WithInitial preloads the segment. Values beyond its capacity are ignored.
func WithInitial[T any](values ...T) SegmentOption[T] {
	return func(opts *segmentOptions[T]) {
		opts.initial = append(opts.initial[:0], values...)
	}
}
