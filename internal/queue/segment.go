package queue

type node[T any] struct {
	value T
	next  *node[T]
}

type deque[T any] struct {
	head *node[T]
	tail *node[T]
	len  int
}

func (d *deque[T]) pushBack(value T) {
	n := &node[T]{value: value}
	if d.len == 0 {
		d.head = n
		d.tail = n
	} else {
		d.tail.next = n
		d.tail = n
	}
	d.len++
}

func (d *deque[T]) popFront() (zero T, _ bool) {
	if d.len == 0 {
		return zero, false
	}

	current := d.head
	d.head = current.next
	if d.head == nil {
		d.tail = nil
	}
	d.len--

	current.next = nil
	return current.value, true
}

func (d *deque[T]) front() (zero T, _ bool) {
	if d.len == 0 {
		return zero, false
	}
	return d.head.value, true
}

func (d *deque[T]) reset() int {
	dropped := d.len
	d.head = nil
	d.tail = nil
	d.len = 0
	return dropped
}

// Segment is a bounded FIFO holding at most Capacity elements.
type Segment[T any] struct {
	items    deque[T]
	capacity int
}

// NewSegment creates an empty segment. A capacity below one is raised to one.
func NewSegment[T any](capacity int, options ...SegmentOption[T]) *Segment[T] {
	if capacity < 1 {
		capacity = 1
	}
	s := &Segment[T]{capacity: capacity}

	var opts segmentOptions[T]
	for _, opt := range options {
		opt(&opts)
	}
	for _, v := range opts.initial {
		if !s.Push(v) {
			break
		}
	}
	return s
}

// Push appends value unless the segment is full.
func (s *Segment[T]) Push(value T) bool {
	if s.items.len >= s.capacity {
		return false
	}
	s.items.pushBack(value)
	return true
}

// Pop removes and returns the oldest element.
func (s *Segment[T]) Pop() (T, bool) {
	return s.items.popFront()
}

// Peek returns the oldest element without removing it.
func (s *Segment[T]) Peek() (T, bool) {
	return s.items.front()
}

// Occupancy returns the number of resident elements.
func (s *Segment[T]) Occupancy() int {
	return s.items.len
}

// Capacity returns the configured capacity.
func (s *Segment[T]) Capacity() int {
	return s.capacity
}

// Full reports whether Push would be rejected.
func (s *Segment[T]) Full() bool {
	return s.items.len >= s.capacity
}

// Empty reports whether Pop would fail.
func (s *Segment[T]) Empty() bool {
	return s.items.len == 0
}

// Flush drops every resident element and returns how many were dropped.
func (s *Segment[T]) Flush() int {
	return s.items.reset()
}

// Snapshot returns a copy of the resident elements, oldest first.
func (s *Segment[T]) Snapshot() []T {
	if s.items.len == 0 {
		return nil
	}
	result := make([]T, 0, s.items.len)
	for n := s.items.head; n != nil; n = n.next {
		result = append(result, n.value)
	}
	return result
}
