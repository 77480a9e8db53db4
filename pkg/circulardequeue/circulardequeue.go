// Package circulardequeue provides a double-ended queue backed by one
// contiguous ring buffer that doubles when it runs out of room.
package circulardequeue

import (
	"github.com/pkg/errors"
	"github.com/samber/mo"
)

// DefaultCapacity is the length of the backing store of a new dequeue.
const DefaultCapacity = 8

// ErrEmptyCollection is returned by Dequeue and DequeueBack when there is no
// element at the requested end.
var ErrEmptyCollection = errors.New("circulardequeue: empty collection")

// GrowthFunc maps the current capacity to the capacity used after a resize.
type GrowthFunc func(capacity int) int

// Doubling is the default growth function.
func Doubling(capacity int) int { return capacity * 2 }

// CircularDequeue is a dynamically resized double-ended queue.
// All operations run in amortized constant time.
//
// Elements live in a ring. left is the slot read by the next Dequeue and
// right the slot written by the most recent Enqueue, so a non-empty run
// occupies left, left+1, ..., right (modulo capacity):
//
//	| 4 5 6 _ _ _ _ _ _ 1 2 3 |
//	      ^             ^
//	    right          left
//
// CircularDequeue is not safe for concurrent use; see lockeddequeue.
type CircularDequeue[E any] struct {
	elements []mo.Option[E]
	growth   GrowthFunc
	left     int
	right    int
	size     int
}

type settings struct {
	capacity int
	growth   GrowthFunc
}

// Option configures a CircularDequeue at construction time.
type Option func(*settings)

// WithGrowth replaces the doubling growth function. A nil function is ignored.
func WithGrowth(fn GrowthFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.growth = fn
		}
	}
}

// WithInitialCapacity sets the length of the first backing store.
// Values below 1 keep DefaultCapacity.
func WithInitialCapacity(n int) Option {
	return func(s *settings) {
		if n >= 1 {
			s.capacity = n
		}
	}
}

// New creates an empty CircularDequeue.
func New[E any](opts ...Option) *CircularDequeue[E] {
	s := settings{capacity: DefaultCapacity, growth: Doubling}
	for _, opt := range opts {
		opt(&s)
	}
	return &CircularDequeue[E]{
		elements: make([]mo.Option[E], s.capacity),
		growth:   s.growth,
		left:     0,
		right:    s.capacity - 1,
	}
}

// Size returns the number of stored elements.
func (d *CircularDequeue[E]) Size() int {
	return d.size
}

// IsEmpty reports whether the dequeue holds no elements.
func (d *CircularDequeue[E]) IsEmpty() bool {
	return d.size == 0
}

// Cap returns the current length of the backing store. It never decreases.
func (d *CircularDequeue[E]) Cap() int {
	return len(d.elements)
}

// Enqueue inserts item at the back, the end DequeueBack reads from.
func (d *CircularDequeue[E]) Enqueue(item E) {
	if d.size == len(d.elements) {
		d.resize()
	}
	d.right = d.wrap(d.right + 1)
	d.elements[d.right] = mo.Some(item)
	d.size++
}

// Dequeue removes and returns the element at the front.
func (d *CircularDequeue[E]) Dequeue() (E, error) {
	item, ok := d.elements[d.left].Get()
	if !ok {
		var zero E
		return zero, ErrEmptyCollection
	}
	d.elements[d.left] = mo.None[E]()
	d.left = d.wrap(d.left + 1)
	d.size--
	return item, nil
}

// EnqueueBack inserts item at the front, the end Dequeue reads from.
func (d *CircularDequeue[E]) EnqueueBack(item E) {
	if d.size == len(d.elements) {
		d.resize()
	}
	d.left = d.wrap(d.left - 1)
	d.elements[d.left] = mo.Some(item)
	d.size++
}

// DequeueBack removes and returns the element at the back.
func (d *CircularDequeue[E]) DequeueBack() (E, error) {
	item, ok := d.elements[d.right].Get()
	if !ok {
		var zero E
		return zero, ErrEmptyCollection
	}
	d.elements[d.right] = mo.None[E]()
	d.right = d.wrap(d.right - 1)
	d.size--
	return item, nil
}

// wrap reduces i modulo the capacity, mapping negative values into range.
func (d *CircularDequeue[E]) wrap(i int) int {
	n := len(d.elements)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// resize moves the full run into a larger store, right-aligned so the
// freed room sits in front of it:
//
//	before: | 4 5 6 1 2 3 |               left=3 right=2
//	after:  | _ _ _ _ _ _ 1 2 3 4 5 6 |   left=6 right=11
//
// The state is swapped in only after the copy completes.
func (d *CircularDequeue[E]) resize() {
	oldCap := len(d.elements)
	newCap := d.growth(oldCap)
	if newCap <= oldCap {
		newCap = oldCap + 1
	}
	elements := make([]mo.Option[E], newCap)
	newLeft := newCap - d.size

	src := d.left
	for i := 0; i < d.size; i++ {
		elements[newLeft+i] = d.elements[src]
		src = d.wrap(src + 1)
	}

	d.elements = elements
	d.left = newLeft
	d.right = newCap - 1
}
