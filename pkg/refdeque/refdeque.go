// Package refdeque exposes github.com/gammazero/deque through the same
// surface as circulardequeue so the two can be compared side by side.
package refdeque

import (
	"github.com/gammazero/deque"

	"github.com/i5heu/GoDequeBench/pkg/circulardequeue"
)

type RefDequeue[T any] struct {
	d *deque.Deque[T]
}

// New creates a RefDequeue. capacity is a sizing hint passed to the ring.
func New[T any](capacity int) *RefDequeue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &RefDequeue[T]{d: deque.New[T](capacity)}
}

func (q *RefDequeue[T]) Enqueue(val T) {
	q.d.PushBack(val)
}

func (q *RefDequeue[T]) EnqueueBack(val T) {
	q.d.PushFront(val)
}

// Dequeue removes the front element. gammazero panics on an empty ring,
// so emptiness is checked first.
func (q *RefDequeue[T]) Dequeue() (T, error) {
	if q.d.Len() == 0 {
		var zero T
		return zero, circulardequeue.ErrEmptyCollection
	}
	return q.d.PopFront(), nil
}

func (q *RefDequeue[T]) DequeueBack() (T, error) {
	if q.d.Len() == 0 {
		var zero T
		return zero, circulardequeue.ErrEmptyCollection
	}
	return q.d.PopBack(), nil
}

func (q *RefDequeue[T]) Size() int {
	return q.d.Len()
}

func (q *RefDequeue[T]) IsEmpty() bool {
	return q.d.Len() == 0
}
