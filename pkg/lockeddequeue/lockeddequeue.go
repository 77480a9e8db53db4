package lockeddequeue

import (
	"sync"

	"github.com/i5heu/GoDequeBench/pkg/circulardequeue"
)

// Dequeue is the operation set LockedDequeue serializes.
type Dequeue[T any] interface {
	Enqueue(T)
	Dequeue() (T, error)
	EnqueueBack(T)
	DequeueBack() (T, error)
	Size() int
	IsEmpty() bool
}

// LockedDequeue guards every call on the wrapped dequeue with one mutex,
// so concurrent callers never observe a half-finished operation or resize.
type LockedDequeue[T any] struct {
	mu    sync.Mutex
	inner Dequeue[T]
}

// New creates a LockedDequeue around a fresh CircularDequeue.
func New[T any](opts ...circulardequeue.Option) *LockedDequeue[T] {
	return Wrap[T](circulardequeue.New[T](opts...))
}

// Wrap locks an existing dequeue. The caller must stop using d directly.
func Wrap[T any](d Dequeue[T]) *LockedDequeue[T] {
	return &LockedDequeue[T]{inner: d}
}

func (q *LockedDequeue[T]) Enqueue(val T) {
	q.mu.Lock()
	q.inner.Enqueue(val)
	q.mu.Unlock()
}

func (q *LockedDequeue[T]) EnqueueBack(val T) {
	q.mu.Lock()
	q.inner.EnqueueBack(val)
	q.mu.Unlock()
}

func (q *LockedDequeue[T]) Dequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inner.Dequeue()
}

func (q *LockedDequeue[T]) DequeueBack() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inner.DequeueBack()
}

// TryDequeue is Dequeue for polling consumers: ok is false when the front is empty.
func (q *LockedDequeue[T]) TryDequeue() (val T, ok bool) {
	val, err := q.Dequeue()
	return val, err == nil
}

// TryDequeueBack is the back-end counterpart of TryDequeue.
func (q *LockedDequeue[T]) TryDequeueBack() (val T, ok bool) {
	val, err := q.DequeueBack()
	return val, err == nil
}

func (q *LockedDequeue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inner.Size()
}

func (q *LockedDequeue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inner.IsEmpty()
}
