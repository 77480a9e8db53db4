package queue

// DequeValidationInterface is a *type constraint* that ensures any type Q has
// these methods. We never store Q in a runtime interface,
// we only use DequeValidationInterface at compile time to ensure matching signatures.
type DequeValidationInterface[T any] interface {
	// Enqueue adds an element at the back.
	Enqueue(T)

	// Dequeue removes and returns the element at the front.
	// If the front is empty it returns an empty T and circulardequeue.ErrEmptyCollection.
	Dequeue() (T, error)

	// EnqueueBack adds an element at the front.
	EnqueueBack(T)

	// DequeueBack removes and returns the element at the back.
	DequeueBack() (T, error)

	// Size returns how many elements are currently stored.
	Size() int

	// IsEmpty reports whether Size is zero.
	IsEmpty() bool
}
