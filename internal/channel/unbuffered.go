package channel

// Unbuffered is a feed with no buffer; every Send rendezvouses with a
// receive. Useful in tests to force strict producer/consumer ordering.
type Unbuffered[T any] struct {
	ch chan T
}

// NewUnbuffered creates a rendezvous feed.
func NewUnbuffered[T any]() *Unbuffered[T] {
	return &Unbuffered[T]{ch: make(chan T)}
}

// Send blocks until a receiver takes v.
func (u *Unbuffered[T]) Send(v T) {
	u.ch <- v
}

// TrySend hands v to a receiver that is already waiting, if any, and
// reports whether one took it.
func (u *Unbuffered[T]) TrySend(v T) bool {
	select {
	case u.ch <- v:
		return true
	default:
		return false
	}
}

// Receive exposes the read side of the feed.
func (u *Unbuffered[T]) Receive() <-chan T {
	return u.ch
}

// Len is always zero; nothing is ever held.
func (u *Unbuffered[T]) Len() int {
	return 0
}

// Close ends the feed.
func (u *Unbuffered[T]) Close() {
	close(u.ch)
}
