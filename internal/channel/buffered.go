package channel

// Buffered is a feed backed by a buffered Go channel.
type Buffered[T any] struct {
	ch chan T
}

// NewBuffered creates a feed that holds up to size values.
func NewBuffered[T any](size int) *Buffered[T] {
	return &Buffered[T]{ch: make(chan T, size)}
}

// Send blocks until the buffer has room.
func (b *Buffered[T]) Send(v T) {
	b.ch <- v
}

// TrySend enqueues v if the buffer has room and reports whether it did.
func (b *Buffered[T]) TrySend(v T) bool {
	select {
	case b.ch <- v:
		return true
	default:
		return false
	}
}

// Receive exposes the read side of the feed.
func (b *Buffered[T]) Receive() <-chan T {
	return b.ch
}

// Len reports how many values are buffered.
func (b *Buffered[T]) Len() int {
	return len(b.ch)
}

// Close ends the feed. Pending values remain readable.
func (b *Buffered[T]) Close() {
	close(b.ch)
}
