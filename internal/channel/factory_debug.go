//go:build debug

package channel

// New creates a rendezvous feed regardless of size, so debug builds
// surface producer/consumer stalls instead of hiding them in a buffer.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
