//go:build !debug

package channel

// New creates a feed with the given capacity.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
