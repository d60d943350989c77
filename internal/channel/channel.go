// Package channel wraps typed Go channels behind small interfaces so that
// producers and consumers of in-process feeds, such as the detonation
// telemetry stream, only see the half they need.
package channel

// Sender is the producer half of a feed. Send blocks until the value is
// accepted. TrySend never blocks and reports whether the value was
// accepted; combat paths use it so a stalled consumer cannot stall them.
type Sender[T any] interface {
	Send(T)
	TrySend(T) bool
}

// Receiver is the consumer half of a feed.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Channel is a feed with both halves plus ownership of its lifetime.
type Channel[T any] interface {
	Sender[T]
	Receiver[T]
	Close()
}
