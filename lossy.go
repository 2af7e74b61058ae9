// Package lossy implements a bounded single-consumer channel that never
// blocks its producers.
//
// A channel is created by [New], which returns a [Sender] and a [Receiver]
// sharing one buffer of fixed capacity. Sending to a full channel discards the
// oldest buffered value to make room for the new one, and the next value the
// receiver reads is marked as an [Overrun] so the consumer can tell that it
// missed something.
//
// The receiver is read by polling. [Receiver.Poll] either delivers a value,
// reports that the stream has ended, or registers a [Waker] that the next
// successful send will call. [Receiver.Recv] wraps this protocol for callers
// that prefer to block a goroutine.
package lossy

import (
	"errors"
	"sync"

	"github.com/creachadair/mds/queue"
)

// ErrClosed is the sentinel error reported by operations on a channel whose
// other end has gone away, or on a handle that has already been closed.
var ErrClosed = errors.New("channel is closed")

// New constructs a channel with the given buffer capacity and returns its
// sending and receiving ends. It panics if capacity <= 0.
//
// The caller must eventually close the returned handles: Closing every
// sender ends the stream seen by the receiver, and closing the receiver
// causes every subsequent send to fail.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity <= 0 {
		panic("lossy: channel capacity must be positive")
	}
	b := &buffer[T]{capacity: capacity, senders: 1}
	return &Sender[T]{b: b}, &Receiver[T]{b: b}
}

// A buffer is the state shared by all the handles of a single channel.
// The receiver owns the buffer; senders may add to it only while gone is false.
type buffer[T any] struct {
	capacity int // read-only after initialization

	// μ protects the fields below.
	μ       sync.Mutex
	q       queue.Queue[T]
	overrun bool  // a value was discarded since the last delivery
	wake    Waker // non-nil while the receiver is suspended
	senders int   // number of open sender handles
	gone    bool  // the receiver has been closed

	sent, delivered, dropped uint64
}

// pushLocked admits v to the buffer, evicting the oldest value if it is
// full. If the receiver was waiting, its waker is returned for the caller to
// fire once μ is released. The caller must hold μ and must have checked that
// the receiver is present.
func (b *buffer[T]) pushLocked(v T) Waker {
	if b.q.Len() == b.capacity {
		b.q.Pop()
		b.overrun = true
		b.dropped++
	}
	b.q.Add(v)
	b.sent++

	w := b.wake
	b.wake = nil
	return w
}

// popLocked removes and returns the oldest buffered value, tagged according
// to the overrun flag, which is then cleared. The caller must hold μ.
func (b *buffer[T]) popLocked() (Item[T], bool) {
	v, ok := b.q.Pop()
	if !ok {
		return Item[T]{}, false
	}
	b.delivered++
	kind := Next
	if b.overrun {
		kind = Overrun
		b.overrun = false
	}
	return Item[T]{kind: kind, value: v}, true
}

// Stats is a snapshot of the state and history of a channel.
type Stats struct {
	Len     int // values currently buffered
	Cap     int // buffer capacity
	Senders int // open sender handles

	Sent      uint64 // values admitted by Send
	Delivered uint64 // values returned to the receiver
	Dropped   uint64 // values evicted to make room for newer ones
}
