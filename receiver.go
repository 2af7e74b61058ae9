package lossy

import (
	"context"
	"iter"

	"github.com/creachadair/msync"
)

// A Receiver is the consuming end of a channel. It owns the channel buffer:
// once it is closed, buffered values are discarded and all sends fail.
//
// A channel has a single consumer. The methods of a Receiver may be called
// from any goroutine, but only one caller at a time may wait for a value;
// a later Poll replaces the waker registered by an earlier one.
//
// A Receiver must be obtained from [New]; its zero value is not usable.
type Receiver[T any] struct {
	b     *buffer[T]
	ready msync.Trigger // set by the waker registered by Recv
}

// triggerWaker is a [Waker] that activates a trigger.
type triggerWaker struct{ *msync.Trigger }

func (w triggerWaker) Wake() { w.Set() }

// Poll attempts to receive a value without blocking.
//
// If a value is buffered, Poll removes the oldest one and returns it with
// status [Ready]. The item is an [Overrun] if any values were discarded since
// the previous delivery, otherwise it is a [Next].
//
// If no value is buffered and no open senders remain, or r is closed, the
// stream has ended and Poll returns status [Done]. Once Poll has reported
// Done, it continues to do so.
//
// Otherwise Poll records w and returns status [Pending]. The next successful
// send, the close of the last sender, or the close of r calls w.Wake once; the caller should
// poll again after that. Each Pending poll replaces the previously recorded
// waker. If w == nil, any earlier waker is discarded and none is recorded.
func (r *Receiver[T]) Poll(w Waker) (Item[T], Status) {
	r.b.μ.Lock()
	defer r.b.μ.Unlock()

	if r.b.gone {
		return Item[T]{}, Done
	}
	if it, ok := r.b.popLocked(); ok {
		return it, Ready
	}
	if r.b.senders == 0 {
		r.b.wake = nil
		return Item[T]{}, Done
	}
	r.b.wake = w
	return Item[T]{}, Pending
}

// Recv blocks until a value is available, the stream ends, or ctx ends.
// At the end of the stream Recv reports ErrClosed. If ctx ends first, Recv
// reports the error from ctx.
func (r *Receiver[T]) Recv(ctx context.Context) (Item[T], error) {
	for {
		r.ready.Reset()
		it, st := r.Poll(triggerWaker{&r.ready})
		switch st {
		case Ready:
			return it, nil
		case Done:
			return it, ErrClosed
		}
		select {
		case <-ctx.Done():
			return Item[T]{}, ctx.Err()
		case <-r.ready.Ready():
			// Something changed, try again.
		}
	}
}

// All returns an iterator over the items received by r. The sequence ends
// when the stream ends or ctx ends, whichever happens first.
func (r *Receiver[T]) All(ctx context.Context) iter.Seq[Item[T]] {
	return func(yield func(Item[T]) bool) {
		for {
			it, err := r.Recv(ctx)
			if err != nil || !yield(it) {
				return
			}
		}
	}
}

// Close closes r, discarding any buffered values. All subsequent sends to
// the channel fail, and subsequent polls of r report [Done]. If a poll of r
// is waiting, its waker is called so that it can observe the close. If r was
// already closed, Close reports ErrClosed.
func (r *Receiver[T]) Close() error {
	r.b.μ.Lock()
	if r.b.gone {
		r.b.μ.Unlock()
		return ErrClosed
	}
	r.b.gone = true
	r.b.q.Clear()
	r.b.overrun = false
	w := r.b.wake
	r.b.wake = nil
	r.b.μ.Unlock()

	if w != nil {
		w.Wake()
	}
	return nil
}

// Len reports the number of values currently buffered.
func (r *Receiver[T]) Len() int {
	r.b.μ.Lock()
	defer r.b.μ.Unlock()
	return r.b.q.Len()
}

// Cap reports the capacity of the channel buffer.
func (r *Receiver[T]) Cap() int { return r.b.capacity }

// Stats returns a snapshot of the current state of the channel.
func (r *Receiver[T]) Stats() Stats {
	r.b.μ.Lock()
	defer r.b.μ.Unlock()
	return Stats{
		Len:       r.b.q.Len(),
		Cap:       r.b.capacity,
		Senders:   r.b.senders,
		Sent:      r.b.sent,
		Delivered: r.b.delivered,
		Dropped:   r.b.dropped,
	}
}
