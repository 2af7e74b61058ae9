package lossy

// A Sender is a capability to send values to a channel. Senders are cheap to
// [Sender.Clone], and all clones share the same buffer. A Sender does not keep
// the channel alive: once the [Receiver] is closed, every send fails.
//
// A Sender is safe for concurrent use by multiple goroutines, including
// concurrent calls to Close. A Sender must be obtained from [New] or
// [Sender.Clone]; its zero value is not usable.
//
// Each handle must be closed by its owner when it is no longer needed. The
// receiver sees the end of the stream once every handle has been closed and
// the buffered values have been consumed.
type Sender[T any] struct {
	b      *buffer[T]
	closed bool // protected by b.μ
}

// Send adds v to the channel. Send does not block: if the buffer is full, the
// oldest buffered value is discarded to make room for v. If the receiver is
// waiting for a value, it is woken.
//
// If the receiver has been closed, or s itself has been closed, Send reports
// a *SendError that carries v back to the caller.
func (s *Sender[T]) Send(v T) error {
	s.b.μ.Lock()
	if s.closed || s.b.gone {
		s.b.μ.Unlock()
		return &SendError[T]{value: v}
	}
	w := s.b.pushLocked(v)
	s.b.μ.Unlock()

	if w != nil {
		w.Wake()
	}
	return nil
}

// Clone returns a new sender for the same channel as s. If s is closed, the
// clone is also closed.
func (s *Sender[T]) Clone() *Sender[T] {
	s.b.μ.Lock()
	defer s.b.μ.Unlock()
	if s.closed {
		return &Sender[T]{b: s.b, closed: true}
	}
	s.b.senders++
	return &Sender[T]{b: s.b}
}

// Live reports whether the receiver is still present, so that a call to Send
// on s could succeed.
func (s *Sender[T]) Live() bool {
	s.b.μ.Lock()
	defer s.b.μ.Unlock()
	return !s.closed && !s.b.gone
}

// Close releases s. Once every sender for a channel is closed, the receiver
// delivers any remaining buffered values and then reports the end of the
// stream. Closing the last sender wakes a waiting receiver so that it can
// observe this. If s was already closed, Close reports ErrClosed.
func (s *Sender[T]) Close() error {
	s.b.μ.Lock()
	if s.closed {
		s.b.μ.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.b.senders--
	var w Waker
	if s.b.senders == 0 {
		w, s.b.wake = s.b.wake, nil
	}
	s.b.μ.Unlock()

	if w != nil {
		w.Wake()
	}
	return nil
}

// SendError is the error reported by [Sender.Send] when the value could not
// be delivered because the channel is closed.
type SendError[T any] struct {
	value T
}

// Value returns the value that could not be sent.
func (e *SendError[T]) Value() T { return e.value }

func (e *SendError[T]) Error() string { return "send failed: receiver is gone" }

// Unwrap reports ErrClosed, so that errors.Is(err, ErrClosed) holds.
func (e *SendError[T]) Unwrap() error { return ErrClosed }
