package lossy

import "fmt"

// Kind distinguishes a value delivered without loss from one delivered after
// one or more earlier values were discarded.
type Kind int

const (
	Next    Kind = iota // no values were lost since the previous delivery
	Overrun             // at least one value was lost since the previous delivery
)

func (k Kind) String() string {
	switch k {
	case Next:
		return "Next"
	case Overrun:
		return "Overrun"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// An Item is a value delivered by a [Receiver], tagged with whether any
// values were discarded before it. Items of comparable T can be compared
// with ==.
type Item[T any] struct {
	kind  Kind
	value T
}

// NextItem returns an item carrying v with kind [Next].
func NextItem[T any](v T) Item[T] { return Item[T]{kind: Next, value: v} }

// OverrunItem returns an item carrying v with kind [Overrun].
func OverrunItem[T any](v T) Item[T] { return Item[T]{kind: Overrun, value: v} }

// Kind reports whether the item is a [Next] or an [Overrun].
func (it Item[T]) Kind() Kind { return it.kind }

// Overrun reports whether values were discarded before this item.
func (it Item[T]) Overrun() bool { return it.kind == Overrun }

// Value returns the value carried by the item, regardless of its kind.
func (it Item[T]) Value() T { return it.value }

func (it Item[T]) String() string { return fmt.Sprintf("%v(%v)", it.kind, it.value) }

// Status is the outcome of a call to [Receiver.Poll].
type Status int

const (
	Pending Status = iota // no value is available yet; the waker was registered
	Ready                 // a value was delivered
	Done                  // the stream has ended and no values remain
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Ready:
		return "Ready"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// A Waker is notified when a suspended receiver may be able to make
// progress. Wake is never called while the channel's internal lock is held,
// so it may safely call back into the channel.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to the [Waker] interface.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }
