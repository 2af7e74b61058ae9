package lossy_test

import (
	"context"
	"fmt"
	"log"

	"github.com/creachadair/lossy"
)

func Example() {
	tx, rx := lossy.New[string](2)

	// Sends never block. When the buffer is full, the oldest value is lost.
	for _, v := range []string{"apple", "pear", "plum", "cherry"} {
		if err := tx.Send(v); err != nil {
			log.Fatalf("Send: %v", err)
		}
	}

	// Closing the last sender ends the stream once the buffer is drained.
	tx.Close()

	// The first value received after a loss is marked as an overrun.
	for it := range rx.All(context.Background()) {
		fmt.Println(it.Kind(), it.Value())
	}
	// Output:
	// Overrun plum
	// Next cherry
}

func ExampleReceiver_Poll() {
	tx, rx := lossy.New[int](1)
	defer tx.Close()

	// With nothing buffered, Poll records the waker and reports Pending.
	woken := lossy.WakerFunc(func() { fmt.Println("woken") })
	_, st := rx.Poll(woken)
	fmt.Println(st)

	// The next send calls the waker.
	tx.Send(1)

	it, st := rx.Poll(woken)
	fmt.Println(st, it)
	// Output:
	// Pending
	// woken
	// Ready Next(1)
}

func ExampleSendError() {
	tx, rx := lossy.New[int](1)
	defer tx.Close()
	rx.Close()

	// A send to a channel without a receiver gives back the value.
	if err := tx.Send(25); err != nil {
		fmt.Println(err)
		fmt.Println(err.(*lossy.SendError[int]).Value())
	}
	// Output:
	// send failed: receiver is gone
	// 25
}
