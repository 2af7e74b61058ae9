// Package task implements a single-threaded cooperative executor for
// poll-driven tasks, such as consumers of a [lossy.Receiver].
//
// An [Executor] polls one task at a time. A task that cannot make progress
// returns without finishing, and is not polled again until the waker it was
// given is called. Wakers may be called from any goroutine.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/creachadair/lossy"
	"github.com/creachadair/mds/queue"
	"github.com/creachadair/msync"
)

// A Task is a unit of work driven by an [Executor]. Poll is called when the
// task may be able to make progress, and reports whether the task is
// finished. If Poll reports an error, the executor stops.
//
// A task that is not finished must arrange for w.Wake to be called when it is
// ready to be polled again, for example by passing w to [lossy.Receiver.Poll].
type Task interface {
	Poll(w lossy.Waker) (done bool, err error)
}

// Func adapts a function to the [Task] interface.
type Func func(lossy.Waker) (bool, error)

// Poll calls f.
func (f Func) Poll(w lossy.Waker) (bool, error) { return f(w) }

// Options are settings for an [Executor]. A nil *Options is ready for use and
// provides default values.
type Options struct {
	// Logger, if set, receives task lifecycle and failure logs.
	// If nil, logs are discarded.
	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// An Executor runs tasks cooperatively on the goroutine that calls
// [Executor.Run]. Tasks may be spawned before or during a run.
type Executor struct {
	log *slog.Logger
	sig msync.Trigger // set when a task is queued

	// μ protects the fields below.
	μ      sync.Mutex
	tasks  map[int]Task
	queued map[int]bool
	ready  queue.Queue[int]
	nextID int
}

// New constructs a new empty executor.
func New(opts *Options) *Executor {
	return &Executor{
		log:    opts.logger(),
		tasks:  make(map[int]Task),
		queued: make(map[int]bool),
	}
}

// Spawn adds t to e and schedules it to be polled. It returns an identifier
// for the task, unique within e. Spawn is safe to call from a running task.
func (e *Executor) Spawn(t Task) int {
	e.μ.Lock()
	e.nextID++
	id := e.nextID
	e.tasks[id] = t
	e.queued[id] = true
	e.ready.Add(id)
	e.μ.Unlock()

	e.log.Debug("task spawned", "id", id)
	e.sig.Set()
	return id
}

// Len reports the number of tasks in e that have not yet finished.
func (e *Executor) Len() int {
	e.μ.Lock()
	defer e.μ.Unlock()
	return len(e.tasks)
}

// Run polls tasks until all of them have finished, a task fails, or ctx ends.
// When no task is ready, Run blocks until one is woken.
//
// If a task reports an error or panics, Run returns an error describing it;
// the failed task is discarded, and any other unfinished tasks remain in e.
func (e *Executor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.sig.Reset()
		id, t, ok := e.next()
		if !ok {
			if e.Len() == 0 {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.sig.Ready():
				continue
			}
		}

		done, err := e.poll(id, t)
		if err != nil {
			e.finish(id)
			e.log.Error("task failed", "id", id, "err", err)
			return fmt.Errorf("task %d: %w", id, err)
		}
		if done {
			e.finish(id)
			e.log.Debug("task finished", "id", id)
		}
	}
}

// next removes and returns the first ready task, if any.
func (e *Executor) next() (int, Task, bool) {
	e.μ.Lock()
	defer e.μ.Unlock()
	for {
		id, ok := e.ready.Pop()
		if !ok {
			return 0, nil, false
		}
		delete(e.queued, id)
		if t, ok := e.tasks[id]; ok {
			return id, t, true
		}
		// The task finished after it was woken; skip it.
	}
}

func (e *Executor) poll(id int, t Task) (_ bool, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = fmt.Errorf("panic in task: %v\n%s", x, string(debug.Stack()))
		}
	}()
	return t.Poll(waker{e: e, id: id})
}

func (e *Executor) finish(id int) {
	e.μ.Lock()
	defer e.μ.Unlock()
	delete(e.tasks, id)
}

// schedule marks the task with the given id as ready, if it is not already
// queued and has not finished.
func (e *Executor) schedule(id int) {
	e.μ.Lock()
	if _, ok := e.tasks[id]; !ok || e.queued[id] {
		e.μ.Unlock()
		return
	}
	e.queued[id] = true
	e.ready.Add(id)
	e.μ.Unlock()

	e.sig.Set()
}

type waker struct {
	e  *Executor
	id int
}

func (w waker) Wake() { w.e.schedule(w.id) }

// Collect returns a task that receives items from r and passes each to f,
// finishing when the stream ends.
func Collect[T any](r *lossy.Receiver[T], f func(lossy.Item[T])) Func {
	return func(w lossy.Waker) (bool, error) {
		for {
			it, st := r.Poll(w)
			switch st {
			case lossy.Pending:
				return false, nil
			case lossy.Done:
				return true, nil
			}
			f(it)
		}
	}
}

// SendAll returns a task that sends each of vs to s in order and then closes
// s. If a send fails, the task reports the *lossy.SendError for that value.
func SendAll[T any](s *lossy.Sender[T], vs ...T) Func {
	return func(lossy.Waker) (bool, error) {
		defer s.Close()
		for _, v := range vs {
			if err := s.Send(v); err != nil {
				return true, err
			}
		}
		return true, nil
	}
}
