package events

import (
	"errors"
	"iter"
	"sync"
)

// ErrQueueClosed is returned by [Queue.Push] once the queue has been closed.
var ErrQueueClosed = errors.New("event queue is closed")

// Queue buffers events between the engine's delivery thread and a single
// consumer.
//
// Pushes never block and the buffer is unbounded, so the delivery thread is
// never held up by consumer-side processing. Events come out in push order.
type Queue struct {
	mu     sync.Mutex
	events []Event
	closed bool

	updateSignal chan struct{}
}

func NewQueue() *Queue {
	return &Queue{updateSignal: make(chan struct{}, 1)}
}

// Push appends event to the tail of the queue. It never blocks. Pushing to a
// closed queue is a caller error and returns [ErrQueueClosed] without
// touching the buffer.
func (q *Queue) Push(event Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.events = append(q.events, event)
	q.mu.Unlock()
	q.signalUpdate()

	return nil
}

// Close marks the queue closed. Buffered events remain consumable; the
// sequence returned by [Queue.Events] ends once they are drained. Close is
// idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.signalUpdate()
}

// Len reports how many events are currently buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Events returns the consuming sequence of the queue.
//
// Each pull blocks until an event is available or the queue is closed and
// drained, at which point the sequence ends. The queue supports one live
// consumer at a time; the sequence may be abandoned and restarted, but two
// concurrent consumers race for events.
func (q *Queue) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			event, ok, done := q.consumeNext()
			if done {
				return
			}
			if !ok {
				<-q.updateSignal
				continue
			}
			if !yield(event) {
				return
			}
		}
	}
}

func (q *Queue) consumeNext() (event Event, ok bool, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) > 0 {
		event = q.events[0]
		q.events[0] = Event{}
		q.events = q.events[1:]
		return event, true, false
	}

	return Event{}, false, q.closed
}

func (q *Queue) signalUpdate() {
	select {
	case q.updateSignal <- struct{}{}:
	default:
	}
}
