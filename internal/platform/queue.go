package platform

import "sync"

// eventQueue is an unbounded FIFO in front of a backend's event channel.
// push never blocks, so the compositor loop may emit events while handling
// one. A single pump goroutine delivers them in push order.
type eventQueue struct {
	out  chan Event
	wake chan struct{}
	done chan struct{}
	once sync.Once

	mu  sync.Mutex
	buf []Event
}

func newEventQueue(size int) *eventQueue {
	q := &eventQueue{
		out:  make(chan Event, size),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	q.buf = append(q.buf, ev)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) events() <-chan Event { return q.out }

// close stops delivery. Events still buffered are dropped.
func (q *eventQueue) close() {
	q.once.Do(func() { close(q.done) })
}

func (q *eventQueue) pump() {
	for {
		q.mu.Lock()
		batch := q.buf
		q.buf = nil
		q.mu.Unlock()

		for _, ev := range batch {
			select {
			case q.out <- ev:
			case <-q.done:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-q.wake:
		case <-q.done:
			return
		}
	}
}
