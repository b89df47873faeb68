package engine

import "sync"

// inbox is the thread-safe FIFO command queue owned by one cart instance.
//
// Enqueue is safe from any goroutine (HTTP handlers, tests); only the
// instance's run goroutine dequeues. The queue is unbounded - a burst of
// commands queues up rather than blocking callers on anything but delivery.
//
// A buffered signal channel (size 1) coalesces availability notifications so
// the run loop can wait for work and its timers in a single select.
type inbox struct {
	mu     sync.Mutex
	queue  []*envelope
	closed bool
	signal chan struct{}
}

func newInbox() *inbox {
	return &inbox{
		queue:  make([]*envelope, 0, 8),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds env to the back of the queue.
// Returns false if the inbox is closed (the instance has retired).
func (q *inbox) Enqueue(env *envelope) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.queue = append(q.queue, env)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes and returns the front envelope without blocking.
func (q *inbox) TryDequeue() (*envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return nil, false
	}

	env := q.queue[0]
	// Nil out the slot so the envelope's pointers are collectable even while
	// the backing array sticks around.
	q.queue[0] = nil
	if len(q.queue) == 1 {
		q.queue = q.queue[:0]
	} else {
		q.queue = q.queue[1:]
	}
	return env, true
}

// Wait returns a channel that signals when envelopes may be available.
// Use in a select together with timers and context cancellation.
func (q *inbox) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued envelopes.
func (q *inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Close rejects all future enqueues and wakes any waiter.
func (q *inbox) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
