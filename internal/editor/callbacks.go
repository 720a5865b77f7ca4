package editor

import "sync"

// callbackQueue hands caller callbacks from the worker and engine goroutines
// to the goroutine blocked in Execute.
type callbackQueue struct {
	mu     sync.Mutex
	items  []func()
	closed bool
	ready  chan struct{}
}

func newCallbackQueue() *callbackQueue {
	return &callbackQueue{ready: make(chan struct{}, 1)}
}

// push queues fn. It reports false once the queue is closed.
func (q *callbackQueue) push(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, fn)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// run invokes everything queued so far, in order.
func (q *callbackQueue) run() {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for _, fn := range items {
		fn()
	}
}

// close stops accepting callbacks and returns those still pending.
func (q *callbackQueue) close() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	items := q.items
	q.items = nil
	return items
}
