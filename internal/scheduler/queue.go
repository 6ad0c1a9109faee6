package scheduler

import "sync"

// completion pairs a finished result with the callback that asked for it.
type completion[T any] struct {
	deliver func(T)
	result  T
}

// pendingQueue collects completions from workers until the consumer drains them.
type pendingQueue[T any] struct {
	mu      sync.Mutex
	pending []completion[T]
}

func (q *pendingQueue[T]) push(deliver func(T), result T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, completion[T]{deliver: deliver, result: result})
}

// drain swaps out everything queued so far. Entries pushed afterwards stay
// for the next drain.
func (q *pendingQueue[T]) drain() []completion[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *pendingQueue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
