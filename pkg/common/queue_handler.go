package common

import (
	"sync"
	"time"
)

// QueueProcessor is a function that processes a batch of items from the queue.
type QueueProcessor[V any] func(items []V)

// QueueHandler collects items and hands them to the processor in chunks from
// a background goroutine.
type QueueHandler[V any] struct {
	mu        sync.Mutex
	queue     []V
	processor QueueProcessor[V]
	chunkSize int
	interval  time.Duration
	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueueHandler starts a handler that drains the queue every interval, or
// as soon as a full chunk is waiting.
func NewQueueHandler[V any](processor QueueProcessor[V], chunkSize int, interval time.Duration) *QueueHandler[V] {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	q := &QueueHandler[V]{
		queue:     make([]V, 0),
		processor: processor,
		chunkSize: chunkSize,
		interval:  interval,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go q.processQueue()
	return q
}

// Add adds items to the queue. Items added after Close are dropped.
func (h *QueueHandler[V]) Add(item ...V) {
	select {
	case <-h.stop:
		return
	default:
	}
	h.mu.Lock()
	h.queue = append(h.queue, item...)
	full := len(h.queue) >= h.chunkSize
	h.mu.Unlock()
	if full {
		select {
		case h.wake <- struct{}{}:
		default:
		}
	}
}

func (h *QueueHandler[V]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// Close stops the background goroutine after processing what is queued.
func (h *QueueHandler[V]) Close() {
	h.closeOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *QueueHandler[V]) next() []V {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return nil
	}
	items := h.queue[:min(h.chunkSize, len(h.queue))]
	h.queue = h.queue[len(items):]
	return items
}

func (h *QueueHandler[V]) drain() {
	for items := h.next(); items != nil; items = h.next() {
		h.processor(items)
	}
}

func (h *QueueHandler[V]) processQueue() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			h.drain()
			return
		case <-h.wake:
			h.drain()
		case <-ticker.C:
			h.drain()
		}
	}
}
