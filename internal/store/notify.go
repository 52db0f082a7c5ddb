package store

import (
	"sort"
	"sync"

	"github.com/mmcdole/gallerysync/internal/domain"
)

// notifier delivers change events to subscribers on one dispatcher goroutine.
//
// Events are queued in publish order and the queue is unbounded, so writers
// never block on slow subscribers. Callbacks run without any store lock held
// and may write to the store or unsubscribe.
type notifier struct {
	subMu  sync.RWMutex
	subs   map[uint64]func(domain.ChangeEvent)
	nextID uint64

	mu     sync.Mutex
	events []domain.ChangeEvent
	closed bool
	signal chan struct{} // buffered, size 1

	done chan struct{}
}

func newNotifier() *notifier {
	n := &notifier{
		subs:   make(map[uint64]func(domain.ChangeEvent)),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *notifier) subscribe(fn func(domain.ChangeEvent)) func() {
	if fn == nil {
		return func() {}
	}

	n.subMu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[id] = fn
	n.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.subMu.Lock()
			delete(n.subs, id)
			n.subMu.Unlock()
		})
	}
}

// publish queues e. Events published after close are dropped.
func (n *notifier) publish(e domain.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.events = append(n.events, e)

	// Non-blocking: a pending signal already covers this event
	select {
	case n.signal <- struct{}{}:
	default:
	}
}

// close stops accepting events and waits until queued ones are delivered.
func (n *notifier) close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	n.mu.Unlock()

	select {
	case n.signal <- struct{}{}:
	default:
	}
	<-n.done
}

func (n *notifier) run() {
	defer close(n.done)

	for range n.signal {
		for {
			batch, closed := n.drain()
			for _, e := range batch {
				n.deliver(e)
			}
			if len(batch) == 0 {
				if closed {
					return
				}
				break
			}
		}
	}
}

// drain takes every queued event.
func (n *notifier) drain() ([]domain.ChangeEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	batch := n.events
	n.events = nil
	return batch, n.closed
}

func (n *notifier) deliver(e domain.ChangeEvent) {
	n.subMu.RLock()
	ids := make([]uint64, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	n.subMu.RUnlock()

	// Registration order
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		// Skip subscribers removed by an earlier callback for this event
		n.subMu.RLock()
		fn, ok := n.subs[id]
		n.subMu.RUnlock()
		if ok {
			fn(e)
		}
	}
}
