package pubsub

import (
	"sync"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// fanout is the subscriber list shared by the local bus and the NATS bridges.
// Delivery never blocks: a full subscriber misses the event.
type fanout struct {
	mu     sync.RWMutex
	subs   []chan Event
	buffer int
}

func newFanout(buffer int) *fanout {
	return &fanout{subs: []chan Event{}, buffer: buffer}
}

func (f *fanout) subscribe() chan Event {
	ch := make(chan Event, f.buffer)

	f.mu.Lock()
	f.subs = append(f.subs, ch)
	n := len(f.subs)
	f.mu.Unlock()

	logger.Debug("PubSub: New subscriber added", "totalSubscribers", n)
	return ch
}

// unsubscribe closes ch only if it was registered here
func (f *fanout) unsubscribe(ch chan Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, sub := range f.subs {
		if sub == ch {
			close(ch)
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}

func (f *fanout) broadcast(event Event) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	delivered := 0
	for _, ch := range f.subs {
		select {
		case ch <- event:
			delivered++
		default:
			logger.Warn("PubSub: Skipping slow subscriber", "type", event.Type, "draftId", event.DraftID)
		}
	}
	return delivered
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		close(ch)
	}
	f.subs = nil
}

func (f *fanout) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
