// Package pubsub fans draft events out to in-process subscribers, optionally
// bridged through NATS JetStream so every instance sees every event.
package pubsub

import (
	"time"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// Event types published by the draft sessions
const (
	EventDraftCreated  = "draft:created"
	EventDraftDeleted  = "draft:deleted"
	EventPick          = "draft:pick"
	EventBoard         = "draft:board"
	EventTurn          = "draft:turn"
	EventDraftComplete = "draft:complete"
)

// Event represents a pubsub event
type Event struct {
	Type      string                 `json:"type"`
	DraftID   string                 `json:"draftId,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"ts"`
}

// Matches reports whether the event belongs to draftID; an empty id matches everything
func (e Event) Matches(draftID string) bool {
	return draftID == "" || e.DraftID == draftID
}

// Upstream is an interface for upstream publishers (e.g., NATS)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// Broker is an upstream that owns a connection and must be closed
type Broker interface {
	Upstream
	Close()
}

// PubSub implements a simple publish-subscribe system
type PubSub struct {
	subs     *fanout
	upstream Upstream
}

// New creates a PubSub that only delivers in-process
func New() *PubSub {
	return &PubSub{subs: newFanout(10)}
}

// NewWithUpstream creates a PubSub that bridges to an upstream publisher.
// Publish goes to the upstream, which broadcasts back to every instance;
// events from the upstream are forwarded to local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{
		subs:     newFanout(10),
		upstream: upstream,
	}

	ch := upstream.Subscribe()
	go func() {
		logger.Debug("PubSub: Subscribed to upstream, waiting for events")
		for event := range ch {
			ps.subs.broadcast(event)
		}
		logger.Debug("PubSub: Upstream channel closed")
	}()

	return ps
}

// Subscribe adds a new subscriber and returns a channel for receiving events
func (ps *PubSub) Subscribe() chan Event {
	return ps.subs.subscribe()
}

// Unsubscribe removes a subscriber and closes its channel
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.subs.unsubscribe(ch)
}

// SubscriberCount is the number of local subscribers
func (ps *PubSub) SubscriberCount() int {
	return ps.subs.count()
}

// Publish stamps the event and delivers it through the upstream when one is configured
func (ps *PubSub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if ps.upstream != nil {
		ps.upstream.Publish(event)
		return
	}
	ps.subs.broadcast(event)
}
