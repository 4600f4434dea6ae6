package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

func init() {
	logger.Init("error")
}

func receive(t *testing.T, ch chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(timeout):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	ps := New()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	ch3 := ps.Subscribe()
	assert.Equal(t, 3, ps.SubscriberCount())

	ps.Unsubscribe(ch2)
	assert.Equal(t, 2, ps.SubscriberCount())

	_, ok := <-ch2
	assert.False(t, ok, "unsubscribed channel should be closed")

	ps.Publish(Event{Type: EventPick, DraftID: "d1"})
	assert.Equal(t, EventPick, receive(t, ch1, 100*time.Millisecond).Type)
	assert.Equal(t, EventPick, receive(t, ch3, 100*time.Millisecond).Type)
}

func TestPublishStampsTimestamp(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	ps.Publish(Event{Type: EventTurn, DraftID: "d1", Payload: map[string]interface{}{"round": 2}})

	ev := receive(t, ch, 100*time.Millisecond)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, "d1", ev.DraftID)
	assert.Equal(t, 2, ev.Payload["round"])
}

func TestPublishNoSubscribers(t *testing.T) {
	assert.NotPanics(t, func() {
		New().Publish(Event{Type: "test"})
	})
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	for i := 0; i < 15; i++ {
		ps.Publish(Event{Type: "fill"})
	}

	assert.Len(t, ch, 10)
}

func TestEventMatches(t *testing.T) {
	ev := Event{Type: EventBoard, DraftID: "abc"}
	assert.True(t, ev.Matches(""))
	assert.True(t, ev.Matches("abc"))
	assert.False(t, ev.Matches("xyz"))
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := ps.Subscribe()
			time.Sleep(time.Millisecond)
			ps.Unsubscribe(ch)
		}()
		go func() {
			defer wg.Done()
			ps.Publish(Event{Type: "concurrent"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, ps.SubscriberCount())
}

func TestUnsubscribeForeignChannelLeavesItOpen(t *testing.T) {
	ps := New()
	ch := make(chan Event, 1)

	ps.Unsubscribe(ch)
	assert.NotPanics(t, func() { ch <- Event{Type: "still-open"} })
}

// fakeUpstream echoes every published event back to its subscribers
type fakeUpstream struct {
	mu        sync.Mutex
	published []Event
	subs      *fanout
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{subs: newFanout(100)}
}

func (f *fakeUpstream) Publish(event Event) {
	f.mu.Lock()
	f.published = append(f.published, event)
	f.mu.Unlock()
	f.subs.broadcast(event)
}

func (f *fakeUpstream) Subscribe() chan Event     { return f.subs.subscribe() }
func (f *fakeUpstream) Unsubscribe(ch chan Event) { f.subs.unsubscribe(ch) }

func (f *fakeUpstream) Published() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.published...)
}

func TestPublishGoesThroughUpstream(t *testing.T) {
	upstream := newFakeUpstream()
	ps := NewWithUpstream(upstream)
	ch := ps.Subscribe()

	ps.Publish(Event{Type: EventDraftCreated, DraftID: "d1"})

	ev := receive(t, ch, time.Second)
	assert.Equal(t, EventDraftCreated, ev.Type)

	published := upstream.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "d1", published[0].DraftID)
}

func TestUpstreamEventsReachLocalSubscribers(t *testing.T) {
	upstream := newFakeUpstream()
	ps := NewWithUpstream(upstream)
	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	// another instance publishing
	upstream.Publish(Event{Type: EventDraftDeleted, DraftID: "remote"})

	for _, ch := range []chan Event{ch1, ch2} {
		assert.Equal(t, "remote", receive(t, ch, time.Second).DraftID)
	}
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "draft.events.global", subjectFor("draft.events", Event{Type: "x"}))
	assert.Equal(t, "draft.events.abc", subjectFor("draft.events", Event{Type: "x", DraftID: "abc"}))
}
