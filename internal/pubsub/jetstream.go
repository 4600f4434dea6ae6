package pubsub

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// DefaultStreamName is the JetStream stream holding draft events
const DefaultStreamName = "FC_DRAFT_EVENTS"

// jetStreamBridge publishes events to per-draft subjects under a base subject
// and relays everything on the stream to local subscribers
type jetStreamBridge struct {
	js      nats.JetStreamContext
	subject string
	sub     *nats.Subscription
	subs    *fanout
}

// subjectFor routes an event to base.<draftId>, or base.global when it has none
func subjectFor(base string, event Event) string {
	if event.DraftID == "" {
		return base + ".global"
	}
	return base + "." + event.DraftID
}

func ensureStream(js nats.JetStreamContext, name, subject string, storage nats.StorageType, maxAge time.Duration) error {
	if name == "" {
		name = DefaultStreamName
	}
	_, err := js.StreamInfo(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{subject + ".>"},
		Storage:  storage,
		MaxAge:   maxAge,
	})
	if err == nil {
		logger.Info("JetStream stream created", "stream", name, "subject", subject+".>")
	}
	return err
}

func (b *jetStreamBridge) start() error {
	sub, err := b.js.Subscribe(b.subject+".>", func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to unmarshal event from JetStream", "error", err)
			_ = msg.Term()
			return
		}
		b.subs.broadcast(event)
		_ = msg.Ack()
	}, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return err
	}
	b.sub = sub
	logger.Debug("Subscribed to JetStream", "subject", b.subject+".>")
	return nil
}

func (b *jetStreamBridge) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}

	subject := subjectFor(b.subject, event)
	if _, err := b.js.Publish(subject, data); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "event_type", event.Type, "subject", subject)
}

func (b *jetStreamBridge) Subscribe() chan Event {
	return b.subs.subscribe()
}

func (b *jetStreamBridge) Unsubscribe(ch chan Event) {
	b.subs.unsubscribe(ch)
}

// SubscriberCount returns the number of active local subscribers
func (b *jetStreamBridge) SubscriberCount() int {
	return b.subs.count()
}

func (b *jetStreamBridge) stop() {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
	b.subs.closeAll()
}
