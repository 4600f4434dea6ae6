package pubsub

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// NATSPubSub implements pub/sub using an external NATS JetStream cluster
type NATSPubSub struct {
	*jetStreamBridge
	nc *nats.Conn
}

// NewNATSPubSub connects to natsURL and relays events on subject.<draftId>
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("fc-draft-simulator"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// file storage, no max age: events stay available for replay
	if err := ensureStream(js, DefaultStreamName, subject, nats.FileStorage, 0); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	bridge := &jetStreamBridge{js: js, subject: subject, subs: newFanout(100)}
	if err := bridge.start(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to JetStream: %w", err)
	}

	logger.Info("Connected to NATS", "url", nc.ConnectedUrl(), "subject", subject)
	return &NATSPubSub{jetStreamBridge: bridge, nc: nc}, nil
}

// Close drops local subscribers and the NATS connection
func (p *NATSPubSub) Close() {
	p.stop()
	if p.nc != nil {
		p.nc.Close()
	}
}
