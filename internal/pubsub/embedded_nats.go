package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// EmbeddedNATSPubSub runs a NATS server in-process so development gets the
// same JetStream path as production without external infrastructure
type EmbeddedNATSPubSub struct {
	*jetStreamBridge
	server *server.Server
	nc     *nats.Conn
}

// EmbeddedNATSOptions configures the embedded NATS server
type EmbeddedNATSOptions struct {
	Port       int    // 0 or -1 picks a random free port
	Subject    string // base subject; events go to Subject.<draftId>
	StreamName string
	StoreDir   string // empty keeps JetStream in memory
}

// DefaultEmbeddedNATSOptions returns sensible defaults for development
func DefaultEmbeddedNATSOptions() EmbeddedNATSOptions {
	return EmbeddedNATSOptions{
		Port:       -1,
		Subject:    "draft.events",
		StreamName: DefaultStreamName,
	}
}

// NewEmbeddedNATSPubSub starts an embedded NATS server and connects to it
func NewEmbeddedNATSPubSub(opts EmbeddedNATSOptions) (*EmbeddedNATSPubSub, error) {
	port := opts.Port
	if port == 0 {
		port = -1 // 0 would mean 4222
	}
	if opts.Subject == "" {
		opts.Subject = "draft.events"
	}

	ns, err := server.NewServer(&server.Options{
		Port:      port,
		JetStream: true,
		NoSigs:    true,
		StoreDir:  opts.StoreDir,
	})
	if err != nil {
		return nil, fmt.Errorf("embedded nats: %w", err)
	}
	ns.SetLogger(natsLogger{}, false, false)
	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats: not ready after 10s")
	}
	logger.Info("Embedded NATS listening", "url", ns.ClientURL())

	var nc *nats.Conn
	fail := func(stage string, err error) (*EmbeddedNATSPubSub, error) {
		if nc != nil {
			nc.Close()
		}
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats %s: %w", stage, err)
	}

	if nc, err = nats.Connect(ns.ClientURL()); err != nil {
		return fail("connect", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		return fail("jetstream", err)
	}
	if err := ensureStream(js, opts.StreamName, opts.Subject, nats.MemoryStorage, time.Hour); err != nil {
		return fail("stream", err)
	}

	bridge := &jetStreamBridge{js: js, subject: opts.Subject, subs: newFanout(100)}
	if err := bridge.start(); err != nil {
		return fail("subscribe", err)
	}
	return &EmbeddedNATSPubSub{jetStreamBridge: bridge, server: ns, nc: nc}, nil
}

// Close shuts down the embedded NATS server
func (p *EmbeddedNATSPubSub) Close() {
	p.stop()
	if p.nc != nil {
		p.nc.Close()
	}
	if p.server != nil {
		p.server.Shutdown()
		p.server.WaitForShutdown()
	}
	logger.Info("Embedded NATS stopped")
}

// ServerURL returns the client URL of the embedded server
func (p *EmbeddedNATSPubSub) ServerURL() string {
	return p.server.ClientURL()
}

// natsLogger routes server log lines into the application logger
type natsLogger struct{}

func (natsLogger) log(level slog.Level, format string, v []any) {
	logger.Logger.Log(context.Background(), level, "nats: "+fmt.Sprintf(format, v...))
}

func (l natsLogger) Noticef(format string, v ...any) { l.log(slog.LevelInfo, format, v) }
func (l natsLogger) Warnf(format string, v ...any)   { l.log(slog.LevelWarn, format, v) }
func (l natsLogger) Fatalf(format string, v ...any)  { l.log(slog.LevelError, format, v) }
func (l natsLogger) Errorf(format string, v ...any)  { l.log(slog.LevelError, format, v) }
func (l natsLogger) Debugf(format string, v ...any)  { l.log(slog.LevelDebug, format, v) }
func (l natsLogger) Tracef(format string, v ...any)  { l.log(slog.LevelDebug-4, format, v) }
