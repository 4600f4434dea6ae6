package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
)

const (
	keepaliveInterval = 30 * time.Second

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// SetAllowedOrigins lists extra browser origins that may open draft sockets,
// e.g. "https://draft.example.com". "*" allows any origin. Same-host pages and
// clients that send no Origin header are always accepted.
func (h *APIHandlers) SetAllowedOrigins(origins []string) {
	h.origins = h.origins[:0]
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			h.origins = append(h.origins, o)
		}
	}
}

func (h *APIHandlers) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	logger.Warn("Websocket origin rejected", "origin", origin, "host", r.Host)
	return false
}

// EventsSSE provides Server-Sent Events for realtime updates. ?draft=<id>
// limits the stream to one draft.
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	draftID := r.URL.Query().Get("draft")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if !event.Matches(draftID) {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Warn("Failed to encode SSE event", "type", event.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected", "draft_id", draftID)
			return
		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// SocketMessage is what the draft websocket sends: the opening view, then
// each event of the draft followed by the view it produced
type SocketMessage struct {
	Type  string        `json:"type"`
	Event *pubsub.Event `json:"event,omitempty"`
	View  *draft.View   `json:"view,omitempty"`
}

// DraftSocket streams one draft's board to a websocket client
func (h *APIHandlers) DraftSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	view, err := h.drafts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// subscribe before the upgrade so nothing published in between is missed
	events := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(events)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "draft_id", id, "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msg SocketMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("WebSocket write failed", "draft_id", id, "error", err)
			return false
		}
		return true
	}

	if !send(SocketMessage{Type: "view", View: &view}) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.DraftID != id {
				continue
			}
			if !send(SocketMessage{Type: "event", Event: &event}) {
				return
			}
			if event.Type == pubsub.EventDraftDeleted {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "draft deleted"))
				return
			}
			latest, err := h.drafts.Get(r.Context(), id)
			if err != nil {
				continue
			}
			if !send(SocketMessage{Type: "view", View: &latest}) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
