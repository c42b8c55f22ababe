package sse

import (
	"context"
	"net/http"
	"time"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents a connected SSE client
type Client struct {
	hub         *Hub
	subscriber  string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(hub *Hub, subscriber string) *Client {
	return &Client{
		hub:         hub,
		subscriber:  subscriber,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// InitialFunc renders the message sent right after the connected event
type InitialFunc func(ctx context.Context) ([]byte, error)

// ServeSSE streams hub events to the client until it disconnects or the hub
// closes. The client is registered before initial runs, so a broadcast
// racing the first message is queued rather than lost. An error from
// initial is returned before anything is written, for the caller to report.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, subscriber string, initial InitialFunc) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := NewClient(hub, subscriber)
	if !hub.Register(client) {
		http.Error(w, "Event stream closed", http.StatusServiceUnavailable)
		return nil
	}
	defer hub.Unregister(client)

	var first []byte
	if initial != nil {
		msg, err := initial(r.Context())
		if err != nil {
			return err
		}
		first = msg
	}

	// The server write timeout would otherwise cut the stream
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	_, _ = w.Write(formatSSEMessage(EventConnected, `{"status":"connected"}`))
	if first != nil {
		_, _ = w.Write(first)
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return nil
			}
			if _, err := w.Write(message); err != nil {
				return nil
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return nil
			}
			flusher.Flush()

		case <-r.Context().Done():
			return nil
		}
	}
}
