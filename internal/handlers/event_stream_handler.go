package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/worldexplorer/backend/internal/hub"
)

// Server-Sent Events endpoints over the broadcast hub. Each connection
// holds its own hub subscription for as long as the client stays on the
// line; the server never ends the stream on its own. These handlers must
// not sit behind the database middleware, a stream would otherwise pin a
// pool connection forever.

// Subscribe streams every event broadcast from now on.
func (eh *EventHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	eh.stream(w, r, eh.Hub.Subscribe())
}

// SubscribeByType streams events whose type matches the path parameter.
func (eh *EventHandler) SubscribeByType(w http.ResponseWriter, r *http.Request) {
	eh.stream(w, r, eh.Hub.SubscribeByType(r.PathValue("eventType")))
}

// SubscribeBySource streams events whose source matches the path parameter.
func (eh *EventHandler) SubscribeBySource(w http.ResponseWriter, r *http.Request) {
	eh.stream(w, r, eh.Hub.SubscribeBySource(r.PathValue("source")))
}

func (eh *EventHandler) stream(w http.ResponseWriter, r *http.Request, sub *hub.Subscription) {
	defer sub.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		eh.Logger.Error("Response writer does not support streaming")
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := eh.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			// Client went away; a normal disconnect, not an error.
			return

		case ev := <-sub.Events():
			data, err := json.Marshal(ev)
			if err != nil {
				eh.Logger.Error("Failed to serialize event for stream",
					slog.Int64("event_id", ev.ID), slog.Any("error", err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Comment frame; keeps idle connections open through proxies.
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
