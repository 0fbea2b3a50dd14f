package handlers_test

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldexplorer/backend/internal/handlers"
	"github.com/worldexplorer/backend/internal/hub"
	"github.com/worldexplorer/backend/internal/repository"
)

func streamServer(h *hub.Hub) *httptest.Server {
	eh := &handlers.EventHandler{
		Logger:    slog.New(slog.DiscardHandler),
		Hub:       h,
		KeepAlive: time.Minute,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events/subscribe", eh.Subscribe)
	mux.HandleFunc("GET /api/events/subscribe/{eventType}", eh.SubscribeByType)
	mux.HandleFunc("GET /api/events/subscribe/source/{source}", eh.SubscribeBySource)
	return httptest.NewServer(mux)
}

func makeEvent(id int64, eventType string) repository.Event {
	entityID := int64(42)
	data := `{"name":"Norway"}`
	return repository.Event{
		ID:        id,
		EventType: eventType,
		Source:    "country-service",
		EntityID:  &entityID,
		Data:      &data,
		Timestamp: time.Now().UTC(),
		Version:   "1.0",
	}
}

// readEventPayload pulls the next data frame off the SSE stream, skipping
// keep-alive comments, with a timeout so a dead stream fails fast.
func readEventPayload(t *testing.T, reader *bufio.Reader) repository.Event {
	t.Helper()

	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				errCh <- err
				return
			}
			if strings.HasPrefix(line, "data: ") {
				lineCh <- line
				return
			}
		}
	}()

	select {
	case line := <-lineCh:
		var ev repository.Event
		payload := strings.TrimPrefix(strings.TrimRight(line, "\n"), "data: ")
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		return ev
	case err := <-errCh:
		t.Fatalf("stream ended before a data frame arrived: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for SSE frame")
	}
	return repository.Event{}
}

func TestSubscribeStreamsBroadcastEvents(t *testing.T) {
	h := hub.New(slog.New(slog.DiscardHandler), 16)
	srv := streamServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/subscribe")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The subscription is registered before the response headers are
	// written, so once the Get returns the hub already sees us.
	h.Broadcast(makeEvent(7, "COUNTRY_CREATED"))

	reader := bufio.NewReader(resp.Body)
	ev := readEventPayload(t, reader)
	assert.Equal(t, int64(7), ev.ID)
	assert.Equal(t, "COUNTRY_CREATED", ev.EventType)
	assert.Equal(t, "country-service", ev.Source)
	require.NotNil(t, ev.EntityID)
	assert.Equal(t, int64(42), *ev.EntityID)
	assert.Equal(t, "1.0", ev.Version)

	h.Broadcast(makeEvent(8, "COUNTRY_UPDATED"))
	assert.Equal(t, int64(8), readEventPayload(t, reader).ID)
}

func TestSubscribeByTypeOnlyStreamsMatchingEvents(t *testing.T) {
	h := hub.New(slog.New(slog.DiscardHandler), 16)
	srv := streamServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/subscribe/COUNTRY_DELETED")
	require.NoError(t, err)
	defer resp.Body.Close()

	h.Broadcast(makeEvent(1, "COUNTRY_CREATED"))
	h.Broadcast(makeEvent(2, "COUNTRY_DELETED"))

	ev := readEventPayload(t, bufio.NewReader(resp.Body))
	assert.Equal(t, int64(2), ev.ID)
	assert.Equal(t, "COUNTRY_DELETED", ev.EventType)
}

func TestSubscribeBySourceOnlyStreamsMatchingEvents(t *testing.T) {
	h := hub.New(slog.New(slog.DiscardHandler), 16)
	srv := streamServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/subscribe/source/country-service")
	require.NoError(t, err)
	defer resp.Body.Close()

	other := makeEvent(1, "COUNTRY_CREATED")
	other.Source = "other-service"
	h.Broadcast(other)
	h.Broadcast(makeEvent(2, "COUNTRY_CREATED"))

	ev := readEventPayload(t, bufio.NewReader(resp.Body))
	assert.Equal(t, int64(2), ev.ID)
}

func TestDisconnectedSubscriberDoesNotAffectOthers(t *testing.T) {
	h := hub.New(slog.New(slog.DiscardHandler), 16)
	srv := streamServer(h)
	defer srv.Close()

	gone, err := http.Get(srv.URL + "/api/events/subscribe")
	require.NoError(t, err)
	stay, err := http.Get(srv.URL + "/api/events/subscribe")
	require.NoError(t, err)
	defer stay.Body.Close()

	// Dropping one client is a normal disconnect, never an error.
	gone.Body.Close()

	h.Broadcast(makeEvent(9, "COUNTRY_CREATED"))

	ev := readEventPayload(t, bufio.NewReader(stay.Body))
	assert.Equal(t, int64(9), ev.ID)
}
