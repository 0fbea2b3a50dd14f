package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldexplorer/backend/internal/events"
	"github.com/worldexplorer/backend/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testCountry() repository.Country {
	name := "Norway"
	iso := "NO"
	return repository.Country{
		ID:      42,
		Name:    &name,
		IsoCode: &iso,
	}
}

type recordedPublish struct {
	path      string
	requestID string
	request   events.EventRequest
}

func recordingServer(t *testing.T, out chan<- recordedPublish) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req events.EventRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out <- recordedPublish{
			path:      r.URL.Path,
			requestID: r.Header.Get("X-Request-ID"),
			request:   req,
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	}))
}

func TestPublishCountryCreatedSendsEventRequest(t *testing.T) {
	recorded := make(chan recordedPublish, 1)
	srv := recordingServer(t, recorded)
	defer srv.Close()

	p := New(srv.URL, 2*time.Second, testLogger())
	p.PublishCountryCreated(context.Background(), testCountry())

	got := <-recorded
	assert.Equal(t, "/api/events/publish", got.path)
	assert.NotEmpty(t, got.requestID)
	assert.Equal(t, EventCountryCreated, got.request.EventType)
	assert.Equal(t, "country-service", got.request.Source)
	require.NotNil(t, got.request.EntityID)
	assert.Equal(t, int64(42), *got.request.EntityID)
	assert.Equal(t, "1.0", got.request.Version)

	require.NotNil(t, got.request.Data)
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(*got.request.Data), &data))
	assert.Equal(t, "CREATED", data["action"])
	country, ok := data["country"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Norway", country["name"])
}

// The configured base URL frequently arrives with a trailing slash; the
// composed endpoint must not contain a double slash.
func TestPublisherNormalizesTrailingSlash(t *testing.T) {
	recorded := make(chan recordedPublish, 1)
	srv := recordingServer(t, recorded)
	defer srv.Close()

	p := New(srv.URL+"/", 2*time.Second, testLogger())
	p.PublishCountryDeleted(context.Background(), testCountry())

	got := <-recorded
	assert.Equal(t, "/api/events/publish", got.path)
	assert.Equal(t, EventCountryDeleted, got.request.EventType)
}

func TestPublishCountryUpdatedCarriesPreviousSnapshot(t *testing.T) {
	recorded := make(chan recordedPublish, 1)
	srv := recordingServer(t, recorded)
	defer srv.Close()

	updated := testCountry()
	previousName := "Norge"
	previous := testCountry()
	previous.Name = &previousName

	p := New(srv.URL, 2*time.Second, testLogger())
	p.PublishCountryUpdated(context.Background(), updated, &previous)

	got := <-recorded
	assert.Equal(t, EventCountryUpdated, got.request.EventType)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(*got.request.Data), &data))
	assert.Equal(t, "UPDATED", data["action"])
	prev, ok := data["previousCountry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Norge", prev["name"])
}

func TestPublishSwallowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(srv.URL, 2*time.Second, testLogger())

	// Must return normally; publish failures are never fatal to the
	// country write that triggered them.
	p.PublishCountryCreated(context.Background(), testCountry())
}

func TestPublishSwallowsTransportErrors(t *testing.T) {
	p := New("http://127.0.0.1:1", 200*time.Millisecond, testLogger())
	p.PublishCountryDeleted(context.Background(), testCountry())
}
