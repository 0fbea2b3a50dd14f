package handlers_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldexplorer/backend/internal/handlers"
)

func publishRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/events/publish", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	eh := &handlers.EventHandler{Logger: slog.New(slog.DiscardHandler)}
	eh.PublishEvent(rr, req)
	return rr
}

func TestPublishEventRejectsMalformedBody(t *testing.T) {
	rr := publishRequest(t, "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPublishEventRejectsInvalidRequestWithFieldMessages(t *testing.T) {
	rr := publishRequest(t, `{"data":"{}"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Error  string `json:"error"`
		Fields []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Error)
	require.Len(t, body.Fields, 2)

	got := map[string]string{}
	for _, f := range body.Fields {
		got[f.Field] = f.Message
	}
	assert.Equal(t, "Event type is required", got["eventType"])
	assert.Equal(t, "Source is required", got["source"])
}

func TestPublishEventRejectsOverlongEventType(t *testing.T) {
	body := `{"eventType":"` + strings.Repeat("X", 51) + `","source":"country-service"}`
	rr := publishRequest(t, body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Event type must not exceed 50 characters")
}
