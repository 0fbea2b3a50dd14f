package handlers_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/worldexplorer/backend/internal/handlers"
)

func TestEventServiceHealth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "/api/events/health", nil)
	if err != nil {
		t.Fatalf("Could not create request: %v\n", err)
	}

	rr := httptest.NewRecorder()

	eh := &handlers.EventHandler{Logger: slog.New(slog.DiscardHandler)}
	eh.Health(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("Handler returned the wrong response code: got %v expected %v",
			status, http.StatusOK)
	}

	expected := "Event Service is running"
	if body := rr.Body.String(); body != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", body, expected)
	}
}

func TestCountryServiceHealth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "/api/countries/health", nil)
	if err != nil {
		t.Fatalf("Could not create request: %v\n", err)
	}

	rr := httptest.NewRecorder()

	ch := &handlers.CountryHandler{Logger: slog.New(slog.DiscardHandler)}
	ch.Health(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("Handler returned the wrong response code: got %v expected %v",
			status, http.StatusOK)
	}

	expected := "Country Service is running"
	if body := rr.Body.String(); body != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", body, expected)
	}
}
