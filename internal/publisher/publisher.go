// Documentation for the country event publisher
//
// OVERVIEW:
// The EventPublisher notifies the event service whenever a country is
// created, updated or deleted, by POSTing an event request to the event
// service's publish endpoint. The event carries a JSON snapshot of the
// affected country (plus the prior snapshot on updates) so downstream
// consumers never need to call back into this service.
//
// FAILURE POLICY:
// Publishing is strictly best-effort. A serialization failure, transport
// failure or non-2xx response is logged and swallowed; it must never
// fail the country write that triggered it. Coupling primary writes to
// eventing availability is exactly what this split avoids.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/worldexplorer/backend/internal/events"
	"github.com/worldexplorer/backend/internal/repository"
)

const (
	sourceService = "country-service"
	eventVersion  = "1.0"

	EventCountryCreated = "COUNTRY_CREATED"
	EventCountryUpdated = "COUNTRY_UPDATED"
	EventCountryDeleted = "COUNTRY_DELETED"
)

type EventPublisher struct {
	client     *http.Client
	logger     *slog.Logger
	publishURL string
}

// New builds a publisher for the event service at baseURL. Trailing
// slashes on the configured base URL are normalized away so the composed
// endpoint never contains a double slash.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		publishURL: strings.TrimRight(baseURL, "/") + "/api/events/publish",
	}
}

// GenerateRequestID generates a unique request ID for event tracking
func GenerateRequestID() string {
	return uuid.New().String()
}

// PublishCountryCreated publishes a COUNTRY_CREATED event for the country.
func (p *EventPublisher) PublishCountryCreated(ctx context.Context, country repository.Country) {
	data := map[string]any{
		"country":   country,
		"action":    "CREATED",
		"timestamp": time.Now().UnixMilli(),
	}
	p.publish(ctx, EventCountryCreated, country.ID, data)
}

// PublishCountryUpdated publishes a COUNTRY_UPDATED event carrying both
// the new and, when available, the previous snapshot.
func (p *EventPublisher) PublishCountryUpdated(ctx context.Context, updated repository.Country, previous *repository.Country) {
	data := map[string]any{
		"country":   updated,
		"action":    "UPDATED",
		"timestamp": time.Now().UnixMilli(),
	}
	if previous != nil {
		data["previousCountry"] = *previous
	}
	p.publish(ctx, EventCountryUpdated, updated.ID, data)
}

// PublishCountryDeleted publishes a COUNTRY_DELETED event for the country.
func (p *EventPublisher) PublishCountryDeleted(ctx context.Context, country repository.Country) {
	data := map[string]any{
		"country":   country,
		"action":    "DELETED",
		"timestamp": time.Now().UnixMilli(),
	}
	p.publish(ctx, EventCountryDeleted, country.ID, data)
}

func (p *EventPublisher) publish(ctx context.Context, eventType string, entityID int64, data map[string]any) {
	requestID := GenerateRequestID()

	dataJSON, err := json.Marshal(data)
	if err != nil {
		p.logger.Error("Failed to serialize event data",
			slog.String("event_type", eventType),
			slog.Int64("entity_id", entityID),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return
	}

	payload := events.EventRequest{
		EventType: eventType,
		Source:    sourceService,
		EntityID:  &entityID,
		Data:      strPtr(string(dataJSON)),
		Version:   eventVersion,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to serialize event request",
			slog.String("event_type", eventType),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL, bytes.NewReader(body))
	if err != nil {
		p.logger.Error("Failed to build event publish request",
			slog.String("event_type", eventType),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("Failed to send event to event service",
			slog.String("event_type", eventType),
			slog.String("url", p.publishURL),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Warn(fmt.Sprintf("Event service returned non-success status %d", resp.StatusCode),
			slog.String("event_type", eventType),
			slog.Int64("entity_id", entityID),
			slog.String("request_id", requestID),
		)
		return
	}

	p.logger.Info("Published event",
		slog.String("event_type", eventType),
		slog.Int64("entity_id", entityID),
		slog.String("request_id", requestID),
	)
}

func strPtr(s string) *string { return &s }
