package events

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() EventRequest {
	entityID := int64(42)
	data := `{"name":"Norway"}`
	return EventRequest{
		EventType: "COUNTRY_CREATED",
		Source:    "country-service",
		EntityID:  &entityID,
		Data:      &data,
	}
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	assert.Nil(t, validRequest().Validate())
}

func TestValidateRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EventRequest)
		field   string
		message string
	}{
		{
			name:    "missing event type",
			mutate:  func(r *EventRequest) { r.EventType = "" },
			field:   "eventType",
			message: "Event type is required",
		},
		{
			name:    "blank event type",
			mutate:  func(r *EventRequest) { r.EventType = "   " },
			field:   "eventType",
			message: "Event type is required",
		},
		{
			name:    "event type too long",
			mutate:  func(r *EventRequest) { r.EventType = strings.Repeat("X", 51) },
			field:   "eventType",
			message: "Event type must not exceed 50 characters",
		},
		{
			name:    "missing source",
			mutate:  func(r *EventRequest) { r.Source = "" },
			field:   "source",
			message: "Source is required",
		},
		{
			name:    "source too long",
			mutate:  func(r *EventRequest) { r.Source = strings.Repeat("X", 51) },
			field:   "source",
			message: "Source must not exceed 50 characters",
		},
		{
			name:    "version too long",
			mutate:  func(r *EventRequest) { r.Version = strings.Repeat("1", 11) },
			field:   "version",
			message: "Version must not exceed 10 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			verr := req.Validate()
			require.NotNil(t, verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.message, verr.Fields[0].Message)
		})
	}
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	verr := EventRequest{}.Validate()
	require.NotNil(t, verr)
	assert.Len(t, verr.Fields, 2)
	assert.Contains(t, verr.Error(), "Event type is required")
	assert.Contains(t, verr.Error(), "Source is required")
}

func TestParamsDefaultsVersion(t *testing.T) {
	params := validRequest().Params()
	assert.Equal(t, DefaultVersion, params.Version)

	req := validRequest()
	req.Version = "2.1"
	assert.Equal(t, "2.1", req.Params().Version)
}

func TestLengthLimitsCountCharactersNotBytes(t *testing.T) {
	// 30 characters, three bytes each in UTF-8.
	req := validRequest()
	req.EventType = strings.Repeat("国", 30)
	req.Source = strings.Repeat("国", 30)
	assert.Nil(t, req.Validate())

	req.EventType = strings.Repeat("国", 51)
	verr := req.Validate()
	require.NotNil(t, verr)
	assert.Equal(t, "Event type must not exceed 50 characters", verr.Fields[0].Message)
}

func TestMaximumLengthsAreAccepted(t *testing.T) {
	req := validRequest()
	req.EventType = strings.Repeat("T", 50)
	req.Source = strings.Repeat("S", 50)
	req.Version = strings.Repeat("1", 10)
	assert.Nil(t, req.Validate())
}
