package events

import (
	"strings"
	"unicode/utf8"

	"github.com/worldexplorer/backend/internal/repository"
)

const (
	maxEventTypeLen = 50
	maxSourceLen    = 50
	maxVersionLen   = 10

	// DefaultVersion is stamped on events whose publisher supplied none.
	DefaultVersion = "1.0"
)

// EventRequest is the untrusted inbound shape of a publish call. The id
// and timestamp are always assigned server side and therefore have no
// place here.
type EventRequest struct {
	EventType string  `json:"eventType"`
	Source    string  `json:"source"`
	EntityID  *int64  `json:"entityId"`
	Data      *string `json:"data"`
	Version   string  `json:"version"`
}

// FieldError names one violated constraint on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violated constraint of a publish request
// so the caller can fix them all in one round trip.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid event request: " + strings.Join(msgs, "; ")
}

// Validate checks the request against the event log constraints and
// returns a *ValidationError listing every violation, or nil when the
// request is acceptable.
func (r EventRequest) Validate() *ValidationError {
	var fields []FieldError

	// The limits count characters, not bytes, matching the column sizes.
	if strings.TrimSpace(r.EventType) == "" {
		fields = append(fields, FieldError{Field: "eventType", Message: "Event type is required"})
	} else if utf8.RuneCountInString(r.EventType) > maxEventTypeLen {
		fields = append(fields, FieldError{Field: "eventType", Message: "Event type must not exceed 50 characters"})
	}

	if strings.TrimSpace(r.Source) == "" {
		fields = append(fields, FieldError{Field: "source", Message: "Source is required"})
	} else if utf8.RuneCountInString(r.Source) > maxSourceLen {
		fields = append(fields, FieldError{Field: "source", Message: "Source must not exceed 50 characters"})
	}

	if utf8.RuneCountInString(r.Version) > maxVersionLen {
		fields = append(fields, FieldError{Field: "version", Message: "Version must not exceed 10 characters"})
	}

	if fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Params converts a validated request into insert parameters, applying
// the version default.
func (r EventRequest) Params() repository.CreateEventParams {
	version := r.Version
	if version == "" {
		version = DefaultVersion
	}
	return repository.CreateEventParams{
		EventType: r.EventType,
		Source:    r.Source,
		EntityID:  r.EntityID,
		Data:      r.Data,
		Version:   version,
	}
}
