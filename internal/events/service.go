// Package events holds the ingest step of the event service: turning an
// untrusted publish request into a persisted, immutable event log row.
// Broadcasting the persisted event is deliberately left to the caller so
// recording and live delivery can fail independently.
package events

import (
	"context"

	"github.com/worldexplorer/backend/internal/repository"
)

// Create validates the request and appends exactly one event to the log.
// On a validation failure nothing is persisted and the returned error is
// a *ValidationError. The store assigns id and timestamp.
func Create(ctx context.Context, q *repository.Queries, req EventRequest) (repository.Event, error) {
	if verr := req.Validate(); verr != nil {
		return repository.Event{}, verr
	}
	return q.CreateEvent(ctx, req.Params())
}
