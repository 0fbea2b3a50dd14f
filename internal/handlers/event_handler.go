package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/worldexplorer/backend/internal/events"
	"github.com/worldexplorer/backend/internal/hub"
	"github.com/worldexplorer/backend/internal/middleware"
	"github.com/worldexplorer/backend/internal/repository"
)

type EventHandler struct {
	Logger    *slog.Logger
	Hub       *hub.Hub
	KeepAlive time.Duration
}

// PublishEvent records one event and hands it to the broadcast hub.
// Recording happens first and alone decides the response: once the row
// is committed the publish has succeeded, whatever live delivery does.
func (eh *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req events.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		eh.Logger.Error("Failed to parse event request body", slog.Any("error", err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Please check your request body and try again",
		})
		return
	}

	// Reject invalid requests before touching the pool; nothing may be
	// persisted for them.
	if verr := req.Validate(); verr != nil {
		eh.Logger.Info("Rejected invalid event request", slog.Any("error", verr))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
		return
	}

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		eh.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	tx, err := conn.Begin(r.Context())
	if err != nil {
		eh.Logger.Error("Failed to start transaction", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(r.Context())

	event, err := events.Create(r.Context(), repository.New(tx), req)
	if err != nil {
		eh.Logger.Error("Failed to persist event", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		eh.Logger.Error("Error while committing transaction", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "We ran into a problem while servicing your request please try again later",
		})
		return
	}

	// Live delivery is strictly post-commit and best-effort; the hub
	// never reports failure back to the publisher.
	eh.Hub.Broadcast(event)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(event)
}

func (eh *EventHandler) GetAllEvents(w http.ResponseWriter, r *http.Request) {
	eh.listEvents(w, r, func(q *repository.Queries) ([]repository.Event, error) {
		return q.ListEvents(r.Context())
	})
}

func (eh *EventHandler) GetEventsByType(w http.ResponseWriter, r *http.Request) {
	eventType := r.PathValue("eventType")
	eh.listEvents(w, r, func(q *repository.Queries) ([]repository.Event, error) {
		return q.ListEventsByType(r.Context(), eventType)
	})
}

func (eh *EventHandler) GetEventsBySource(w http.ResponseWriter, r *http.Request) {
	source := r.PathValue("source")
	eh.listEvents(w, r, func(q *repository.Queries) ([]repository.Event, error) {
		return q.ListEventsBySource(r.Context(), source)
	})
}

func (eh *EventHandler) GetEventsByEntity(w http.ResponseWriter, r *http.Request) {
	rawID := r.PathValue("entityId")
	entityID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		eh.Logger.Error("Failed to parse request path parameter", slog.Any("error", err),
			slog.Any("value", rawID),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Please check your request and try again",
		})
		return
	}

	eh.listEvents(w, r, func(q *repository.Queries) ([]repository.Event, error) {
		return q.ListEventsByEntity(r.Context(), entityID)
	})
}

// GetRecentEvents returns the most recent events, newest first. The
// limit comes from the pagination middleware (`?limit=N`, default 10).
func (eh *EventHandler) GetRecentEvents(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPagination(r.Context())
	eh.listEvents(w, r, func(q *repository.Queries) ([]repository.Event, error) {
		return q.ListRecentEvents(r.Context(), p.Limit)
	})
}

// GetEventsSince returns events strictly after `?timestamp=RFC3339`.
func (eh *EventHandler) GetEventsSince(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("timestamp")
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		eh.Logger.Error("Failed to parse timestamp query parameter", slog.Any("error", err),
			slog.Any("value", raw),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "timestamp must be a valid RFC3339 timestamp",
		})
		return
	}

	eh.listEvents(w, r, func(q *repository.Queries) ([]repository.Event, error) {
		return q.ListEventsSince(r.Context(), since)
	})
}

// GetEventsBetween returns events inside the inclusive window
// `?start=RFC3339&end=RFC3339`.
func (eh *EventHandler) GetEventsBetween(w http.ResponseWriter, r *http.Request) {
	start, errStart := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	end, errEnd := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if errStart != nil || errEnd != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "start and end must be valid RFC3339 timestamps",
		})
		return
	}

	eh.listEvents(w, r, func(q *repository.Queries) ([]repository.Event, error) {
		return q.ListEventsBetween(r.Context(), start, end)
	})
}

func (eh *EventHandler) GetEventByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rawID := r.PathValue("id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		eh.Logger.Error("Failed to parse request path parameter", slog.Any("error", err),
			slog.Any("value", rawID),
		)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Please check your request and try again",
		})
		return
	}

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		eh.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	event, err := repository.New(conn).GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "event not found"})
			return
		}
		eh.Logger.Error("Failed to fetch event", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(event)
}

// DeleteEvent removes one row from the event log. Subscribers who
// already observed the event live are unaffected; the hub keeps no copy.
func (eh *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	rawID := r.PathValue("id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		eh.Logger.Error("Failed to parse request path parameter", slog.Any("error", err),
			slog.Any("value", rawID),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Please check your request and try again",
		})
		return
	}

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		eh.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	tx, err := conn.Begin(r.Context())
	if err != nil {
		eh.Logger.Error("Failed to start transaction", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(r.Context())
	repo := repository.New(tx)

	exists, err := repo.EventExists(r.Context(), id)
	if err != nil {
		eh.Logger.Error("Failed to check event existence", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := repo.DeleteEvent(r.Context(), id); err != nil {
		eh.Logger.Error("Failed to delete event", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		eh.Logger.Error("Error while committing transaction", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness of the event service.
func (eh *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Event Service is running"))
}

// listEvents runs one historical query and writes the result as a JSON
// array. The query path never touches the hub.
func (eh *EventHandler) listEvents(w http.ResponseWriter, r *http.Request, query func(*repository.Queries) ([]repository.Event, error)) {
	w.Header().Set("Content-Type", "application/json")

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		eh.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	list, err := query(repository.New(conn))
	if err != nil {
		eh.Logger.Error("Failed to query events", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(list)
}
