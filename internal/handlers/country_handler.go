package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/worldexplorer/backend/internal/cache"
	"github.com/worldexplorer/backend/internal/middleware"
	"github.com/worldexplorer/backend/internal/publisher"
	"github.com/worldexplorer/backend/internal/repository"
)

type CountryHandler struct {
	Logger    *slog.Logger
	Publisher *publisher.EventPublisher
	// Cache may be nil when no Redis address is configured.
	Cache *cache.CountryCache
}

func (ch *CountryHandler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req repository.CreateCountryParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.Logger.Error("Failed to parse request body", slog.Any("error", err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Please check your request body and try again",
		})
		return
	}

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		ch.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	tx, err := conn.Begin(r.Context())
	if err != nil {
		ch.Logger.Error("Failed to start transaction", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(r.Context())

	country, err := repository.New(tx).CreateCountry(r.Context(), req)
	if err != nil {
		ch.Logger.Error("Failed to create country", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		ch.Logger.Error("Error while committing transaction", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	// Best-effort; a publish failure never fails the write.
	ch.Publisher.PublishCountryCreated(r.Context(), country)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(country)
}

func (ch *CountryHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		ch.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	p := middleware.GetPagination(r.Context())
	countries, err := repository.New(conn).ListCountries(r.Context(), p.Limit, p.Offset)
	if err != nil {
		ch.Logger.Error("Failed to list countries", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(countries)
}

func (ch *CountryHandler) GetCountryByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := ch.parseID(w, r)
	if !ok {
		return
	}

	if ch.Cache != nil {
		if country, hit := ch.Cache.Get(r.Context(), id); hit {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(country)
			return
		}
	}

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		ch.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	country, err := repository.New(conn).GetCountry(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "country not found"})
			return
		}
		ch.Logger.Error("Failed to fetch country", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if ch.Cache != nil {
		ch.Cache.Set(r.Context(), country)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(country)
}

func (ch *CountryHandler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := ch.parseID(w, r)
	if !ok {
		return
	}

	var req repository.CreateCountryParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.Logger.Error("Failed to parse request body", slog.Any("error", err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Please check your request body and try again",
		})
		return
	}

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		ch.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	tx, err := conn.Begin(r.Context())
	if err != nil {
		ch.Logger.Error("Failed to start transaction", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(r.Context())
	repo := repository.New(tx)

	// Snapshot the prior state so the update event can carry it.
	previous, err := repo.GetCountry(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "country not found"})
			return
		}
		ch.Logger.Error("Failed to fetch country", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	updated, err := repo.UpdateCountry(r.Context(), repository.UpdateCountryParams{
		ID:                  id,
		CreateCountryParams: req,
	})
	if err != nil {
		ch.Logger.Error("Failed to update country", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		ch.Logger.Error("Error while committing transaction", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if ch.Cache != nil {
		ch.Cache.Invalidate(r.Context(), id)
	}
	ch.Publisher.PublishCountryUpdated(r.Context(), updated, &previous)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

func (ch *CountryHandler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := ch.parseID(w, r)
	if !ok {
		return
	}

	conn, err := middleware.GetDBConnFromContext(r.Context())
	if err != nil {
		ch.Logger.Error("Error while processing request", slog.Any("error", err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	tx, err := conn.Begin(r.Context())
	if err != nil {
		ch.Logger.Error("Failed to start transaction", slog.Any("error", err))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(r.Context())
	repo := repository.New(tx)

	// Snapshot first so the delete event still carries the record.
	country, err := repo.GetCountry(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "country not found"})
			return
		}
		ch.Logger.Error("Failed to fetch country", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if _, err := repo.DeleteCountry(r.Context(), id); err != nil {
		ch.Logger.Error("Failed to delete country", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		ch.Logger.Error("Error while committing transaction", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, `{"error":"Cannot process your request at the moment"}`, http.StatusInternalServerError)
		return
	}

	if ch.Cache != nil {
		ch.Cache.Invalidate(r.Context(), id)
	}
	ch.Publisher.PublishCountryDeleted(r.Context(), country)

	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness of the country service.
func (ch *CountryHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Country Service is running"))
}

func (ch *CountryHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	rawID := r.PathValue("id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		ch.Logger.Error("Failed to parse request path parameter", slog.Any("error", err),
			slog.Any("value", rawID),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Please check your request and try again",
		})
		return 0, false
	}
	return id, true
}
