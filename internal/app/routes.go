package app

import (
	"net/http"
	"time"

	"github.com/worldexplorer/backend/internal/handlers"
	"github.com/worldexplorer/backend/internal/middleware"
)

func (a *App) loadRoutes() http.Handler {
	router := http.NewServeMux()

	eh := &handlers.EventHandler{
		Logger:    a.logger,
		Hub:       a.hub,
		KeepAlive: time.Duration(a.config.HubConfig.KeepAliveSeconds) * time.Second,
	}

	withDB := middleware.WithDBConnection(a.logger, a.pool)

	// Publish and history run on a per-request pooled connection.
	router.Handle("POST /api/events/publish", withDB(http.HandlerFunc(eh.PublishEvent)))
	router.Handle("GET /api/events", withDB(http.HandlerFunc(eh.GetAllEvents)))
	router.Handle("GET /api/events/{id}", withDB(http.HandlerFunc(eh.GetEventByID)))
	router.Handle("GET /api/events/type/{eventType}", withDB(http.HandlerFunc(eh.GetEventsByType)))
	router.Handle("GET /api/events/source/{source}", withDB(http.HandlerFunc(eh.GetEventsBySource)))
	router.Handle("GET /api/events/entity/{entityId}", withDB(http.HandlerFunc(eh.GetEventsByEntity)))
	router.Handle("GET /api/events/recent", middleware.CreateStack(
		middleware.PaginationMiddleware(10, 500),
		withDB,
	)(http.HandlerFunc(eh.GetRecentEvents)))
	router.Handle("GET /api/events/since", withDB(http.HandlerFunc(eh.GetEventsSince)))
	router.Handle("GET /api/events/between", withDB(http.HandlerFunc(eh.GetEventsBetween)))
	router.Handle("DELETE /api/events/{id}", withDB(http.HandlerFunc(eh.DeleteEvent)))

	// Streaming endpoints stay off the database middleware on purpose:
	// a subscriber holds its connection open indefinitely and must not
	// pin a pool connection while it does.
	router.HandleFunc("GET /api/events/subscribe", eh.Subscribe)
	router.HandleFunc("GET /api/events/subscribe/{eventType}", eh.SubscribeByType)
	router.HandleFunc("GET /api/events/subscribe/source/{source}", eh.SubscribeBySource)

	router.HandleFunc("GET /api/events/health", eh.Health)

	return router
}
