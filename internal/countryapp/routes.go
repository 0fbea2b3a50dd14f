package countryapp

import (
	"net/http"

	"github.com/worldexplorer/backend/internal/handlers"
	"github.com/worldexplorer/backend/internal/middleware"
)

func (a *App) loadRoutes() http.Handler {
	router := http.NewServeMux()

	ch := &handlers.CountryHandler{
		Logger:    a.logger,
		Publisher: a.publisher,
		Cache:     a.cache,
	}

	router.HandleFunc("POST /api/countries", ch.CreateCountry)
	router.Handle("GET /api/countries", middleware.CreateStack(
		middleware.PaginationMiddleware(100, 500),
	)(http.HandlerFunc(ch.GetCountries)))
	router.HandleFunc("GET /api/countries/{id}", ch.GetCountryByID)
	router.HandleFunc("PUT /api/countries/{id}", ch.UpdateCountry)
	router.HandleFunc("DELETE /api/countries/{id}", ch.DeleteCountry)

	router.HandleFunc("GET /api/countries/health", ch.Health)

	return router
}
