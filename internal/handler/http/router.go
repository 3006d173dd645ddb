package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

const routeNotFoundMessage = "Route not found"

type RouteRegistrar interface {
	RegisterRoutes(router chi.Router)
}

// NewRouter mounts every registrar under /api. Unmatched paths and methods answer 404.
func NewRouter(registrars ...RouteRegistrar) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger)
	router.Use(Recoverer)
	router.Use(middleware.RequestSize(MaxBodyBytes))

	// Must be set before Route so the /api subrouter inherits them.
	router.NotFound(routeNotFound)
	router.MethodNotAllowed(routeNotFound)

	router.Route("/api", func(r chi.Router) {
		for _, reg := range registrars {
			reg.RegisterRoutes(r)
		}
	})

	return router
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, routeNotFoundMessage)
}
