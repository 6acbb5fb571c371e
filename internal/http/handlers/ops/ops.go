// Package ops contains the HTTP handlers of the operations listener.
//
// Handlers are factories: they receive their dependencies once at start-up
// and return the http.HandlerFunc the router calls on every request.
//
//	router.HandleFunc("GET /healthz", ops.Health(storage, log))
package ops

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/persons-api/internal/storage"
	"github.com/aanand-mishra/persons-api/internal/utils/response"
)

// Health handles GET /healthz.
//
// It loads the collection to prove the backing store is readable.
//
//	200 OK                   { "status": "ok", "records": 2 }
//	503 Service Unavailable  { "status": "error", "error": "storage unavailable" }
func Health(store storage.Reader, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		persons, err := store.GetAll(r.Context())
		if err != nil {
			log.Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable,
				response.GeneralError("storage unavailable"))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK(len(persons)))
	}
}

// NewRouter registers the ops routes.
//
//	GET /healthz → storage health
//	GET /metrics → Prometheus exposition (when metrics is non-nil)
func NewRouter(store storage.Reader, metrics http.Handler, log *slog.Logger) *http.ServeMux {
	router := http.NewServeMux()
	router.HandleFunc("GET /healthz", Health(store, log))
	if metrics != nil {
		router.Handle("GET /metrics", metrics)
	}
	return router
}
