package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/tremor/internal/feed"
	"github.com/UnknownOlympus/tremor/internal/repository"
	"github.com/gorilla/mux"
)

// Server holds the dependencies of the public HTTP API. Handlers only touch
// the narrow repository and feed interfaces, so transports and stores stay
// swappable.
type Server struct {
	log            *slog.Logger
	repo           repository.Interface
	feed           feed.Provider
	requestTimeout time.Duration
}

// NewServer creates a new API server with the given dependencies. Every
// request is bounded by requestTimeout independently of other requests.
func NewServer(log *slog.Logger, repo repository.Interface, feedProvider feed.Provider, requestTimeout time.Duration) *Server {
	return &Server{
		log:            log,
		repo:           repo,
		feed:           feedProvider,
		requestTimeout: requestTimeout,
	}
}

// Router builds the HTTP route table for the public API.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleWelcome).Methods(http.MethodGet)

	api := router.PathPrefix("/api/earthquakes").Subrouter()
	api.HandleFunc("/location", s.handleLocationUpdate).Methods(http.MethodPost)

	return router
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to encode response",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
}
