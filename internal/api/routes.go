package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"brainrot-feed/internal/feed"
)

const (
	apiBasePath   = "/api"
	paramFeed     = "feed"
	healthPath    = "/healthz"
	contentType   = "Content-Type"
	jsonMediaType = "application/json"
)

// Looker runs one lookup across an ordered source list.
type Looker interface {
	Lookup(ctx context.Context, sources []feed.Source, filters feed.Filters) (feed.Record, error)
}

// Options configure the router.
type Options struct {
	Feeds          map[string]feed.Feed
	Window         feed.Window
	RequestTimeout time.Duration
}

// NewRouter wires the query endpoints.
func NewRouter(opts Options, looker Looker, logger zerolog.Logger) http.Handler {
	logger = logger.With().Str("component", "api").Logger()
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	h := &handler{feeds: opts.Feeds, window: opts.Window, looker: looker, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.SetHeader(contentType, jsonMediaType))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Get("/{"+paramFeed+"}", h.handleLookup)
	})
	r.Get(healthPath, handleHealthCheck)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request through zerolog.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request served")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
