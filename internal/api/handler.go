package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"brainrot-feed/internal/extract"
	"brainrot-feed/internal/feed"
)

type handler struct {
	feeds  map[string]feed.Feed
	window feed.Window
	looker Looker
	logger zerolog.Logger
}

// handleLookup serves GET /api/{feed}?morethan=&whitelisted=. It always writes exactly
// one JSON body; rejected lookups are reported with status 200 and an "error" key.
func (h *handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, paramFeed), ".php")
	f, ok := h.feeds[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown feed "+name)
		return
	}

	query := r.URL.Query()
	threshold, err := extract.ParseThreshold(query.Get("morethan"))
	if err != nil {
		h.logger.Debug().Err(err).Str("morethan", query.Get("morethan")).Msg("rejecting query")
		writeError(w, http.StatusBadRequest, "invalid morethan: "+err.Error())
		return
	}
	window := h.window
	filters := feed.Filters{
		Window:    &window,
		Threshold: threshold,
		Keyword:   strings.TrimSpace(query.Get("whitelisted")),
	}

	rec, err := h.looker.Lookup(r.Context(), f.Sources, filters)
	if err != nil {
		writeJSON(w, http.StatusOK, feed.ErrorResponse(err))
		return
	}
	writeJSON(w, http.StatusOK, feed.RecordResponse(rec, f.LocatorKey))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, feed.Response{Err: msg})
}

func writeJSON(w http.ResponseWriter, status int, body feed.Response) {
	w.Header().Set(contentType, jsonMediaType)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}
