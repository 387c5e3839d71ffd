package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"aptwatch/internal/events"
	"aptwatch/internal/store"
)

type ListingsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", 400)
			return
		}
		limit = n
	}

	listings, err := store.All(r.Context(), h.DB, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, listings)
}

func (h ListingsHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	listings, err := store.Favorited(r.Context(), h.DB)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, listings)
}

func (h ListingsHandler) ToggleFavoriteByPath(w http.ResponseWriter, r *http.Request) {
	// /listings/{id}/favorite
	rest := strings.TrimPrefix(r.URL.Path, "/listings/")
	id, ok := strings.CutSuffix(rest, "/favorite")
	if !ok || id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", 404)
		return
	}

	fav, err := store.ToggleFavorite(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "unknown listing", 404)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(events.TypeListingFavorited, 1,
			map[string]any{"id": id, "favorited": fav}))
	}
	writeJSON(w, map[string]any{"id": id, "favorited": fav})
}

func (h ListingsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, stats)
}
