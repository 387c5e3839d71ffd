package httpapi

import (
	"net/http"
	"time"
)

// NewMux wires the local viewer API. It reads the same database the scraper
// writes, so a dashboard can run against it whether or not a run is in
// progress.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "time": time.Now().Format(time.RFC3339)})
	})

	lh := ListingsHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/listings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	}))
	mux.HandleFunc("/listings/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: lh.ToggleFavoriteByPath, // expects /listings/{id}/favorite
	}))
	mux.HandleFunc("/favorites", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Favorites,
	}))
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Stats,
	}))

	rh := RunHandler{Status: d.RunStatus, TriggerRun: d.TriggerRun}
	mux.HandleFunc("/run/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.GetStatus,
	}))
	mux.HandleFunc("/run/once", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.RunNow,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
