package httpapi

import (
	"context"
	"net/http"

	"aptwatch/internal/run"
)

type RunHandler struct {
	Status     func() run.Status
	TriggerRun func(ctx context.Context, dryRun bool) (run.Result, error)
}

func (h RunHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if h.Status == nil {
		http.Error(w, "no engine attached", 501)
		return
	}
	writeJSON(w, h.Status())
}

func (h RunHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if h.TriggerRun == nil {
		http.Error(w, "no engine attached", 501)
		return
	}
	if h.Status != nil && h.Status().Running {
		http.Error(w, "run already in progress", http.StatusConflict)
		return
	}

	dry := r.URL.Query().Get("dry") == "1"

	// Detached from the request context: closing the browser tab should
	// not abort a scraping pass.
	go func() {
		_, _ = h.TriggerRun(context.Background(), dry)
	}()

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]any{"started": true, "dryRun": dry})
}
