package httpapi

import (
	"context"
	"database/sql"

	"aptwatch/internal/events"
	"aptwatch/internal/run"
)

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub

	// RunStatus reads the orchestrator's latest snapshot.
	RunStatus func() run.Status

	// TriggerRun kicks a cycle outside the schedule (nil when the API is
	// serving a read-only viewer instance).
	TriggerRun func(ctx context.Context, dryRun bool) (run.Result, error)
}
