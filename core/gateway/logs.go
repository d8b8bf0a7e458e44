package gateway

import (
	"context"
	"strings"
	"time"

	"sge-console/core/model"
	"sge-console/core/state"
	"sge-console/core/view"
)

type LogsGateway struct {
	d *deps
}

type LogDraft struct {
	Action   string
	Details  string
	Priority string
	EventID  string
}

type logPayload struct {
	Action   string  `json:"action"`
	Details  string  `json:"details"`
	Priority string  `json:"priority"`
	EventID  *string `json:"event_id"`
}

func (g *LogsGateway) List(ctx context.Context) error {
	var logs []model.LogEntry
	if err := g.d.client.GetJSON(ctx, "/api/logs", nil, &logs); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.LogsLoaded{Logs: logs})
	return nil
}

func (g *LogsGateway) Create(ctx context.Context, draft LogDraft) error {
	if !g.d.guard.begin("create-log") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("create-log")

	if err := requireFields(map[string]string{
		"action":  draft.Action,
		"details": draft.Details,
	}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	if err := enumField("priority", draft.Priority, model.KnownPriorities()); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	priority := draft.Priority
	if priority == "" {
		priority = model.PriorityNormale
	}
	payload := logPayload{
		Action:   draft.Action,
		Details:  draft.Details,
		Priority: priority,
		EventID:  optText(draft.EventID),
	}
	var created model.LogEntry
	if err := g.d.client.PostJSON(ctx, "/api/logs", payload, &created); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Log operativo creato con successo!")
	g.d.quietFail(g.List(ctx), "logs reload")
	g.d.afterMutation(ctx, view.ResourceLogs, g.d.refreshStats)
	return nil
}

// LogFilters narrow the cached log list; the backend has no log query
// parameters, so filtering happens client-side over the cache.
type LogFilters struct {
	Priority string
	Operator string
	Start    time.Time
	End      time.Time
}

// FilterLogs is pure; it never mutates the cache slot.
func FilterLogs(logs []model.LogEntry, f LogFilters) []model.LogEntry {
	out := make([]model.LogEntry, 0, len(logs))
	for _, l := range logs {
		if f.Priority != "" && l.Priority != f.Priority {
			continue
		}
		if f.Operator != "" && !strings.Contains(strings.ToLower(l.Operator), strings.ToLower(f.Operator)) {
			continue
		}
		if !f.Start.IsZero() && l.Timestamp.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && l.Timestamp.After(f.End) {
			continue
		}
		out = append(out, l)
	}
	return out
}
