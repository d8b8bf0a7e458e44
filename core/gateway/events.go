package gateway

import (
	"context"
	"fmt"
	"net/url"

	"sge-console/core/model"
	"sge-console/core/state"
	"sge-console/core/view"
)

type EventsGateway struct {
	d *deps
}

// EventDraft carries form text as typed by the operator; numeric fields
// stay strings until payload building.
type EventDraft struct {
	Title           string
	Description     string
	EventType       string
	Severity        string
	Latitude        string
	Longitude       string
	Address         string
	Notes           string
	ResourcesNeeded []string
}

type EventFilters struct {
	Status    string
	Severity  string
	EventType string
}

func (f EventFilters) values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Severity != "" {
		q.Set("severity", f.Severity)
	}
	if f.EventType != "" {
		q.Set("event_type", f.EventType)
	}
	return q
}

type eventPayload struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	EventType       string   `json:"event_type"`
	Severity        string   `json:"severity"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Address         *string  `json:"address"`
	Notes           *string  `json:"notes"`
	ResourcesNeeded []string `json:"resources_needed"`
	Status          string   `json:"status,omitempty"`
	CreatedBy       string   `json:"created_by,omitempty"`
}

func (g *EventsGateway) buildPayload(draft EventDraft) (*eventPayload, error) {
	if err := requireFields(map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"event_type":  draft.EventType,
	}); err != nil {
		return nil, err
	}
	lat, err := floatField("latitude", draft.Latitude)
	if err != nil {
		return nil, err
	}
	lng, err := floatField("longitude", draft.Longitude)
	if err != nil {
		return nil, err
	}
	if err := enumField("severity", draft.Severity, model.KnownSeverities()); err != nil {
		return nil, err
	}
	severity := draft.Severity
	if severity == "" {
		severity = model.SeverityMedia
	}
	resources := draft.ResourcesNeeded
	if resources == nil {
		resources = []string{}
	}
	return &eventPayload{
		Title:           draft.Title,
		Description:     draft.Description,
		EventType:       draft.EventType,
		Severity:        severity,
		Latitude:        lat,
		Longitude:       lng,
		Address:         optText(draft.Address),
		Notes:           optText(draft.Notes),
		ResourcesNeeded: resources,
	}, nil
}

// List replaces the whole events cache with the filtered backend result.
func (g *EventsGateway) List(ctx context.Context, f EventFilters) error {
	var events []model.Event
	if err := g.d.client.GetJSON(ctx, "/api/events", f.values(), &events); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.EventsLoaded{Events: events})
	return nil
}

func (g *EventsGateway) Get(ctx context.Context, id string) (model.Event, error) {
	var ev model.Event
	if err := g.d.client.GetJSON(ctx, "/api/events/"+url.PathEscape(id), nil, &ev); err != nil {
		return model.Event{}, g.d.fail(ctx, err)
	}
	return ev, nil
}

func (g *EventsGateway) Create(ctx context.Context, draft EventDraft) error {
	if !g.d.guard.begin("create-event") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("create-event")

	payload, err := g.buildPayload(draft)
	if err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	payload.Status = model.StatusAperto
	if id := g.d.identity(); id != nil {
		payload.CreatedBy = id.Username
	}
	var created model.Event
	if err := g.d.client.PostJSON(ctx, "/api/events", payload, &created); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Evento creato con successo!")
	g.d.quietFail(g.List(ctx, EventFilters{}), "events reload")
	g.d.afterMutation(ctx, view.ResourceEvents, g.d.refreshStats)
	return nil
}

// EventUpdate is a partial update; nil fields are omitted, blank numeric
// text still serializes as null.
type EventUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	EventType   *string  `json:"event_type,omitempty"`
	Severity    *string  `json:"severity,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

func (g *EventsGateway) Update(ctx context.Context, id string, update EventUpdate) error {
	if !g.d.guard.begin("edit-event") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("edit-event")

	if update.Severity != nil {
		if err := enumField("severity", *update.Severity, model.KnownSeverities()); err != nil {
			g.d.store.PostError(err.Error())
			return err
		}
	}
	if update.Status != nil {
		if err := enumField("status", *update.Status, model.KnownStatuses()); err != nil {
			g.d.store.PostError(err.Error())
			return err
		}
	}

	var updated model.Event
	if err := g.d.client.PutJSON(ctx, "/api/events/"+url.PathEscape(id), update, &updated); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Evento aggiornato con successo!")
	g.d.quietFail(g.List(ctx, EventFilters{}), "events reload")
	g.d.afterMutation(ctx, view.ResourceEvents, g.d.refreshStats)
	return nil
}

func (g *EventsGateway) Delete(ctx context.Context, id, title string) error {
	if !g.d.confirm.Confirm(fmt.Sprintf("Sei sicuro di voler eliminare %q?", title)) {
		return nil
	}
	if err := g.d.client.Delete(ctx, "/api/events/"+url.PathEscape(id)); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Evento eliminato con successo!")
	g.d.quietFail(g.List(ctx, EventFilters{}), "events reload")
	g.d.afterMutation(ctx, view.ResourceEvents, g.d.refreshStats)
	return nil
}

// MapEvents loads the geolocated subset for the map view; the default
// backend filter keeps only active events.
func (g *EventsGateway) MapEvents(ctx context.Context, f EventFilters) error {
	var m model.MapEvents
	if err := g.d.client.GetJSON(ctx, "/api/events/map", f.values(), &m); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.MapEventsLoaded{Map: m})
	return nil
}
