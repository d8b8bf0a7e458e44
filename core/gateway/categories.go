package gateway

import (
	"context"
	"fmt"

	"sge-console/core/model"
	"sge-console/core/state"
	"sge-console/core/view"
)

// EventTypesGateway manages the dynamic event type catalog. The backend
// lowercases names and refuses deleting default types or types in use.
type EventTypesGateway struct {
	d *deps
}

type EventTypeDraft struct {
	Name        string
	Description string
}

type eventTypePayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (g *EventTypesGateway) List(ctx context.Context) error {
	var types []model.EventType
	if err := g.d.client.GetJSON(ctx, "/api/event-types", nil, &types); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.EventTypesLoaded{Types: types})
	return nil
}

func (g *EventTypesGateway) Create(ctx context.Context, draft EventTypeDraft) error {
	if !g.d.guard.begin("create-event-type") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("create-event-type")

	if err := requireFields(map[string]string{"name": draft.Name}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	payload := eventTypePayload{Name: draft.Name, Description: optText(draft.Description)}
	var resp struct {
		Message string `json:"message"`
	}
	if err := g.d.client.PostJSON(ctx, "/api/event-types", payload, &resp); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Tipo di evento creato con successo")
	g.d.quietFail(g.List(ctx), "event types reload")
	g.d.afterMutation(ctx, view.ResourceEventTypes, nil)
	return nil
}

func (g *EventTypesGateway) Update(ctx context.Context, id string, draft EventTypeDraft) error {
	if !g.d.guard.begin("edit-event-type") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("edit-event-type")

	if err := requireFields(map[string]string{"name": draft.Name}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	payload := eventTypePayload{Name: draft.Name, Description: optText(draft.Description)}
	if err := g.d.client.PutJSON(ctx, "/api/event-types/"+id, payload, nil); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Tipo di evento aggiornato con successo")
	g.d.quietFail(g.List(ctx), "event types reload")
	g.d.afterMutation(ctx, view.ResourceEventTypes, nil)
	return nil
}

func (g *EventTypesGateway) Delete(ctx context.Context, id, name string) error {
	if !g.d.confirm.Confirm(fmt.Sprintf("Sei sicuro di voler eliminare il tipo di evento %q?", name)) {
		return nil
	}
	if err := g.d.client.Delete(ctx, "/api/event-types/"+id); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Tipo di evento eliminato con successo")
	g.d.quietFail(g.List(ctx), "event types reload")
	g.d.afterMutation(ctx, view.ResourceEventTypes, nil)
	return nil
}

// InventoryCategoriesGateway mirrors EventTypesGateway for the inventory
// category catalog, which the backend restricts to administrators.
type InventoryCategoriesGateway struct {
	d *deps
}

type CategoryDraft struct {
	Name        string
	Description string
	Icon        string
}

type categoryPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

func (g *InventoryCategoriesGateway) List(ctx context.Context) error {
	var categories []model.InventoryCategory
	if err := g.d.client.GetJSON(ctx, "/api/inventory-categories", nil, &categories); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.InventoryCategoriesLoaded{Categories: categories})
	return nil
}

func (g *InventoryCategoriesGateway) Create(ctx context.Context, draft CategoryDraft) error {
	if !g.d.guard.begin("create-category") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("create-category")

	if err := requireFields(map[string]string{"name": draft.Name}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	payload := categoryPayload{
		Name:        draft.Name,
		Description: optText(draft.Description),
		Icon:        optText(draft.Icon),
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := g.d.client.PostJSON(ctx, "/api/inventory-categories", payload, &resp); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Categoria creata con successo")
	g.d.quietFail(g.List(ctx), "categories reload")
	g.d.afterMutation(ctx, view.ResourceInventoryCategories, nil)
	return nil
}

func (g *InventoryCategoriesGateway) Update(ctx context.Context, id string, draft CategoryDraft) error {
	if !g.d.guard.begin("edit-category") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("edit-category")

	if err := requireFields(map[string]string{"name": draft.Name}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	payload := categoryPayload{
		Name:        draft.Name,
		Description: optText(draft.Description),
		Icon:        optText(draft.Icon),
	}
	if err := g.d.client.PutJSON(ctx, "/api/inventory-categories/"+id, payload, nil); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Categoria aggiornata con successo")
	g.d.quietFail(g.List(ctx), "categories reload")
	g.d.afterMutation(ctx, view.ResourceInventoryCategories, nil)
	return nil
}

func (g *InventoryCategoriesGateway) Delete(ctx context.Context, id, name string) error {
	if !g.d.confirm.Confirm(fmt.Sprintf("Sei sicuro di voler eliminare la categoria %q?", name)) {
		return nil
	}
	if err := g.d.client.Delete(ctx, "/api/inventory-categories/"+id); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Categoria eliminata con successo")
	g.d.quietFail(g.List(ctx), "categories reload")
	g.d.afterMutation(ctx, view.ResourceInventoryCategories, nil)
	return nil
}
