package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sge-console/core/model"
	"sge-console/core/state"
	"sge-console/core/view"
)

type InventoryGateway struct {
	d *deps
}

type InventoryFilters struct {
	Category     string
	Location     string
	LowStock     bool
	ExpiringSoon bool
}

func (f InventoryFilters) values() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.LowStock {
		q.Set("low_stock", "true")
	}
	if f.ExpiringSoon {
		q.Set("expiring_soon", "true")
	}
	return q
}

// ItemDraft is the inventory form: quantities and cost arrive as text.
type ItemDraft struct {
	Name        string
	Category    string
	Quantity    string
	Unit        string
	Location    string
	MinQuantity string
	MaxQuantity string
	ExpiryDate  string
	Supplier    string
	CostPerUnit string
	Notes       string
}

type itemPayload struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Quantity    int         `json:"quantity"`
	Unit        string      `json:"unit"`
	Location    string      `json:"location"`
	MinQuantity int         `json:"min_quantity"`
	MaxQuantity *int        `json:"max_quantity"`
	ExpiryDate  *time.Time  `json:"expiry_date"`
	Supplier    *string     `json:"supplier"`
	CostPerUnit *float64    `json:"cost_per_unit"`
	Notes       *string     `json:"notes"`
}

func (g *InventoryGateway) buildPayload(draft ItemDraft) (*itemPayload, error) {
	if err := requireFields(map[string]string{
		"name":     draft.Name,
		"category": draft.Category,
		"quantity": draft.Quantity,
		"unit":     draft.Unit,
		"location": draft.Location,
	}); err != nil {
		return nil, err
	}
	qty, err := intField("quantity", draft.Quantity)
	if err != nil {
		return nil, err
	}
	minQty, err := intField("min_quantity", draft.MinQuantity)
	if err != nil {
		return nil, err
	}
	maxQty, err := intField("max_quantity", draft.MaxQuantity)
	if err != nil {
		return nil, err
	}
	cost, err := floatField("cost_per_unit", draft.CostPerUnit)
	if err != nil {
		return nil, err
	}
	expiry, err := dateField("expiry_date", draft.ExpiryDate)
	if err != nil {
		return nil, err
	}
	p := &itemPayload{
		Name:        draft.Name,
		Category:    draft.Category,
		Quantity:    *qty,
		Unit:        draft.Unit,
		Location:    draft.Location,
		MaxQuantity: maxQty,
		Supplier:    optText(draft.Supplier),
		CostPerUnit: cost,
		Notes:       optText(draft.Notes),
	}
	if minQty != nil {
		p.MinQuantity = *minQty
	}
	p.ExpiryDate = expiry
	return p, nil
}

func (g *InventoryGateway) List(ctx context.Context, f InventoryFilters) error {
	var items []model.InventoryItem
	if err := g.d.client.GetJSON(ctx, "/api/inventory", f.values(), &items); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.InventoryLoaded{Items: items})
	return nil
}

func (g *InventoryGateway) Create(ctx context.Context, draft ItemDraft) error {
	if !g.d.guard.begin("create-item") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("create-item")

	payload, err := g.buildPayload(draft)
	if err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	var created model.InventoryItem
	if err := g.d.client.PostJSON(ctx, "/api/inventory", payload, &created); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Articolo creato con successo!")
	g.d.quietFail(g.List(ctx, InventoryFilters{}), "inventory reload")
	g.d.afterMutation(ctx, view.ResourceInventory, g.d.refreshStats)
	return nil
}

func (g *InventoryGateway) Update(ctx context.Context, id string, draft ItemDraft) error {
	if !g.d.guard.begin("edit-item") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("edit-item")

	payload, err := g.buildPayload(draft)
	if err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	var updated model.InventoryItem
	if err := g.d.client.PutJSON(ctx, "/api/inventory/"+url.PathEscape(id), payload, &updated); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Articolo aggiornato con successo!")
	g.d.quietFail(g.List(ctx, InventoryFilters{}), "inventory reload")
	g.d.afterMutation(ctx, view.ResourceInventory, g.d.refreshStats)
	return nil
}

func (g *InventoryGateway) Delete(ctx context.Context, id, name string) error {
	if !g.d.confirm.Confirm(fmt.Sprintf("Sei sicuro di voler eliminare %q?", name)) {
		return nil
	}
	if err := g.d.client.Delete(ctx, "/api/inventory/"+url.PathEscape(id)); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Articolo eliminato con successo!")
	g.d.quietFail(g.List(ctx, InventoryFilters{}), "inventory reload")
	g.d.afterMutation(ctx, view.ResourceInventory, g.d.refreshStats)
	return nil
}

func (g *InventoryGateway) Alerts(ctx context.Context) error {
	var alerts model.InventoryAlerts
	if err := g.d.client.GetJSON(ctx, "/api/inventory/alerts", nil, &alerts); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.AlertsLoaded{Alerts: alerts})
	return nil
}

type quantityUpdate struct {
	QuantityChange int     `json:"quantity_change"`
	Reason         string  `json:"reason"`
	Location       *string `json:"location,omitempty"`
}

type quantityResult struct {
	Message     string `json:"message"`
	NewQuantity int    `json:"new_quantity"`
}

// AdjustQuantity applies a signed stock change with a mandatory reason;
// the backend writes the matching operational log entry itself.
func (g *InventoryGateway) AdjustQuantity(ctx context.Context, id string, delta int, reason, location string) error {
	if !g.d.guard.begin("adjust-" + id) {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("adjust-" + id)

	if err := requireFields(map[string]string{"reason": reason}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	payload := quantityUpdate{QuantityChange: delta, Reason: reason, Location: optText(location)}
	var res quantityResult
	if err := g.d.client.PostJSON(ctx, "/api/inventory/"+url.PathEscape(id)+"/update-quantity", payload, &res); err != nil {
		return g.d.fail(ctx, err)
	}
	msg := res.Message
	if msg == "" {
		msg = "Quantità aggiornata con successo (" + strconv.Itoa(res.NewQuantity) + ")"
	}
	g.d.store.PostSuccess(msg)
	g.d.quietFail(g.List(ctx, InventoryFilters{}), "inventory reload")
	g.d.afterMutation(ctx, view.ResourceInventory, g.d.refreshStats)
	return nil
}
