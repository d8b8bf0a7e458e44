// Package gateway holds one request/response wrapper per backend
// resource. Each gateway validates input, issues the call, funnels
// failures into a transient notice, and on success refreshes its cache
// slot and moves the console to the resource's listing view.
package gateway

import (
	"context"

	"sge-console/core/rbac"
	"sge-console/core/restapi"
	"sge-console/core/session"
	"sge-console/core/state"
	"sge-console/core/utils"
	"sge-console/core/view"
)

// Confirmer gates destructive requests. A declined confirmation is a
// silent no-op, not an error.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

type deps struct {
	client  *restapi.Client
	store   *state.Store
	session *session.Manager
	policy  *rbac.Policy
	logger  *utils.Logger
	confirm Confirmer
	guard   *FormGuard
}

// Bundle wires every gateway over one shared client/state pair.
type Bundle struct {
	Events      *EventsGateway
	Logs        *LogsGateway
	Inventory   *InventoryGateway
	EventTypes  *EventTypesGateway
	Categories  *InventoryCategoriesGateway
	Users       *UsersGateway
	Permissions *PermissionsGateway
	Reports     *ReportsGateway
	Database    *DatabaseGateway
	Dashboard   *DashboardGateway
}

func NewBundle(client *restapi.Client, store *state.Store, mgr *session.Manager, policy *rbac.Policy, confirm Confirmer, logger *utils.Logger) *Bundle {
	d := &deps{
		client:  client,
		store:   store,
		session: mgr,
		policy:  policy,
		logger:  logger,
		confirm: confirm,
		guard:   NewFormGuard(),
	}
	b := &Bundle{
		Events:      &EventsGateway{d: d},
		Logs:        &LogsGateway{d: d},
		Inventory:   &InventoryGateway{d: d},
		EventTypes:  &EventTypesGateway{d: d},
		Categories:  &InventoryCategoriesGateway{d: d},
		Users:       &UsersGateway{d: d},
		Permissions: &PermissionsGateway{d: d},
		Reports:     &ReportsGateway{d: d},
		Database:    &DatabaseGateway{d: d},
		Dashboard:   &DashboardGateway{d: d},
	}
	b.Dashboard.bundle = b
	return b
}

// LoadDashboard is the post-login bulk load: stats, events and logs fan
// out concurrently, each landing in its own cache slot.
func (b *Bundle) LoadDashboard(ctx context.Context) {
	b.Dashboard.Load(ctx)
}

// fail converts a call failure into the one visible side effect it may
// have: a 401 tears the session down, anything else becomes a transient
// error notice. The error is still returned for callers that branch.
func (d *deps) fail(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if restapi.IsAuthError(err) {
		d.session.Invalidate(ctx)
		return err
	}
	d.store.PostError(err.Error())
	return err
}

// quietFail logs instead of posting; used by background fan-out loads.
func (d *deps) quietFail(err error, what string) {
	if err != nil && d.logger != nil {
		d.logger.Errorf("%s: %v", what, err)
	}
}

// afterMutation applies the shared success protocol: move to the listing
// view and, because the stats are derived server-side, refresh them when
// the dashboard was showing.
func (d *deps) afterMutation(ctx context.Context, r view.Resource, refreshStats func(context.Context) error) {
	onDashboard := d.store.ActiveView() == view.Dashboard
	d.store.Dispatch(state.MutationApplied{Resource: r})
	if onDashboard && refreshStats != nil {
		d.quietFail(refreshStats(ctx), "stats refresh")
	}
}

func (d *deps) identity() *rbac.Identity {
	return d.store.Identity()
}
