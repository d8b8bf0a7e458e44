package state

import (
	"sge-console/core/model"
	"sge-console/core/rbac"
	"sge-console/core/view"
)

// Action is a discrete state transition request. The set is closed: only
// types in this file reduce.
type Action interface{ isAction() }

type LoginSucceeded struct{ Identity rbac.Identity }

type SessionRestored struct{ Identity rbac.Identity }

type LoggedOut struct{}

// Navigated asks for a view change. EventID is only meaningful for the
// edit-event view.
type Navigated struct {
	Target  view.View
	EventID string
}

// MutationApplied fires after the backend confirms a create/update/delete,
// moving the console to the resource's listing view.
type MutationApplied struct{ Resource view.Resource }

type EventsLoaded struct{ Events []model.Event }
type LogsLoaded struct{ Logs []model.LogEntry }
type InventoryLoaded struct{ Items []model.InventoryItem }
type UsersLoaded struct{ Users []model.User }
type EventTypesLoaded struct{ Types []model.EventType }
type InventoryCategoriesLoaded struct{ Categories []model.InventoryCategory }
type StatsLoaded struct{ Stats model.DashboardStats }
type AlertsLoaded struct{ Alerts model.InventoryAlerts }
type MapEventsLoaded struct{ Map model.MapEvents }
type PermissionsLoaded struct{ Catalog model.PermissionCatalog }
type ReportsLoaded struct{ Catalog model.ReportCatalog }
type AdminStatsLoaded struct{ Stats model.AdminStats }

type NoticePosted struct {
	Kind NoticeKind
	Text string
	Seq  uint64
}

// NoticeCleared removes the notice with the matching sequence; a newer
// notice survives a stale clear.
type NoticeCleared struct{ Seq uint64 }

func (LoginSucceeded) isAction()            {}
func (SessionRestored) isAction()           {}
func (LoggedOut) isAction()                 {}
func (Navigated) isAction()                 {}
func (MutationApplied) isAction()           {}
func (EventsLoaded) isAction()              {}
func (LogsLoaded) isAction()                {}
func (InventoryLoaded) isAction()           {}
func (UsersLoaded) isAction()               {}
func (EventTypesLoaded) isAction()          {}
func (InventoryCategoriesLoaded) isAction() {}
func (StatsLoaded) isAction()               {}
func (AlertsLoaded) isAction()              {}
func (MapEventsLoaded) isAction()           {}
func (PermissionsLoaded) isAction()         {}
func (ReportsLoaded) isAction()             {}
func (AdminStatsLoaded) isAction()          {}
func (NoticePosted) isAction()              {}
func (NoticeCleared) isAction()             {}
