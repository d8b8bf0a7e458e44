// Package state is the console's application state: one State value,
// advanced only by pure reductions over discrete actions. Holding it
// behind a reducer makes every transition testable without a rendered
// surface.
package state

import (
	"sge-console/core/model"
	"sge-console/core/rbac"
	"sge-console/core/view"
)

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

type Notice struct {
	Kind NoticeKind
	Text string
	Seq  uint64
}

// State is the whole of the console's mutable world. Every slice and
// pointer is a cache of backend truth, safe to discard and re-fetch.
type State struct {
	Identity       *rbac.Identity
	ActiveView     view.View
	EditingEventID string

	Events              []model.Event
	Logs                []model.LogEntry
	Inventory           []model.InventoryItem
	Users               []model.User
	EventTypes          []model.EventType
	InventoryCategories []model.InventoryCategory
	Stats               *model.DashboardStats
	Alerts              *model.InventoryAlerts
	MapEvents           *model.MapEvents
	Permissions         *model.PermissionCatalog
	Reports             *model.ReportCatalog
	AdminStats          *model.AdminStats

	Notice *Notice
}

func Initial() State {
	return State{ActiveView: view.Login}
}

// EventByID looks up the local events cache.
func (s State) EventByID(id string) (model.Event, bool) {
	for _, e := range s.Events {
		if e.ID == id {
			return e, true
		}
	}
	return model.Event{}, false
}

func (s State) ItemByID(id string) (model.InventoryItem, bool) {
	for _, it := range s.Inventory {
		if it.ID == id {
			return it, true
		}
	}
	return model.InventoryItem{}, false
}
