// Package view holds the console's screen enumeration and the role
// allow-list consulted both when offering navigation and when guarding a
// transition, so the two can never drift apart.
package view

import "sge-console/core/rbac"

type View string

const (
	Login           View = "login"
	Dashboard       View = "dashboard"
	Events          View = "events"
	CreateEvent     View = "create-event"
	EditEvent       View = "edit-event"
	Map             View = "map"
	EventTypes      View = "event-types"
	Logs            View = "logs"
	CreateLog       View = "create-log"
	Inventory       View = "inventory"
	Reports         View = "reports"
	Admin           View = "admin"
)

// allowedRoles is the single source of truth for view access. A nil entry
// means any authenticated identity may enter. Login is the only view open
// without an identity.
var allowedRoles = map[View][]string{
	Login:       nil,
	Dashboard:   nil,
	Events:      nil,
	Map:         nil,
	CreateEvent: {"admin", "coordinator", "operator"},
	EditEvent:   {"admin", "coordinator", "operator"},
	EventTypes:  {"admin", "coordinator"},
	Logs:        {"admin", "coordinator", "operator"},
	CreateLog:   {"admin", "coordinator", "operator"},
	Inventory:   {"admin", "coordinator", "warehouse"},
	Reports:     {"admin", "coordinator"},
	Admin:       {"admin"},
}

func All() []View {
	return []View{
		Dashboard, Events, CreateEvent, EditEvent, Map, EventTypes,
		Logs, CreateLog, Inventory, Reports, Admin,
	}
}

func IsKnown(v View) bool {
	if v == Login {
		return true
	}
	_, ok := allowedRoles[v]
	return ok
}

// CanEnter is a pure predicate over the static table.
func CanEnter(v View, identity *rbac.Identity) bool {
	if identity == nil {
		return v == Login
	}
	allow, ok := allowedRoles[v]
	if !ok {
		return false
	}
	if allow == nil {
		return true
	}
	for _, role := range allow {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// Navigable lists the views the identity may enter, in menu order.
func Navigable(identity *rbac.Identity) []View {
	if identity == nil {
		return []View{Login}
	}
	out := make([]View, 0, len(allowedRoles))
	for _, v := range All() {
		if v == EditEvent {
			continue // reached by selecting an event, not from the menu
		}
		if CanEnter(v, identity) {
			out = append(out, v)
		}
	}
	return out
}

// Decide resolves a navigation request. Forbidden targets keep the current
// view; edit-event without its target cached falls back to the events
// listing.
func Decide(current, target View, identity *rbac.Identity, editTargetCached bool) View {
	if !IsKnown(target) || !CanEnter(target, identity) {
		return current
	}
	if target == EditEvent && !editTargetCached {
		return Events
	}
	return target
}

// Resource names the backend collections a gateway manages.
type Resource string

const (
	ResourceEvents              Resource = "events"
	ResourceLogs                Resource = "logs"
	ResourceInventory           Resource = "inventory"
	ResourceUsers               Resource = "users"
	ResourceEventTypes          Resource = "event-types"
	ResourceInventoryCategories Resource = "inventory-categories"
	ResourcePermissions         Resource = "permissions"
	ResourceReports             Resource = "reports"
	ResourceDatabase            Resource = "database"
	ResourceDashboard           Resource = "dashboard"
)

// ListingView is the view a successful mutation of the resource lands on.
func ListingView(r Resource) View {
	switch r {
	case ResourceEvents:
		return Events
	case ResourceLogs:
		return Logs
	case ResourceInventory:
		return Inventory
	case ResourceEventTypes:
		return EventTypes
	case ResourceInventoryCategories:
		return Inventory
	case ResourceUsers, ResourcePermissions, ResourceDatabase:
		return Admin
	case ResourceReports:
		return Reports
	default:
		return Dashboard
	}
}
