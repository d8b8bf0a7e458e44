package view

import (
	"testing"

	"sge-console/core/rbac"
)

func ident(role string) *rbac.Identity {
	return &rbac.Identity{Username: "u", Role: role, Active: true}
}

func TestCanEnterUnauthenticated(t *testing.T) {
	for _, v := range All() {
		if CanEnter(v, nil) {
			t.Fatalf("%s must not be reachable without identity", v)
		}
	}
	if !CanEnter(Login, nil) {
		t.Fatalf("login must be reachable without identity")
	}
}

func TestCanEnterByRole(t *testing.T) {
	cases := []struct {
		view  View
		role  string
		allow bool
	}{
		{Dashboard, "viewer", true},
		{Events, "viewer", true},
		{Map, "warehouse", true},
		{CreateEvent, "viewer", false},
		{CreateEvent, "operator", true},
		{CreateEvent, "warehouse", false},
		{Logs, "viewer", false},
		{Logs, "coordinator", true},
		{CreateLog, "warehouse", false},
		{Inventory, "warehouse", true},
		{Inventory, "operator", false},
		{Inventory, "viewer", false},
		{EventTypes, "coordinator", true},
		{EventTypes, "operator", false},
		{Reports, "admin", true},
		{Reports, "operator", false},
		{Admin, "admin", true},
		{Admin, "coordinator", false},
	}
	for _, c := range cases {
		if got := CanEnter(c.view, ident(c.role)); got != c.allow {
			t.Fatalf("CanEnter(%s, %s) = %v, want %v", c.view, c.role, got, c.allow)
		}
	}
}

func TestNavigableSkipsEditAndForbidden(t *testing.T) {
	for _, v := range Navigable(ident("admin")) {
		if v == EditEvent {
			t.Fatalf("edit-event must not appear in the menu")
		}
	}
	for _, v := range Navigable(ident("viewer")) {
		if v == CreateEvent || v == Logs || v == Inventory || v == Admin {
			t.Fatalf("viewer menu leaked %s", v)
		}
	}
	got := Navigable(nil)
	if len(got) != 1 || got[0] != Login {
		t.Fatalf("unauthenticated menu should be login only, got %v", got)
	}
}

func TestDecide(t *testing.T) {
	op := ident("operator")
	if got := Decide(Dashboard, Admin, op, false); got != Dashboard {
		t.Fatalf("forbidden target must keep current view, got %s", got)
	}
	if got := Decide(Dashboard, View("ghost"), op, false); got != Dashboard {
		t.Fatalf("unknown target must keep current view, got %s", got)
	}
	if got := Decide(Events, EditEvent, op, false); got != Events {
		t.Fatalf("edit without cached target must fall back to events, got %s", got)
	}
	if got := Decide(Events, EditEvent, op, true); got != EditEvent {
		t.Fatalf("edit with cached target should enter, got %s", got)
	}
	if got := Decide(Dashboard, Inventory, ident("warehouse"), false); got != Inventory {
		t.Fatalf("warehouse should reach inventory, got %s", got)
	}
}

func TestListingView(t *testing.T) {
	cases := map[Resource]View{
		ResourceEvents:              Events,
		ResourceLogs:                Logs,
		ResourceInventory:           Inventory,
		ResourceEventTypes:          EventTypes,
		ResourceInventoryCategories: Inventory,
		ResourceUsers:               Admin,
		ResourcePermissions:         Admin,
		ResourceDatabase:            Admin,
		ResourceReports:             Reports,
		ResourceDashboard:           Dashboard,
	}
	for r, want := range cases {
		if got := ListingView(r); got != want {
			t.Fatalf("ListingView(%s) = %s, want %s", r, got, want)
		}
	}
}
