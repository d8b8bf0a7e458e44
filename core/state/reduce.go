package state

import "sge-console/core/view"

// Reduce is pure: no I/O, no clock, no randomness. Unknown or forbidden
// requests leave the state unchanged rather than failing.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case LoginSucceeded:
		id := act.Identity
		s.Identity = &id
		s.ActiveView = view.Dashboard
		s.EditingEventID = ""
	case SessionRestored:
		id := act.Identity
		s.Identity = &id
		s.ActiveView = view.Dashboard
		s.EditingEventID = ""
	case LoggedOut:
		s = Initial()
	case Navigated:
		_, cached := s.EventByID(act.EventID)
		next := view.Decide(s.ActiveView, act.Target, s.Identity, cached)
		s.ActiveView = next
		if next == view.EditEvent {
			s.EditingEventID = act.EventID
		} else {
			s.EditingEventID = ""
		}
	case MutationApplied:
		if s.Identity == nil {
			break
		}
		listing := view.ListingView(act.Resource)
		if view.CanEnter(listing, s.Identity) {
			s.ActiveView = listing
		}
		if act.Resource == view.ResourceEvents {
			s.EditingEventID = ""
		}
	case EventsLoaded:
		s.Events = act.Events
	case LogsLoaded:
		s.Logs = act.Logs
	case InventoryLoaded:
		s.Inventory = act.Items
	case UsersLoaded:
		s.Users = act.Users
	case EventTypesLoaded:
		s.EventTypes = act.Types
	case InventoryCategoriesLoaded:
		s.InventoryCategories = act.Categories
	case StatsLoaded:
		st := act.Stats
		s.Stats = &st
	case AlertsLoaded:
		al := act.Alerts
		s.Alerts = &al
	case MapEventsLoaded:
		m := act.Map
		s.MapEvents = &m
	case PermissionsLoaded:
		c := act.Catalog
		s.Permissions = &c
	case ReportsLoaded:
		c := act.Catalog
		s.Reports = &c
	case AdminStatsLoaded:
		st := act.Stats
		s.AdminStats = &st
	case NoticePosted:
		s.Notice = &Notice{Kind: act.Kind, Text: act.Text, Seq: act.Seq}
	case NoticeCleared:
		if s.Notice != nil && s.Notice.Seq == act.Seq {
			s.Notice = nil
		}
	}
	return s
}
