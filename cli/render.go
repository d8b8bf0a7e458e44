package cli

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"sge-console/core/state"
	"sge-console/core/view"
)

// printNotice renders a store notice exactly once. Loads fan out on
// goroutines, so subscribers can fire concurrently while a notice is up;
// the sequence check keeps repeats and races out of the terminal.
func (a *App) printNotice(n *state.Notice) {
	a.noticeMu.Lock()
	if n.Seq <= a.lastNoticeSeq {
		a.noticeMu.Unlock()
		return
	}
	a.lastNoticeSeq = n.Seq
	a.noticeMu.Unlock()

	switch n.Kind {
	case state.NoticeError:
		fmt.Fprintf(a.out, "[ERRORE] %s\n", n.Text)
	case state.NoticeSuccess:
		fmt.Fprintf(a.out, "[OK] %s\n", n.Text)
	}
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func (a *App) printCurrent() {
	st := a.store.Snapshot()
	switch st.ActiveView {
	case view.Dashboard:
		a.printStats()
	case view.Events:
		for _, e := range st.Events {
			fmt.Fprintf(a.out, "%s\t[%s/%s]\t%s\t%s\n", e.ID, e.Severity, e.Status, e.EventType, e.Title)
		}
		fmt.Fprintf(a.out, "%d eventi\n", len(st.Events))
	case view.Logs:
		for _, l := range st.Logs {
			fmt.Fprintf(a.out, "%s\t[%s]\t%s\t%s\n", l.Timestamp.Format(time.RFC3339), l.Priority, l.Operator, l.Action)
		}
		fmt.Fprintf(a.out, "%d log\n", len(st.Logs))
	case view.Inventory:
		expiryHorizon := time.Now().AddDate(0, 0, 30)
		for _, it := range st.Inventory {
			marker := " "
			if it.ExpiringBy(expiryHorizon) {
				marker = "~"
			}
			if it.LowStock() {
				marker = "!"
			}
			fmt.Fprintf(a.out, "%s%s\t%s\t%d %s\t%s\t%s\n", marker, it.ID, it.Name, it.Quantity, it.Unit, it.Category, it.Location)
		}
		fmt.Fprintf(a.out, "%d articoli\n", len(st.Inventory))
	case view.EventTypes:
		for _, t := range st.EventTypes {
			def := ""
			if t.IsDefault {
				def = " (predefinito)"
			}
			fmt.Fprintf(a.out, "%s\t%s%s\n", t.ID, t.Name, def)
		}
	case view.Reports:
		if st.Reports == nil {
			return
		}
		names := make([]string, 0, len(st.Reports.Templates))
		for name := range st.Reports.Templates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			tpl := st.Reports.Templates[name]
			fmt.Fprintf(a.out, "%s\t%s\t(%v)\n", name, tpl.Name, tpl.Formats)
		}
	case view.Admin:
		for _, u := range st.Users {
			active := "attivo"
			if !u.Active {
				active = "disattivo"
			}
			fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", u.Username, u.FullName, u.Role, active)
		}
	default:
		fmt.Fprintln(a.out, "nessun elenco in questa vista")
	}
}

func (a *App) printStats() {
	st := a.store.Snapshot()
	if st.Stats == nil {
		fmt.Fprintln(a.out, "statistiche non caricate")
		return
	}
	s := st.Stats
	fmt.Fprintf(a.out, "eventi totali: %d\taperti: %d\tcritici: %d\n", s.TotalEvents, s.OpenEvents, s.CriticalEvents)
	fmt.Fprintf(a.out, "articoli inventario: %d\tlog: %d\n", s.InventoryItems, s.TotalLogs)
	fmt.Fprintf(a.out, "allarmi inventario: %d (scorte basse %d, in scadenza %d)\n",
		s.InventoryAlerts.Total, s.InventoryAlerts.LowStock, s.InventoryAlerts.ExpiringSoon)
}

func (a *App) printAlerts() {
	st := a.store.Snapshot()
	if st.Alerts == nil {
		return
	}
	for _, it := range st.Alerts.LowStockItems {
		fmt.Fprintf(a.out, "scorte basse\t%s\t%d/%d %s\n", it.Name, it.Quantity, it.MinQuantity, it.Unit)
	}
	for _, it := range st.Alerts.ExpiringItems {
		exp := ""
		if it.ExpiryDate != nil {
			exp = it.ExpiryDate.Format("2006-01-02")
		}
		fmt.Fprintf(a.out, "in scadenza\t%s\t%s\n", it.Name, exp)
	}
	fmt.Fprintf(a.out, "%d allarmi\n", st.Alerts.TotalAlerts)
}

func (a *App) printMap() {
	st := a.store.Snapshot()
	if st.MapEvents == nil {
		return
	}
	for _, e := range st.MapEvents.Events {
		fmt.Fprintf(a.out, "%s\t(%.5f, %.5f)\t[%s]\t%s\n", e.ID, e.Latitude, e.Longitude, e.Severity, e.Title)
	}
	fmt.Fprintf(a.out, "%d eventi georeferenziati\n", st.MapEvents.Total)
}

func (a *App) printAdminStats() {
	st := a.store.Snapshot()
	if st.AdminStats == nil {
		return
	}
	s := st.AdminStats
	fmt.Fprintf(a.out, "utenti: %d (attivi %d, disattivi %d)\n", s.Users.Total, s.Users.Active, s.Users.Inactive)
	roles := make([]string, 0, len(s.Users.ByRole))
	for r := range s.Users.ByRole {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	for _, r := range roles {
		fmt.Fprintf(a.out, "  %s: %d\n", r, s.Users.ByRole[r])
	}
	fmt.Fprintf(a.out, "sistema: %d eventi, %d log, %d articoli\n",
		s.System.TotalEvents, s.System.TotalLogs, s.System.TotalInventory)
	fmt.Fprintf(a.out, "ultimi 7 giorni: %d eventi, %d log\n",
		s.RecentActivity.EventsLast7Days, s.RecentActivity.LogsLast7Days)
}

func (a *App) printPermissions() {
	st := a.store.Snapshot()
	if st.Permissions == nil {
		fmt.Fprintln(a.out, "catalogo permessi non caricato (reload nella vista admin)")
		return
	}
	roles := make([]string, 0, len(st.Permissions.CurrentPermissions))
	for r := range st.Permissions.CurrentPermissions {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	for _, r := range roles {
		perms := append([]string(nil), st.Permissions.CurrentPermissions[r]...)
		sort.Strings(perms)
		fmt.Fprintf(a.out, "%s (%s):\n", r, st.Permissions.Roles[r])
		for _, p := range perms {
			fmt.Fprintf(a.out, "  %s\n", p)
		}
	}
}
