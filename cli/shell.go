package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sge-console/core/gateway"
	"sge-console/core/state"
	"sge-console/core/view"
)

// shell runs the interactive console. Every command goes through the
// same store and gateways the one-shot subcommands use; the shell only
// reads snapshots and prints.
func (a *App) shell(ctx context.Context) int {
	a.store.Subscribe(func(st state.State) {
		if st.Notice != nil {
			a.printNotice(st.Notice)
		}
	})

	if a.store.Identity() == nil {
		fmt.Fprintln(a.out, "Accesso richiesto: login <username> <password>")
	} else {
		a.bundle.LoadDashboard(ctx)
		a.restoreLastView(ctx)
	}

	for {
		fmt.Fprintf(a.out, "sge[%s]> ", a.store.ActiveView())
		line, err := a.in.ReadString('\n')
		if err != nil {
			a.saveLastView(ctx)
			return 0
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			a.saveLastView(ctx)
			return 0
		}
		a.dispatch(ctx, cmd, args)
	}
}

const lastViewPref = "last_view"

// restoreLastView reopens the view the operator left from. Role checks
// still apply: a stale preference for a now-forbidden view is ignored.
func (a *App) restoreLastView(ctx context.Context) {
	if a.prefs == nil {
		return
	}
	name, ok, err := a.prefs.Get(ctx, lastViewPref)
	if err != nil || !ok {
		return
	}
	v := view.View(name)
	if v == a.store.ActiveView() || !view.CanEnter(v, a.store.Identity()) {
		return
	}
	a.nav(ctx, v)
}

func (a *App) saveLastView(ctx context.Context) {
	if a.prefs == nil || a.store.Identity() == nil {
		return
	}
	if err := a.prefs.Set(ctx, lastViewPref, string(a.store.ActiveView())); err != nil {
		a.logger.Errorf("save last view: %v", err)
	}
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, "comandi: login, logout, views, nav <vista>, list, show <id>, filter, reload, new, edit <id>, del <id>, adjust <id>, alerts, map, report <tipo> [formato], cat <sub>, user <sub>, perm <sub>, db <sub>, stats, quit")
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "uso: login <username> <password>")
			return
		}
		_ = a.session.Login(ctx, args[0], args[1])
	case "logout":
		a.session.Logout(ctx)
	case "views":
		fmt.Fprintln(a.out, a.menu())
	case "nav":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "uso: nav <vista>")
			return
		}
		a.nav(ctx, view.View(args[0]))
	case "list":
		a.printCurrent()
	case "filter":
		a.filter(ctx)
	case "show":
		a.show(ctx, args)
	case "reload":
		a.reload(ctx)
	case "new":
		a.create(ctx)
	case "edit":
		a.edit(ctx, args)
	case "del":
		a.remove(ctx, args)
	case "adjust":
		a.adjust(ctx, args)
	case "alerts":
		_ = a.bundle.Inventory.Alerts(ctx)
		a.printAlerts()
	case "map":
		_ = a.bundle.Events.MapEvents(ctx, gateway.EventFilters{})
		a.printMap()
	case "report":
		a.report(ctx, args)
	case "cat":
		a.catCmd(ctx, args)
	case "user":
		a.userCmd(ctx, args)
	case "perm":
		a.permCmd(ctx, args)
	case "db":
		a.dbCmd(ctx, args)
	case "stats":
		if a.store.ActiveView() == view.Admin {
			_ = a.bundle.Users.AdminStats(ctx)
			a.printAdminStats()
			return
		}
		_ = a.bundle.Dashboard.Stats(ctx)
		a.printStats()
	default:
		fmt.Fprintf(a.out, "comando sconosciuto %q (help per l'elenco)\n", cmd)
	}
}

// nav moves view; entering a listing triggers its load so the screen is
// never stale on arrival.
func (a *App) nav(ctx context.Context, target view.View) {
	before := a.store.ActiveView()
	a.store.Navigate(target)
	after := a.store.ActiveView()
	if after == before && target != before {
		fmt.Fprintln(a.out, "vista non disponibile")
		return
	}
	switch after {
	case view.Dashboard:
		a.bundle.LoadDashboard(ctx)
	case view.Events, view.Map:
		_ = a.bundle.Events.List(ctx, gateway.EventFilters{})
	case view.Logs:
		_ = a.bundle.Logs.List(ctx)
	case view.Inventory:
		_ = a.bundle.Inventory.List(ctx, gateway.InventoryFilters{})
		_ = a.bundle.Categories.List(ctx)
	case view.EventTypes:
		_ = a.bundle.EventTypes.List(ctx)
	case view.Reports:
		_ = a.bundle.Reports.Templates(ctx)
	case view.Admin:
		_ = a.bundle.Users.List(ctx)
		_ = a.bundle.Permissions.Catalog(ctx)
	}
}

func (a *App) reload(ctx context.Context) {
	a.nav(ctx, a.store.ActiveView())
}

func (a *App) show(ctx context.Context, args []string) {
	if a.store.ActiveView() != view.Events || len(args) < 1 {
		fmt.Fprintln(a.out, "uso (vista eventi): show <id>")
		return
	}
	ev, err := a.bundle.Events.Get(ctx, args[0])
	if err != nil {
		return
	}
	fmt.Fprintf(a.out, "%s\t[%s/%s]\t%s\n%s\n", ev.ID, ev.Severity, ev.Status, ev.Title, ev.Description)
	if ev.Address != nil {
		fmt.Fprintf(a.out, "indirizzo: %s\n", *ev.Address)
	}
	if ev.HasCoordinates() {
		fmt.Fprintf(a.out, "coordinate: (%.5f, %.5f)\n", *ev.Latitude, *ev.Longitude)
	}
	if ev.Notes != nil && *ev.Notes != "" {
		fmt.Fprintf(a.out, "note: %s\n", *ev.Notes)
	}
}

// filter narrows the current listing. Events and inventory are filtered
// by the backend; logs only client-side, over the cached list.
func (a *App) filter(ctx context.Context) {
	switch a.store.ActiveView() {
	case view.Events:
		f := gateway.EventFilters{
			Status:    a.prompt("Stato (vuoto per tutti)"),
			Severity:  a.prompt("Gravità (vuota per tutte)"),
			EventType: a.prompt("Tipo evento (vuoto per tutti)"),
		}
		if err := a.bundle.Events.List(ctx, f); err == nil {
			a.printCurrent()
		}
	case view.Inventory:
		f := gateway.InventoryFilters{
			Category: a.prompt("Categoria (vuota per tutte)"),
			Location: a.prompt("Ubicazione (vuota per tutte)"),
		}
		low := a.prompt("Solo scorte basse? (s/N)")
		f.LowStock = low == "s" || low == "si" || low == "sì"
		if err := a.bundle.Inventory.List(ctx, f); err == nil {
			a.printCurrent()
		}
	case view.Logs:
		f := gateway.LogFilters{
			Priority: a.prompt("Priorità (vuota per tutte)"),
			Operator: a.prompt("Operatore (vuoto per tutti)"),
		}
		logs := gateway.FilterLogs(a.store.Snapshot().Logs, f)
		for _, l := range logs {
			fmt.Fprintf(a.out, "%s\t[%s]\t%s\t%s\n", l.Timestamp.Format(time.RFC3339), l.Priority, l.Operator, l.Action)
		}
		fmt.Fprintf(a.out, "%d log\n", len(logs))
	default:
		fmt.Fprintln(a.out, "nessun filtro in questa vista")
	}
}

func (a *App) prompt(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (a *App) create(ctx context.Context) {
	switch a.store.ActiveView() {
	case view.Events, view.CreateEvent:
		if a.store.ActiveView() == view.Events {
			a.nav(ctx, view.CreateEvent)
			if a.store.ActiveView() != view.CreateEvent {
				return
			}
		}
		draft := gateway.EventDraft{
			Title:       a.prompt("Titolo"),
			Description: a.prompt("Descrizione"),
			EventType:   a.prompt("Tipo evento"),
			Severity:    a.prompt("Gravità (bassa/media/alta/critica)"),
			Latitude:    a.prompt("Latitudine (vuoto per nessuna)"),
			Longitude:   a.prompt("Longitudine (vuoto per nessuna)"),
			Address:     a.prompt("Indirizzo"),
			Notes:       a.prompt("Note"),
		}
		_ = a.bundle.Events.Create(ctx, draft)
	case view.Logs, view.CreateLog:
		if a.store.ActiveView() == view.Logs {
			a.nav(ctx, view.CreateLog)
			if a.store.ActiveView() != view.CreateLog {
				return
			}
		}
		draft := gateway.LogDraft{
			Action:   a.prompt("Azione"),
			Details:  a.prompt("Dettagli"),
			Priority: a.prompt("Priorità (bassa/normale/alta)"),
			EventID:  a.prompt("ID evento collegato (vuoto per nessuno)"),
		}
		_ = a.bundle.Logs.Create(ctx, draft)
	case view.Inventory:
		draft := gateway.ItemDraft{
			Name:        a.prompt("Nome"),
			Category:    a.prompt("Categoria"),
			Quantity:    a.prompt("Quantità"),
			Unit:        a.prompt("Unità"),
			Location:    a.prompt("Ubicazione"),
			MinQuantity: a.prompt("Scorta minima"),
			MaxQuantity: a.prompt("Scorta massima (vuoto per nessuna)"),
			ExpiryDate:  a.prompt("Scadenza AAAA-MM-GG (vuoto per nessuna)"),
			Supplier:    a.prompt("Fornitore"),
			CostPerUnit: a.prompt("Costo unitario (vuoto per nessuno)"),
			Notes:       a.prompt("Note"),
		}
		_ = a.bundle.Inventory.Create(ctx, draft)
	case view.EventTypes:
		draft := gateway.EventTypeDraft{
			Name:        a.prompt("Nome"),
			Description: a.prompt("Descrizione"),
		}
		_ = a.bundle.EventTypes.Create(ctx, draft)
	default:
		fmt.Fprintln(a.out, "nessuna creazione in questa vista")
	}
}

func (a *App) edit(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "uso: edit <id>")
		return
	}
	switch a.store.ActiveView() {
	case view.Events:
		a.store.NavigateEdit(args[0])
		if a.store.ActiveView() != view.EditEvent {
			fmt.Fprintln(a.out, "evento non in cache, ricaricare la lista")
			return
		}
		upd := gateway.EventUpdate{}
		if s := a.prompt("Nuovo stato (vuoto per invariato)"); s != "" {
			upd.Status = &s
		}
		if s := a.prompt("Nuova gravità (vuoto per invariata)"); s != "" {
			upd.Severity = &s
		}
		if s := a.prompt("Nuove note (vuoto per invariate)"); s != "" {
			upd.Notes = &s
		}
		_ = a.bundle.Events.Update(ctx, args[0], upd)
	case view.Inventory:
		draft := gateway.ItemDraft{
			Name:        a.prompt("Nome"),
			Category:    a.prompt("Categoria"),
			Quantity:    a.prompt("Quantità"),
			Unit:        a.prompt("Unità"),
			Location:    a.prompt("Ubicazione"),
			MinQuantity: a.prompt("Scorta minima"),
			MaxQuantity: a.prompt("Scorta massima (vuoto per nessuna)"),
			ExpiryDate:  a.prompt("Scadenza AAAA-MM-GG (vuoto per nessuna)"),
			Supplier:    a.prompt("Fornitore"),
			CostPerUnit: a.prompt("Costo unitario (vuoto per nessuno)"),
			Notes:       a.prompt("Note"),
		}
		_ = a.bundle.Inventory.Update(ctx, args[0], draft)
	case view.EventTypes:
		draft := gateway.EventTypeDraft{
			Name:        a.prompt("Nome"),
			Description: a.prompt("Descrizione"),
		}
		_ = a.bundle.EventTypes.Update(ctx, args[0], draft)
	default:
		fmt.Fprintln(a.out, "nessuna modifica in questa vista")
	}
}

func (a *App) remove(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "uso: del <id>")
		return
	}
	id := args[0]
	switch a.store.ActiveView() {
	case view.Events:
		title := id
		if ev, ok := a.store.Snapshot().EventByID(id); ok {
			title = ev.Title
		}
		_ = a.bundle.Events.Delete(ctx, id, title)
	case view.Inventory:
		name := id
		if item, ok := a.store.Snapshot().ItemByID(id); ok {
			name = item.Name
		}
		_ = a.bundle.Inventory.Delete(ctx, id, name)
	case view.EventTypes:
		_ = a.bundle.EventTypes.Delete(ctx, id, id)
	default:
		fmt.Fprintln(a.out, "nessuna eliminazione in questa vista")
	}
}

func (a *App) adjust(ctx context.Context, args []string) {
	if a.store.ActiveView() != view.Inventory || len(args) < 1 {
		fmt.Fprintln(a.out, "uso (vista inventario): adjust <id>")
		return
	}
	change := a.prompt("Variazione quantità (es. -5)")
	reason := a.prompt("Motivo")
	location := a.prompt("Nuova ubicazione (vuoto per invariata)")
	delta, err := parseInt(change)
	if err != nil {
		fmt.Fprintln(a.out, "variazione non valida")
		return
	}
	_ = a.bundle.Inventory.AdjustQuantity(ctx, args[0], delta, reason, location)
}

func (a *App) report(ctx context.Context, args []string) {
	if a.store.ActiveView() != view.Reports {
		fmt.Fprintln(a.out, "navigare alla vista reports")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "uso: report <tipo> [formato]")
		return
	}
	req := gateway.ReportRequest{ReportType: args[0]}
	if len(args) > 1 {
		req.Format = args[1]
	}
	if _, err := a.bundle.Reports.Generate(ctx, req, "."); err == nil {
		a.printCurrent()
	}
}

// catCmd manages the dynamic inventory categories from the inventory
// view; the backend enforces that only admins may change them.
func (a *App) catCmd(ctx context.Context, args []string) {
	if a.store.ActiveView() != view.Inventory {
		fmt.Fprintln(a.out, "navigare alla vista inventario")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "uso: cat list|new|edit <id>|del <id>")
		return
	}
	switch args[0] {
	case "list":
		for _, c := range a.store.Snapshot().InventoryCategories {
			desc := ""
			if c.Description != nil {
				desc = *c.Description
			}
			fmt.Fprintf(a.out, "%s\t%s\t%s\n", c.ID, c.Name, desc)
		}
	case "new":
		draft := gateway.CategoryDraft{
			Name:        a.prompt("Nome"),
			Description: a.prompt("Descrizione"),
			Icon:        a.prompt("Icona (vuota per nessuna)"),
		}
		_ = a.bundle.Categories.Create(ctx, draft)
	case "edit":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: cat edit <id>")
			return
		}
		draft := gateway.CategoryDraft{
			Name:        a.prompt("Nome"),
			Description: a.prompt("Descrizione"),
			Icon:        a.prompt("Icona (vuota per nessuna)"),
		}
		_ = a.bundle.Categories.Update(ctx, args[1], draft)
	case "del":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: cat del <id>")
			return
		}
		name := args[1]
		for _, c := range a.store.Snapshot().InventoryCategories {
			if c.ID == args[1] {
				name = c.Name
			}
		}
		_ = a.bundle.Categories.Delete(ctx, args[1], name)
	default:
		fmt.Fprintln(a.out, "uso: cat list|new|edit <id>|del <id>")
	}
}

func (a *App) userCmd(ctx context.Context, args []string) {
	if a.store.ActiveView() != view.Admin {
		fmt.Fprintln(a.out, "navigare alla vista admin")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "uso: user new|edit <username>|del <username>|reset <username>")
		return
	}
	switch args[0] {
	case "new":
		draft := gateway.UserDraft{
			Username: a.prompt("Username"),
			Email:    a.prompt("Email"),
			FullName: a.prompt("Nome completo"),
			Role:     a.prompt("Ruolo"),
			Password: a.prompt("Password (vuota per default)"),
			Active:   true,
		}
		_ = a.bundle.Users.Create(ctx, draft)
	case "edit":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: user edit <username>")
			return
		}
		patch := gateway.UserUpdate{}
		if s := a.prompt("Nuova email (vuota per invariata)"); s != "" {
			patch.Email = &s
		}
		if s := a.prompt("Nuovo ruolo (vuoto per invariato)"); s != "" {
			patch.Role = &s
		}
		if s := a.prompt("Attivo? (s/n, vuoto per invariato)"); s != "" {
			active := s == "s" || s == "si" || s == "sì"
			patch.Active = &active
		}
		_ = a.bundle.Users.Update(ctx, args[1], patch)
	case "del":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: user del <username>")
			return
		}
		_ = a.bundle.Users.Delete(ctx, args[1])
	case "reset":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: user reset <username>")
			return
		}
		if msg, err := a.bundle.Users.ResetPassword(ctx, args[1]); err == nil && msg != "" {
			fmt.Fprintln(a.out, msg)
		}
	default:
		fmt.Fprintln(a.out, "uso: user new|edit <username>|del <username>|reset <username>")
	}
}

// permCmd drives the two step editing flow: edit opens a draft, toggle
// accumulates locally, save sends everything at once, cancel discards.
func (a *App) permCmd(ctx context.Context, args []string) {
	if a.store.ActiveView() != view.Admin {
		fmt.Fprintln(a.out, "navigare alla vista admin")
		return
	}
	if !a.hasPermission("permissions.manage") {
		fmt.Fprintln(a.out, "Permessi insufficienti")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "uso: perm show|role <ruolo>|edit <ruolo>|toggle <permesso>|save|cancel")
		return
	}
	switch args[0] {
	case "show":
		a.printPermissions()
	case "role":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: perm role <ruolo>")
			return
		}
		perms, err := a.bundle.Permissions.ForRole(ctx, args[1])
		if err != nil {
			fmt.Fprintln(a.out, err.Error())
			return
		}
		for _, p := range perms {
			fmt.Fprintf(a.out, "  %s\n", p)
		}
	case "edit":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: perm edit <ruolo>")
			return
		}
		if err := a.editor.Start(args[1]); err != nil {
			fmt.Fprintln(a.out, err.Error())
			return
		}
		fmt.Fprintf(a.out, "modifica permessi per %s: %s\n", args[1], strings.Join(a.editor.Draft(), ", "))
	case "toggle":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "uso: perm toggle <permesso>")
			return
		}
		on, err := a.editor.Toggle(args[1])
		if err != nil {
			fmt.Fprintln(a.out, err.Error())
			return
		}
		if on {
			fmt.Fprintf(a.out, "%s concesso (non ancora salvato)\n", args[1])
		} else {
			fmt.Fprintf(a.out, "%s revocato (non ancora salvato)\n", args[1])
		}
	case "save":
		if err := a.editor.Save(ctx); err != nil {
			fmt.Fprintln(a.out, err.Error())
		}
	case "cancel":
		a.editor.Cancel()
		fmt.Fprintln(a.out, "modifiche scartate")
	default:
		fmt.Fprintln(a.out, "uso: perm show|role <ruolo>|edit <ruolo>|toggle <permesso>|save|cancel")
	}
}

func (a *App) dbCmd(ctx context.Context, args []string) {
	if a.store.ActiveView() != view.Admin {
		fmt.Fprintln(a.out, "navigare alla vista admin")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "uso: db config|status|test|update")
		return
	}
	switch args[0] {
	case "config":
		cfg, err := a.bundle.Database.Config(ctx)
		if err != nil {
			return
		}
		fmt.Fprintf(a.out, "database: %s (%s)\n", cfg.DatabaseName, cfg.MongoURL)
	case "status":
		st, err := a.bundle.Database.Status(ctx)
		if err != nil {
			return
		}
		fmt.Fprintf(a.out, "connesso=%v database=%s %s\n", st.Connected, st.DatabaseName, st.Message)
	case "test":
		url := a.prompt("URL connessione")
		name := a.prompt("Nome database")
		st, err := a.bundle.Database.Test(ctx, url, name)
		if err != nil {
			return
		}
		fmt.Fprintf(a.out, "connesso=%v %s\n", st.Connected, st.Message)
	case "update":
		upd := gateway.DatabaseUpdate{
			MongoURL:          a.prompt("URL connessione"),
			DatabaseName:      a.prompt("Nome database"),
			TestConnection:    true,
			CreateIfNotExists: true,
		}
		_ = a.bundle.Database.Update(ctx, upd)
	default:
		fmt.Fprintln(a.out, "uso: db config|status|test|update")
	}
}
