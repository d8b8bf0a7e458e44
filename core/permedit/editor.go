// Package permedit implements the two step permission editing flow: an
// editor is opened on one role, toggles accumulate locally, and nothing
// reaches the backend until Save sends the whole set at once. Cancel
// throws the draft away without a request.
package permedit

import (
	"context"
	"errors"
	"sort"

	"sge-console/core/gateway"
	"sge-console/core/state"
)

var (
	ErrNotEditing     = errors.New("nessun ruolo in modifica")
	ErrAlreadyEditing = errors.New("un altro ruolo è già in modifica")
	ErrUnknownRole    = errors.New("Ruolo non valido")
	ErrNoCatalog      = errors.New("catalogo permessi non caricato")
)

// Editor holds at most one role's draft at a time. It is not safe for
// concurrent use; the console drives it from a single loop.
type Editor struct {
	perms *gateway.PermissionsGateway
	store *state.Store

	role  string
	draft map[string]bool
}

func NewEditor(perms *gateway.PermissionsGateway, store *state.Store) *Editor {
	return &Editor{perms: perms, store: store}
}

// Start seeds the draft from the cached catalog for one role. A second
// Start without Save or Cancel is refused so toggles cannot leak across
// roles.
func (e *Editor) Start(role string) error {
	if e.role != "" {
		return ErrAlreadyEditing
	}
	catalog := e.store.Snapshot().Permissions
	if catalog == nil {
		return ErrNoCatalog
	}
	if _, ok := catalog.Roles[role]; !ok {
		return ErrUnknownRole
	}
	e.draft = make(map[string]bool)
	for _, p := range catalog.CurrentPermissions[role] {
		e.draft[p] = true
	}
	e.role = role
	return nil
}

func (e *Editor) Editing() bool { return e.role != "" }

func (e *Editor) Role() string { return e.role }

// Toggle flips one permission in the draft and reports its new value.
func (e *Editor) Toggle(perm string) (bool, error) {
	if e.role == "" {
		return false, ErrNotEditing
	}
	e.draft[perm] = !e.draft[perm]
	return e.draft[perm], nil
}

func (e *Editor) Set(perm string, granted bool) error {
	if e.role == "" {
		return ErrNotEditing
	}
	e.draft[perm] = granted
	return nil
}

// Draft returns the permissions currently granted in the draft, sorted.
func (e *Editor) Draft() []string {
	out := make([]string, 0, len(e.draft))
	for p, on := range e.draft {
		if on {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Dirty reports whether the draft differs from the cached catalog.
func (e *Editor) Dirty() bool {
	if e.role == "" {
		return false
	}
	catalog := e.store.Snapshot().Permissions
	if catalog == nil {
		return true
	}
	return !equalSets(e.Draft(), catalog.CurrentPermissions[e.role])
}

// Save pushes the whole draft as the role's new permission set and, on
// success, closes the editor. On failure the draft survives so the
// operator can retry or cancel.
func (e *Editor) Save(ctx context.Context) error {
	if e.role == "" {
		return ErrNotEditing
	}
	if err := e.perms.ReplaceForRole(ctx, e.role, e.Draft()); err != nil {
		return err
	}
	e.reset()
	return nil
}

// Cancel discards the draft. No request is issued.
func (e *Editor) Cancel() {
	e.reset()
}

func (e *Editor) reset() {
	e.role = ""
	e.draft = nil
}

func equalSets(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	bs := append([]string(nil), b...)
	sort.Strings(bs)
	for i := range a {
		if a[i] != bs[i] {
			return false
		}
	}
	return true
}
