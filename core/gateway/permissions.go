package gateway

import (
	"context"
	"fmt"

	"sge-console/core/model"
	"sge-console/core/rbac"
	"sge-console/core/state"
	"sge-console/core/view"
)

// PermissionsGateway manages role permission assignments. Every save
// sends the role's whole permission set; the backend upserts, so there
// is no partial toggle endpoint to fall out of sync with.
type PermissionsGateway struct {
	d *deps
}

// Catalog loads the permission catalog and refreshes the local policy so
// menu gating tracks what the backend last confirmed.
func (g *PermissionsGateway) Catalog(ctx context.Context) error {
	var catalog model.PermissionCatalog
	if err := g.d.client.GetJSON(ctx, "/api/admin/permissions", nil, &catalog); err != nil {
		return g.d.fail(ctx, err)
	}
	g.syncPolicy(catalog)
	g.d.store.Dispatch(state.PermissionsLoaded{Catalog: catalog})
	return nil
}

// ForRole reads a single role's assignment without touching the cache.
func (g *PermissionsGateway) ForRole(ctx context.Context, role string) ([]string, error) {
	if !rbac.IsKnownRole(role) {
		return nil, fmt.Errorf("Ruolo non valido")
	}
	var resp struct {
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
		Description string   `json:"description"`
	}
	if err := g.d.client.GetJSON(ctx, "/api/admin/permissions/"+role, nil, &resp); err != nil {
		return nil, g.d.fail(ctx, err)
	}
	return resp.Permissions, nil
}

type rolePermissionsPayload struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Description *string  `json:"description,omitempty"`
}

// ReplaceForRole overwrites a role's permission set and reloads the
// catalog so the cached copy reflects the server state, not the draft.
func (g *PermissionsGateway) ReplaceForRole(ctx context.Context, role string, perms []string) error {
	if !g.d.guard.begin("save-permissions") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("save-permissions")

	if !rbac.IsKnownRole(role) {
		err := fmt.Errorf("Ruolo non valido")
		g.d.store.PostError(err.Error())
		return err
	}
	normalized, unknown := rbac.NormalizePermissionNames(perms)
	if len(unknown) > 0 {
		err := fmt.Errorf("permessi sconosciuti: %v", unknown)
		g.d.store.PostError(err.Error())
		return err
	}
	payload := rolePermissionsPayload{Role: role, Permissions: normalized}
	var resp struct {
		Message string `json:"message"`
	}
	if err := g.d.client.PostJSON(ctx, "/api/admin/permissions/"+role, payload, &resp); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess(fmt.Sprintf("Permessi per il ruolo %s aggiornati con successo", role))
	g.d.quietFail(g.Catalog(ctx), "permissions reload")
	g.d.afterMutation(ctx, view.ResourcePermissions, nil)
	return nil
}

func (g *PermissionsGateway) syncPolicy(catalog model.PermissionCatalog) {
	if g.d.policy == nil || len(catalog.CurrentPermissions) == 0 {
		return
	}
	roles := make([]rbac.Role, 0, len(catalog.CurrentPermissions))
	for name, perms := range catalog.CurrentPermissions {
		roles = append(roles, rbac.Role{
			Name:        name,
			Label:       catalog.Roles[name],
			Permissions: perms,
		})
	}
	g.d.policy.Replace(roles)
}
