package rbac

import (
	"sort"
	"strings"
)

// Catalog of backend permissions. The server may grow this list; unknown
// names returned by the permission endpoints are still displayed, but only
// known ones are offered when editing a role.
var permissions = []Permission{
	"events.create", "events.read", "events.update", "events.delete",
	"inventory.create", "inventory.read", "inventory.update", "inventory.delete",
	"logs.create", "logs.read", "logs.update", "logs.delete",
	"users.create", "users.read", "users.update", "users.delete",
	"resources.create", "resources.read", "resources.update", "resources.delete",
	"reports.generate", "dashboard.read", "permissions.manage",
}

var knownPermissionSet = buildPermissionSet()

func buildPermissionSet() map[Permission]struct{} {
	out := make(map[Permission]struct{}, len(permissions))
	for _, p := range permissions {
		out[p] = struct{}{}
	}
	return out
}

func AllPermissions() []Permission {
	out := make([]Permission, len(permissions))
	copy(out, permissions)
	return out
}

func IsKnownPermission(p Permission) bool {
	_, ok := knownPermissionSet[p]
	return ok
}

func NormalizePermissionNames(in []string) ([]string, []string) {
	validSet := map[string]struct{}{}
	invalidSet := map[string]struct{}{}
	for _, raw := range in {
		p := strings.ToLower(strings.TrimSpace(raw))
		if p == "" {
			continue
		}
		if IsKnownPermission(Permission(p)) {
			validSet[p] = struct{}{}
			continue
		}
		invalidSet[p] = struct{}{}
	}
	valid := make([]string, 0, len(validSet))
	for p := range validSet {
		valid = append(valid, p)
	}
	sort.Strings(valid)
	invalid := make([]string, 0, len(invalidSet))
	for p := range invalidSet {
		invalid = append(invalid, p)
	}
	sort.Strings(invalid)
	return valid, invalid
}

var roles = []Role{
	{Name: "admin", Label: "Amministratore", Permissions: permissions},
	{Name: "coordinator", Label: "Coordinatore Emergenze", Permissions: []Permission{
		"events.create", "events.read", "events.update",
		"inventory.create", "inventory.read", "inventory.update", "inventory.delete",
		"logs.create", "logs.read",
		"resources.create", "resources.read", "resources.update", "resources.delete",
		"reports.generate", "dashboard.read",
	}},
	{Name: "operator", Label: "Operatore Sala Operativa", Permissions: []Permission{
		"events.create", "events.read", "events.update",
		"logs.create", "logs.read",
		"dashboard.read",
	}},
	{Name: "warehouse", Label: "Addetto Magazzino", Permissions: []Permission{
		"inventory.create", "inventory.read", "inventory.update", "inventory.delete",
		"dashboard.read",
	}},
	{Name: "viewer", Label: "Visualizzatore", Permissions: []Permission{
		"events.read", "inventory.read", "logs.read", "dashboard.read",
	}},
}

// DefaultRoles mirrors the backend's built-in role grants. The catalog
// fetched from /api/admin/permissions is authoritative at runtime; these
// defaults seed the policy before the first fetch.
func DefaultRoles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

func IsKnownRole(name string) bool {
	for _, r := range roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

func RoleNames() []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}

func RoleLabel(name string) string {
	for _, r := range roles {
		if r.Name == name {
			return r.Label
		}
	}
	return name
}
