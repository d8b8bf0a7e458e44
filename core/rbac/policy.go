package rbac

import (
	"sort"
	"sync"
)

// Policy holds role -> permission grants. It is seeded from DefaultRoles
// and replaced wholesale whenever the permission catalog is fetched from
// the backend.
type Policy struct {
	mu        sync.RWMutex
	rolePerms map[string]map[Permission]struct{}
}

func NewPolicy(roles []Role) *Policy {
	p := &Policy{rolePerms: map[string]map[Permission]struct{}{}}
	p.Replace(roles)
	return p
}

func (p *Policy) Allowed(role string, perm Permission) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	perms, ok := p.rolePerms[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

func (p *Policy) Roles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.rolePerms))
	for k := range p.rolePerms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Policy) PermissionsForRole(role string) []Permission {
	p.mu.RLock()
	defer p.mu.RUnlock()
	perms, ok := p.rolePerms[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(perms))
	for perm := range perms {
		out = append(out, perm)
	}
	sort.Strings(out)
	return out
}

func (p *Policy) Replace(roles []Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rp := make(map[string]map[Permission]struct{})
	for _, r := range roles {
		m := make(map[Permission]struct{})
		for _, perm := range r.Permissions {
			m[perm] = struct{}{}
		}
		rp[r.Name] = m
	}
	p.rolePerms = rp
}

// ReplaceRole swaps a single role's grant set, used after the backend
// confirms a permission update for that role.
func (p *Policy) ReplaceRole(role string, perms []Permission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := make(map[Permission]struct{}, len(perms))
	for _, perm := range perms {
		m[perm] = struct{}{}
	}
	p.rolePerms[role] = m
}
