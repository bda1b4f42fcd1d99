package service

import (
	"sort"
	"strings"

	"github.com/stocklot/stocklot/internal/api/domain"
)

// RolePrefix marks role-derived authorities, distinguishing them from
// permission codes in the same flat set.
const RolePrefix = "ROLE_"

// ResolveAuthorities flattens a user's role/permission graph into the
// deduplicated authority set embedded in session tokens: one
// "ROLE_<NAME>" tag per role plus every permission code reachable through
// any role. The result is sorted so identical graphs always produce the
// same token payload. A user with no roles resolves to an empty set, which
// is valid; such a user authenticates but passes no permission check.
func ResolveAuthorities(graph domain.UserGraph) []string {
	set := make(map[string]struct{})
	for _, role := range graph.Roles {
		set[RolePrefix+strings.ToUpper(role.Name)] = struct{}{}
		for _, perm := range role.Permissions {
			set[perm.Code] = struct{}{}
		}
	}

	authorities := make([]string, 0, len(set))
	for a := range set {
		authorities = append(authorities, a)
	}
	sort.Strings(authorities)
	return authorities
}
