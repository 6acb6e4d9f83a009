// Package authroles maps identity provider groups onto application roles.
package authroles

import (
	"fmt"
	"strings"

	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
	"github.com/harmonia-academy/harmonia-web/internal/ports"
)

var _ ports.RoleMapper = GroupMapper{}

// GroupMapper grants each member the highest role any of their groups maps to.
type GroupMapper struct {
	groups map[string]domainauth.Role
}

// NewGroupMapper builds a mapper from role to group name.
// Empty group names are ignored.
func NewGroupMapper(byRole map[domainauth.Role]string) GroupMapper {
	m := GroupMapper{groups: make(map[string]domainauth.Role, len(byRole))}
	for role, group := range byRole {
		group = strings.TrimSpace(group)
		if group == "" || !role.Valid() {
			continue
		}
		if cur, ok := m.groups[group]; ok && cur.AtLeast(role) {
			continue
		}
		m.groups[group] = role
	}
	return m
}

// ParseGroupMapping reads a "role=group,role=group" list such as
// "admin=HARMONIA-Admins,staff=HARMONIA-Office".
func ParseGroupMapping(spec string) (GroupMapper, error) {
	byRole := make(map[domainauth.Role]string)
	for pair := range strings.SplitSeq(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, group, ok := strings.Cut(pair, "=")
		if !ok {
			return GroupMapper{}, fmt.Errorf("role mapping %q: want role=group", pair)
		}
		role := domainauth.Role(strings.ToLower(strings.TrimSpace(name)))
		if !role.Valid() {
			return GroupMapper{}, fmt.Errorf("role mapping %q: unknown role %q", pair, name)
		}
		byRole[role] = group
	}
	return NewGroupMapper(byRole), nil
}

// Map returns the highest role granted by groups, or guest.
func (m GroupMapper) Map(groups []string) domainauth.Role {
	best := domainauth.RoleGuest
	for _, g := range groups {
		if role, ok := m.groups[g]; ok && role.AtLeast(best) {
			best = role
		}
	}
	return best
}
