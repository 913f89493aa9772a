package auth

import (
	"sort"
	"strings"
)

// PolicyEntry binds a route prefix to the set of roles permitted past it.
type PolicyEntry struct {
	Prefix string
	Roles  []UserRole
}

// permits reports whether the role appears in the entry's allowed set.
func (e PolicyEntry) permits(role UserRole) bool {
	for _, allowed := range e.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// RoutePolicy is the static route authorization table: loaded once at process
// start, matched longest-prefix-wins, immutable thereafter. Paths that match
// no entry are public and bypass the gate entirely.
type RoutePolicy struct {
	entries []PolicyEntry
}

// NewRoutePolicy copies the entries and orders them so that the longest
// prefix wins a lookup. The returned policy is safe for concurrent use.
func NewRoutePolicy(entries ...PolicyEntry) *RoutePolicy {
	owned := make([]PolicyEntry, 0, len(entries))
	for _, e := range entries {
		if e.Prefix == "" {
			continue
		}
		entry := PolicyEntry{
			Prefix: e.Prefix,
			Roles:  append([]UserRole(nil), e.Roles...),
		}
		owned = append(owned, entry)
	}

	sort.SliceStable(owned, func(i, j int) bool {
		return len(owned[i].Prefix) > len(owned[j].Prefix)
	})

	return &RoutePolicy{entries: owned}
}

// Lookup returns the longest-prefix entry covering path, if any.
func (p *RoutePolicy) Lookup(path string) (PolicyEntry, bool) {
	for _, e := range p.entries {
		if strings.HasPrefix(path, e.Prefix) {
			return e, true
		}
	}
	return PolicyEntry{}, false
}

// Protects reports whether any entry covers the path.
func (p *RoutePolicy) Protects(path string) bool {
	_, ok := p.Lookup(path)
	return ok
}

// Allows reports whether role may access path. Unmatched paths are public.
func (p *RoutePolicy) Allows(path string, role UserRole) bool {
	entry, ok := p.Lookup(path)
	if !ok {
		return true
	}
	return entry.permits(role)
}
