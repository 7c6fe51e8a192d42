// Package navigation maps a user's role to the sidebar sections and pages
// it may reach. The mapping is a static table; unknown roles get nothing.
package navigation

import (
	"fmt"
	"strings"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

type Link struct {
	To    string `json:"to"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

type Section struct {
	Title string `json:"title"`
	Links []Link `json:"links"`
}

type table map[models.Role][]Section

// For returns the ordered navigation sections for role. The result is a
// copy; callers may modify it freely. An unrecognized role yields an
// empty, non-nil slice.
func For(role models.Role) []Section {
	return policy.lookup(role)
}

// Destinations lists every page reachable by role, in navigation order.
func Destinations(role models.Role) []string {
	var out []string
	for _, section := range policy[role] {
		for _, link := range section.Links {
			out = append(out, link.To)
		}
	}
	return out
}

// CanAccess reports whether the page at destination appears in role's navigation.
func CanAccess(role models.Role, destination string) bool {
	destination = normalize(destination)
	for _, section := range policy[role] {
		for _, link := range section.Links {
			if link.To == destination {
				return true
			}
		}
	}
	return false
}

// Validate checks the policy table for completeness. It is run once at
// startup; a failure means the binary ships a broken authorization surface.
func Validate() error {
	return policy.validate(models.Roles())
}

func (t table) lookup(role models.Role) []Section {
	src, ok := t[role]
	if !ok {
		return []Section{}
	}
	out := make([]Section, len(src))
	for i, s := range src {
		links := make([]Link, len(s.Links))
		copy(links, s.Links)
		out[i] = Section{Title: s.Title, Links: links}
	}
	return out
}

func (t table) validate(roles []models.Role) error {
	for _, role := range roles {
		if _, ok := t[role]; !ok {
			return fmt.Errorf("navigation: no policy entry for role %s", role)
		}
	}
	for role, secs := range t {
		if !models.IsValidRole(role) {
			return fmt.Errorf("navigation: policy entry for unknown role %q", role)
		}
		seen := make(map[string]struct{})
		for _, s := range secs {
			if strings.TrimSpace(s.Title) == "" {
				return fmt.Errorf("navigation: role %s has a section without title", role)
			}
			for _, l := range s.Links {
				if l.To == "" || l.Label == "" {
					return fmt.Errorf("navigation: role %s section %q has an incomplete link", role, s.Title)
				}
				if _, dup := seen[l.To]; dup {
					return fmt.Errorf("navigation: role %s lists %s more than once", role, l.To)
				}
				seen[l.To] = struct{}{}
			}
		}
	}
	return nil
}

func normalize(destination string) string {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return ""
	}
	if !strings.HasPrefix(destination, "/") {
		destination = "/" + destination
	}
	if len(destination) > 1 {
		destination = strings.TrimRight(destination, "/")
	}
	return destination
}
