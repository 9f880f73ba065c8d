// Package roster filters, searches and sorts the member directory.
package roster

import (
	"slices"
	"sort"
	"strings"

	"churchadmin/internal/models"
)

// Filter narrows the directory. Zero values disable a criterion.
type Filter struct {
	Search      string   `json:"search"`
	Tags        []string `json:"tags"`
	IsMember    *bool    `json:"isMember"`
	Sex         string   `json:"sex"`
	CivilStatus string   `json:"civilStatus"`
}

// Active reports whether any criterion besides the text search is set.
func (f Filter) Active() bool {
	return len(f.Tags) > 0 || f.IsMember != nil || f.Sex != "" || f.CivilStatus != ""
}

// Apply returns the members matching every criterion of f, in input order.
func Apply(members []models.Member, f Filter) []models.Member {
	out := make([]models.Member, 0, len(members))
	for _, m := range members {
		if f.Matches(&m) {
			out = append(out, m)
		}
	}
	return out
}

// Matches reports whether m satisfies f. Tags match when m has any of them.
func (f Filter) Matches(m *models.Member) bool {
	if !MatchesSearch(m, f.Search) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(tag string) bool { return slices.Contains(m.Tags, tag) }) {
		return false
	}
	if f.IsMember != nil && m.IsMember != *f.IsMember {
		return false
	}
	if f.Sex != "" && m.Sex != f.Sex {
		return false
	}
	if f.CivilStatus != "" && m.CivilStatus != f.CivilStatus {
		return false
	}
	return true
}

// MatchesSearch does a case-insensitive substring search over the name,
// nickname, contact number, address and occupation.
func MatchesSearch(m *models.Member, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	fields := []string{m.FullName(), m.Nickname, m.ContactNumber, m.Address, m.Occupation}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// AllTags lists every tag in use, sorted and without duplicates.
func AllTags(members []models.Member) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, m := range members {
		for _, tag := range m.Tags {
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
