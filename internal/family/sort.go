package family

import (
	"fmt"
	"sort"
	"strings"

	"churchadmin/internal/models"
	"churchadmin/internal/roster"
)

// MemberSortKey orders members inside a household.
type MemberSortKey string

const (
	MemberSortName        MemberSortKey = "name"
	MemberSortAge         MemberSortKey = "age"
	MemberSortDateOfBirth MemberSortKey = "dateOfBirth"
	MemberSortRole        MemberSortKey = "role"
)

// ParseMemberSortKey validates a household sort key; empty means age.
func ParseMemberSortKey(s string) (MemberSortKey, error) {
	switch MemberSortKey(s) {
	case "":
		return MemberSortAge, nil
	case MemberSortName, MemberSortAge, MemberSortDateOfBirth, MemberSortRole:
		return MemberSortKey(s), nil
	}
	return "", fmt.Errorf("unknown family sort key %q", s)
}

var rolePriority = map[string]int{
	"father":   0,
	"mother":   1,
	"spouse":   2,
	"son":      3,
	"daughter": 3,
	"child":    3,
	"brother":  4,
	"sister":   4,
}

// RolePriority ranks a family role; unknown or empty roles sort last.
func RolePriority(role string) int {
	if p, ok := rolePriority[strings.ToLower(strings.TrimSpace(role))]; ok {
		return p
	}
	return len(rolePriority)
}

// SortMembers orders a household in place. Ties fall back to age, oldest first.
func SortMembers(members []models.Member, key MemberSortKey) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := &members[i], &members[j]
		var c int
		switch key {
		case MemberSortName:
			c = roster.Compare(a, b, roster.SortByName)
		case MemberSortDateOfBirth:
			c = roster.Compare(a, b, roster.SortByDateOfBirth)
		case MemberSortRole:
			c = RolePriority(a.FamilyRole) - RolePriority(b.FamilyRole)
		}
		if c == 0 {
			c = b.AgeOrZero() - a.AgeOrZero()
		}
		return c < 0
	})
}

var relativeLabels = map[string]string{
	"brother":  "Brother",
	"sister":   "Sister",
	"spouse":   "Spouse",
	"father":   "Father",
	"mother":   "Mother",
	"son":      "Son",
	"daughter": "Daughter",
}

// RelativeLabel turns a relation key into its display label.
func RelativeLabel(relation string) string {
	if label, ok := relativeLabels[relation]; ok {
		return label
	}
	return relation
}
