package roster

import (
	"fmt"
	"sort"
	"strings"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
)

// SortKey selects the field the directory is ordered by.
type SortKey string

const (
	SortByName        SortKey = "name"
	SortByAge         SortKey = "age"
	SortByDateOfBirth SortKey = "dateOfBirth"
)

// Order is the direction of a sort.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortKey validates a sort key; an empty string means name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByName, nil
	case SortByName, SortByAge, SortByDateOfBirth:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ParseOrder validates a sort order; an empty string means ascending.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(s)) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Compare orders a and b by key, ascending. It returns a negative number,
// zero or a positive number.
func Compare(a, b *models.Member, key SortKey) int {
	switch key {
	case SortByAge:
		return a.AgeOrZero() - b.AgeOrZero()
	case SortByDateOfBirth:
		return compareDOB(a.DateOfBirth, b.DateOfBirth)
	default:
		return strings.Compare(strings.ToLower(a.FullName()), strings.ToLower(b.FullName()))
	}
}

// compareDOB treats a missing or malformed date as the earliest.
func compareDOB(a, b string) int {
	da, okA := calendar.ParseDate(a)
	db, okB := calendar.ParseDate(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return da.Compare(db)
}

// Sort orders members in place by key and order. Equal members keep their
// relative order.
func Sort(members []models.Member, key SortKey, order Order) {
	sort.SliceStable(members, func(i, j int) bool {
		c := Compare(&members[i], &members[j], key)
		if order == Desc {
			return c > 0
		}
		return c < 0
	})
}
