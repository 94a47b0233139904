// Package params reads and writes pagination parameters stored in a
// location's query string.
package params

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Query keys of the location contract.
const (
	KeyPage       = "page"
	KeyRows       = "rows"
	KeyOrder      = "order"
	KeyStart      = "start"
	KeyEnd        = "end"
	KeyCurrentTab = "currentTab"
)

// Parameters is the canonical pagination state of one table.
type Parameters struct {
	Order      Order
	CurrentTab string
	// Page is zero-based. The location stores it one-based.
	Page  int
	Rows  int
	Start int
	End   int
}

// Scope selects which keys of the location a [Parameters] value is read
// from, and supplies the defaults that depend on the table.
type Scope struct {
	// Name prefixes every key except currentTab as "<name>-<key>".
	// An empty name uses the plain keys.
	Name string
	// AllowedRows is the set of page sizes the table accepts. Empty means
	// any row count >= 1.
	AllowedRows []int
	// DefaultRows is used when rows is absent, malformed or not allowed.
	DefaultRows int
	// UpperBound is the default for end, e.g. the record count at the tip.
	UpperBound int
}

// Key returns the query key for k in this scope.
func (s Scope) Key(k string) string {
	if s.Name == "" || k == KeyCurrentTab {
		return k
	}

	return s.Name + "-" + k
}

// ValidatePaginationInts parses value as an integer. It returns fallback
// when value does not parse, and otherwise floors the result at 1.
func ValidatePaginationInts(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}

	return max(n, 1)
}

// validateBound parses a range bound. Bounds may be zero.
func validateBound(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}

	return max(n, 0)
}

func parseOrder(value string) Order {
	switch Order(strings.ToLower(strings.TrimSpace(value))) {
	case OrderAsc:
		return OrderAsc
	default:
		return OrderDesc
	}
}

// FromQuery derives [Parameters] from q. It never fails: every malformed
// value is replaced with its default.
func FromQuery(q url.Values, s Scope) Parameters {
	defaultRows := max(s.DefaultRows, 1)

	p := Parameters{
		Page:       ValidatePaginationInts(q.Get(s.Key(KeyPage)), 1) - 1,
		Rows:       ValidatePaginationInts(q.Get(s.Key(KeyRows)), defaultRows),
		Order:      parseOrder(q.Get(s.Key(KeyOrder))),
		Start:      validateBound(q.Get(s.Key(KeyStart)), 0),
		End:        validateBound(q.Get(s.Key(KeyEnd)), max(s.UpperBound, 0)),
		CurrentTab: q.Get(KeyCurrentTab),
	}

	if len(s.AllowedRows) > 0 && !slices.Contains(s.AllowedRows, p.Rows) {
		p.Rows = defaultRows
	}

	if p.Start > p.End {
		p.Start = p.End
	}

	return p
}
