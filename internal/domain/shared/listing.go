package shared

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultPageSize is the fixed list page size
const DefaultPageSize = 10

// SortDirection is the direction of a list sort
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ParseSortDirection maps user input to a direction, defaulting to ascending
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(s, string(SortDescending)) || strings.EqualFold(s, "descending") {
		return SortDescending
	}
	return SortAscending
}

// SortState is the single-key sort of a list view
type SortState struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// Toggle flips the direction when the same key is selected while ascending
// and resets to ascending otherwise.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && s.Direction == SortAscending {
		return SortState{Key: key, Direction: SortDescending}
	}
	return SortState{Key: key, Direction: SortAscending}
}

// SortStable sorts items in place by the extracted key. Items whose key is
// absent (ok == false) are placed after every present key regardless of
// direction, and equal keys keep their relative order.
func SortStable[T any, K cmp.Ordered](items []T, key func(T) (K, bool), dir SortDirection) {
	slices.SortStableFunc(items, func(a, b T) int {
		av, aok := key(a)
		bv, bok := key(b)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := cmp.Compare(av, bv)
		if dir == SortDescending {
			return -c
		}
		return c
	})
}

// Page is one page of a list view
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate returns the 1-indexed page of items, clamping the requested page
// into [1, totalPages].
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := min(start+size, total)
	out := make([]T, 0, max(end-start, 0))
	if start < total {
		out = append(out, items[start:end]...)
	}
	return Page[T]{
		Items:      out,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ContainsFold reports whether any field contains the query, ignoring case.
// An empty query matches everything.
func ContainsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// MatchesFilter treats "" and "all" as no filter
func MatchesFilter[S ~string](filter string, value S) bool {
	return filter == "" || filter == "all" || filter == string(value)
}
