package liststore

import "strings"

// FilterAll is the sentinel value that disables an equality filter.
const FilterAll = "all"

// Query is a view projection: a case-insensitive substring search over
// the record's designated text fields intersected with equality filters.
type Query struct {
	Search  string
	Filters map[string]string
}

// Filter returns the records matching the query, preserving order. The
// input is never mutated; an empty query returns an equal collection.
func Filter[T Record](records []T, q Query, searchText func(T) []string, filterValue func(T, string) string) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if search != "" && !matchesSearch(rec, search, searchText) {
			continue
		}
		if !matchesFilters(rec, q.Filters, filterValue) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch[T Record](rec T, search string, searchText func(T) []string) bool {
	if searchText == nil {
		return true
	}
	for _, value := range searchText(rec) {
		if strings.Contains(strings.ToLower(value), search) {
			return true
		}
	}
	return false
}

func matchesFilters[T Record](rec T, filters map[string]string, filterValue func(T, string) string) bool {
	if len(filters) == 0 || filterValue == nil {
		return true
	}
	for key, want := range filters {
		want = strings.TrimSpace(want)
		if want == "" || strings.EqualFold(want, FilterAll) {
			continue
		}
		if filterValue(rec, key) != want {
			return false
		}
	}
	return true
}
