package inmemdb

import (
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/masomo/core"
)

// Page limits
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Less compares two rows on one field.
type Less[T any] func(a, b T) bool

// Sort orders rows by ords, using the comparators of known fields. Unknown fields are ignored.
func Sort[T any](rows []T, ords []core.Ordering, fields map[string]Less[T]) {
	var keys []core.Ordering
	for _, ord := range ords {
		if _, ok := fields[ord.Field]; ok {
			keys = append(keys, ord)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range keys {
			less := fields[ord.Field]
			a, b := rows[i], rows[j]
			if !ord.Ascending {
				a, b = b, a
			}
			if less(a, b) {
				return true
			}
			if less(b, a) {
				return false
			}
		}
		return false
	})
}

// Paginate returns the slice of rows selected by pg. A cursor is the offset of the next row;
// without one, pg.Page selects the slice.
func Paginate[T any](rows []T, pg core.Page) core.List[T] {
	limit := pg.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var offset int
	list := core.List[T]{Total: len(rows), Limit: limit}
	if pg.Cursor != "" {
		offset, _ = strconv.Atoi(pg.Cursor)
	} else {
		page := pg.Page
		if page < 1 {
			page = 1
		}
		offset = (page - 1) * limit
		list.Page = page
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	list.Items = append(make([]T, 0, end-offset), rows[offset:end]...)
	if end < len(rows) {
		list.NextCursor = strconv.Itoa(end)
	}
	return list
}

// Contains reports whether s contains substr, ignoring case.
func Contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// HasString reports whether vals contains val.
func HasString(vals []string, val string) bool {
	for _, v := range vals {
		if v == val {
			return true
		}
	}
	return false
}

// RemoveString returns vals without val.
func RemoveString(vals []string, val string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != val {
			out = append(out, v)
		}
	}
	return out
}
