package core

import "strings"

// Ordering is one sort criterion of a list query, encoded as `field` or `-field`.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	if ord.Ascending {
		return ord.Field
	}
	return "-" + ord.Field
}

// Asc and Desc build orderings.
func Asc(field string) Ordering  { return Ordering{Field: field, Ascending: true} }
func Desc(field string) Ordering { return Ordering{Field: field} }

// JoinOrderings renders orderings as a comma separated `ordering` query value.
func JoinOrderings(ords []Ordering) string {
	parts := make([]string, 0, len(ords))
	for _, ord := range ords {
		if ord.Field == "" {
			continue
		}
		parts = append(parts, ord.String())
	}
	return strings.Join(parts, ",")
}

// ParseOrderings parses a comma separated `ordering` query value, eg: "-dueDate,title".
func ParseOrderings(val string) []Ordering {
	var ords []Ordering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ords = append(ords, Ordering{Field: field, Ascending: !descending})
	}
	return ords
}
