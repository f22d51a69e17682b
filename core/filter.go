package core

import "github.com/volatiletech/null/v8"

// NullParam is the query value sent for a filter explicitly set to null.
const NullParam = "null"

// StringFilter is a list filter on a nullable field. It has three states:
//   - absent (the zero value): the filter is not applied
//   - null: only match resources where the field is null (eg: unassigned tasks)
//   - value: only match resources where the field equals Value
//
// An empty value is the same as absent: it is never sent nor applied.
type StringFilter struct {
	Present bool
	Value   null.String
}

// FilterNull matches resources whose field is null.
func FilterNull() StringFilter {
	return StringFilter{Present: true}
}

// FilterValue matches resources whose field equals s. An empty s gives an absent filter.
func FilterValue(s string) StringFilter {
	if s == "" {
		return StringFilter{}
	}
	return StringFilter{Present: true, Value: null.StringFrom(s)}
}

func (f StringFilter) IsAbsent() bool { return !f.Present || (f.Value.Valid && f.Value.String == "") }

func (f StringFilter) IsNull() bool { return f.Present && !f.Value.Valid }

// Param returns the query value of the filter; ok is false when the filter is absent.
func (f StringFilter) Param() (val string, ok bool) {
	if f.IsAbsent() {
		return "", false
	}
	if !f.Value.Valid {
		return NullParam, true
	}
	return f.Value.String, true
}

// Match reports whether a nullable field value satisfies the filter.
func (f StringFilter) Match(v null.String) bool {
	switch {
	case f.IsAbsent():
		return true
	case !f.Value.Valid:
		return !v.Valid
	default:
		return v.Valid && v.String == f.Value.String
	}
}

// ParseStringFilter is the inverse of StringFilter.Param for query values.
func ParseStringFilter(val string, present bool) StringFilter {
	if !present {
		return StringFilter{}
	}
	if val == NullParam {
		return FilterNull()
	}
	return FilterValue(val)
}
