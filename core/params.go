package core

import (
	"net/url"
	"strconv"
	"time"
)

// Params builds list query strings. Absent values never add their key, so an empty
// filter yields an empty query string.
type Params struct {
	v url.Values
}

func NewParams() *Params {
	return &Params{v: make(url.Values)}
}

// Set adds key=val unless val is blank.
func (p *Params) Set(key, val string) *Params {
	if val = CleanString(val); val != "" {
		p.v.Set(key, val)
	}
	return p
}

// SetFilter adds a nullable filter: nothing when absent, the literal "null" when null,
// the value otherwise.
func (p *Params) SetFilter(key string, f StringFilter) *Params {
	if val, ok := f.Param(); ok {
		p.v.Set(key, val)
	}
	return p
}

// SetInt adds key=n when n > 0.
func (p *Params) SetInt(key string, n int) *Params {
	if n > 0 {
		p.v.Set(key, strconv.Itoa(n))
	}
	return p
}

func (p *Params) SetBool(key string, b *bool) *Params {
	if b != nil {
		p.v.Set(key, strconv.FormatBool(*b))
	}
	return p
}

// SetTime adds key in RFC 3339 (UTC) unless t is zero.
func (p *Params) SetTime(key string, t time.Time) *Params {
	if !t.IsZero() {
		p.v.Set(key, t.UTC().Format(time.RFC3339))
	}
	return p
}

// SetList adds one key=val pair per non blank value.
func (p *Params) SetList(key string, vals []string) *Params {
	for _, val := range vals {
		if val = CleanString(val); val != "" {
			p.v.Add(key, val)
		}
	}
	return p
}

// SetOrdering adds ordering=field,-field.
func (p *Params) SetOrdering(ords []Ordering) *Params {
	return p.Set(OrderingParam, JoinOrderings(ords))
}

// SetPage adds the pagination params shared by every list endpoint.
func (p *Params) SetPage(pg Page) *Params {
	return p.SetInt("page", pg.Page).SetInt("limit", pg.Limit).Set("cursor", pg.Cursor)
}

func (p *Params) Values() url.Values { return p.v }

// Encode returns the URL-encoded query, sorted by key.
func (p *Params) Encode() string {
	if p == nil {
		return ""
	}
	return p.v.Encode()
}

// OrderingParam is the query key of list orderings.
const OrderingParam = "ordering"

// Page selects a slice of a list, either by page number or by cursor.
type Page struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// ParsePage reads pagination params; limit is capped to maxLimit and defaults to defLimit.
func ParsePage(q url.Values, defLimit, maxLimit int) Page {
	pg := Page{Cursor: q.Get("cursor")}
	pg.Page, _ = strconv.Atoi(q.Get("page"))
	pg.Limit, _ = strconv.Atoi(q.Get("limit"))
	if pg.Page < 1 {
		pg.Page = 1
	}
	if pg.Limit < 1 {
		pg.Limit = defLimit
	}
	if pg.Limit > maxLimit {
		pg.Limit = maxLimit
	}
	return pg
}

// ParseFilter reads a nullable filter param.
func ParseFilter(q url.Values, key string) StringFilter {
	val := q.Get(key)
	return ParseStringFilter(val, val != "")
}

// ParseBool reads an optional boolean param; invalid values are ignored.
func ParseBool(q url.Values, key string) *bool {
	val := q.Get(key)
	if val == "" {
		return nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &b
}

// ParseTime reads an optional RFC 3339 param; invalid values are ignored.
func ParseTime(q url.Values, key string) time.Time {
	t, err := time.Parse(time.RFC3339, q.Get(key))
	if err != nil {
		return time.Time{}
	}
	return t
}

// List is one page of a list endpoint.
type List[T any] struct {
	Items      []T    `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	NextCursor string `json:"nextCursor,omitempty"`
}
