package cache

import (
	"sort"
	"strings"
)

// ListID is the ID of a collection tag, eg: {Project LIST} for every project list.
const ListID = "LIST"

// Tag associates cached reads with a resource identity or collection.
// Reads provide tags; writes invalidate them.
type Tag struct {
	Type string
	ID   string
}

// NewTag returns the tag of a single resource.
func NewTag(typ, id string) Tag { return Tag{Type: typ, ID: id} }

// ListTag returns the collection tag of a resource type.
func ListTag(typ string) Tag { return Tag{Type: typ, ID: ListID} }

// TypeTag returns a tag which, when invalidated, matches every tag of the given type.
func TypeTag(typ string) Tag { return Tag{Type: typ} }

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// Matches reports whether invalidating t invalidates the provided tag.
func (t Tag) Matches(provided Tag) bool {
	return t.Type == provided.Type && (t.ID == "" || t.ID == provided.ID)
}

// ParseTag parses the `Type:ID` form returned by Tag.String.
func ParseTag(s string) Tag {
	typ, id := s, ""
	if i := strings.Index(s, ":"); i >= 0 {
		typ, id = s[:i], s[i+1:]
	}
	return Tag{Type: typ, ID: id}
}

// Dedupe returns tags without duplicates and without empty types, in a stable order.
func Dedupe(tags []Tag) []Tag {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[Tag]struct{}, len(tags))
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t.Type == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}
