package domain

import "strings"

// TagPredicate matches an OSM tag. An empty Value means presence-only.
type TagPredicate struct {
	Key   string
	Value string
}

// ParseTagPredicate parses "key=value" or "key".
func ParseTagPredicate(s string) TagPredicate {
	key, value, _ := strings.Cut(s, "=")
	return TagPredicate{Key: key, Value: value}
}

// Matches reports whether tags satisfy the predicate.
func (p TagPredicate) Matches(tags map[string]string) bool {
	v, ok := tags[p.Key]
	if p.Value == "" {
		return ok
	}
	return ok && v == p.Value
}

// String renders the predicate back to its "key=value" / "key" form.
func (p TagPredicate) String() string {
	if p.Value == "" {
		return p.Key
	}
	return p.Key + "=" + p.Value
}

// MarshalText lets predicates serialize as plain strings.
func (p TagPredicate) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Category is a named group of tag predicates with display metadata.
type Category struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Icon  string         `json:"icon"`
	Color string         `json:"color"`
	Tags  []TagPredicate `json:"tags"`
}
