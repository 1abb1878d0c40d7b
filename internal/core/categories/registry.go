// Package categories holds the read-only registry mapping category ids to
// OpenStreetMap tag predicates.
package categories

import "github.com/samirrijal/turismap/internal/core/domain"

// Registry is an ordered, immutable list of categories. Declaration order is
// the classification priority: the first category with a matching predicate
// wins. A Registry is safe for concurrent use.
type Registry struct {
	list  []domain.Category
	index map[string]int
}

// New builds a registry from categories in priority order. Duplicate ids
// keep their first definition.
func New(cats []domain.Category) *Registry {
	r := &Registry{index: make(map[string]int, len(cats))}
	for _, c := range cats {
		if _, dup := r.index[c.ID]; dup {
			continue
		}
		r.index[c.ID] = len(r.list)
		r.list = append(r.list, c)
	}
	return r
}

// List returns a copy of every category in registry order.
func (r *Registry) List() []domain.Category {
	out := make([]domain.Category, len(r.list))
	copy(out, r.list)
	return out
}

// Get looks up a category by id.
func (r *Registry) Get(id string) (domain.Category, bool) {
	i, ok := r.index[id]
	if !ok {
		return domain.Category{}, false
	}
	return r.list[i], true
}

// IDs returns the category ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.list))
	for i, c := range r.list {
		ids[i] = c.ID
	}
	return ids
}

// Classify returns the id of the first category with a predicate matched by
// tags, or domain.Uncategorized.
func (r *Registry) Classify(tags map[string]string) string {
	for _, c := range r.list {
		for _, p := range c.Tags {
			if p.Matches(tags) {
				return c.ID
			}
		}
	}
	return domain.Uncategorized
}
