// Package overpassql composes Overpass QL query text. Building a query is
// pure; nothing here performs I/O.
package overpassql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/turismap/internal/core/categories"
	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/geospatial"
)

// TimeoutSeconds is the server-side execution hint embedded in every query.
// It is independent of the HTTP transport timeout.
const TimeoutSeconds = 25

// DefaultKeys are matched by presence when no category is requested.
var DefaultKeys = []string{"tourism", "amenity", "leisure", "historic"}

func header() string {
	return fmt.Sprintf("[out:json][timeout:%d];", TimeoutSeconds)
}

// Builder composes queries against a category registry.
type Builder struct {
	registry *categories.Registry
}

// NewBuilder creates a Builder.
func NewBuilder(registry *categories.Registry) *Builder {
	return &Builder{registry: registry}
}

// Nearby builds the union query for places around origin. For each requested
// category it emits one clause per predicate and source type; unknown ids are
// skipped. With no categories, the DefaultKeys presence clauses are used.
// Ways and relations are returned with their center point.
func (b *Builder) Nearby(origin domain.Coordinate, radiusMeters float64, categoryIDs []string) string {
	bbox := bboxFilter(geospatial.BoundingBox(origin, radiusMeters))

	var sb strings.Builder
	sb.WriteString(header())
	sb.WriteString("(")

	if len(categoryIDs) > 0 {
		for _, id := range categoryIDs {
			cat, ok := b.registry.Get(id)
			if !ok {
				continue
			}
			for _, p := range cat.Tags {
				writeClauses(&sb, tagFilter(p), bbox)
			}
		}
	} else {
		for _, key := range DefaultKeys {
			writeClauses(&sb, tagFilter(domain.TagPredicate{Key: key}), bbox)
		}
	}

	sb.WriteString("\n);\nout center qt;")
	return sb.String()
}

// Lookup builds a query for a single element by type and id, with its center.
func Lookup(sourceType string, id int64) string {
	return fmt.Sprintf("%s%s(%d);out center;", header(), sourceType, id)
}

func writeClauses(sb *strings.Builder, filter, bbox string) {
	for _, t := range domain.SourceTypes {
		sb.WriteString("\n  ")
		sb.WriteString(t)
		sb.WriteString(filter)
		sb.WriteString(bbox)
		sb.WriteString(";")
	}
}

func tagFilter(p domain.TagPredicate) string {
	if p.Value == "" {
		return fmt.Sprintf("[%q]", p.Key)
	}
	return fmt.Sprintf("[%q=%q]", p.Key, p.Value)
}

// bboxFilter renders (south,west,north,east), the Overpass bbox order.
func bboxFilter(b domain.BoundingBox) string {
	return "(" + formatCoord(b.South) + "," + formatCoord(b.West) + "," +
		formatCoord(b.North) + "," + formatCoord(b.East) + ")"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
