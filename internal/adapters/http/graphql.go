package http

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/metrics"
	"github.com/samirrijal/turismap/internal/pkg/validation"
)

func placeToMap(p domain.Place) map[string]interface{} {
	tags := make([]string, 0, len(p.Tags))
	for k, v := range p.Tags {
		tags = append(tags, k+"="+v)
	}
	sort.Strings(tags)
	return map[string]interface{}{
		"id":       p.ID,
		"name":     p.Name,
		"location": map[string]interface{}{"lat": p.Location.Lat, "lng": p.Location.Lng},
		"tags":     tags,
		"distance": p.Distance,
		"vicinity": p.Vicinity,
		"category": p.Category,
	}
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func placesToMaps(places []domain.Place) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(places))
	for _, p := range places {
		out = append(out, placeToMap(p))
	}
	return out
}

// gqlOrigin validates coordinate and radius arguments the same way the REST
// handlers do.
func gqlOrigin(deps *Dependencies, args map[string]interface{}) (domain.Coordinate, int, error) {
	lat, _ := args["lat"].(float64)
	lng, _ := args["lng"].(float64)
	if err := validation.Struct(&coordinates{Lat: lat, Lng: lng}); err != nil {
		return domain.Coordinate{}, 0, errors.New(msgInvalidCoords)
	}
	radius := deps.defaultRadius()
	if r, ok := args["radius"].(int); ok {
		radius = r
	}
	if radius <= 0 || radius > deps.maxRadius() {
		return domain.Coordinate{}, 0, fmt.Errorf("Radio inválido. Debe estar entre 1 y %d metros", deps.maxRadius())
	}
	return domain.Coordinate{Lat: lat, Lng: lng}, radius, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	placeFields := func() graphql.Fields {
		return graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: locationType},
			"tags":     &graphql.Field{Type: graphql.NewList(graphql.String), Description: "OSM tags as key=value"},
			"distance": &graphql.Field{Type: graphql.Int, Description: "Meters from the query origin"},
			"vicinity": &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
		}
	}

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Place",
		Fields: placeFields(),
	})

	detailsFields := placeFields()
	detailsFields["address"] = &graphql.Field{Type: graphql.String}
	detailsFields["phone"] = &graphql.Field{Type: graphql.String}
	detailsFields["website"] = &graphql.Field{Type: graphql.String}
	detailsFields["openingHours"] = &graphql.Field{Type: graphql.String}
	detailsType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "PlaceDetails",
		Fields: detailsFields,
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"name":  &graphql.Field{Type: graphql.String},
			"icon":  &graphql.Field{Type: graphql.String},
			"color": &graphql.Field{Type: graphql.String},
			"tags":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	nearbyArgs := graphql.FieldConfigArgument{
		"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"radius": &graphql.ArgumentConfig{Type: graphql.Int},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type:        graphql.NewList(categoryType),
				Description: "Place categories in classification priority order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var out []map[string]interface{}
					for _, v := range categoryViews(deps.Places.Categories()) {
						out = append(out, map[string]interface{}{
							"id": v.ID, "name": v.Name, "icon": v.Icon, "color": v.Color, "tags": v.Tags,
						})
					}
					return out, nil
				},
			},
			"nearbyPlaces": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Named places around a point, nearest first",
				Args: graphql.FieldConfigArgument{
					"lat":      nearbyArgs["lat"],
					"lng":      nearbyArgs["lng"],
					"radius":   nearbyArgs["radius"],
					"category": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin, radius, err := gqlOrigin(deps, p.Args)
					if err != nil {
						return nil, err
					}
					var raw []string
					if list, ok := p.Args["category"].([]interface{}); ok {
						for _, v := range list {
							if s, ok := v.(string); ok {
								raw = append(raw, s)
							}
						}
					}
					cats := parseCategoryList(raw)
					places, err := deps.Places.FindNearby(p.Context, origin, float64(radius), cats)
					if err != nil {
						return nil, publicError(p.Context, deps.Options, err)
					}
					metrics.ObserveSearch(cats, len(places))
					return placesToMaps(places), nil
				},
			},
			"searchPlaces": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Places of a single existing category around a point",
				Args: graphql.FieldConfigArgument{
					"lat":      nearbyArgs["lat"],
					"lng":      nearbyArgs["lng"],
					"radius":   nearbyArgs["radius"],
					"category": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin, radius, err := gqlOrigin(deps, p.Args)
					if err != nil {
						return nil, err
					}
					category := strings.ToLower(strings.TrimSpace(p.Args["category"].(string)))
					if !deps.Places.HasCategory(category) {
						return nil, fmt.Errorf("Categoría no válida: %q", category)
					}
					cats := []string{category}
					places, err := deps.Places.FindNearby(p.Context, origin, float64(radius), cats)
					if err != nil {
						return nil, publicError(p.Context, deps.Options, err)
					}
					metrics.ObserveSearch(cats, len(places))
					return placesToMaps(places), nil
				},
			},
			"place": &graphql.Field{
				Type:        detailsType,
				Description: "Enriched details for one place, null if it does not exist",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					details, err := deps.Places.FindDetails(p.Context, p.Args["id"].(string))
					if err != nil {
						if errors.Is(err, domain.ErrNotFound) {
							return nil, nil
						}
						return nil, publicError(p.Context, deps.Options, err)
					}
					m := placeToMap(details.Place)
					m["address"] = details.Address
					m["phone"] = deref(details.Phone)
					m["website"] = deref(details.Website)
					m["openingHours"] = deref(details.OpeningHours)
					return m, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "Cuerpo de la petición inválido")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
