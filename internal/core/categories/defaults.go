package categories

import "github.com/samirrijal/turismap/internal/core/domain"

func tags(specs ...string) []domain.TagPredicate {
	out := make([]domain.TagPredicate, len(specs))
	for i, s := range specs {
		out[i] = domain.ParseTagPredicate(s)
	}
	return out
}

// defaultCategories is the built-in catalogue. Order matters: e.g.
// amenity=arts_centre classifies as "museos" and amenity=cinema as "teatros"
// because those entries come first.
var defaultCategories = []domain.Category{
	{ID: "museos", Name: "Museos", Icon: "library", Color: "#e74c3c",
		Tags: tags("tourism=museum", "amenity=arts_centre")},
	{ID: "parques", Name: "Parques", Icon: "leaf", Color: "#27ae60",
		Tags: tags("leisure=park", "leisure=garden", "natural=park")},
	{ID: "restaurantes", Name: "Restaurantes", Icon: "restaurant", Color: "#f39c12",
		Tags: tags("amenity=restaurant", "amenity=cafe", "amenity=bar", "amenity=fast_food")},
	{ID: "hoteles", Name: "Hoteles", Icon: "bed", Color: "#3498db",
		Tags: tags("tourism=hotel", "tourism=hostel", "tourism=guest_house")},
	{ID: "monumentos", Name: "Monumentos", Icon: "camera", Color: "#9b59b6",
		Tags: tags("historic=monument", "historic=castle", "historic=ruins", "tourism=attraction")},
	{ID: "iglesias", Name: "Iglesias", Icon: "home", Color: "#34495e",
		Tags: tags("amenity=place_of_worship")},
	{ID: "teatros", Name: "Teatros", Icon: "film", Color: "#e67e22",
		Tags: tags("amenity=theatre", "amenity=cinema")},
	{ID: "centros_comerciales", Name: "Centros Comerciales", Icon: "cart", Color: "#1abc9c",
		Tags: tags("shop=mall", "amenity=marketplace")},
	{ID: "museos_arte", Name: "Galerías de Arte", Icon: "color-palette", Color: "#e91e63",
		Tags: tags("tourism=gallery", "amenity=arts_centre")},
	{ID: "bibliotecas", Name: "Bibliotecas", Icon: "book", Color: "#8e44ad",
		Tags: tags("amenity=library")},
	{ID: "zoos", Name: "Zoológicos", Icon: "paw", Color: "#16a085",
		Tags: tags("tourism=zoo")},
	{ID: "acuarios", Name: "Acuarios", Icon: "water", Color: "#2980b9",
		Tags: tags("tourism=aquarium")},
	{ID: "parques_tematicos", Name: "Parques Temáticos", Icon: "happy", Color: "#f1c40f",
		Tags: tags("tourism=theme_park")},
	{ID: "estadios", Name: "Estadios", Icon: "football", Color: "#e74c3c",
		Tags: tags("leisure=sports_centre", "amenity=stadium")},
	{ID: "cines", Name: "Cines", Icon: "film", Color: "#e67e22",
		Tags: tags("amenity=cinema")},
}

// Default returns the registry loaded at process start.
func Default() *Registry {
	return New(defaultCategories)
}
