package catalog

import (
	"strings"

	"github.com/gosimple/slug"
)

// AllCategories disables category filtering.
const AllCategories = "all"

// Filter returns the products whose title or description contains query
// (case-insensitive) and whose category matches category. An empty query or
// an empty/"all" category disables that half of the filter. Categories match
// by exact name or by slug, so "mens-clothing" selects "men's clothing".
// Input order is preserved.
func Filter(products []Product, query, category string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	anyCategory := category == "" || strings.EqualFold(category, AllCategories)

	var catSlug string
	if !anyCategory {
		catSlug = slug.Make(category)
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if !anyCategory && p.Category != category && slug.Make(p.Category) != catSlug {
			continue
		}
		out = append(out, p)
	}
	return out
}
