// Package catalog is the boundary to the remote product, category and auth API.
// The remote side is authoritative; nothing here caches or retries.
package catalog

import (
	"strings"
)

// Rating is the aggregate review score the API reports for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog entry as served by GET /products.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

// ProductInput is the create/edit form body. All fields are required.
type ProductInput struct {
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Description string  `json:"description" validate:"required"`
	Image       string  `json:"image" validate:"required,url"`
	Category    string  `json:"category" validate:"required"`
}

// InputFrom seeds a form from an existing product, for edits.
func InputFrom(p Product) ProductInput {
	return ProductInput{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
	}
}

// Normalize trims surrounding whitespace so blank fields fail validation.
func (in ProductInput) Normalize() ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.Category = strings.TrimSpace(in.Category)
	return in
}
