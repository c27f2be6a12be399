package catalog

import (
	"context"
	"errors"
	"strings"
)

// PageSize is the number of products shown per listing page.
const PageSize = 12

// ErrNotFound is returned when a product or category does not exist or is hidden.
var ErrNotFound = errors.New("catalog: not found")

// Category groups products on the storefront.
type Category struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Hidden bool   `yaml:"hidden" json:"hidden"`
}

// Size is a global size label such as "M" or "42".
type Size struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// ProductSize links a product to a size with its stock level.
type ProductSize struct {
	SizeID   int    `yaml:"size_id" json:"size_id"`
	SizeName string `yaml:"size_name" json:"size_name"`
	Stock    int    `yaml:"stock" json:"stock"`
}

// Product is a catalog entry. Description holds markdown.
type Product struct {
	ID          int           `yaml:"id" json:"id"`
	CategoryID  int           `yaml:"category_id" json:"category_id"`
	Name        string        `yaml:"name" json:"name"`
	Price       float64       `yaml:"price" json:"price"`
	Image       string        `yaml:"image" json:"image"`
	Description string        `yaml:"description" json:"description"`
	Hidden      bool          `yaml:"hidden" json:"hidden"`
	Sizes       []ProductSize `yaml:"sizes" json:"sizes"`
}

// Query filters the product listing.
type Query struct {
	Search     string
	CategoryID int
	Page       int
}

// Page is one page of the product listing.
type Page struct {
	Products   []Product
	Number     int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
}

// Service exposes read access to the storefront catalog.
type Service interface {
	Categories(ctx context.Context) ([]Category, error)
	Category(ctx context.Context, id int) (Category, error)
	Products(ctx context.Context, query Query) (Page, error)
	Product(ctx context.Context, id int) (Product, error)
	Sizes(ctx context.Context) (SizeCatalog, error)
}

func matchesSearch(p Product, category Category, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(category.Name), term)
}

// paginate clamps page into range: invalid pages select the first page and
// pages past the end select the last one.
func paginate(products []Product, page int) Page {
	total := len(products)
	pages := (total + PageSize - 1) / PageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}
	out := make([]Product, 0, end-start)
	out = append(out, products[start:end]...)
	return Page{
		Products:   out,
		Number:     page,
		TotalPages: pages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}
