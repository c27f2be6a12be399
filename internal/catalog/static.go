package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// Document is the on-disk catalog layout.
type Document struct {
	Categories []Category `yaml:"categories"`
	Sizes      []Size     `yaml:"sizes"`
	Products   []Product  `yaml:"products"`
}

// StaticService serves an immutable catalog held in memory.
type StaticService struct {
	categories []Category
	byCategory map[int]Category
	products   []Product
	byID       map[int]Product
	sizes      SizeCatalog
}

// NewStaticService indexes doc. Products keep their document order.
func NewStaticService(doc Document) *StaticService {
	s := &StaticService{
		byCategory: make(map[int]Category, len(doc.Categories)),
		byID:       make(map[int]Product, len(doc.Products)),
	}
	for _, c := range doc.Categories {
		c.Name = strings.TrimSpace(c.Name)
		s.categories = append(s.categories, c)
		s.byCategory[c.ID] = c
	}
	for _, p := range doc.Products {
		p.Name = strings.TrimSpace(p.Name)
		s.products = append(s.products, p)
		s.byID[p.ID] = p
	}
	s.sizes = BuildSizeCatalog(doc.Products, doc.Sizes)
	return s
}

// ParseDocument decodes a YAML catalog.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	ids := make(map[int]struct{}, len(doc.Products))
	for _, p := range doc.Products {
		if p.ID <= 0 {
			return Document{}, fmt.Errorf("catalog: product %q has invalid id %d", p.Name, p.ID)
		}
		if _, dup := ids[p.ID]; dup {
			return Document{}, fmt.Errorf("catalog: duplicate product id %d", p.ID)
		}
		ids[p.ID] = struct{}{}
	}
	return doc, nil
}

// LoadFile reads a catalog from path. An empty path loads the bundled demo catalog.
func LoadFile(path string) (*StaticService, error) {
	data := defaultCatalog
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		data = b
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return NewStaticService(doc), nil
}

// Categories returns the visible categories ordered by id.
func (s *StaticService) Categories(context.Context) ([]Category, error) {
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Category returns one category, hidden or not.
func (s *StaticService) Category(_ context.Context, id int) (Category, error) {
	c, ok := s.byCategory[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

// Products lists visible products matching query.
func (s *StaticService) Products(_ context.Context, query Query) (Page, error) {
	term := strings.TrimSpace(query.Search)
	matched := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Hidden {
			continue
		}
		if query.CategoryID != 0 && p.CategoryID != query.CategoryID {
			continue
		}
		if !matchesSearch(p, s.byCategory[p.CategoryID], term) {
			continue
		}
		matched = append(matched, p)
	}
	return paginate(matched, query.Page), nil
}

// Product returns a visible product.
func (s *StaticService) Product(_ context.Context, id int) (Product, error) {
	p, ok := s.byID[id]
	if !ok || p.Hidden {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Sizes returns the size catalog of visible products.
func (s *StaticService) Sizes(context.Context) (SizeCatalog, error) {
	return s.sizes, nil
}
