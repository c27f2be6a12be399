package cartview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageFiles = []string{"products", "cart", "checkout"}

// Renderer executes the storefront templates. Templates are parsed once.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templateFS)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	funcs := template.FuncMap{
		"removeConfirm": func() string { return RemoveConfirm },
		"countOf":       func(n int) countView { return countView{Count: n} },
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
	base, err := template.New("_root").Funcs(funcs).ParseFS(fsys, "templates/layout.tmpl", "templates/partials.tmpl")
	if err != nil {
		return nil, fmt.Errorf("cartview: parse layout: %w", err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, name := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cartview: clone layout: %w", err)
		}
		if _, err := clone.ParseFS(fsys, "templates/"+name+".tmpl"); err != nil {
			return nil, fmt.Errorf("cartview: parse %s: %w", name, err)
		}
		r.pages[name] = clone
	}
	r.fragments = base
	return r, nil
}

// RenderProducts writes the product listing page.
func (r *Renderer) RenderProducts(w io.Writer, data ProductsPage) error {
	return r.page(w, "products", data)
}

// RenderCart writes the full cart page.
func (r *Renderer) RenderCart(w io.Writer, data CartPage) error {
	return r.page(w, "cart", data)
}

// RenderCheckout writes the checkout page.
func (r *Renderer) RenderCheckout(w io.Writer, data CheckoutPage) error {
	return r.page(w, "checkout", data)
}

// RenderCartItems writes the cart rows and summary fragment that replaces #cart-items.
func (r *Renderer) RenderCartItems(w io.Writer, data Page) error {
	return r.fragment(w, "cart_items", data)
}

// RenderCount writes the cart count indicator. oob marks it for an out-of-band swap.
func (r *Renderer) RenderCount(w io.Writer, count int, oob bool) error {
	return r.fragment(w, "cart_count", countView{Count: count, OOB: oob})
}

// RenderModal writes the quick-view modal fragment.
func (r *Renderer) RenderModal(w io.Writer, data ModalPage) error {
	return r.fragment(w, "modal", data)
}

type countView struct {
	Count int
	OOB   bool
}

func (r *Renderer) page(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("cartview: unknown page %q", name)
	}
	return execute(w, t, "base", data)
}

func (r *Renderer) fragment(w io.Writer, name string, data any) error {
	return execute(w, r.fragments, name, data)
}

// execute buffers output so a failing template never writes a partial response.
func execute(w io.Writer, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("cartview: execute %s: %w", strings.TrimSpace(name), err)
	}
	_, err := buf.WriteTo(w)
	return err
}
