package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSizeCatalogForms(t *testing.T) {
	t.Parallel()

	list := `[{"product_id": 1, "sizes": [{"id": 3, "name": "M"}, {"id": "4.0", "name": " L "}]}, {"product_id": "2", "sizes": []}]`
	got, err := ParseSizeCatalog([]byte(list))
	require.NoError(t, err)
	require.Equal(t, []SizeOption{{ID: "3", Name: "M"}, {ID: "4", Name: "L"}}, got.Lookup(1))
	require.Empty(t, got.Lookup(2))
	require.Nil(t, got.Lookup(99))

	byMap, err := ParseSizeCatalog([]byte(`{"1": [{"id": 3, "name": "M"}], "x": []}`))
	require.NoError(t, err)
	require.Equal(t, []SizeOption{{ID: "3", Name: "M"}}, byMap.Lookup(1))
	require.Len(t, byMap, 1)

	empty, err := ParseSizeCatalog(nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = ParseSizeCatalog([]byte(`"nope"`))
	require.Error(t, err)
}

func TestSizeCatalogMarshalsListForm(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(SizeCatalog{2: nil, 1: {{ID: "3", Name: "M"}}})
	require.NoError(t, err)
	require.JSONEq(t, `[{"product_id":1,"sizes":[{"id":"3","name":"M"}]},{"product_id":2,"sizes":[]}]`, string(b))

	back, err := ParseSizeCatalog(b)
	require.NoError(t, err)
	require.Equal(t, "M", back.Lookup(1)[0].Name)
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, err := LoadFile("")
	require.NoError(t, err)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		require.False(t, c.Hidden)
	}

	_, err = svc.Product(ctx, 5)
	require.ErrorIs(t, err, ErrNotFound)

	sizes, err := svc.Sizes(ctx)
	require.NoError(t, err)
	require.Equal(t, []SizeOption{{ID: "1", Name: "S"}, {ID: "2", Name: "M"}, {ID: "3", Name: "L"}}, sizes.Lookup(1))
	require.Empty(t, sizes.Lookup(4))
	require.Nil(t, sizes.Lookup(5))
}

func TestProductsSearchAndFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, err := LoadFile("")
	require.NoError(t, err)

	page, err := svc.Products(ctx, Query{Search: "JEAN"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	require.Equal(t, 3, page.Products[0].ID)

	page, err = svc.Products(ctx, Query{Search: "áo thun"})
	require.NoError(t, err)
	require.Len(t, page.Products, 2, "category name matches too")

	page, err = svc.Products(ctx, Query{CategoryID: 3})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)

	page, err = svc.Products(ctx, Query{Search: "mùa trước"})
	require.NoError(t, err)
	require.Empty(t, page.Products)
	require.Equal(t, 1, page.TotalPages)
}

func TestProductsPagination(t *testing.T) {
	t.Parallel()

	doc := Document{Categories: []Category{{ID: 1, Name: "All"}}}
	for i := 1; i <= 30; i++ {
		doc.Products = append(doc.Products, Product{ID: i, CategoryID: 1, Name: fmt.Sprintf("P%d", i), Price: 1})
	}
	svc := NewStaticService(doc)
	ctx := context.Background()

	page, err := svc.Products(ctx, Query{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Products, PageSize)
	require.Equal(t, 13, page.Products[0].ID)
	require.True(t, page.HasPrev)
	require.True(t, page.HasNext)

	page, err = svc.Products(ctx, Query{Page: 99})
	require.NoError(t, err)
	require.Equal(t, 3, page.Number)
	require.Len(t, page.Products, 6)
	require.False(t, page.HasNext)

	page, err = svc.Products(ctx, Query{Page: -1})
	require.NoError(t, err)
	require.Equal(t, 1, page.Number)
	require.Equal(t, 30, page.Total)
}

func TestLoadFileRejectsDuplicates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products:\n  - id: 1\n    name: a\n  - id: 1\n    name: b\n"), 0o600))
	_, err := LoadFile(path)
	require.ErrorContains(t, err, "duplicate product id 1")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRenderDescription(t *testing.T) {
	t.Parallel()

	html := string(RenderDescription("**Bền** đẹp <script>alert(1)</script>\n\n[shop](https://example.com)"))
	require.Contains(t, html, "<strong>Bền</strong>")
	require.NotContains(t, html, "<script>")
	require.True(t, strings.Contains(html, `rel="nofollow"`))
	require.Empty(t, RenderDescription("   "))
}
