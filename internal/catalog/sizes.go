package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/akira3175/fashionshop/internal/cart"
)

// SizeOption is one selectable size of a product. ID is the canonical size id.
type SizeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SizeCatalog maps product ids to their selectable sizes.
type SizeCatalog map[int][]SizeOption

type sizeEntry struct {
	ProductID json.RawMessage `json:"product_id"`
	Sizes     []rawSizeOption `json:"sizes"`
}

type rawSizeOption struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
}

// ParseSizeCatalog decodes the size catalog embedded in product pages. Both the
// list form [{"product_id":1,"sizes":[...]}] and the map form {"1":[...]} are accepted.
func ParseSizeCatalog(data []byte) (SizeCatalog, error) {
	data = bytes.TrimSpace(data)
	out := SizeCatalog{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	switch data[0] {
	case '[':
		var entries []sizeEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("catalog: parse size list: %w", err)
		}
		for _, e := range entries {
			pid, ok := cart.ParseInt(cart.RawScalar(e.ProductID))
			if !ok {
				continue
			}
			out[pid] = append(out[pid], convertOptions(e.Sizes)...)
		}
	case '{':
		var entries map[string][]rawSizeOption
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("catalog: parse size map: %w", err)
		}
		for key, sizes := range entries {
			pid, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil {
				continue
			}
			out[pid] = append(out[pid], convertOptions(sizes)...)
		}
	default:
		return nil, fmt.Errorf("catalog: parse size catalog: unexpected %q", data[0])
	}
	return out, nil
}

// Lookup returns the sizes of productID; nil when none are known.
func (c SizeCatalog) Lookup(productID int) []SizeOption {
	if c == nil {
		return nil
	}
	return c[productID]
}

// MarshalJSON writes the list form, ordered by product id.
func (c SizeCatalog) MarshalJSON() ([]byte, error) {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	type entry struct {
		ProductID int          `json:"product_id"`
		Sizes     []SizeOption `json:"sizes"`
	}
	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		sizes := c[id]
		if sizes == nil {
			sizes = []SizeOption{}
		}
		entries = append(entries, entry{ProductID: id, Sizes: sizes})
	}
	return json.Marshal(entries)
}

// BuildSizeCatalog derives the size catalog from products, skipping hidden ones.
func BuildSizeCatalog(products []Product, sizes []Size) SizeCatalog {
	names := make(map[int]string, len(sizes))
	for _, s := range sizes {
		names[s.ID] = s.Name
	}
	out := SizeCatalog{}
	for _, p := range products {
		if p.Hidden {
			continue
		}
		opts := make([]SizeOption, 0, len(p.Sizes))
		for _, ps := range p.Sizes {
			name := ps.SizeName
			if name == "" {
				name = names[ps.SizeID]
			}
			opts = append(opts, SizeOption{ID: cart.SizeIDFromInt(ps.SizeID), Name: name})
		}
		out[p.ID] = opts
	}
	return out
}

func convertOptions(in []rawSizeOption) []SizeOption {
	out := make([]SizeOption, 0, len(in))
	for _, s := range in {
		id := cart.NormalizeSizeID(cart.RawScalar(s.ID))
		if id == "" {
			continue
		}
		out = append(out, SizeOption{ID: id, Name: strings.TrimSpace(s.Name)})
	}
	return out
}
