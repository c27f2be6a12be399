package cart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Item is one line of the cart, keyed by (ProductID, SizeID). Display fields are
// captured when the item is added and are not refreshed from the catalog.
type Item struct {
	ProductID   int     `json:"product_id"`
	SizeID      string  `json:"size_id"`
	ProductName string  `json:"product_name"`
	SizeName    string  `json:"size_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image"`
}

// Key identifies a cart line.
type Key struct {
	ProductID int
	SizeID    string
}

// Key returns the identity key of the item.
func (i Item) Key() Key {
	return Key{ProductID: i.ProductID, SizeID: NormalizeSizeID(i.SizeID)}
}

// LineTotal is Price multiplied by Quantity.
func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Normalize returns a copy with canonical identifiers and clamped numeric fields.
func (i Item) Normalize() Item {
	i.SizeID = NormalizeSizeID(i.SizeID)
	i.ProductName = strings.TrimSpace(i.ProductName)
	i.SizeName = strings.TrimSpace(i.SizeName)
	i.Image = strings.TrimSpace(i.Image)
	if math.IsNaN(i.Price) || math.IsInf(i.Price, 0) || i.Price < 0 {
		i.Price = 0
	}
	i.Quantity = ClampQuantity(i.Quantity)
	return i
}

// CheckoutLine is the server-bound projection of an Item. Prices and names are
// left out so the server re-validates them.
type CheckoutLine struct {
	ProductID int    `json:"product_id"`
	SizeID    string `json:"size_id"`
	Quantity  int    `json:"quantity"`
}

// UnmarshalJSON accepts numbers or numeric strings for the numeric fields and a
// number or string size_id, which older cart payloads contain.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID   json.RawMessage `json:"product_id"`
		SizeID      json.RawMessage `json:"size_id"`
		ProductName string          `json:"product_name"`
		SizeName    string          `json:"size_name"`
		Price       json.RawMessage `json:"price"`
		Quantity    json.RawMessage `json:"quantity"`
		Image       string          `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pid, _ := ParseInt(RawScalar(raw.ProductID))
	price, _ := ParseFloat(RawScalar(raw.Price))
	qty, ok := ParseInt(RawScalar(raw.Quantity))
	if !ok {
		qty = 1
	}
	*i = Item{
		ProductID:   pid,
		SizeID:      NormalizeSizeID(RawScalar(raw.SizeID)),
		ProductName: raw.ProductName,
		SizeName:    raw.SizeName,
		Price:       price,
		Quantity:    qty,
		Image:       raw.Image,
	}
	return nil
}

// RawScalar renders a JSON scalar as its textual value: strings are unquoted,
// numbers are kept verbatim, null becomes "".
func RawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	return string(raw)
}

// NormalizeSizeID returns the canonical string form of a size identifier.
// Numeric identifiers such as "3.0" collapse to "3".
func NormalizeSizeID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if strings.ContainsAny(v, ".eE") {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return v
}

// SizeIDFromInt formats an integer size id canonically.
func SizeIDFromInt(id int) string {
	return strconv.Itoa(id)
}

// ClampQuantity enforces the minimum quantity of 1.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// AddQuantity adds delta to q, saturating at math.MaxInt, and clamps the result
// to the minimum quantity.
func AddQuantity(q, delta int) int {
	if delta > 0 && q > math.MaxInt-delta {
		return math.MaxInt
	}
	return ClampQuantity(q + delta)
}

// ParseQuantity parses user input the way a quantity field does: leading digits
// are used, anything unparsable or below 1 becomes 1.
func ParseQuantity(raw string) int {
	q, ok := ParseInt(raw)
	if !ok {
		return 1
	}
	return ClampQuantity(q)
}

// ParseInt reads an optional sign followed by leading digits, ignoring any
// trailing characters ("12abc" -> 12, "3.9" -> 3). ok is false when no digit leads.
func ParseInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// ParseFloat parses a decimal number, returning ok=false for empty or invalid input.
func ParseFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
