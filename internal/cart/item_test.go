package cart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSizeID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":      "",
		" M ":   "M",
		"3":     "3",
		"3.0":   "3",
		"1e1":   "10",
		"3.5":   "3.5",
		"XL":    "XL",
		"EXTRA": "EXTRA",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeSizeID(in), in)
	}
}

func TestParseInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "12", want: 12, ok: true},
		{in: " 12abc", want: 12, ok: true},
		{in: "-4", want: -4, ok: true},
		{in: "+2", want: 2, ok: true},
		{in: "3.9", want: 3, ok: true},
		{in: "abc", ok: false},
		{in: "", ok: false},
		{in: "-", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseInt(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, ParseQuantity(""))
	require.Equal(t, 1, ParseQuantity("0"))
	require.Equal(t, 1, ParseQuantity("x"))
	require.Equal(t, 9, ParseQuantity("9"))
}

func TestAddQuantity(t *testing.T) {
	t.Parallel()

	require.Equal(t, 5, AddQuantity(2, 3))
	require.Equal(t, 1, AddQuantity(2, -7))
	require.Equal(t, math.MaxInt, AddQuantity(math.MaxInt, 1))
	require.Equal(t, math.MaxInt, AddQuantity(math.MaxInt-2, math.MaxInt))
}

func TestRawScalar(t *testing.T) {
	t.Parallel()

	require.Equal(t, "3", RawScalar(json.RawMessage(` 3 `)))
	require.Equal(t, "M", RawScalar(json.RawMessage(`"M"`)))
	require.Equal(t, "", RawScalar(json.RawMessage(`null`)))
	require.Equal(t, "", RawScalar(nil))
}
