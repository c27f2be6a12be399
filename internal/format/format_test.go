package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:       "0đ",
		500:     "500đ",
		299000:  "299.000đ",
		1250000: "1.250.000đ",
		99.6:    "100đ",
	}
	for in, want := range cases {
		require.Equal(t, want, Price(in))
	}
}

func TestParsePriceText(t *testing.T) {
	t.Parallel()

	v, ok := ParsePriceText("299.000đ")
	require.True(t, ok)
	require.Equal(t, float64(299000), v)

	v, ok = ParsePriceText(" Giá: 1.250.000 VND ")
	require.True(t, ok)
	require.Equal(t, float64(1250000), v)

	v, ok = ParsePriceText("000")
	require.True(t, ok)
	require.Zero(t, v)

	_, ok = ParsePriceText("Liên hệ")
	require.False(t, ok)
}

func TestOrderTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	require.Equal(t, "05/03/2024 09:07", OrderTime(ts))
	require.Empty(t, OrderTime(time.Time{}))
	require.Equal(t, "Á", Initial(" áo"))
	require.Equal(t, "?", Initial(""))
}
