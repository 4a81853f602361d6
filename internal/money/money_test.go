package money

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponent(t *testing.T) {
	assert.Equal(t, int32(2), Exponent("USD"))
	assert.Equal(t, int32(2), Exponent("usd"))
	assert.Equal(t, int32(0), Exponent("JPY"))
	assert.Equal(t, int32(3), Exponent("BHD"))
	assert.Equal(t, int32(2), Exponent(""))
	assert.Equal(t, int32(2), Exponent("not-a-currency"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "USD 19.99", Format(1999, "usd"))
	assert.Equal(t, "EUR 0.05", Format(5, "EUR"))
	assert.Equal(t, "JPY 500", Format(500, "jpy"))
	assert.Equal(t, "12.00", Format(1200, ""))
}

func TestFromFloatRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{19.99, 1999},
		{0.125, 12},
		{0.135, 14},
		{10.005, 1000},
		{100, 10000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromFloat(tt.in, "USD"), "amount %v", tt.in)
	}
}

func TestFromMajorDropsExtraPrecision(t *testing.T) {
	d := decimal.RequireFromString("4.565")
	assert.Equal(t, int64(456), FromMajor(d, "USD"))
	assert.Equal(t, int64(4), FromMajor(decimal.RequireFromString("4.5"), "JPY"))
}

func TestParseDisplay(t *testing.T) {
	got, err := ParseDisplay("19.99", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1999), got)

	_, err = ParseDisplay("abc", "USD")
	assert.Error(t, err)
}

func TestMonetaryRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("display round-trip is idempotent", prop.ForAll(
		func(cents int64) bool {
			once, err := ParseDisplay(Display(cents, "USD"), "USD")
			if err != nil {
				return false
			}
			twice, err := ParseDisplay(Display(once, "USD"), "USD")
			if err != nil {
				return false
			}
			return once == cents && twice == once
		},
		gen.Int64Range(1, 100_000_00),
	))

	properties.Property("float round-trip is idempotent", prop.ForAll(
		func(cents int64) bool {
			once := FromFloat(ToFloat(cents, "USD"), "USD")
			twice := FromFloat(ToFloat(once, "USD"), "USD")
			return once == cents && twice == once
		},
		gen.Int64Range(1, 100_000_00),
	))

	properties.TestingRun(t)
}
