package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "decimal", raw: "1000000", want: "1000000", ok: true},
		{name: "hex with prefix", raw: "0x5f5e100", want: "100000000", ok: true},
		{name: "hex upper prefix", raw: "0XDE0B6B3A7640000", want: "1000000000000000000", ok: true},
		{name: "bare hex with letters", raw: "beef", want: "48879", ok: true},
		{name: "large decimal", raw: "123456789012345678901234567890", want: "123456789012345678901234567890", ok: true},
		{name: "pre-scaled float keeps integer part", raw: "1.5", want: "1", ok: true},
		{name: "whitespace", raw: "  42  ", want: "42", ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "not-a-number", ok: false},
		{name: "negative float", raw: "-1.5", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRawAmount(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestToUnits(t *testing.T) {
	wei, ok := new(big.Int).SetString("2000000000000000000", 10)
	require.True(t, ok)
	assert.InDelta(t, 2.0, ToUnits(wei, 18), 1e-12)
	assert.InDelta(t, 5000, ToUnits(big.NewInt(5000000000), 6), 1e-9)
	assert.InDelta(t, 42, ToUnits(big.NewInt(42), 0), 1e-12)
	assert.Zero(t, ToUnits(nil, 18))
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1500000), 6))
	assert.Equal(t, "1", FormatUnits(big.NewInt(1000000), 6))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))
	assert.Equal(t, "123", FormatUnits(big.NewInt(123), 0))
	assert.Equal(t, "0", FormatUnits(nil, 6))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0.00", FormatUSD(0))
	assert.Equal(t, "$12.50", FormatUSD(12.5))
	assert.Equal(t, "$1,234.57", FormatUSD(1234.567))
	assert.Equal(t, "$1,234,567.89", FormatUSD(1234567.891))
}
