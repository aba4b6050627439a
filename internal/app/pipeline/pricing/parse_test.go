package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
		ok   bool
	}{
		{name: "float64", raw: 42.5, want: 42.5, ok: true},
		{name: "float32", raw: float32(2.5), want: 2.5, ok: true},
		{name: "int", raw: 67000, want: 67000, ok: true},
		{name: "json number", raw: json.Number("0.000123"), want: 0.000123, ok: true},
		{name: "plain string", raw: "67000.12", want: 67000.12, ok: true},
		{name: "string with commas", raw: "1,234.5 USD", want: 1234.5, ok: true},
		{name: "string with prose", raw: "price is 2,500.75 today", want: 2500.75, ok: true},
		{name: "scientific notation", raw: "1.5e3", want: 1500, ok: true},
		{name: "hex string", raw: "0x1f", want: 31, ok: true},
		{name: "hex string upper prefix", raw: "0X10", want: 16, ok: true},
		{name: "hex with junk", raw: "0xzz", ok: false},
		{name: "ticker object", raw: map[string]any{"symbol": "BTCUSDT", "price": "67000.12"}, want: 67000.12, ok: true},
		{name: "lastPrice key", raw: map[string]any{"lastPrice": 99.5}, want: 99.5, ok: true},
		{name: "string map", raw: map[string]string{"close": "12.25"}, want: 12.25, ok: true},
		{name: "nested value", raw: map[string]any{"price": map[string]any{"value": "3.5"}}, want: 3.5, ok: true},
		{name: "nil", raw: nil, ok: false},
		{name: "empty string", raw: "", ok: false},
		{name: "no number", raw: "unavailable", ok: false},
		{name: "unknown keys", raw: map[string]any{"bid": 1.0}, ok: false},
		{name: "nan", raw: math.NaN(), ok: false},
		{name: "inf string", raw: "Inf", ok: false},
		{name: "unsupported type", raw: []string{"1.0"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
