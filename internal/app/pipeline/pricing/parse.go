// Package pricing holds the defensive grammar for price oracle payloads.
// Oracles in the wild answer with bare numbers, JSON objects under varying
// key names, or free text with a number embedded somewhere near the front;
// all of that is funneled through Parse before any price is trusted.
package pricing

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Alternate key names under which oracles report a USD price, tried in order.
var priceKeys = []string{"price", "lastPrice", "last", "close", "value"}

// Matches a leading numeric token: optional sign, digits with optional
// thousands separators, optional fraction, optional exponent.
var leadingNumber = regexp.MustCompile(`[+-]?\d[\d,]*(?:\.\d+)?(?:[eE][+-]?\d+)?`)

// Parse extracts a price from a raw oracle payload. It returns false when no
// finite number can be extracted; sanity bounds are the caller's concern.
func Parse(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return finite(float64(v))
	case int64:
		return finite(float64(v))
	case uint64:
		return finite(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		return parseString(v)
	case map[string]any:
		return parseMap(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return parseMap(m)
	}
	return 0, false
}

func parseMap(m map[string]any) (float64, bool) {
	for _, key := range priceKeys {
		inner, ok := m[key]
		if !ok {
			continue
		}
		// One level of recursion covers {"price": {"value": "..."}} shapes.
		if f, ok := Parse(inner); ok {
			return f, true
		}
	}
	return 0, false
}

func parseString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		u, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return finite(float64(u))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}
	tok := leadingNumber.FindString(s)
	if tok == "" {
		return 0, false
	}
	tok = strings.ReplaceAll(tok, ",", "")
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
