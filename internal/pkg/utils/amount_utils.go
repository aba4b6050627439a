package utils

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ParseRawAmount interprets a raw on-chain balance string as an unsigned
// integer. Strings that look hexadecimal (0x-prefixed, or containing hex
// letters) are parsed base 16; everything else is parsed base 10. A plain
// decimal fraction ("1.5") is accepted too since some indexers pre-scale
// values. Returns false when the string cannot be interpreted at all.
func ParseRawAmount(raw string) (*big.Int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}

	hexDigits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		hexDigits = s[2:]
	}
	if v, ok := new(big.Int).SetString(hexDigits, 16); ok && isHexLike(s) {
		return v, true
	}
	if v, ok := new(big.Int).SetString(s, 10); ok {
		return v, true
	}
	// Some sources report an already scaled decimal number. Keep only the
	// integer part; the caller scales by decimals separately.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		v, _ := new(big.Float).SetFloat64(f).Int(nil)
		return v, true
	}
	return nil, false
}

func isHexLike(s string) bool {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return true
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			return true
		default:
			return false
		}
	}
	return false
}

// ToUnits divides a raw integer amount by 10^decimals.
func ToUnits(amount *big.Int, decimals int) float64 {
	if amount == nil {
		return 0
	}
	if decimals < 0 {
		decimals = 0
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor).Float64()
	return value
}

// FormatUnits converts a raw integer amount to a human-readable decimal
// string, trimming trailing zeros.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	if decimals <= 0 {
		return amount.String()
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor)

	formatted := value.Text('f', decimals)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	if formatted == "" {
		return "0"
	}
	return formatted
}

// FormatUSD renders a USD amount with two decimals and thousands grouping.
func FormatUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return fmt.Sprintf("$%s", out)
}
