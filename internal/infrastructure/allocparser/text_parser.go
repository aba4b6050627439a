package allocparser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"rebalancer/internal/app/port"
)

// allocationPattern matches one "<percent>% <symbol>" or "<symbol>: <percent>%"
// fragment, e.g. "40% BTC", "25% in SOL", "eth: 35%". The second form requires
// the separator so prose like "another 20%" is not read as a ticker.
var allocationPattern = regexp.MustCompile(
	`(?i)(?:(\d+(?:\.\d+)?)\s*%\s*(?:in\s+|of\s+)?([a-z][a-z0-9]{1,9})|([a-z][a-z0-9]{1,9})\s*[:=]\s*(\d+(?:\.\d+)?)\s*%)`)

// noiseWords are tokens of the even-split fallback path that are not tickers.
var noiseWords = map[string]struct{}{
	"and": {}, "in": {}, "of": {}, "the": {}, "a": {}, "an": {},
	"i": {}, "my": {}, "me": {}, "we": {}, "to": {}, "into": {},
	"want": {}, "with": {}, "all": {}, "put": {}, "move": {},
	"split": {}, "between": {}, "equally": {}, "evenly": {}, "rest": {},
	"portfolio": {}, "allocation": {}, "target": {}, "keep": {}, "hold": {},
}

// TextParser extracts a target allocation from a free-text description with
// plain lexical rules, no model call. It implements port.AllocationParser.
//
// Descriptions with explicit percentages ("40% BTC, 35% ETH, 25% USDT") map
// each percentage to its symbol. Descriptions that only list symbols get an
// even split. Percentages are taken as written; normalization to a 100% sum
// is the caller's job.
type TextParser struct {
	logger port.Logger
}

// NewTextParser creates a TextParser.
func NewTextParser(log port.Logger) *TextParser {
	return &TextParser{logger: log}
}

// ParseAllocation implements port.AllocationParser.
func (p *TextParser) ParseAllocation(_ context.Context, description string) (map[string]float64, error) {
	text := strings.TrimSpace(description)
	if text == "" {
		return nil, fmt.Errorf("empty allocation description")
	}

	out := make(map[string]float64)
	for _, m := range allocationPattern.FindAllStringSubmatch(text, -1) {
		var rawPercent, rawSymbol string
		if m[1] != "" {
			rawPercent, rawSymbol = m[1], m[2]
		} else {
			rawPercent, rawSymbol = m[4], m[3]
		}
		symbol := strings.ToUpper(rawSymbol)
		if _, noise := noiseWords[strings.ToLower(rawSymbol)]; noise {
			continue
		}
		percent, err := strconv.ParseFloat(rawPercent, 64)
		if err != nil || percent <= 0 {
			continue
		}
		out[symbol] += percent
	}
	if len(out) > 0 {
		p.logger.Debug("parsed allocation from explicit percentages", "assets", len(out))
		return out, nil
	}

	// No percentages found: treat every ticker-looking token as an equal
	// share of the portfolio.
	symbols := extractTickers(text)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no assets recognized in description: %q", description)
	}
	share := 100.0 / float64(len(symbols))
	for _, s := range symbols {
		out[s] = share
	}
	p.logger.Debug("parsed allocation as even split", "assets", len(symbols))
	return out, nil
}

var tickerPattern = regexp.MustCompile(`(?i)\b[a-z][a-z0-9]{1,9}\b`)

func extractTickers(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range tickerPattern.FindAllString(text, -1) {
		lower := strings.ToLower(tok)
		if _, noise := noiseWords[lower]; noise {
			continue
		}
		upper := strings.ToUpper(tok)
		if _, dup := seen[upper]; dup {
			continue
		}
		// Free text mixes tickers with prose; only tokens written in caps or
		// known ticker shape (<=5 chars) are treated as assets.
		if len(tok) > 5 && tok != upper {
			continue
		}
		seen[upper] = struct{}{}
		out = append(out, upper)
	}
	return out
}
