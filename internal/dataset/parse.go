package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ParseOptions controls numeric parsing. The zero value parses strictly with
// '.' as decimal separator and no grouping.
type ParseOptions struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
}

var naTokens = map[string]struct{}{
	"":      {},
	"na":    {},
	"n/a":   {},
	"nan":   {},
	"-nan":  {},
	"null":  {},
	"none":  {},
	"<na>":  {},
	"#n/a":  {},
	"<nil>": {},
}

func isNAToken(s string) bool {
	_, ok := naTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseNumeric converts a cell to a float. NA-like tokens and anything
// strconv rejects report false; a parsed NaN is treated as missing too.
func ParseNumeric(s string, opt ParseOptions) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if isNAToken(raw) {
		return 0, false
	}
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
