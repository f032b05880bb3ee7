// Package refrange parses reference-range text and classifies result values
// against it.
package refrange

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the shape of a parsed reference range.
type Kind int

const (
	Unknown Kind = iota
	Band         // low - high
	Below        // < N, the value must not exceed N
	Above        // > N, the value must not fall below N
)

// Range is a parsed reference range.
type Range struct {
	Kind  Kind
	Low   float64
	High  float64
	Limit float64
}

var (
	number  = `(\d+(?:\.\d+)?|\.\d+)`
	valueRe = regexp.MustCompile(number)
	bandRe  = regexp.MustCompile(`^\s*` + number + `\s*-\s*` + number)
	boundRe = regexp.MustCompile(`^\s*([<>])\s*=?\s*` + number)
)

// Parse reads range text such as "10 - 20", "< 5" or ">= 40". Anything else
// yields a Range of Kind Unknown.
func Parse(text string) Range {
	text = strings.TrimSpace(text)
	if text == "" {
		return Range{}
	}

	if m := boundRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Range{}
		}
		if m[1] == "<" {
			return Range{Kind: Below, Limit: n}
		}
		return Range{Kind: Above, Limit: n}
	}

	if m := bandRe.FindStringSubmatch(text); m != nil {
		low, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Range{}
		}
		high, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Range{}
		}
		return Range{Kind: Band, Low: low, High: high}
	}

	return Range{}
}

// Value extracts the first numeric token from a free-text result value.
func Value(text string) (float64, bool) {
	tok := valueRe.FindString(text)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Contains reports whether v lies inside r. Unknown ranges contain everything.
func (r Range) Contains(v float64) bool {
	switch r.Kind {
	case Band:
		return v >= r.Low && v <= r.High
	case Below:
		return v <= r.Limit
	case Above:
		return v >= r.Limit
	default:
		return true
	}
}

// IsAbnormal reports whether value falls outside rangeText. It is false
// whenever either side cannot be parsed.
func IsAbnormal(value, rangeText string) bool {
	v, ok := Value(value)
	if !ok {
		return false
	}
	return !Parse(rangeText).Contains(v)
}

// Text renders the display form of a stored range. Missing bounds fall back to
// whichever bound exists, then to fallback, then to "N/A".
func Text(low, high *float64, fallback string) string {
	switch {
	case low != nil && high != nil:
		return format(*low) + " - " + format(*high)
	case low != nil:
		return format(*low)
	case high != nil:
		return format(*high)
	case strings.TrimSpace(fallback) != "":
		return strings.TrimSpace(fallback)
	default:
		return "N/A"
	}
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
