// Package parse provides tolerant numeric parsing for heterogeneous source
// representations. Upstream accounting providers intermix typed numbers and
// formatted report-cell strings ("$1,234.56", "(5,000)", "-"); the parser
// keeps downstream arithmetic total by coercing anything unparseable to 0.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericRe = regexp.MustCompile(`[\d.]+`)

// ParseNumeric converts a raw provider value into a float64. Input may be a
// number, a string with currency symbols/commas/whitespace, nil, or a boxed
// pointer. Returns 0 (never an error) when the value is absent, malformed,
// or non-finite.
func ParseNumeric(raw interface{}) float64 {
	v, _ := ParseNumericChecked(raw)
	return v
}

// ParseNumericChecked is ParseNumeric plus a coercion report: coerced is true
// when the input held something that could not be read as a finite number and
// was forced to 0. Callers use this to flag zero-coerced fields so downstream
// numbers are distinguishable from true zeros.
func ParseNumericChecked(raw interface{}) (value float64, coerced bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), false
	case int32:
		return float64(v), false
	case int64:
		return float64(v), false
	case *float64:
		if v == nil {
			return 0, false
		}
		return finite(*v)
	case string:
		return parseString(v)
	default:
		return 0, true
	}
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true
	}
	return v, false
}

func parseString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || strings.EqualFold(s, "n/a") {
		return 0, false
	}

	// Remove common report-cell formatting
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, " ", "")

	// Handle parentheses as negative
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.Trim(s, "()")
	} else if strings.HasPrefix(s, "-") {
		isNegative = true
		s = strings.TrimPrefix(s, "-")
	}

	// Fast path: the remainder is already a clean decimal
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return signed(val, isNegative)
	}

	// Fallback: extract the first numeric run ("1234.56mm" -> 1234.56)
	match := numericRe.FindString(s)
	if match == "" {
		return 0, true
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, true
	}
	return signed(val, isNegative)
}

func signed(val float64, neg bool) (float64, bool) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, true
	}
	if neg {
		val = -val
	}
	return val, false
}

// ParseCount parses an integer quantity (employees, customers) with the same
// tolerance as ParseNumeric, truncating any fractional part.
func ParseCount(raw interface{}) int {
	n, _ := ParseCountChecked(raw)
	return n
}

// ParseCountChecked is ParseCount plus the same coercion report as
// ParseNumericChecked.
func ParseCountChecked(raw interface{}) (int, bool) {
	v, coerced := ParseNumericChecked(raw)
	return int(v), coerced
}

// DetectScaleFactor analyzes a report header or caption for unit multipliers.
// Returns factor (e.g. 1000.0) and unit name (e.g. "thousands"); factor 1
// with an empty name when no unit marker is present.
func DetectScaleFactor(text string) (float64, string) {
	text = strings.ToLower(text)

	if strings.Contains(text, "millions") || strings.Contains(text, "million") {
		return 1000000.0, "millions"
	}
	if strings.Contains(text, "thousands") || strings.Contains(text, "thousand") || strings.Contains(text, "000s") {
		return 1000.0, "thousands"
	}
	if strings.Contains(text, "billions") || strings.Contains(text, "billion") {
		return 1000000000.0, "billions"
	}

	return 1.0, ""
}
