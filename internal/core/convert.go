package core

// convert.go provides lenient conversions for the messy values found in
// vehicle datasets:
//   - Prices with currency symbols and thousand separators ("$13,495")
//   - Units glued to numbers ("111 hp")
//   - Cylinder counts stored as words, digits or numbers
//   - Common CSV artifacts (BOM, Excel formula prefixes, stray quotes)

import (
	"regexp"
	"strconv"
	"strings"
)

// numericPrefixRegex matches the longest leading decimal number after cleanup.
var numericPrefixRegex = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)

// integerPrefixRegex matches a leading integer, allowing surrounding space
// and an explicit sign.
var integerPrefixRegex = regexp.MustCompile(`^\s*[+-]?\d+`)

// stripNonNumeric removes every character other than digits, '.' and '-'.
func stripNonNumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
}

// ParseLooseNumber extracts a number from a value.
//
// Numbers are returned as-is. Strings are stripped of everything except
// digits, '.' and '-' and then the longest leading decimal is parsed, so
// "$13,495" yields 13495 and "111 hp" yields 111. Returns false when no
// number can be recovered.
func ParseLooseNumber(v Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	if v.Kind() != KindString {
		return 0, false
	}

	m := numericPrefixRegex.FindString(stripNonNumeric(v.String()))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseIntPrefix parses the leading integer of s, ignoring any trailing text.
// "4" and " 4 cyl" both yield 4; "four" and "" report false.
func ParseIntPrefix(s string) (int64, bool) {
	m := integerPrefixRegex.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(m), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace and a leading byte order mark
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return s
}

// CellValue converts a cleaned CSV cell into a Value.
// Empty cells are absent and cells that parse fully as a number become
// numbers; everything else stays a string.
func CellValue(s string) Value {
	s = CleanCell(s)
	if s == "" {
		return Absent
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && isPlainNumber(s) {
		return Number(f)
	}
	return String(s)
}

// plainNumberRegex rejects forms ParseFloat accepts but a dataset would not
// mean as a number, such as "Inf", "NaN" or hex floats.
var plainNumberRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func isPlainNumber(s string) bool {
	return plainNumberRegex.MatchString(s)
}
