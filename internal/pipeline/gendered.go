package pipeline

import "strings"

// Gendered value grammar:
//
//	value     = half delimiter half [delimiter ...]
//	delimiter = "," | ";"          (comma wins when both occur)
//	half      = [prefix] measure
//
// The first half is the male figure, the second the female figure; any
// further fields are ignored. A value with neither delimiter is malformed
// and yields two empty halves.
var (
	malePrefixes   = []string{"Male - ", "Males - ", "Male: ", "Males: "}
	femalePrefixes = []string{"Female - ", "Females - ", "Female: ", "Females: "}
)

// IsGendered reports whether a raw value carries separate male and female figures.
func IsGendered(value string) bool {
	return strings.Contains(value, "Male") && strings.Contains(value, "Female")
}

// Delimiter returns the delimiter a gendered value is split on, or "" when
// the value has neither a comma nor a semicolon.
func Delimiter(value string) string {
	switch {
	case strings.Contains(value, ","):
		return ","
	case strings.Contains(value, ";"):
		return ";"
	default:
		return ""
	}
}

// SplitGendered splits a gendered value into its male and female figures.
func SplitGendered(value string) (male, female string) {
	delim := Delimiter(value)
	if delim == "" {
		return "", ""
	}
	parts := strings.SplitN(value, delim, 3)
	return stripPrefix(parts[0], malePrefixes), stripPrefix(parts[1], femalePrefixes)
}

// stripPrefix removes the first matching prefix from a trimmed half.
func stripPrefix(half string, prefixes []string) string {
	half = strings.TrimSpace(half)
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(half, p); ok {
			return strings.TrimSpace(rest)
		}
	}
	return half
}
