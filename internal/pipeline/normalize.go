package pipeline

import (
	"strings"

	"github.com/IshaanNene/BreedStalk/internal/types"
)

// genderedLabels are the measurement labels split into male/female fields.
var genderedLabels = map[string]bool{
	"height": true,
	"weight": true,
}

// Field is one normalized name/value pair.
type Field struct {
	Name  string
	Value string
}

// Normalize maps raw attribute rows to final fields, in row order.
// Rows with an empty label or value are dropped.
func Normalize(entries []types.RawAttribute) []Field {
	fields := make([]Field, 0, len(entries))
	for _, e := range entries {
		if e.Label == "" || e.Value == "" {
			continue
		}
		if !genderedLabels[e.Label] {
			fields = append(fields, Field{Name: e.Label, Value: e.Value})
			continue
		}

		male, female := e.Value, e.Value
		if IsGendered(e.Value) {
			male, female = SplitGendered(e.Value)
		}
		fields = append(fields,
			Field{Name: e.Label + "Male", Value: male},
			Field{Name: e.Label + "Female", Value: female},
		)
	}
	return fields
}

// BuildRecord creates the record for one entity: name first, then the
// normalized fields. A later field with the same name overwrites an
// earlier one in place.
func BuildRecord(name string, entries []types.RawAttribute) *types.Record {
	rec := types.NewNamedRecord(name)
	for _, f := range Normalize(entries) {
		rec.Set(f.Name, f.Value)
	}
	return rec
}

// CleanLabel lower-cases and trims a raw row label.
func CleanLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// CleanValue trims a raw row value and replaces en-dashes with hyphens.
func CleanValue(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "\u2013", "-"))
}

// CleanName strips trailing category tokens, in order, from an entity heading.
func CleanName(heading string, suffixes []string) string {
	name := strings.TrimSpace(heading)
	for _, s := range suffixes {
		if rest, ok := strings.CutSuffix(name, s); ok {
			name = strings.TrimSpace(rest)
		}
	}
	return name
}
