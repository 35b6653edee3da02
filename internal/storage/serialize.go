package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IshaanNene/BreedStalk/internal/types"
)

// MarshalJSON renders records as a compact JSON array. Each object keeps
// its record's field order and HTML characters are left unescaped.
func MarshalJSON(records []*types.Record) ([]byte, error) {
	if records == nil {
		records = []*types.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// UnmarshalJSON parses a JSON array written by MarshalJSON. Null
// elements are skipped.
func UnmarshalJSON(data []byte) ([]*types.Record, error) {
	var decoded []*types.Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	records := decoded[:0]
	for _, rec := range decoded {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// MarshalCSV renders records as CSV with the given column layout.
//
// The first line is the header. Each record contributes one line holding its
// value for every column, or an empty field when the column is absent. A
// value containing a comma is wrapped in double quotes; embedded quotes are
// not escaped. Lines are joined by "\n" with no trailing newline.
func MarshalCSV(records []*types.Record, columns []string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))

	for _, rec := range records {
		b.WriteByte('\n')
		for i, col := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvField(rec.GetString(col)))
		}
	}
	return []byte(b.String())
}

func csvField(value string) string {
	if strings.Contains(value, ",") {
		return `"` + value + `"`
	}
	return value
}
