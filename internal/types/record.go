package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawAttribute is one label/value row read verbatim from a detail page.
type RawAttribute struct {
	Label string
	Value string
}

// Record is a single normalized entity. Field order follows insertion
// order and is preserved through JSON encoding and decoding.
type Record struct {
	keys   []string
	fields map[string]string
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]string)}
}

// NewNamedRecord creates a Record whose first field is "name".
func NewNamedRecord(name string) *Record {
	r := NewRecord()
	r.Set("name", name)
	return r
}

// Set sets a field value. An existing field keeps its position.
func (r *Record) Set(key, value string) {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
}

// GetString retrieves a field value, or "" when absent.
func (r *Record) GetString(key string) string {
	return r.fields[key]
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// Name returns the entity name.
func (r *Record) Name() string {
	return r.fields["name"]
}

// MarshalJSON encodes the record as an object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(enc, &buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeString(enc, &buf, r.fields[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeString appends s as a JSON string without the encoder's trailing newline.
func encodeString(enc *json.Encoder, buf *bytes.Buffer, s string) error {
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes an object of string values, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	r.keys = nil
	r.fields = make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
