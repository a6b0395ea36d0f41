// Package resource models a translation resource tree: an insertion-ordered
// mapping from key to a string, a nested tree, or any other JSON literal.
//
// Key order is significant. Catalog files keep the order they were written
// in, and reduced trees keep the order the extractor reported keys in, so the
// serialized output is stable across runs.
package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Tree is an ordered key/value mapping. Values are string, *Tree, or
// json.RawMessage for literals that are neither.
type Tree struct {
	keys   []string
	values map[string]any
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{values: make(map[string]any)}
}

// Len returns the number of top-level keys.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the top-level keys in insertion order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Get returns the value stored under key.
func (t *Tree) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Tree) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Set stores value under key. A new key is appended; an existing key keeps
// its position.
func (t *Tree) Set(key string, value any) {
	if t.values == nil {
		t.values = make(map[string]any)
	}
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// MarshalJSON encodes the tree as a compact JSON object in key order. HTML
// characters are not escaped.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Tree) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	if t != nil {
		for i, key := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, t.values[key]); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case string:
		return encodeString(buf, val)
	case *Tree:
		return val.encode(buf)
	case json.RawMessage:
		return json.Compact(buf, val)
	default:
		raw, err := marshalNoEscape(val)
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil
	}
}

func encodeString(buf *bytes.Buffer, s string) error {
	raw, err := marshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("resource: expected a JSON object, got %v", tok)
	}
	decoded, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*t = *decoded
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("resource: trailing data after object")
	}
	return nil
}

// ParseJSON decodes a JSON document whose top level must be an object.
func ParseJSON(data []byte) (*Tree, error) {
	t := NewTree()
	if err := t.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return t, nil
}

// decodeObject reads object members until the closing brace. The opening
// brace has already been consumed.
func decodeObject(dec *json.Decoder) (*Tree, error) {
	t := NewTree()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("resource: expected object key, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		t.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	if !dec.More() {
		return nil, fmt.Errorf("resource: missing value")
	}
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		return ParseJSON(trimmed)
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return json.RawMessage(trimmed), nil
	}
}
