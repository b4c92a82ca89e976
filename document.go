package shroud

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Entry is one key/value pair of a Document.
type Entry struct {
	Key   string
	Value any
}

// Document is the ordered wire form of one record: the kind, each stored
// field in schema order, then the marker.
type Document struct {
	Kind    Kind
	Entries []Entry
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	for _, e := range d.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Pairs returns the full key/value sequence including the kind key, in
// emission order. Codecs encode this.
func (d *Document) Pairs() []Entry {
	out := make([]Entry, 0, len(d.Entries)+1)
	out = append(out, Entry{Key: KindKey, Value: string(d.Kind)})
	return append(out, d.Entries...)
}

// Map returns the document as an unordered map.
func (d *Document) Map() map[string]any {
	m := make(map[string]any, len(d.Entries)+1)
	for _, e := range d.Pairs() {
		m[e.Key] = e.Value
	}
	return m
}

func (d *Document) add(key string, value any) {
	d.Entries = append(d.Entries, Entry{Key: key, Value: value})
}

// MarshalJSON encodes the document as a JSON object preserving entry order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.Pairs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// isAbsent reports whether a raw field value is null or empty and should be
// emitted without consulting the registry.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
