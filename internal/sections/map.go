package sections

import (
	"bytes"
	"encoding/json"
)

// Map is an ordered, read-only mapping from canonical key to section body.
// Keys keep the document order of their headings. The zero value is an
// empty map.
type Map struct {
	keys   []string
	bodies map[string]string
}

func (m Map) Len() int { return len(m.keys) }

// Keys returns a copy of the keys in document order.
func (m Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m Map) Get(key string) (string, bool) {
	body, ok := m.bodies[key]
	return body, ok
}

func (m Map) Has(key string) bool {
	_, ok := m.bodies[key]
	return ok
}

// Each calls fn for every entry in document order.
func (m Map) Each(fn func(key, body string)) {
	for _, k := range m.keys {
		fn(k, m.bodies[k])
	}
}

func (m *Map) add(key, body string) {
	if m.bodies == nil {
		m.bodies = map[string]string{}
	}
	m.keys = append(m.keys, key)
	m.bodies[key] = body
}

// MarshalJSON encodes the map as a JSON object with keys in document order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(m.bodies[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MapBodies returns a new map with fn applied to every body; keys and order
// are unchanged.
func (m Map) MapBodies(fn func(string) string) Map {
	var out Map
	for _, k := range m.keys {
		out.add(k, fn(m.bodies[k]))
	}
	return out
}
