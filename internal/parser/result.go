package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is one extracted, sanitized value.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Result holds the outcome of one Parse call. Fields keep the order in
// which their groups appear in the applied template.
type Result struct {
	parseID string
	fields  []Field
	index   map[string]int
	applied string
	events  []Event
}

func newResult(parseID string) *Result {
	return &Result{parseID: parseID, index: make(map[string]int)}
}

func (r *Result) set(name, value string) {
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// ParseID identifies the call that produced the result.
func (r *Result) ParseID() string {
	return r.parseID
}

// Len returns the number of extracted fields.
func (r *Result) Len() int {
	return len(r.fields)
}

// Has reports whether name was extracted.
func (r *Result) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Get returns the value for name, or "" when it was not extracted.
func (r *Result) Get(name string) string {
	if i, ok := r.index[name]; ok {
		return r.fields[i].Value
	}
	return ""
}

// GetStrict returns the value for name or ErrUndefinedResultKey.
func (r *Result) GetStrict(name string) (string, error) {
	if i, ok := r.index[name]; ok {
		return r.fields[i].Value, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUndefinedResultKey, name)
}

// Keys returns the field names in order.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

// Fields returns a copy of the ordered fields.
func (r *Result) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Map returns the fields as an unordered map.
func (r *Result) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// AppliedTemplate returns the ID of the template that matched.
func (r *Result) AppliedTemplate() (string, bool) {
	return r.applied, r.applied != ""
}

// Events returns the events emitted while producing the result.
func (r *Result) Events() []Event {
	return append([]Event(nil), r.events...)
}

// MarshalJSON writes the fields as a JSON object in field order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the fields as a YAML mapping in field order.
func (r *Result) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}
