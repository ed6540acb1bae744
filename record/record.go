// Package record parses the versioned "v=<n>;key=value;..." TXT grammar used by identity records.
package record

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/masiarekpl/keypin/model"
)

var versionField = regexp.MustCompile(`^v=(\d+)$`)

// Field is a single key=value pair of a record
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FieldSet holds the fields of a record in order of first appearance.
// Duplicate keys keep their first position, the last value wins.
type FieldSet struct {
	fields []Field
	index  map[string]int
}

// NewFieldSet creates a FieldSet from key/value pairs
func NewFieldSet(fields ...Field) FieldSet {
	fs := FieldSet{}

	for _, f := range fields {
		fs.set(f.Key, f.Value)
	}

	return fs
}

func (fs *FieldSet) set(key, value string) {
	if fs.index == nil {
		fs.index = make(map[string]int)
	}

	if i, ok := fs.index[key]; ok {
		fs.fields[i].Value = value

		return
	}

	fs.index[key] = len(fs.fields)
	fs.fields = append(fs.fields, Field{Key: key, Value: value})
}

// Get returns the value of key or the empty string if key is absent
func (fs FieldSet) Get(key string) string {
	if i, ok := fs.index[key]; ok {
		return fs.fields[i].Value
	}

	return ""
}

// Has returns true if key is present with a non empty value
func (fs FieldSet) Has(key string) bool {
	return fs.Get(key) != ""
}

// Len returns the count of distinct keys
func (fs FieldSet) Len() int {
	return len(fs.fields)
}

// Fields returns a copy of all fields in record order
func (fs FieldSet) Fields() []Field {
	res := make([]Field, len(fs.fields))
	copy(res, fs.fields)

	return res
}

// Map returns the fields as map
func (fs FieldSet) Map() map[string]string {
	res := make(map[string]string, len(fs.fields))

	for _, f := range fs.fields {
		res[f.Key] = f.Value
	}

	return res
}

// Require fails with a schema error naming the first field which is missing or empty
func (fs FieldSet) Require(label string, keys ...string) error {
	for _, k := range keys {
		if !fs.Has(k) {
			return &model.Error{
				Kind:    model.ErrorKindSchema,
				Message: fmt.Sprintf("%s TXT missing required field: %s", label, k),
				Field:   k,
			}
		}
	}

	return nil
}

// MarshalJSON encodes the fields as JSON object
func (fs FieldSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Map())
}

// String returns the fields in the record grammar, without version
func (fs FieldSet) String() string {
	parts := make([]string, len(fs.fields))

	for i, f := range fs.fields {
		parts[i] = f.Key + "=" + f.Value
	}

	return strings.Join(parts, ";")
}

// Versioned is a parsed record with its declared version
type Versioned struct {
	Version string
	Fields  FieldSet
}

// ParseVersioned parses raw TXT text. The first ';' separated segment must be exactly v=<digits>,
// a version field anywhere else does not count. The version is not part of the returned fields.
func ParseVersioned(raw, label string) (Versioned, error) {
	s := strings.TrimSpace(raw)

	segments := strings.Split(s, ";")
	first := strings.TrimSpace(segments[0])

	if first == "" {
		return Versioned{}, &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("%s empty TXT", label),
		}
	}

	m := versionField.FindStringSubmatch(first)
	if m == nil {
		return Versioned{}, &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("%s must start with v=<number> as the first field", label),
			Field:   "v",
			Actual:  first,
		}
	}

	fs := FieldSet{}

	for _, seg := range segments[1:] {
		key, value, found := strings.Cut(seg, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" || key == "v" {
			// the version is only taken from the first segment
			continue
		}

		fs.set(key, strings.TrimSpace(value))
	}

	return Versioned{Version: m[1], Fields: fs}, nil
}
