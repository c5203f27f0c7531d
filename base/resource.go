package base

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Attribute is one key-value pair in a Resource or an encoded record
type Attribute struct {
	Key   string
	Value Value
}

// Resource holds the static attributes describing the emitting process or service,
// e.g. service.name and deployment.environment, attached to every log record by reference
//
// A Resource is immutable after construction and safe for concurrent reads. It lives for
// the process lifetime and is never copied per record.
type Resource struct {
	attributes []Attribute // sorted by key
	rawLength  int
}

// NewResource creates a Resource from the given attribute map
//
// Attributes are sorted by key once here so every encoded batch lists them in stable order.
func NewResource(attributes map[string]Value) *Resource {
	keys := maps.Keys(attributes)
	slices.Sort(keys)

	sorted := make([]Attribute, 0, len(keys))
	rawLength := 0
	for _, key := range keys {
		sorted = append(sorted, Attribute{Key: key, Value: attributes[key]})
		rawLength += len(key) + attributes[key].RawLength()
	}
	return &Resource{attributes: sorted, rawLength: rawLength}
}

// Attributes returns the sorted attribute list. The returned slice must not be modified.
func (res *Resource) Attributes() []Attribute {
	return res.attributes
}

// Len returns the numbers of attributes
func (res *Resource) Len() int {
	return len(res.attributes)
}

// RawLength approximates the wire length of all attributes for statistics
func (res *Resource) RawLength() int {
	return res.rawLength
}
