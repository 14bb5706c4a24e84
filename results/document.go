package results

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Sequential entry keys.
const (
	Model1Key = "model1"
	Model2Key = "model2"
)

// Entry holds the fitted values of one record.
//
// Exactly one of Values (single-model run) or Model1 and Model2 (sequential
// run) is set.
type Entry struct {
	Values map[string]float64
	Model1 map[string]float64
	Model2 map[string]float64
}

// Single creates a single-model entry.
func Single(values map[string]float64) Entry {
	return Entry{Values: maps.Clone(values)}
}

// Pair creates a sequential entry.
func Pair(model1, model2 map[string]float64) Entry {
	return Entry{Model1: maps.Clone(model1), Model2: maps.Clone(model2)}
}

// IsSequential reports whether the entry holds a model pair.
func (e Entry) IsSequential() bool {
	return e.Model1 != nil || e.Model2 != nil
}

// Document is an ordered collection of entries keyed by record identifier.
type Document struct {
	ids     []string
	entries map[string]Entry
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{entries: make(map[string]Entry)}
}

// Set stores the entry for id. Replacing an entry keeps its position.
func (d *Document) Set(id string, e Entry) {
	if _, exists := d.entries[id]; !exists {
		d.ids = append(d.ids, id)
	}
	d.entries[id] = e
}

// Get returns the entry for id.
func (d *Document) Get(id string) (Entry, bool) {
	e, ok := d.entries[id]
	return e, ok
}

// IDs returns the record identifiers in insertion order.
func (d *Document) IDs() []string {
	return slices.Clone(d.ids)
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.ids)
}

// Marshal encodes the document as YAML. Parameter names are sorted within each
// entry; records keep their insertion order.
func Marshal(d *Document) ([]byte, error) {
	return yaml.Marshal(d)
}

// Unmarshal decodes a YAML document.
func Unmarshal(data []byte) (*Document, error) {
	d := NewDocument()
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, err
	}

	return d, nil
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range d.ids {
		e := d.entries[id]

		var value *yaml.Node
		var err error
		if e.IsSequential() {
			value = &yaml.Node{Kind: yaml.MappingNode}
			for _, part := range []struct {
				key    string
				values map[string]float64
			}{{Model1Key, e.Model1}, {Model2Key, e.Model2}} {
				inner, err := valuesNode(part.values)
				if err != nil {
					return nil, err
				}
				value.Content = append(value.Content, scalar(part.key), inner)
			}
		} else {
			value, err = valuesNode(e.Values)
			if err != nil {
				return nil, err
			}
		}
		root.Content = append(root.Content, scalar(id), value)
	}

	return root, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	if d.entries == nil {
		d.entries = make(map[string]Entry)
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("results document must be a mapping, got line %d", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		id := node.Content[i].Value
		value := node.Content[i+1]

		if isPair(value) {
			var pair map[string]map[string]float64
			if err := value.Decode(&pair); err != nil {
				return fmt.Errorf("record %s: %w", id, err)
			}
			d.Set(id, Entry{Model1: nonNil(pair[Model1Key]), Model2: nonNil(pair[Model2Key])})

			continue
		}

		var values map[string]float64
		if err := value.Decode(&values); err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		d.Set(id, Entry{Values: nonNil(values)})
	}

	return nil
}

func isPair(n *yaml.Node) bool {
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if (key != Model1Key && key != Model2Key) || n.Content[i+1].Kind != yaml.MappingNode {
			return false
		}
	}

	return true
}

func nonNil(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}

	return m
}

func valuesNode(values map[string]float64) (*yaml.Node, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		v := &yaml.Node{}
		if err := v.Encode(values[name]); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, scalar(name), v)
	}

	return n, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
