package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/impfit/circuit"
	"github.com/arloliu/impfit/errs"
)

// Constants overrides the defaults of circuit.DefaultConstants. Fields left
// out keep their default; an omitted Rn is derived from Rc.
type Constants struct {
	C0  *yaml.Node
	Cf  *yaml.Node
	Rc  *yaml.Node
	Dm  *yaml.Node
	Rn  *yaml.Node
	Dn  *yaml.Node
	P   *yaml.Node
	Ecp *yaml.Node
	Enp *yaml.Node
}

func (c *Constants) fields() []struct {
	name string
	node **yaml.Node
} {
	return []struct {
		name string
		node **yaml.Node
	}{
		{"c0", &c.C0}, {"cf", &c.Cf}, {"Rc", &c.Rc}, {"dm", &c.Dm}, {"Rn", &c.Rn},
		{"dn", &c.Dn}, {"p", &c.P}, {"ecp", &c.Ecp}, {"enp", &c.Enp},
	}
}

// UnmarshalYAML implements yaml.Unmarshaler. Keys are case-sensitive; an
// unknown key is rejected with errs.ErrInvalidConstant.
func (c *Constants) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: constants must be a mapping (line %d)", errs.ErrInvalidConstant, node.Line)
	}

	*c = Constants{}
	fields := c.fields()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		found := false
		for _, f := range fields {
			if f.name == key {
				*f.node = node.Content[i+1]
				found = true

				break
			}
		}
		if !found {
			return fmt.Errorf("%w: unknown constant %q (line %d)", errs.ErrInvalidConstant, key, node.Content[i].Line)
		}
	}

	return nil
}

// MarshalYAML implements yaml.Marshaler, writing only the overridden keys.
func (c *Constants) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range c.fields() {
		if *f.node == nil {
			continue
		}
		out.Content = append(out.Content, scalar(f.name), *f.node)
	}

	return out, nil
}

// Resolve applies the overrides to the default constants and validates the
// result.
func (c *Constants) Resolve() (circuit.Constants, error) {
	out := circuit.DefaultConstants()
	if c == nil {
		return out, nil
	}

	dst := []*float64{&out.C0, &out.Cf, &out.Rc, &out.Dm, &out.Rn, &out.Dn, &out.P, &out.Ecp, &out.Enp}
	for i, f := range c.fields() {
		if *f.node == nil {
			continue
		}
		v, err := parseNumber(*f.node)
		if err != nil {
			return circuit.Constants{}, fmt.Errorf("%w: %s: %w", errs.ErrInvalidConstant, f.name, err)
		}
		*dst[i] = v
	}
	if c.Rn == nil {
		out.Rn = math.Cbrt(0.6) * out.Rc
	}

	if err := out.Validate(); err != nil {
		return circuit.Constants{}, err
	}

	return out, nil
}

// LoadConstants reads a constants file.
func LoadConstants(path string) (circuit.Constants, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return circuit.Constants{}, fmt.Errorf("failed to read constants: %w", err)
	}

	var c Constants
	if err := yaml.Unmarshal(data, &c); err != nil {
		return circuit.Constants{}, fmt.Errorf("%w: %w", errs.ErrInvalidConstant, err)
	}

	return c.Resolve()
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
