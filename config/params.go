package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/param"
)

// ParamSpec is one entry of a parameter file.
type ParamSpec struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
	Vary  bool
}

// Params is either a path to a parameter file or an inline, ordered list of
// parameter specs.
type Params struct {
	File  string
	Specs []ParamSpec
}

// IsZero reports whether no parameters were configured.
func (p Params) IsZero() bool {
	return p.File == "" && len(p.Specs) == 0
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.File = node.Value
		p.Specs = nil

		return nil
	case yaml.MappingNode:
		specs, err := decodeSpecs(node)
		if err != nil {
			return err
		}
		p.File = ""
		p.Specs = specs

		return nil
	default:
		return fmt.Errorf("parameters must be a file path or a mapping (line %d)", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (p Params) MarshalYAML() (any, error) {
	if p.File != "" {
		return p.File, nil
	}

	return specsNode(p.Specs), nil
}

// Resolve returns the specs, reading the parameter file relative to baseDir
// when the parameters reference one.
func (p Params) Resolve(baseDir string) ([]ParamSpec, error) {
	if p.File == "" {
		return p.Specs, nil
	}
	path := p.File
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	return LoadParamFile(path)
}

// Set builds a parameter set from the resolved specs.
func (p Params) Set(baseDir string) (*param.Set, error) {
	specs, err := p.Resolve(baseDir)
	if err != nil {
		return nil, err
	}

	return NewParamSet(specs)
}

// LoadParamFile reads a parameter file.
func LoadParamFile(path string) ([]ParamSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse parameter file %s: %w", path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("parameter file %s is empty", path)
	}

	specs, err := decodeSpecs(root.Content[0])
	if err != nil {
		return nil, fmt.Errorf("parameter file %s: %w", path, err)
	}

	return specs, nil
}

// SaveParamFile writes specs in parameter-file format.
func SaveParamFile(path string, specs []ParamSpec) error {
	data, err := yaml.Marshal(specsNode(specs))
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// NewParamSet converts specs to a parameter set, keeping their order.
func NewParamSet(specs []ParamSpec) (*param.Set, error) {
	set, err := param.NewSet()
	if err != nil {
		return nil, err
	}
	for _, s := range specs {
		p := param.Parameter{Name: s.Name, Value: s.Value, Min: s.Min, Max: s.Max, Vary: s.Vary}
		if err := set.Add(p); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func decodeSpecs(node *yaml.Node) ([]ParamSpec, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parameters must be a mapping (line %d)", node.Line)
	}

	specs := make([]ParamSpec, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		entry := node.Content[i+1]
		if entry.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("parameter %s must be a mapping (line %d)", name, entry.Line)
		}

		spec := ParamSpec{Name: name, Min: math.Inf(-1), Max: math.Inf(1), Vary: true}
		hasValue := false
		for j := 0; j+1 < len(entry.Content); j += 2 {
			key, val := entry.Content[j].Value, entry.Content[j+1]
			var err error
			switch key {
			case "value":
				spec.Value, err = parseNumber(val)
				hasValue = true
			case "min":
				spec.Min, err = parseNumber(val)
			case "max":
				spec.Max, err = parseNumber(val)
			case "vary":
				err = val.Decode(&spec.Vary)
			}
			if err != nil {
				return nil, fmt.Errorf("parameter %s %s: %w", name, key, err)
			}
		}
		if !hasValue {
			return nil, fmt.Errorf("%w: parameter %s has no value", errs.ErrInvalidBounds, name)
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// parseNumber accepts plain YAML numbers as well as inf, -inf and the YAML
// spellings .inf and -.inf.
func parseNumber(n *yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("expected a number (line %d)", n.Line)
	}
	s := strings.TrimSpace(n.Value)
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	if lower := strings.ToLower(s); lower == ".inf" || lower == ".nan" {
		s = s[1:]
	}

	v, err := strconv.ParseFloat(sign+s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q (line %d)", n.Value, n.Line)
	}

	return v, nil
}

func formatNumber(v float64) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)

	return n
}

func specsNode(specs []ParamSpec) *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range specs {
		entry := &yaml.Node{Kind: yaml.MappingNode}
		vary := &yaml.Node{}
		_ = vary.Encode(s.Vary)
		entry.Content = append(entry.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "value"}, formatNumber(s.Value),
			&yaml.Node{Kind: yaml.ScalarNode, Value: "min"}, formatNumber(s.Min),
			&yaml.Node{Kind: yaml.ScalarNode, Value: "max"}, formatNumber(s.Max),
			&yaml.Node{Kind: yaml.ScalarNode, Value: "vary"}, vary,
		)
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Name}, entry)
	}

	return root
}
