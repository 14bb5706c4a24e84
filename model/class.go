package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/impfit/errs"
)

// Class is one staged-fitting model class.
//
// Freeze[i] lists the parameters frozen going into stage i+2 (1-based), so a
// class with Stages stages has exactly Stages-1 freeze lists.
type Class struct {
	Name   string
	Alias  string
	Stages int
	Freeze [][]string
}

// Built-in model classes.
var (
	// SingleShell is the two-stage single-shell suspension model.
	SingleShell = Class{
		Name:   "SingleShell",
		Alias:  "A",
		Stages: 2,
		Freeze: [][]string{{"k", "e"}},
	}
	// DoubleShell is the four-stage double-shell suspension model.
	DoubleShell = Class{
		Name:   "DoubleShell",
		Alias:  "B",
		Stages: 4,
		Freeze: [][]string{{"k", "e"}, {"km", "em"}, {"kcp"}},
	}
	// ColeCole is the two-stage Cole-Cole dispersion model.
	ColeCole = Class{
		Name:   "ColeCole",
		Alias:  "C",
		Stages: 2,
		Freeze: [][]string{{"kdc", "eh"}},
	}
)

// Validate checks that the class has a name, at least one stage and one freeze
// list per stage transition.
func (c Class) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: class without name", errs.ErrInvalidSchedule)
	}
	if c.Stages < 1 {
		return fmt.Errorf("%w: %s has %d stages", errs.ErrInvalidSchedule, c.Name, c.Stages)
	}
	if len(c.Freeze) != c.Stages-1 {
		return fmt.Errorf("%w: %s has %d stages but %d freeze lists",
			errs.ErrInvalidSchedule, c.Name, c.Stages, len(c.Freeze))
	}

	return nil
}

// FreezeBefore returns the names frozen when entering stage (0-based).
// Stage 0 and out-of-range stages freeze nothing.
func (c Class) FreezeBefore(stage int) []string {
	if stage < 1 || stage > len(c.Freeze) {
		return nil
	}

	return slices.Clone(c.Freeze[stage-1])
}

// FrozenThrough returns the union of every freeze list applied up to and
// including the given stage (0-based), in schedule order.
func (c Class) FrozenThrough(stage int) []string {
	var out []string
	for i := 1; i <= stage && i <= len(c.Freeze); i++ {
		for _, name := range c.Freeze[i-1] {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}

	return out
}

// Clone returns a deep copy of the class.
func (c Class) Clone() Class {
	out := c
	out.Freeze = make([][]string, len(c.Freeze))
	for i, names := range c.Freeze {
		out.Freeze[i] = slices.Clone(names)
	}

	return out
}

// String returns e.g. "DoubleShell(4 stages: [k e] → [km em] → [kcp])".
func (c Class) String() string {
	if len(c.Freeze) == 0 {
		return fmt.Sprintf("%s(%d stage)", c.Name, c.Stages)
	}

	parts := make([]string, len(c.Freeze))
	for i, names := range c.Freeze {
		parts[i] = fmt.Sprintf("%v", names)
	}

	return fmt.Sprintf("%s(%d stages: %s)", c.Name, c.Stages, strings.Join(parts, " → "))
}
