package circuit

import (
	"fmt"
	"math"

	"github.com/arloliu/impfit/errs"
)

// VacuumPermittivity is the electric constant in F/m.
const VacuumPermittivity = 8.854187817e-12

// Constants holds the fixed quantities of a measurement setup and of the cell
// model used by the suspension elements.
type Constants struct {
	// C0 is the unit capacitance of the measurement cell in F.
	C0 float64 `yaml:"c0"`
	// Cf is the stray capacitance in F.
	Cf float64 `yaml:"cf"`
	// Rc is the outer cell radius in m.
	Rc float64 `yaml:"Rc"`
	// Dm is the membrane thickness in m.
	Dm float64 `yaml:"dm"`
	// Rn is the nucleus radius in m.
	Rn float64 `yaml:"Rn"`
	// Dn is the nuclear envelope thickness in m.
	Dn float64 `yaml:"dn"`
	// P is the volume fraction of cells in the suspension.
	P float64 `yaml:"p"`
	// Ecp is the relative permittivity of the cytoplasm.
	Ecp float64 `yaml:"ecp"`
	// Enp is the relative permittivity of the nucleoplasm.
	Enp float64 `yaml:"enp"`
}

// DefaultConstants returns the constants of the reference measurement setup.
func DefaultConstants() Constants {
	rc := 9.05e-6

	return Constants{
		C0:  2.41974648880026e-13,
		Cf:  2.42532194241202e-13,
		Rc:  rc,
		Dm:  7e-9,
		Rn:  math.Cbrt(0.6) * rc,
		Dn:  40e-9,
		P:   0.15,
		Ecp: 60,
		Enp: 120,
	}
}

// V1 returns the volume ratio (1 - dm/Rc)^3 of cytoplasm to cell.
func (c Constants) V1() float64 {
	return math.Pow(1-c.Dm/c.Rc, 3)
}

// V2 returns the volume ratio (Rn/(Rc - dm))^3 of nucleus to cytoplasm.
func (c Constants) V2() float64 {
	return math.Pow(c.Rn/(c.Rc-c.Dm), 3)
}

// V3 returns the volume ratio (1 - dn/Rn)^3 of nucleoplasm to nucleus.
func (c Constants) V3() float64 {
	return math.Pow(1-c.Dn/c.Rn, 3)
}

// Validate checks that every constant is a finite number and that the
// geometry is physically consistent.
func (c Constants) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"c0", c.C0}, {"cf", c.Cf}, {"Rc", c.Rc}, {"dm", c.Dm}, {"Rn", c.Rn},
		{"dn", c.Dn}, {"p", c.P}, {"ecp", c.Ecp}, {"enp", c.Enp},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s=%v", errs.ErrInvalidConstant, f.name, f.value)
		}
	}
	if c.C0 <= 0 {
		return fmt.Errorf("%w: c0 must be positive", errs.ErrInvalidConstant)
	}
	if c.Rc <= c.Dm || c.Dm < 0 {
		return fmt.Errorf("%w: membrane thickness must be smaller than the cell radius", errs.ErrInvalidConstant)
	}
	if c.Rn <= c.Dn || c.Dn < 0 {
		return fmt.Errorf("%w: envelope thickness must be smaller than the nucleus radius", errs.ErrInvalidConstant)
	}
	if c.P < 0 || c.P > 1 {
		return fmt.Errorf("%w: volume fraction p=%v outside [0, 1]", errs.ErrInvalidConstant, c.P)
	}

	return nil
}
