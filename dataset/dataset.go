package dataset

import (
	"fmt"
	"iter"
	"math"
	"sort"
	"strconv"

	"github.com/arloliu/impfit/errs"
)

// Record is one spectrum to be fitted.
type Record struct {
	Source string
	Index  int
	// Omega is the angular frequency in rad/s.
	Omega []float64
	Z     []complex128
}

// ID returns the result key of the record.
func (r Record) ID() string {
	return r.Source + "_" + strconv.Itoa(r.Index)
}

// Spectrum is the content of one source: a shared frequency axis and one or
// more impedance rows.
type Spectrum struct {
	Source string
	Omega  []float64
	Z      [][]complex128
}

// Validate checks that every impedance row matches the frequency axis.
func (s Spectrum) Validate() error {
	if s.Source == "" {
		return fmt.Errorf("%w: spectrum without source", errs.ErrInvalidDataFile)
	}
	if len(s.Omega) == 0 || len(s.Z) == 0 {
		return fmt.Errorf("%w: %s: no data", errs.ErrInvalidDataFile, s.Source)
	}
	for i, row := range s.Z {
		if len(row) != len(s.Omega) {
			return fmt.Errorf("%w: %s: row %d has %d points, want %d",
				errs.ErrShapeMismatch, s.Source, i, len(row), len(s.Omega))
		}
	}

	return nil
}

// Window returns the part of the spectrum whose frequency lies within
// [minHz, maxHz]. A zero bound is ignored.
func (s Spectrum) Window(minHz, maxHz float64) Spectrum {
	lo, hi := 2*math.Pi*minHz, 2*math.Pi*maxHz
	keep := make([]int, 0, len(s.Omega))
	for i, w := range s.Omega {
		if minHz > 0 && w < lo {
			continue
		}
		if maxHz > 0 && w > hi {
			continue
		}
		keep = append(keep, i)
	}

	out := Spectrum{
		Source: s.Source,
		Omega:  make([]float64, len(keep)),
		Z:      make([][]complex128, len(s.Z)),
	}
	for j, i := range keep {
		out.Omega[j] = s.Omega[i]
	}
	for r, row := range s.Z {
		out.Z[r] = make([]complex128, len(keep))
		for j, i := range keep {
			out.Z[r][j] = row[i]
		}
	}

	return out
}

// Dataset is a collection of spectra iterated in source order.
type Dataset struct {
	spectra []Spectrum
	index   map[string]int
	limit   int
}

// New creates a dataset from the given spectra. Source names must be unique.
func New(spectra ...Spectrum) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(spectra))}
	for _, s := range spectra {
		if err := d.Add(s); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Add inserts a spectrum, keeping the sources sorted.
func (d *Dataset) Add(s Spectrum) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, exists := d.index[s.Source]; exists {
		return fmt.Errorf("%w: duplicate source %s", errs.ErrInvalidDataFile, s.Source)
	}

	pos := sort.Search(len(d.spectra), func(i int) bool { return d.spectra[i].Source >= s.Source })
	d.spectra = append(d.spectra, Spectrum{})
	copy(d.spectra[pos+1:], d.spectra[pos:])
	d.spectra[pos] = s
	for i := pos; i < len(d.spectra); i++ {
		d.index[d.spectra[i].Source] = i
	}

	return nil
}

// SetLimit caps the number of repeats used per source. n <= 0 removes the cap.
func (d *Dataset) SetLimit(n int) {
	d.limit = max(n, 0)
}

// Sources returns the source names in iteration order.
func (d *Dataset) Sources() []string {
	names := make([]string, len(d.spectra))
	for i, s := range d.spectra {
		names[i] = s.Source
	}

	return names
}

// Spectrum returns the named spectrum.
func (d *Dataset) Spectrum(source string) (Spectrum, bool) {
	i, ok := d.index[source]
	if !ok {
		return Spectrum{}, false
	}

	return d.spectra[i], true
}

func (d *Dataset) repeats(s Spectrum) int {
	if d.limit > 0 && d.limit < len(s.Z) {
		return d.limit
	}

	return len(s.Z)
}

// Len returns the number of records the dataset yields.
func (d *Dataset) Len() int {
	n := 0
	for _, s := range d.spectra {
		n += d.repeats(s)
	}

	return n
}

// Records yields every record, source by source and repeat by repeat.
// Records share the frequency slice of their spectrum.
func (d *Dataset) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, s := range d.spectra {
			for i := range d.repeats(s) {
				if !yield(Record{Source: s.Source, Index: i, Omega: s.Omega, Z: s.Z[i]}) {
					return
				}
			}
		}
	}
}
