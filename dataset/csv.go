package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arloliu/impfit/errs"
)

// ReadCSV parses a spectrum from r. source names the resulting spectrum.
//
// Parameters:
//   - r: CSV input, frequency in Hz followed by real/imag column pairs
//   - source: Source name of the spectrum
//
// Returns:
//   - Spectrum: Parsed spectrum with angular frequencies
//   - error: ErrInvalidDataFile for malformed input
func ReadCSV(r io.Reader, source string) (Spectrum, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	s := Spectrum{Source: source}
	width := 0
	line := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Spectrum{}, fmt.Errorf("%w: %s: %w", errs.ErrInvalidDataFile, source, err)
		}
		line++

		freq, err := parseFloat(fields[0])
		if err != nil {
			if line == 1 {
				continue // header
			}
			return Spectrum{}, fmt.Errorf("%w: %s line %d: %w", errs.ErrInvalidDataFile, source, line, err)
		}

		if width == 0 {
			if len(fields) < 3 || len(fields)%2 == 0 {
				return Spectrum{}, fmt.Errorf("%w: %s: want frequency plus real/imag pairs, got %d columns",
					errs.ErrInvalidDataFile, source, len(fields))
			}
			width = len(fields)
			s.Z = make([][]complex128, (width-1)/2)
		}
		if len(fields) != width {
			return Spectrum{}, fmt.Errorf("%w: %s line %d: %d columns, want %d",
				errs.ErrInvalidDataFile, source, line, len(fields), width)
		}
		if freq <= 0 {
			return Spectrum{}, fmt.Errorf("%w: %s line %d: frequency must be positive", errs.ErrInvalidDataFile, source, line)
		}

		s.Omega = append(s.Omega, 2*math.Pi*freq)
		for rep := range s.Z {
			re, err := parseFloat(fields[1+2*rep])
			if err != nil {
				return Spectrum{}, fmt.Errorf("%w: %s line %d: %w", errs.ErrInvalidDataFile, source, line, err)
			}
			im, err := parseFloat(fields[2+2*rep])
			if err != nil {
				return Spectrum{}, fmt.Errorf("%w: %s line %d: %w", errs.ErrInvalidDataFile, source, line, err)
			}
			s.Z[rep] = append(s.Z[rep], complex(re, im))
		}
	}

	if err := s.Validate(); err != nil {
		return Spectrum{}, err
	}

	return s, nil
}

// LoadCSV reads a spectrum file. The source name is the file's base name.
func LoadCSV(path string) (Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spectrum{}, err
	}
	defer f.Close()

	return ReadCSV(f, filepath.Base(path))
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}
